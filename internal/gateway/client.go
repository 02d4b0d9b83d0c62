package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	json "github.com/json-iterator/go"

	"github.com/nicolasmmb/go-datacollector/internal/domain"
)

const (
	PATH_CONFIGURATION = "/v1/configuration"

	HEADER_AUTHORIZATION = "Authorization"
	HEADER_API_VERSION   = "Braintree-Version"
	API_VERSION          = "2018-05-10"

	maxResponseBytes = 1 << 20 // 1 MB
)

var ErrHTTPStatus = errors.New("unexpected http status")

var bufferPool = sync.Pool{
	New: func() interface{} { return &bytes.Buffer{} },
}

// Client talks to the processor gateway: merchant configuration and the
// GraphQL API.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	authorization string
}

func NewClient(baseURL, authorization string) *Client {
	tr := &http.Transport{
		IdleConnTimeout:     60 * time.Second,
		MaxIdleConns:        32,
		MaxIdleConnsPerHost: 32,
		ForceAttemptHTTP2:   true,
	}
	return NewClientWithHTTP(baseURL, authorization, &http.Client{Transport: tr, Timeout: 10 * time.Second})
}

func NewClientWithHTTP(baseURL, authorization string, httpClient *http.Client) *Client {
	return &Client{
		httpClient:    httpClient,
		baseURL:       strings.TrimRight(baseURL, "/"),
		authorization: authorization,
	}
}

type configurationPayload struct {
	Environment   string `json:"environment"`
	MerchantID    string `json:"merchantId"`
	ClientAPIURL  string `json:"clientApiUrl"`
	PayPalEnabled bool   `json:"paypalEnabled"`
	GraphQL       *struct {
		URL string `json:"url"`
	} `json:"graphQL"`
	PayWithVenmo *struct {
		AccessToken string `json:"accessToken"`
	} `json:"payWithVenmo"`
}

func (c *Client) FetchConfiguration(ctx context.Context) (*domain.Configuration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+PATH_CONFIGURATION, nil)
	if err != nil {
		return nil, err
	}
	req.URL.RawQuery = "configVersion=3"

	body, err := c.do(req)
	if err != nil {
		slog.Error("[GW:Configuration:Fetch:01] - Failed to fetch configuration", "error", err)
		return nil, err
	}

	var payload configurationPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		slog.Error("[GW:Configuration:Fetch:02] - Failed to decode configuration", "error", err)
		return nil, fmt.Errorf("decode configuration: %w", err)
	}

	cfg := &domain.Configuration{
		Environment:   payload.Environment,
		MerchantID:    payload.MerchantID,
		ClientAPIURL:  payload.ClientAPIURL,
		PayPalEnabled: payload.PayPalEnabled,
		FetchedAt:     time.Now().UTC(),
	}
	if payload.GraphQL != nil {
		cfg.GraphQLURL = payload.GraphQL.URL
	}
	if payload.PayWithVenmo != nil {
		cfg.VenmoEnabled = payload.PayWithVenmo.AccessToken != ""
	}
	return cfg, nil
}

// PostGraphQL sends query to url and returns the raw response body.
func (c *Client) PostGraphQL(ctx context.Context, url, operationName, query string) (string, error) {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bufferPool.Put(buf)

	payload := map[string]any{
		"query":         query,
		"operationName": operationName,
	}
	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req)
	if err != nil {
		slog.Warn("[GW:GraphQL:Post:01] - GraphQL request failed", "operation", operationName, "error", err)
		return "", err
	}
	return string(body), nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	req.Header.Set(HEADER_AUTHORIZATION, "Bearer "+c.authorization)
	req.Header.Set(HEADER_API_VERSION, API_VERSION)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d", ErrHTTPStatus, resp.StatusCode)
	}
	return body, nil
}
