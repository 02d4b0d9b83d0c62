package router_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nicolasmmb/go-datacollector/internal/domain"
	"github.com/nicolasmmb/go-datacollector/internal/router"
	"github.com/nicolasmmb/go-datacollector/internal/service"
	"github.com/nicolasmmb/go-datacollector/internal/worker"
)

const installationID = "9f0c6f1e-7a2b-4b8f-9a59-4d1fbd3b2c10"

type stubSubmitter struct {
	result    domain.DeviceDataResult
	submitErr error

	gotID  string
	gotReq domain.DeviceDataRequest
}

func (s *stubSubmitter) Submit(ctx context.Context, id string, req domain.DeviceDataRequest) (<-chan domain.DeviceDataResult, error) {
	s.gotID, s.gotReq = id, req
	if s.submitErr != nil {
		return nil, s.submitErr
	}
	out := make(chan domain.DeviceDataResult, 1)
	out <- s.result
	close(out)
	return out, nil
}

type stubPreferred struct {
	payPal bool
}

func (s stubPreferred) Fetch(ctx context.Context, venmoInstalled bool) domain.PreferredPaymentMethodsResult {
	return domain.NewPreferredPaymentMethodsResult(s.payPal, venmoInstalled)
}

type stubConfigs struct {
	result   domain.ConfigurationResult
	resetErr error
}

func (s stubConfigs) Configuration(ctx context.Context) <-chan domain.ConfigurationResult {
	out := make(chan domain.ConfigurationResult, 1)
	out <- s.result
	close(out)
	return out
}

func (s stubConfigs) Refresh(ctx context.Context) (*domain.Configuration, error) {
	return s.result.Configuration, s.result.Err
}

func (s stubConfigs) Reset(ctx context.Context) error { return s.resetErr }

type stubHealth struct{ err error }

func (s stubHealth) HealthCheck(ctx context.Context) error { return s.err }

func serve(t *testing.T, h http.Handler, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCollectDeviceData(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		installationID string
		body           string
		result         domain.DeviceDataResult
		submitErr      error

		wantStatus int
		wantBody   string
		wantReq    domain.DeviceDataRequest
	}{
		"Correlation id": {
			installationID: installationID,
			body:           `{"hasUserLocationConsent":true,"riskCorrelationId":"risk-1"}`,
			result:         domain.DeviceDataResult{Data: &domain.DeviceData{CorrelationID: "abc123"}},
			wantStatus:     http.StatusOK,
			wantBody:       `{"correlation_id":"abc123"}`,
			wantReq:        domain.DeviceDataRequest{HasUserLocationConsent: true, RiskCorrelationID: "risk-1"},
		},
		"Empty body uses the default request": {
			installationID: installationID,
			result:         domain.DeviceDataResult{Data: &domain.DeviceData{}},
			wantStatus:     http.StatusOK,
			wantBody:       `{}`,
			wantReq:        domain.DefaultDeviceDataRequest(),
		},
		"Configuration unavailable": {
			installationID: installationID,
			body:           `{}`,
			result:         domain.DeviceDataResult{Err: fmt.Errorf("%w: boom", service.ErrConfigurationUnavailable)},
			wantStatus:     http.StatusBadGateway,
		},
		"Other collection error": {
			installationID: installationID,
			body:           `{}`,
			result:         domain.DeviceDataResult{Err: context.DeadlineExceeded},
			wantStatus:     http.StatusServiceUnavailable,
		},
		"Queue full": {
			installationID: installationID,
			submitErr:      worker.ErrQueueFull,
			wantStatus:     http.StatusServiceUnavailable,
		},
		"Pool stopped": {
			installationID: installationID,
			submitErr:      worker.ErrWorkerStopped,
			wantStatus:     http.StatusServiceUnavailable,
		},
		"Submit failure": {
			installationID: installationID,
			submitErr:      errors.New("boom"),
			wantStatus:     http.StatusInternalServerError,
		},
		"Opaque installation id is accepted": {
			installationID: "device-1",
			result:         domain.DeviceDataResult{Data: &domain.DeviceData{}},
			wantStatus:     http.StatusOK,
			wantBody:       `{}`,
			wantReq:        domain.DefaultDeviceDataRequest(),
		},
		"Missing installation id": {body: `{}`, wantStatus: http.StatusBadRequest},
		"Invalid installation id": {installationID: "device 1", wantStatus: http.StatusBadRequest},
		"Too long installation id": {
			installationID: strings.Repeat("a", domain.MAX_INSTALLATION_ID_LENGTH+1),
			wantStatus:     http.StatusBadRequest,
		},
		"Invalid body": {installationID: installationID, body: `[1,2]`, wantStatus: http.StatusBadRequest},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			sub := &stubSubmitter{result: tc.result, submitErr: tc.submitErr}
			mux := router.Routes(router.NewHandler(sub, stubPreferred{}, stubConfigs{}, stubHealth{}))

			headers := map[string]string{}
			if tc.installationID != "" {
				headers[router.HEADER_INSTALLATION_ID] = tc.installationID
			}
			rec := serve(t, mux, http.MethodPost, "/device-data", tc.body, headers)

			require.Equal(t, tc.wantStatus, rec.Code, "body: %s", rec.Body.String())
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			if tc.wantStatus != http.StatusOK {
				return
			}
			assert.JSONEq(t, tc.wantBody, rec.Body.String())
			assert.Equal(t, tc.installationID, sub.gotID)
			assert.Equal(t, tc.wantReq, sub.gotReq)
		})
	}
}

func TestGetPreferredPaymentMethods(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		query  string
		payPal bool

		want string
	}{
		"Both preferred": {query: "?venmoInstalled=true", payPal: true, want: `{"payPalPreferred":true,"venmoPreferred":true}`},
		"Venmo only":     {query: "?venmoInstalled=true", want: `{"payPalPreferred":false,"venmoPreferred":true}`},
		"No query":       {payPal: true, want: `{"payPalPreferred":true,"venmoPreferred":false}`},
		"Invalid flag":   {query: "?venmoInstalled=maybe", want: `{"payPalPreferred":false,"venmoPreferred":false}`},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			mux := router.Routes(router.NewHandler(&stubSubmitter{}, stubPreferred{payPal: tc.payPal}, stubConfigs{}, stubHealth{}))
			rec := serve(t, mux, http.MethodGet, "/preferred-payment-methods"+tc.query, "", nil)

			require.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, tc.want, rec.Body.String())
		})
	}
}

func TestConfigurationRoutes(t *testing.T) {
	t.Parallel()

	cfg := &domain.Configuration{Environment: domain.ENVIRONMENT_SANDBOX, MerchantID: "merchant-1", PayPalEnabled: true}

	tests := map[string]struct {
		method  string
		configs stubConfigs

		wantStatus   int
		wantMerchant string
	}{
		"Get":             {method: http.MethodGet, configs: stubConfigs{result: domain.ConfigurationResult{Configuration: cfg}}, wantStatus: http.StatusOK, wantMerchant: "merchant-1"},
		"Get unavailable": {method: http.MethodGet, configs: stubConfigs{result: domain.ConfigurationResult{Err: errors.New("boom")}}, wantStatus: http.StatusBadGateway},
		"Reset":           {method: http.MethodDelete, wantStatus: http.StatusNoContent},
		"Reset failure":   {method: http.MethodDelete, configs: stubConfigs{resetErr: errors.New("boom")}, wantStatus: http.StatusInternalServerError},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			mux := router.Routes(router.NewHandler(&stubSubmitter{}, stubPreferred{}, tc.configs, stubHealth{}))
			rec := serve(t, mux, tc.method, "/configuration", "", nil)

			require.Equal(t, tc.wantStatus, rec.Code)
			if tc.wantMerchant == "" {
				return
			}
			var got domain.Configuration
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			assert.Equal(t, tc.wantMerchant, got.MerchantID)
			assert.True(t, got.PayPalEnabled)
		})
	}
}

func TestHealthCheck(t *testing.T) {
	t.Parallel()

	healthy := router.Routes(router.NewHandler(&stubSubmitter{}, stubPreferred{}, stubConfigs{}, stubHealth{}))
	assert.Equal(t, http.StatusOK, serve(t, healthy, http.MethodGet, "/health", "", nil).Code)

	unhealthy := router.Routes(router.NewHandler(&stubSubmitter{}, stubPreferred{}, stubConfigs{}, stubHealth{err: errors.New("redis down")}))
	assert.Equal(t, http.StatusServiceUnavailable, serve(t, unhealthy, http.MethodGet, "/health", "", nil).Code)
}
