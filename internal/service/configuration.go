package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nicolasmmb/go-datacollector/internal/core"
	"github.com/nicolasmmb/go-datacollector/internal/domain"
)

const DEFAULT_RETRY_BACKOFF = 200 * time.Millisecond

type ConfigurationService struct {
	repo    core.ConfigurationRepositoryInterface
	gateway core.ConfigurationGatewayInterface

	merchantID string
	ttl        time.Duration
	retries    int
	backoff    time.Duration
}

func NewConfigurationService(repo core.ConfigurationRepositoryInterface, gateway core.ConfigurationGatewayInterface, merchantID string, ttl time.Duration, retries int) *ConfigurationService {
	if retries < 1 {
		retries = 1
	}
	return &ConfigurationService{
		repo:       repo,
		gateway:    gateway,
		merchantID: merchantID,
		ttl:        ttl,
		retries:    retries,
		backoff:    DEFAULT_RETRY_BACKOFF,
	}
}

// WithBackoff changes the pause between gateway attempts.
func (cs *ConfigurationService) WithBackoff(d time.Duration) *ConfigurationService {
	cs.backoff = d
	return cs
}

// Configuration resolves the merchant configuration in the background. The
// channel receives exactly one result and is then closed.
func (cs *ConfigurationService) Configuration(ctx context.Context) <-chan domain.ConfigurationResult {
	out := make(chan domain.ConfigurationResult, 1)
	go func() {
		defer close(out)
		cfg, err := cs.load(ctx)
		if err != nil {
			out <- domain.ConfigurationResult{Err: err}
			return
		}
		out <- domain.ConfigurationResult{Configuration: cfg}
	}()
	return out
}

func (cs *ConfigurationService) load(ctx context.Context) (*domain.Configuration, error) {
	cfg, err := cs.repo.GetConfiguration(ctx, cs.merchantID)
	if err != nil {
		// A broken cache should not hide the gateway.
		slog.Warn("[SV:Configuration:Load:01] - Cache lookup failed, fetching from gateway", "merchant_id", cs.merchantID, "error", err)
	}
	if cfg != nil {
		return cfg, nil
	}
	return cs.Refresh(ctx)
}

// Refresh fetches the configuration from the gateway, retrying a bounded
// number of times, and stores it in the cache.
func (cs *ConfigurationService) Refresh(ctx context.Context) (*domain.Configuration, error) {
	var lastErr error
	for attempt := 1; attempt <= cs.retries; attempt++ {
		cfg, err := cs.gateway.FetchConfiguration(ctx)
		if err == nil {
			if cfg.MerchantID == "" {
				cfg.MerchantID = cs.merchantID
			}
			if err := cs.repo.SaveConfiguration(ctx, cfg, cs.ttl); err != nil {
				slog.Warn("[SV:Configuration:Refresh:01] - Failed to cache configuration", "merchant_id", cs.merchantID, "error", err)
			}
			return cfg, nil
		}

		lastErr = err
		slog.Warn("[SV:Configuration:Refresh:02] - Gateway fetch failed", "attempt", attempt, "retries", cs.retries, "error", err)

		if attempt == cs.retries {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(cs.backoff):
		}
	}
	return nil, fmt.Errorf("fetch configuration after %d attempts: %w", cs.retries, lastErr)
}

func (cs *ConfigurationService) Reset(ctx context.Context) error {
	return cs.repo.ResetState(ctx)
}

var errNoConfiguration = errors.New("configuration provider returned neither configuration nor error")

// awaitConfiguration waits for the single result of a configuration fetch.
func awaitConfiguration(ctx context.Context, provider core.ConfigurationProvider) (*domain.Configuration, error) {
	select {
	case res, ok := <-provider.Configuration(ctx):
		if !ok {
			return nil, errNoConfiguration
		}
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Configuration == nil {
			return nil, errNoConfiguration
		}
		return res.Configuration, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
