package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/nicolasmmb/go-datacollector/internal/core"
	"github.com/nicolasmmb/go-datacollector/internal/domain"
)

type configurationRefresher interface {
	Refresh(ctx context.Context) (*domain.Configuration, error)
}

// DEFAULT_REFRESH_TIMEOUT bounds a single refresh, retries included.
const DEFAULT_REFRESH_TIMEOUT = 90 * time.Second

type configurationRefreshWorker struct {
	svc      configurationRefresher
	lock     core.RefreshLockInterface
	interval time.Duration
	timeout  time.Duration
}

func NewConfigurationRefreshWorker(svc configurationRefresher, lock core.RefreshLockInterface, interval time.Duration) *configurationRefreshWorker {
	return &configurationRefreshWorker{
		svc:      svc,
		lock:     lock,
		interval: interval,
		timeout:  DEFAULT_REFRESH_TIMEOUT,
	}
}

// WithTimeout overrides how long one refresh may hold the lock. It should be
// shorter than the lock TTL.
func (w *configurationRefreshWorker) WithTimeout(d time.Duration) *configurationRefreshWorker {
	if d > 0 {
		w.timeout = d
	}
	return w
}

// Run refreshes the cached configuration every interval until ctx is done.
func (w *configurationRefreshWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Info("[Worker:ConfigurationRefresh:Run] - Configuration refresh worker stopped")
			return
		case <-ticker.C:
			if _, err := w.PerformRefresh(ctx); err != nil {
				slog.Warn("[Worker:ConfigurationRefresh:Run] - Refresh failed", "error", err)
			}
		}
	}
}

// PerformRefresh refreshes once. It returns false when another instance holds
// the refresh lock.
func (w *configurationRefreshWorker) PerformRefresh(ctx context.Context) (bool, error) {
	token, locked, err := w.lock.Lock(ctx)
	if err != nil {
		return false, err
	}
	if !locked {
		slog.Debug("[Worker:ConfigurationRefresh:PerformRefresh] - Refresh already running elsewhere")
		return false, nil
	}
	defer func() {
		if err := w.lock.Unlock(ctx, token); err != nil {
			slog.Warn("[Worker:ConfigurationRefresh:PerformRefresh] - Failed to release lock", "error", err)
		}
	}()

	refreshCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	cfg, err := w.svc.Refresh(refreshCtx)
	if err != nil {
		return true, err
	}
	slog.Info("[Worker:ConfigurationRefresh:PerformRefresh] - Configuration refreshed", "merchant_id", cfg.MerchantID, "environment", cfg.Environment)
	return true, nil
}
