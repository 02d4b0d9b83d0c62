package service_test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nicolasmmb/go-datacollector/internal/domain"
)

type stubProvider struct {
	result domain.ConfigurationResult
	block  bool
}

func (p stubProvider) Configuration(ctx context.Context) <-chan domain.ConfigurationResult {
	out := make(chan domain.ConfigurationResult, 1)
	if p.block {
		return out
	}
	out <- p.result
	close(out)
	return out
}

type stubInstallations struct {
	guid string
	err  error
}

func (s stubInstallations) InstallationGUID(ctx context.Context, installationID string) (string, error) {
	return s.guid, s.err
}

type stubFingerprint struct {
	id string

	mu    sync.Mutex
	calls []domain.InternalRequest
}

func (s *stubFingerprint) ClientMetadataID(ctx context.Context, cfg *domain.Configuration, req *domain.InternalRequest) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, *req)
	return s.id
}

func (s *stubFingerprint) Calls() []domain.InternalRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.InternalRequest(nil), s.calls...)
}

type stubConfigRepo struct {
	mu      sync.Mutex
	cached  *domain.Configuration
	getErr  error
	saveErr error
	saved   []*domain.Configuration
	resets  int
}

func (r *stubConfigRepo) GetConfiguration(ctx context.Context, merchantID string) (*domain.Configuration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cached, r.getErr
}

func (r *stubConfigRepo) SaveConfiguration(ctx context.Context, cfg *domain.Configuration, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saved = append(r.saved, cfg)
	return r.saveErr
}

func (r *stubConfigRepo) ResetState(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resets++
	return nil
}

type stubGateway struct {
	failures int
	cfg      *domain.Configuration
	err      error

	calls atomic.Int32

	graphQLBody string
	graphQLErr  error
	graphQLURL  string
}

func (g *stubGateway) FetchConfiguration(ctx context.Context) (*domain.Configuration, error) {
	n := int(g.calls.Add(1))
	if n <= g.failures {
		return nil, g.err
	}
	c := *g.cfg
	return &c, nil
}

func (g *stubGateway) PostGraphQL(ctx context.Context, url, operationName, query string) (string, error) {
	g.graphQLURL = url
	return g.graphQLBody, g.graphQLErr
}
