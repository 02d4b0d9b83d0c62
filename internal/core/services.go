package core

import (
	"context"
	"time"

	"github.com/nicolasmmb/go-datacollector/internal/domain"
)

type ConfigurationRepositoryInterface interface {
	// GetConfiguration returns nil without error on a cache miss.
	GetConfiguration(ctx context.Context, merchantID string) (*domain.Configuration, error)
	SaveConfiguration(ctx context.Context, cfg *domain.Configuration, ttl time.Duration) error
	ResetState(ctx context.Context) error
}

type RefreshLockInterface interface {
	Lock(ctx context.Context) (token string, ok bool, err error)
	Unlock(ctx context.Context, token string) error
}

type InstallationRepositoryInterface interface {
	InstallationGUID(ctx context.Context, installationID string) (string, error)
}

type HealthCheckRepositoryInterface interface {
	HealthCheck(ctx context.Context) error
}

type ConfigurationGatewayInterface interface {
	FetchConfiguration(ctx context.Context) (*domain.Configuration, error)
}

type GraphQLGatewayInterface interface {
	PostGraphQL(ctx context.Context, url, operationName, query string) (string, error)
}

// ConfigurationProvider delivers exactly one result on the returned channel
// and then closes it.
type ConfigurationProvider interface {
	Configuration(ctx context.Context) <-chan domain.ConfigurationResult
}

type ConfigurationServiceInterface interface {
	ConfigurationProvider
	Refresh(ctx context.Context) (*domain.Configuration, error)
	Reset(ctx context.Context) error
}

type FingerprintClient interface {
	// ClientMetadataID may return an empty string.
	ClientMetadataID(ctx context.Context, cfg *domain.Configuration, req *domain.InternalRequest) string
}

type DeviceDataCollectorInterface interface {
	CollectDeviceData(ctx context.Context, installationID string, req domain.DeviceDataRequest) (*domain.DeviceData, error)
}

type DeviceDataSubmitterInterface interface {
	Submit(ctx context.Context, installationID string, req domain.DeviceDataRequest) (<-chan domain.DeviceDataResult, error)
}

type PreferredPaymentMethodsInterface interface {
	Fetch(ctx context.Context, venmoInstalled bool) domain.PreferredPaymentMethodsResult
}
