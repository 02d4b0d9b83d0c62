package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nicolasmmb/go-datacollector/internal/core"
	"github.com/nicolasmmb/go-datacollector/internal/domain"
)

var ErrConfigurationUnavailable = errors.New("configuration unavailable")

// DataCollector collects PayPal device data used for fraud detection.
type DataCollector struct {
	configs       core.ConfigurationProvider
	installations core.InstallationRepositoryInterface
	fingerprint   core.FingerprintClient
}

func NewDataCollector(configs core.ConfigurationProvider, installations core.InstallationRepositoryInterface, fingerprint core.FingerprintClient) *DataCollector {
	return &DataCollector{
		configs:       configs,
		installations: installations,
		fingerprint:   fingerprint,
	}
}

// CollectDeviceData waits for the merchant configuration and returns the
// device data for installationID. A configuration failure is returned wrapped
// in ErrConfigurationUnavailable. An empty correlation id is not an error.
func (dc *DataCollector) CollectDeviceData(ctx context.Context, installationID string, req domain.DeviceDataRequest) (*domain.DeviceData, error) {
	cfg, err := awaitConfiguration(ctx, dc.configs)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, err
		}
		slog.Warn("[SV:DataCollector:Collect:01] - Configuration unavailable", "installation_id", installationID, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrConfigurationUnavailable, err)
	}

	internal := &domain.InternalRequest{
		HasUserLocationConsent: req.HasUserLocationConsent,
		ApplicationGUID:        dc.InstallationGUID(ctx, installationID),
	}
	if req.RiskCorrelationID != "" {
		internal.RiskCorrelationID = req.RiskCorrelationID
	}

	data := &domain.DeviceData{}
	if id := dc.fingerprint.ClientMetadataID(ctx, cfg, internal); id != "" {
		data.CorrelationID = id
	} else {
		slog.Info("[SV:DataCollector:Collect:02] - No correlation id produced", "installation_id", installationID)
	}
	return data, nil
}

// CollectDeviceDataAsync runs CollectDeviceData in the background. The channel
// receives exactly one result and is then closed.
func (dc *DataCollector) CollectDeviceDataAsync(ctx context.Context, installationID string, req domain.DeviceDataRequest) <-chan domain.DeviceDataResult {
	out := make(chan domain.DeviceDataResult, 1)
	go func() {
		defer close(out)
		data, err := dc.CollectDeviceData(ctx, installationID, req)
		out <- domain.DeviceDataResult{Data: data, Err: err}
	}()
	return out
}

// ClientMetadataID returns a correlation id for an already known configuration.
func (dc *DataCollector) ClientMetadataID(ctx context.Context, installationID string, cfg *domain.Configuration, hasUserLocationConsent bool) string {
	return dc.fingerprint.ClientMetadataID(ctx, cfg, &domain.InternalRequest{
		HasUserLocationConsent: hasUserLocationConsent,
		ApplicationGUID:        dc.InstallationGUID(ctx, installationID),
	})
}

// InstallationGUID returns "" when the GUID store cannot be reached; device
// data is best effort.
func (dc *DataCollector) InstallationGUID(ctx context.Context, installationID string) string {
	guid, err := dc.installations.InstallationGUID(ctx, installationID)
	if err != nil {
		slog.Warn("[SV:DataCollector:InstallationGUID:01] - Failed to get installation GUID", "installation_id", installationID, "error", err)
		return ""
	}
	return guid
}
