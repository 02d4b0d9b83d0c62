package fingerprint

import (
	"context"
	"encoding/hex"
	"log/slog"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/nicolasmmb/go-datacollector/internal/domain"
)

// MAX_CLIENT_METADATA_ID_LENGTH bounds caller supplied pairing ids.
const MAX_CLIENT_METADATA_ID_LENGTH = 32

// Client produces client metadata ids (the PayPal correlation id) for a
// device data request.
type Client struct {
	newID func() uuid.UUID
}

func NewClient() *Client {
	return &Client{newID: uuid.New}
}

// NewClientWithGenerator is used by tests to make ids predictable.
func NewClientWithGenerator(gen func() uuid.UUID) *Client {
	return &Client{newID: gen}
}

// ClientMetadataID returns the caller's risk correlation id when present,
// otherwise a fresh 32 character hex id. It returns "" when PayPal is not
// enabled for the merchant.
func (c *Client) ClientMetadataID(ctx context.Context, cfg *domain.Configuration, req *domain.InternalRequest) string {
	if cfg == nil || req == nil || !cfg.PayPalEnabled {
		slog.Debug("[FP:Client:ClientMetadataID:01] - PayPal disabled, no client metadata id")
		return ""
	}

	if req.RiskCorrelationID != "" {
		return truncateID(req.RiskCorrelationID)
	}

	raw := c.newID()
	id := hex.EncodeToString(raw[:])

	slog.Debug("[FP:Client:ClientMetadataID:02] - Generated client metadata id",
		"environment", cfg.Environment,
		"application_guid", req.ApplicationGUID,
		"location_consent", req.HasUserLocationConsent,
	)
	return id
}

// truncateID cuts id to at most MAX_CLIENT_METADATA_ID_LENGTH bytes without
// splitting a rune.
func truncateID(id string) string {
	if len(id) <= MAX_CLIENT_METADATA_ID_LENGTH {
		return id
	}
	cut := MAX_CLIENT_METADATA_ID_LENGTH
	for cut > 0 && !utf8.RuneStart(id[cut]) {
		cut--
	}
	return id[:cut]
}
