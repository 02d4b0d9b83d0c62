package domain

import (
	"log/slog"
	"unicode"
	"unicode/utf8"

	json "github.com/json-iterator/go"
)

const (
	CORRELATION_ID_KEY = "correlation_id"

	MAX_INSTALLATION_ID_LENGTH = 128
)

// DeviceDataRequest configures a single device data collection.
// An empty RiskCorrelationID means none was supplied.
type DeviceDataRequest struct {
	HasUserLocationConsent bool
	RiskCorrelationID      string
}

// DefaultDeviceDataRequest is the request used when the caller gives no
// options: no location consent and no risk correlation id.
func DefaultDeviceDataRequest() DeviceDataRequest {
	return DeviceDataRequest{}
}

// InternalRequest is what the fingerprinting client receives. Built per call.
type InternalRequest struct {
	HasUserLocationConsent bool
	ApplicationGUID        string
	RiskCorrelationID      string
}

// DeviceData serialises to {} or {"correlation_id":"..."}.
type DeviceData struct {
	CorrelationID string `json:"correlation_id,omitempty"`
}

// String returns the JSON document handed back to the merchant. Encoding
// errors are logged and degrade to an empty document.
func (d *DeviceData) String() string {
	if d == nil {
		return "{}"
	}
	b, err := json.Marshal(d)
	if err != nil {
		slog.Warn("[DM:DeviceData:String] - Failed to encode device data", "error", err)
		return "{}"
	}
	return string(b)
}

type DeviceDataResult struct {
	Data *DeviceData
	Err  error
}

// ValidateInstallationID reports whether id can key an installation: non-empty,
// at most MAX_INSTALLATION_ID_LENGTH bytes of printable UTF-8 without spaces.
func ValidateInstallationID(id string) bool {
	if id == "" || len(id) > MAX_INSTALLATION_ID_LENGTH || !utf8.ValidString(id) {
		return false
	}
	for _, r := range id {
		if !unicode.IsPrint(r) || unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
