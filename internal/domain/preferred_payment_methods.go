package domain

import (
	"bytes"
	"strings"

	json "github.com/json-iterator/go"
)

const preferredPaymentMethodsPath = "data.preferredPaymentMethods"

// PreferredPaymentMethodsResult tells which payment methods are preferred on
// the device. It is immutable once built.
type PreferredPaymentMethodsResult struct {
	payPalPreferred bool
	venmoPreferred  bool
}

func NewPreferredPaymentMethodsResult(payPalPreferred, venmoPreferred bool) PreferredPaymentMethodsResult {
	return PreferredPaymentMethodsResult{payPalPreferred: payPalPreferred, venmoPreferred: venmoPreferred}
}

// ParsePreferredPaymentMethods reads data.preferredPaymentMethods.paypalPreferred
// from a GraphQL response body. Anything unexpected yields false; it never fails.
// The Venmo flag is taken from venmoInstalled as is.
func ParsePreferredPaymentMethods(responseBody string, venmoInstalled bool) PreferredPaymentMethodsResult {
	payPalPreferred := false

	if obj, ok := objectAtKeyPath([]byte(responseBody), preferredPaymentMethodsPath); ok {
		if raw, found := obj["paypalPreferred"]; found {
			payPalPreferred = strictBool(raw)
		}
	}

	return NewPreferredPaymentMethodsResult(payPalPreferred, venmoInstalled)
}

func (r PreferredPaymentMethodsResult) IsPayPalPreferred() bool {
	return r.payPalPreferred
}

// IsVenmoPreferred is true when the Venmo app is installed.
func (r PreferredPaymentMethodsResult) IsVenmoPreferred() bool {
	return r.venmoPreferred
}

// objectAtKeyPath descends a dot separated path, stopping at the first level
// that is missing or is not an object.
func objectAtKeyPath(doc []byte, keyPath string) (map[string]json.RawMessage, bool) {
	if !json.Valid(doc) {
		return nil, false
	}
	obj, ok := asObject(doc)
	if !ok {
		return nil, false
	}
	for _, key := range strings.Split(keyPath, ".") {
		raw, found := obj[key]
		if !found {
			return nil, false
		}
		if obj, ok = asObject(raw); !ok {
			return nil, false
		}
	}
	return obj, true
}

func asObject(raw []byte) (map[string]json.RawMessage, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, false
	}
	return obj, true
}

func strictBool(raw []byte) bool {
	switch string(bytes.TrimSpace(raw)) {
	case "true":
		return true
	default:
		return false
	}
}
