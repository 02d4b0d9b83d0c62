package model

import "github.com/nicolasmmb/go-datacollector/internal/domain"

type DeviceDataRequest struct {
	HasUserLocationConsent bool   `json:"hasUserLocationConsent"`
	RiskCorrelationID      string `json:"riskCorrelationId"`
}

func (r DeviceDataRequest) ToDomain() domain.DeviceDataRequest {
	return domain.DeviceDataRequest{
		HasUserLocationConsent: r.HasUserLocationConsent,
		RiskCorrelationID:      r.RiskCorrelationID,
	}
}

type PreferredPaymentMethodsResponse struct {
	PayPalPreferred bool `json:"payPalPreferred"`
	VenmoPreferred  bool `json:"venmoPreferred"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
