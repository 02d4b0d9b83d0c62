package service

import (
	"context"
	"log/slog"

	"github.com/nicolasmmb/go-datacollector/internal/core"
	"github.com/nicolasmmb/go-datacollector/internal/domain"
)

const (
	PREFERRED_PAYMENT_METHODS_OPERATION = "PreferredPaymentMethods"
	PREFERRED_PAYMENT_METHODS_QUERY     = "query PreferredPaymentMethods { preferredPaymentMethods { paypalPreferred } }"
)

type PreferredPaymentMethodsService struct {
	configs core.ConfigurationProvider
	graphQL core.GraphQLGatewayInterface
}

func NewPreferredPaymentMethodsService(configs core.ConfigurationProvider, graphQL core.GraphQLGatewayInterface) *PreferredPaymentMethodsService {
	return &PreferredPaymentMethodsService{configs: configs, graphQL: graphQL}
}

// Fetch asks the GraphQL API whether PayPal is preferred. Every failure
// results in PayPal not preferred; Venmo mirrors venmoInstalled.
func (s *PreferredPaymentMethodsService) Fetch(ctx context.Context, venmoInstalled bool) domain.PreferredPaymentMethodsResult {
	fallback := domain.NewPreferredPaymentMethodsResult(false, venmoInstalled)

	cfg, err := awaitConfiguration(ctx, s.configs)
	if err != nil {
		slog.Warn("[SV:PreferredPaymentMethods:Fetch:01] - Configuration unavailable", "error", err)
		return fallback
	}
	if !cfg.IsGraphQLEnabled() {
		slog.Info("[SV:PreferredPaymentMethods:Fetch:02] - GraphQL disabled for merchant", "merchant_id", cfg.MerchantID)
		return fallback
	}

	body, err := s.graphQL.PostGraphQL(ctx, cfg.GraphQLURL, PREFERRED_PAYMENT_METHODS_OPERATION, PREFERRED_PAYMENT_METHODS_QUERY)
	if err != nil {
		slog.Warn("[SV:PreferredPaymentMethods:Fetch:03] - GraphQL request failed", "error", err)
		return fallback
	}
	return domain.ParsePreferredPaymentMethods(body, venmoInstalled)
}
