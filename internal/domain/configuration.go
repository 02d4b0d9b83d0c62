package domain

import "time"

const (
	ENVIRONMENT_PRODUCTION = "production"
	ENVIRONMENT_SANDBOX    = "sandbox"
)

// Configuration is the merchant configuration served by the gateway. It is
// shared read-only between services once fetched.
type Configuration struct {
	Environment   string    `json:"environment" msgpack:"environment"`
	MerchantID    string    `json:"merchantId" msgpack:"merchant_id"`
	ClientAPIURL  string    `json:"clientApiUrl" msgpack:"client_api_url"`
	GraphQLURL    string    `json:"graphQLUrl,omitempty" msgpack:"graphql_url"`
	PayPalEnabled bool      `json:"paypalEnabled" msgpack:"paypal_enabled"`
	VenmoEnabled  bool      `json:"venmoEnabled" msgpack:"venmo_enabled"`
	FetchedAt     time.Time `json:"fetchedAt" msgpack:"fetched_at"`
}

func (c *Configuration) IsGraphQLEnabled() bool {
	return c.GraphQLURL != ""
}

func (c *Configuration) IsProduction() bool {
	return c.Environment == ENVIRONMENT_PRODUCTION
}

// ConfigurationResult carries the outcome of one asynchronous configuration
// fetch. Exactly one of Configuration and Err is set.
type ConfigurationResult struct {
	Configuration *Configuration
	Err           error
}
