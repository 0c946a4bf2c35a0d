// Package bearer implements the built-in bearer-token authentication
// policy, @bouncer/authentication/bearer/v1 (spec.md §4.6.1): static-token
// comparison or a store-backed TokenLookup, injecting x-bouncer-role on a
// store-backed success.
package bearer

import "fmt"

// Config is @bouncer/authentication/bearer/v1's parameter shape. Exactly
// one of Token (static mode) or DBProvider (store-backed mode) must be set.
type Config struct {
	Token                string `json:"token"`
	Realm                string `json:"realm"`
	DBProvider           string `json:"db_provider"`
	TokenValidationQuery string `json:"token_validation_query"`
	TokenPrefix          string `json:"token_prefix"`
	Collection           string `json:"collection"`
}

func (c Config) validate() error {
	static := c.Token != ""
	store := c.DBProvider != ""

	if static == store {
		return fmt.Errorf("exactly one of token or db_provider must be set")
	}
	if !store {
		return nil
	}

	switch c.DBProvider {
	case "postgres", "mysql":
		if c.TokenValidationQuery == "" {
			return fmt.Errorf("token_validation_query is required for db_provider %q", c.DBProvider)
		}
	case "redis":
		if c.TokenPrefix == "" {
			return fmt.Errorf("token_prefix is required for db_provider %q", c.DBProvider)
		}
	case "mongo":
		if c.Collection == "" {
			return fmt.Errorf("collection is required for db_provider %q", c.DBProvider)
		}
	default:
		return fmt.Errorf("unsupported db_provider %q", c.DBProvider)
	}
	return nil
}
