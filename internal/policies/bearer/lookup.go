package bearer

import (
	"context"

	"github.com/aras-services/bouncer/pkg/policy"
)

// TokenLookup resolves a bearer token to a role. A zero-value role with a
// nil error means the token is unknown (not an error condition); a
// non-nil error means the lookup itself failed and should never be
// exposed to the caller verbatim (spec.md §4.6.1 step 5).
type TokenLookup interface {
	Lookup(ctx context.Context, token string) (role string, err error)
}

func buildLookup(cfg Config, dbs policy.Databases) (TokenLookup, error) {
	switch cfg.DBProvider {
	case "postgres":
		pool, ok := dbs.Postgres()
		if !ok {
			return nil, errNotConfigured("postgres")
		}
		return &postgresLookup{pool: pool, query: cfg.TokenValidationQuery}, nil
	case "mysql":
		db, ok := dbs.MySQL()
		if !ok {
			return nil, errNotConfigured("mysql")
		}
		return &mysqlLookup{db: db, query: cfg.TokenValidationQuery}, nil
	case "redis":
		client, ok := dbs.Redis()
		if !ok {
			return nil, errNotConfigured("redis")
		}
		return &redisLookup{client: client, prefix: cfg.TokenPrefix}, nil
	case "mongo":
		db, ok := dbs.Mongo()
		if !ok {
			return nil, errNotConfigured("mongo")
		}
		return &mongoLookup{db: db, collection: cfg.Collection}, nil
	default:
		return nil, errNotConfigured(cfg.DBProvider)
	}
}

func errNotConfigured(kind string) error {
	return notConfiguredError{kind: kind}
}

type notConfiguredError struct{ kind string }

func (e notConfiguredError) Error() string {
	return "bearer policy: db_provider " + e.kind + " has no matching databases entry"
}
