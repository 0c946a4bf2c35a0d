package bearer

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/aras-services/bouncer/internal/httpresponse"
	"github.com/aras-services/bouncer/pkg/policy"
)

// PolicyID is @bouncer/authentication/bearer/v1.
const PolicyID = "@bouncer/authentication/bearer/v1"

const bearerPrefix = "Bearer "

// Factory builds bearer auth policy instances.
type Factory struct{}

func (Factory) PolicyID() string { return PolicyID }

func (Factory) ValidateConfig(raw json.RawMessage) error {
	_, err := decode(raw)
	return err
}

func (Factory) New(ctx context.Context, raw json.RawMessage, deps policy.Dependencies) (policy.Policy, error) {
	cfg, err := decode(raw)
	if err != nil {
		return nil, err
	}

	p := &Policy{config: cfg, logger: deps.Logger}
	if cfg.DBProvider != "" {
		lookup, err := buildLookup(cfg, deps.Databases)
		if err != nil {
			return nil, err
		}
		p.lookup = lookup
	}
	return p, nil
}

func decode(raw json.RawMessage) (Config, error) {
	var cfg Config
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("bearer policy: decoding config: %w", err)
		}
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("bearer policy: %w", err)
	}
	return cfg, nil
}

// Policy implements static or store-backed bearer-token authentication.
type Policy struct {
	config Config
	lookup TokenLookup
	logger *zap.Logger
}

func (p *Policy) Provider() string { return "bouncer" }
func (p *Policy) Category() string { return "authentication" }
func (p *Policy) Name() string     { return "bearer" }
func (p *Policy) Version() string  { return "v1" }

func (p *Policy) ProcessesRequests() bool                   { return true }
func (p *Policy) RegisterRoutes() []policy.RouteRegistration { return nil }

func (p *Policy) Process(r *http.Request) policy.Result {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return policy.Terminate(httpresponse.Unauthorized(p.config.Realm, "bearer token required"))
	}
	if !strings.HasPrefix(auth, bearerPrefix) {
		return policy.Terminate(httpresponse.Unauthorized(p.config.Realm, "invalid authorization header format"))
	}
	token := strings.TrimPrefix(auth, bearerPrefix)

	if p.lookup != nil {
		return p.processStoreBacked(r, token)
	}
	return p.processStatic(r, token)
}

func (p *Policy) processStatic(r *http.Request, token string) policy.Result {
	configured := []byte(p.config.Token)
	presented := []byte(token)
	if len(configured) == len(presented) && subtle.ConstantTimeCompare(configured, presented) == 1 {
		return policy.Continue(r)
	}
	return policy.Terminate(httpresponse.Unauthorized(p.config.Realm, "invalid token"))
}

func (p *Policy) processStoreBacked(r *http.Request, token string) policy.Result {
	role, err := p.lookup.Lookup(r.Context(), token)
	if err != nil {
		if p.logger != nil {
			p.logger.Warn("bearer token lookup failed", zap.Error(err))
		}
		return policy.Terminate(httpresponse.Unauthorized(p.config.Realm, "invalid or expired token"))
	}
	if role == "" {
		return policy.Terminate(httpresponse.Unauthorized(p.config.Realm, "invalid or expired token"))
	}

	r.Header.Set("x-bouncer-role", role)
	return policy.Continue(r)
}
