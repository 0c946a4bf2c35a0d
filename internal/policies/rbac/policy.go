// Package rbac implements the built-in RBAC authorization policy,
// @bouncer/authorization/rbac/v1 (spec.md §4.6.2): glob-matched route
// patterns each granting a set of roles, any grant suffices.
package rbac

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"unicode/utf8"

	"github.com/gobwas/glob"

	"github.com/aras-services/bouncer/internal/httpresponse"
	"github.com/aras-services/bouncer/pkg/policy"
)

// PolicyID is @bouncer/authorization/rbac/v1.
const PolicyID = "@bouncer/authorization/rbac/v1"

// Config is @bouncer/authorization/rbac/v1's parameter shape: glob route
// pattern -> roles granted access on a match.
type Config struct {
	RouteRoles map[string][]string `json:"route_roles"`
}

// Factory builds RBAC policy instances.
type Factory struct{}

func (Factory) PolicyID() string { return PolicyID }

func (Factory) ValidateConfig(raw json.RawMessage) error {
	_, _, err := decode(raw)
	return err
}

func (Factory) New(_ context.Context, raw json.RawMessage, _ policy.Dependencies) (policy.Policy, error) {
	cfg, globs, err := decode(raw)
	if err != nil {
		return nil, err
	}
	return &Policy{config: cfg, globs: globs}, nil
}

func decode(raw json.RawMessage) (Config, map[string]glob.Glob, error) {
	var cfg Config
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return Config{}, nil, fmt.Errorf("rbac policy: decoding config: %w", err)
		}
	}
	if len(cfg.RouteRoles) == 0 {
		return Config{}, nil, fmt.Errorf("rbac policy: route_roles must be non-empty")
	}

	globs := make(map[string]glob.Glob, len(cfg.RouteRoles))
	for pattern := range cfg.RouteRoles {
		compiled, err := glob.Compile(pattern, '/')
		if err != nil {
			return Config{}, nil, fmt.Errorf("rbac policy: invalid route pattern %q: %w", pattern, err)
		}
		globs[pattern] = compiled
	}
	return cfg, globs, nil
}

// Policy grants access when the request path matches a configured glob and
// the caller's x-bouncer-role is among the roles that pattern grants.
type Policy struct {
	config Config
	globs  map[string]glob.Glob
}

func (p *Policy) Provider() string { return "bouncer" }
func (p *Policy) Category() string { return "authorization" }
func (p *Policy) Name() string     { return "rbac" }
func (p *Policy) Version() string  { return "v1" }

func (p *Policy) ProcessesRequests() bool                   { return true }
func (p *Policy) RegisterRoutes() []policy.RouteRegistration { return nil }

func (p *Policy) Process(r *http.Request) policy.Result {
	role := r.Header.Get("x-bouncer-role")
	if role == "" || !utf8.ValidString(role) {
		return policy.Terminate(httpresponse.Unauthorized("", "missing x-bouncer-role"))
	}

	path := r.URL.Path
	for pattern, compiled := range p.globs {
		if !compiled.Match(path) {
			continue
		}
		for _, granted := range p.config.RouteRoles[pattern] {
			if granted == role {
				return policy.Continue(r)
			}
		}
	}
	return policy.Terminate(httpresponse.Forbidden("access denied"))
}
