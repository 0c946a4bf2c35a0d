// Package policy defines the contract third-party and built-in policies
// implement: the Policy/Factory capability sets, the chain's Continue/
// Terminate result type, and the shared database handles a factory may ask
// for during construction. It intentionally has no dependency on anything
// under internal/ so external modules can import it.
package policy

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// RouteRegistration is an admin route a policy contributes under its
// reserved /_admin/<provider>/<category>/<name>/<version> base path.
type RouteRegistration struct {
	RelativePath string
	Handler      http.Handler
}

// Result is the outcome of a policy's Process call: either the request
// continues (possibly mutated) to the next stage, or the chain terminates
// immediately with a response.
type Result struct {
	request  *http.Request
	response *http.Response
}

// Continue passes r (unchanged or mutated) to the next policy in the chain.
func Continue(r *http.Request) Result {
	return Result{request: r}
}

// Terminate short-circuits the chain with resp; no further policy or the
// proxy handler runs.
func Terminate(resp *http.Response) Result {
	return Result{response: resp}
}

// Terminated reports whether this result ends the chain.
func (r Result) Terminated() bool { return r.response != nil }

// Request returns the (possibly mutated) request to pass downstream. Only
// meaningful when Terminated() is false.
func (r Result) Request() *http.Request { return r.request }

// Response returns the terminating response. Only meaningful when
// Terminated() is true.
func (r Result) Response() *http.Response { return r.response }

// Policy is an immutable, concurrently-safe request-processing module.
// Instances are constructed once by a Factory and shared by reference
// across every request they process.
type Policy interface {
	Provider() string
	Category() string
	Name() string
	Version() string

	// ProcessesRequests reports whether this instance belongs in the
	// per-request chain. A policy returning false contributes routes only.
	ProcessesRequests() bool

	// RegisterRoutes returns the admin routes this instance contributes.
	// Most policies return nil.
	RegisterRoutes() []RouteRegistration

	// Process runs this policy against an inbound (or upstream-mutated)
	// request. Cancellation is observed through r.Context(); a policy
	// performing network or DB I/O should pass r.Context() through so a
	// dropped client connection aborts the call.
	Process(r *http.Request) Result
}

// Databases exposes the shared connection pools opened from
// DatabasesConfig. A factory asks for only the handles it needs; the
// second return value reports whether that kind was configured.
type Databases interface {
	Postgres() (*pgxpool.Pool, bool)
	MySQL() (*sql.DB, bool)
	Redis() (*redis.Client, bool)
	Mongo() (*mongo.Database, bool)
}

// Dependencies are handed to every Factory.New call.
type Dependencies struct {
	Databases Databases
	Logger    *zap.Logger
}

// Factory builds a Policy from its identifier and untyped configuration.
// Config validation is synchronous and pure; construction may do I/O (e.g.
// open a DB pool) and is therefore given a context and Dependencies.
//
// Factory deliberately takes and returns json.RawMessage rather than a
// generic Config type: the registry stores factories behind this single
// non-generic interface so it never needs to know any factory's concrete
// config shape.
type Factory interface {
	PolicyID() string
	ValidateConfig(raw json.RawMessage) error
	New(ctx context.Context, raw json.RawMessage, deps Dependencies) (Policy, error)
}
