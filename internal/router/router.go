// Package router implements the Policy Router (C3): it collects the admin
// routes policies contribute and mounts each one twice (with and without a
// trailing slash) under the policy's reserved base path.
package router

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/aras-services/bouncer/pkg/policy"
)

// Router accumulates admin routes and exposes them as a single http.Handler.
type Router struct {
	mux *mux.Router
}

// New returns an empty Router.
func New() *Router {
	return &Router{mux: mux.NewRouter()}
}

// Register mounts every route in regs under base, normalizing
// RelativePath to begin with "/" and emitting both the trailing-slash and
// non-trailing-slash variant of the full path.
func (r *Router) Register(base string, regs []policy.RouteRegistration) {
	for _, reg := range regs {
		rel := reg.RelativePath
		if !strings.HasPrefix(rel, "/") {
			rel = "/" + rel
		}

		full := strings.TrimSuffix(base+rel, "/")
		if full == "" {
			full = "/"
		}

		r.mux.Handle(full, reg.Handler)
		if full != "/" {
			r.mux.Handle(full+"/", reg.Handler)
		}
	}
}

// Handler returns the accumulated routes as a single http.Handler, ready to
// be mounted under /_admin by the top-level server router.
func (r *Router) Handler() http.Handler {
	return r.mux
}
