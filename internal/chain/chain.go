// Package chain implements the Policy Chain Middleware (C4): the per-
// request fold over the ordered policy list, the x-bouncer- header trust
// boundary, and the short-circuit on Terminate.
package chain

import (
	"net/http"
	"strings"

	"github.com/aras-services/bouncer/internal/httpresponse"
	"github.com/aras-services/bouncer/pkg/policy"
)

const trustedHeaderPrefix = "x-bouncer-"

// Chain holds the immutable, ordered list of policies a request is folded
// through. A Chain is safe for concurrent use; each request is folded
// through the policies sequentially, and any number of requests may be in
// flight concurrently.
type Chain struct {
	policies []policy.Policy
}

// New returns a Chain over policies, in the given order.
func New(policies []policy.Policy) *Chain {
	return &Chain{policies: policies}
}

// Wrap returns an http.Handler that runs the chain ahead of next. next is
// only invoked if every policy in the chain returns Continue.
func (c *Chain) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scrubTrustedHeaders(r.Header)

		current := r
		for _, p := range c.policies {
			result := p.Process(current)
			if result.Terminated() {
				if err := httpresponse.Write(w, result.Response()); err != nil {
					httpresponse.WriteInternalError(w, err)
				}
				return
			}
			current = result.Request()
		}

		next.ServeHTTP(w, current)
	})
}

// scrubTrustedHeaders removes every header whose lowercased name starts
// with x-bouncer- (I3), preventing a client from impersonating an internal
// trust claim such as x-bouncer-role.
func scrubTrustedHeaders(h http.Header) {
	for name := range h {
		if strings.HasPrefix(strings.ToLower(name), trustedHeaderPrefix) {
			h.Del(name)
		}
	}
}
