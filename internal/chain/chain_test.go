package chain

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aras-services/bouncer/internal/httpresponse"
	"github.com/aras-services/bouncer/pkg/policy"
)

type stubPolicy struct {
	name     string
	process  func(r *http.Request) policy.Result
	visited  *[]string
}

func (p *stubPolicy) Provider() string                         { return "test" }
func (p *stubPolicy) Category() string                         { return "test" }
func (p *stubPolicy) Name() string                             { return p.name }
func (p *stubPolicy) Version() string                          { return "v1" }
func (p *stubPolicy) ProcessesRequests() bool                   { return true }
func (p *stubPolicy) RegisterRoutes() []policy.RouteRegistration { return nil }
func (p *stubPolicy) Process(r *http.Request) policy.Result {
	if p.visited != nil {
		*p.visited = append(*p.visited, p.name)
	}
	return p.process(r)
}

func TestWrapScrubsClientSuppliedTrustHeaders(t *testing.T) {
	var seenRole string
	c := New([]policy.Policy{
		&stubPolicy{name: "capture", process: func(r *http.Request) policy.Result {
			seenRole = r.Header.Get("x-bouncer-role")
			return policy.Continue(r)
		}},
	})

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("x-bouncer-role", "admin")
	rec := httptest.NewRecorder()
	c.Wrap(next).ServeHTTP(rec, req)

	assert.Empty(t, seenRole)
}

func TestWrapRunsPoliciesInOrder(t *testing.T) {
	var visited []string
	c := New([]policy.Policy{
		&stubPolicy{name: "first", visited: &visited, process: func(r *http.Request) policy.Result { return policy.Continue(r) }},
		&stubPolicy{name: "second", visited: &visited, process: func(r *http.Request) policy.Result { return policy.Continue(r) }},
	})

	nextCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c.Wrap(next).ServeHTTP(rec, req)

	require.Equal(t, []string{"first", "second"}, visited)
	assert.True(t, nextCalled)
}

func TestWrapShortCircuitsOnTerminate(t *testing.T) {
	var visited []string
	c := New([]policy.Policy{
		&stubPolicy{name: "blocker", visited: &visited, process: func(r *http.Request) policy.Result {
			return policy.Terminate(httpresponse.Forbidden("nope"))
		}},
		&stubPolicy{name: "never-reached", visited: &visited, process: func(r *http.Request) policy.Result {
			return policy.Continue(r)
		}},
	})

	nextCalled := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { nextCalled = true })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c.Wrap(next).ServeHTTP(rec, req)

	assert.Equal(t, []string{"blocker"}, visited)
	assert.False(t, nextCalled)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
