package registry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aras-services/bouncer/config"
	"github.com/aras-services/bouncer/pkg/policy"
)

type fakePolicy struct {
	id        string
	processes bool
	visited   *[]string
}

func (p *fakePolicy) Provider() string                         { return "test" }
func (p *fakePolicy) Category() string                         { return "category" }
func (p *fakePolicy) Name() string                             { return p.id }
func (p *fakePolicy) Version() string                          { return "v1" }
func (p *fakePolicy) ProcessesRequests() bool                   { return p.processes }
func (p *fakePolicy) RegisterRoutes() []policy.RouteRegistration { return nil }
func (p *fakePolicy) Process(r *http.Request) policy.Result {
	if p.visited != nil {
		*p.visited = append(*p.visited, p.id)
	}
	return policy.Continue(r)
}

type fakeFactory struct {
	id          string
	processes   bool
	validateErr error
	newErr      error
	visited     *[]string
}

func (f fakeFactory) PolicyID() string { return f.id }
func (f fakeFactory) ValidateConfig(json.RawMessage) error { return f.validateErr }
func (f fakeFactory) New(context.Context, json.RawMessage, policy.Dependencies) (policy.Policy, error) {
	if f.newErr != nil {
		return nil, f.newErr
	}
	return &fakePolicy{id: f.id, processes: f.processes, visited: f.visited}, nil
}

func TestBuildChainOrdersAndFiltersNonProcessing(t *testing.T) {
	reg := New()
	var visited []string
	trackingFactory := func(id string, processes bool) fakeFactory {
		return fakeFactory{id: id, processes: processes, visited: &visited}
	}
	require.NoError(t, reg.Register(trackingFactory("@test/category/a/v1", true)))
	require.NoError(t, reg.Register(trackingFactory("@test/category/b/v1", false)))
	require.NoError(t, reg.Register(trackingFactory("@test/category/c/v1", true)))

	configs := []config.PolicyConfig{
		{ID: "1", Provider: "@test/category/a/v1"},
		{ID: "2", Provider: "@test/category/b/v1"},
		{ID: "3", Provider: "@test/category/c/v1"},
	}

	c, _, err := reg.BuildChain(context.Background(), configs, policy.Dependencies{})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c.Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })).ServeHTTP(rec, req)

	assert.Equal(t, []string{"@test/category/a/v1", "@test/category/c/v1"}, visited)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBuildChainUnknownProviderFails(t *testing.T) {
	reg := New()
	_, _, err := reg.BuildChain(context.Background(), []config.PolicyConfig{{Provider: "@missing/x/y/v1"}}, policy.Dependencies{})
	assert.Error(t, err)
}

func TestBuildChainConstructionErrorNamesPolicy(t *testing.T) {
	reg := New()
	require.NoError(t, reg.Register(fakeFactory{id: "@test/category/bad/v1", newErr: assert.AnError}))

	_, _, err := reg.BuildChain(context.Background(), []config.PolicyConfig{{ID: "x", Provider: "@test/category/bad/v1"}}, policy.Dependencies{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")
}

func TestRegisterOverwritesOnDuplicateID(t *testing.T) {
	reg := New()
	require.NoError(t, reg.Register(fakeFactory{id: "@test/category/a/v1", processes: true}))
	require.NoError(t, reg.Register(fakeFactory{id: "@test/category/a/v1", processes: false}))

	f, ok := reg.lookup("@test/category/a/v1")
	require.True(t, ok)
	instance, err := f.New(context.Background(), nil, policy.Dependencies{})
	require.NoError(t, err)
	assert.False(t, instance.ProcessesRequests())
}
