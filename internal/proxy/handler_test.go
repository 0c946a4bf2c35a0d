package proxy

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServeHTTPServesPlaceholderWhenNoDestination(t *testing.T) {
	h := New("", "token", nil)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/anything", nil)
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hello from Bouncer!", rec.Body.String())
}

func TestServeHTTPForwardsMethodHeadersAndBody(t *testing.T) {
	var gotMethod, gotBody, gotToken, gotPath string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotToken = r.Header.Get("bouncer-token")
		raw, _ := io.ReadAll(r.Body)
		gotBody = string(raw)
		w.Header().Set("X-Upstream", "yes")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte("created"))
	}))
	defer upstream.Close()

	h := New(upstream.URL, "s3cr3t", upstream.Client())

	req := httptest.NewRequest(http.MethodPost, "/widgets", strings.NewReader(`{"a":1}`))
	req.Header.Set("bouncer-role", "admin")
	req.Header.Set("X-Custom", "keep-me")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/widgets", gotPath)
	assert.Equal(t, "s3cr3t", gotToken)
	assert.Equal(t, `{"a":1}`, gotBody)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "created", rec.Body.String())
	assert.Equal(t, "yes", rec.Header().Get("X-Upstream"))
}

func TestServeHTTPStripsBouncerPrefixedHeadersOutbound(t *testing.T) {
	var sawRole string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawRole = r.Header.Get("bouncer-role")
		w.WriteHeader(http.StatusOK)
	}))
	defer upstream.Close()

	h := New(upstream.URL, "tok", upstream.Client())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("bouncer-role", "admin")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Empty(t, sawRole)
}

func TestServeHTTPReturnsNotImplementedForUnsupportedMethod(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("upstream should never be hit for an unsupported method")
	}))
	defer upstream.Close()

	h := New(upstream.URL, "tok", upstream.Client())
	req := httptest.NewRequest(http.MethodTrace, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestServeHTTPReturnsBadGatewayWhenUpstreamDown(t *testing.T) {
	h := New("http://127.0.0.1:1", "tok", &http.Client{})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestJoinURLEmptyPathLeavesDestinationAsIs(t *testing.T) {
	require.Equal(t, "http://upstream", joinURL("http://upstream", "/", ""))
	require.Equal(t, "http://upstream?a=1", joinURL("http://upstream", "/", "a=1"))
	require.Equal(t, "http://upstream/widgets", joinURL("http://upstream", "/widgets", ""))
}
