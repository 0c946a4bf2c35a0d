// Package proxy implements the Proxy Handler (C5): forwarding a chain-
// permitted request to the configured upstream with method, header, and
// body fidelity, and relaying the upstream response back to the client.
package proxy

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/aras-services/bouncer/internal/httpresponse"
)

const trustHeaderPrefix = "bouncer"

var bodyMethods = map[string]bool{
	http.MethodPost:  true,
	http.MethodPut:   true,
	http.MethodPatch: true,
}

var bodylessMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodDelete:  true,
	http.MethodHead:    true,
	http.MethodOptions: true,
}

// Handler forwards requests to a configured upstream, or serves a static
// placeholder body when no upstream is configured.
type Handler struct {
	destination string
	token       string
	client      *http.Client
}

// New returns a Handler. destination is the upstream origin
// (scheme+host+optional port); an empty destination means the gateway
// never proxies and instead answers every request with a static body.
func New(destination, token string, client *http.Client) *Handler {
	if client == nil {
		client = http.DefaultClient
	}
	return &Handler{destination: strings.TrimSuffix(destination, "/"), token: token, client: client}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.destination == "" {
		resp := httpresponse.PlainText(http.StatusOK, "Hello from Bouncer!")
		_ = httpresponse.Write(w, resp)
		return
	}

	target := joinURL(h.destination, r.URL.Path, r.URL.RawQuery)

	var body io.Reader
	if bodyMethods[r.Method] {
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			httpresponse.WriteInternalError(w, err)
			return
		}
		body = bytes.NewReader(raw)
	} else if !bodylessMethods[r.Method] {
		httpresponse.WriteNotImplemented(w, r.Method)
		return
	}

	outReq, err := http.NewRequestWithContext(r.Context(), r.Method, target, body)
	if err != nil {
		httpresponse.WriteInternalError(w, err)
		return
	}
	copyHeaders(outReq.Header, r.Header)
	outReq.Header.Set("bouncer-token", h.token)

	upstreamResp, err := h.client.Do(outReq)
	if err != nil {
		httpresponse.WriteBadGateway(w, err.Error())
		return
	}
	defer upstreamResp.Body.Close()

	relay(w, upstreamResp)
}

// joinURL strips the trailing "/" from destination (already done by New)
// and the leading "/" from path, joining them with a single "/"; an empty
// path leaves destination untouched.
func joinURL(destination, path, rawQuery string) string {
	trimmed := strings.TrimPrefix(path, "/")
	target := destination
	if trimmed != "" {
		target += "/" + trimmed
	}
	if rawQuery != "" {
		target += "?" + rawQuery
	}
	return target
}

// copyHeaders copies every header from src to dst except those whose
// lowercased name starts with "bouncer" (P4): the gateway alone controls
// that namespace on the outbound leg.
func copyHeaders(dst, src http.Header) {
	for name, values := range src {
		if strings.HasPrefix(strings.ToLower(name), trustHeaderPrefix) {
			continue
		}
		for _, v := range values {
			dst.Add(name, v)
		}
	}
}

func relay(w http.ResponseWriter, upstream *http.Response) {
	status := upstream.StatusCode
	if status < 100 || status > 599 {
		status = http.StatusInternalServerError
	}

	body, err := io.ReadAll(upstream.Body)
	if err != nil {
		httpresponse.WriteInternalError(w, err)
		return
	}

	header := w.Header()
	for name, values := range upstream.Header {
		for _, v := range values {
			header.Add(name, v)
		}
	}
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
