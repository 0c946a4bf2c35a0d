// Package httpresponse builds the gateway's JSON error envelope and writes
// it either directly to an http.ResponseWriter or as a detached
// *http.Response for a policy to hand the chain as a Terminate payload.
package httpresponse

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func build(status int, errCode, message string, headers map[string]string) *http.Response {
	body, _ := json.Marshal(envelope{Success: false, Error: errCode, Message: message})

	resp := &http.Response{
		StatusCode:    status,
		Header:        http.Header{},
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
	}
	resp.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		resp.Header.Set(k, v)
	}
	return resp
}

// Unauthorized builds a 401 with a WWW-Authenticate challenge for realm
// (defaulting to "api" when empty).
func Unauthorized(realm, message string) *http.Response {
	if realm == "" {
		realm = "api"
	}
	headers := map[string]string{"WWW-Authenticate": fmt.Sprintf("Bearer realm=%q", realm)}
	return build(http.StatusUnauthorized, "unauthorized", message, headers)
}

// Forbidden builds a 403.
func Forbidden(message string) *http.Response {
	return build(http.StatusForbidden, "forbidden", message, nil)
}

// BadGateway builds a 502, used when the upstream connect/send/receive fails.
func BadGateway(message string) *http.Response {
	return build(http.StatusBadGateway, "bad_gateway", message, nil)
}

// NotImplemented builds a 501 for a method the proxy handler won't forward.
func NotImplemented(method string) *http.Response {
	return build(http.StatusNotImplemented, "not_implemented", fmt.Sprintf("method %s is not supported", method), nil)
}

// InternalError builds a 500.
func InternalError(err error) *http.Response {
	message := "internal error"
	if err != nil {
		message = err.Error()
	}
	return build(http.StatusInternalServerError, "internal_error", message, nil)
}

// PlainText builds a response carrying a raw text/plain body, used for the
// gateway's default "no destination configured" reply.
func PlainText(status int, body string) *http.Response {
	return &http.Response{
		StatusCode:    status,
		Header:        http.Header{"Content-Type": []string{"text/plain; charset=utf-8"}},
		Body:          io.NopCloser(bytes.NewReader([]byte(body))),
		ContentLength: int64(len(body)),
	}
}

// Write copies resp's status, headers, and body onto w.
func Write(w http.ResponseWriter, resp *http.Response) error {
	header := w.Header()
	for k, vv := range resp.Header {
		for _, v := range vv {
			header.Add(k, v)
		}
	}
	w.WriteHeader(resp.StatusCode)
	if resp.Body == nil {
		return nil
	}
	defer resp.Body.Close()
	_, err := io.Copy(w, resp.Body)
	return err
}

// WriteUnauthorized is a convenience wrapper writing Unauthorized directly.
func WriteUnauthorized(w http.ResponseWriter, realm, message string) {
	_ = Write(w, Unauthorized(realm, message))
}

// WriteForbidden is a convenience wrapper writing Forbidden directly.
func WriteForbidden(w http.ResponseWriter, message string) {
	_ = Write(w, Forbidden(message))
}

// WriteInternalError is a convenience wrapper writing InternalError directly.
func WriteInternalError(w http.ResponseWriter, err error) {
	_ = Write(w, InternalError(err))
}

// WriteBadGateway is a convenience wrapper writing BadGateway directly.
func WriteBadGateway(w http.ResponseWriter, message string) {
	_ = Write(w, BadGateway(message))
}

// WriteNotImplemented is a convenience wrapper writing NotImplemented directly.
func WriteNotImplemented(w http.ResponseWriter, method string) {
	_ = Write(w, NotImplemented(method))
}
