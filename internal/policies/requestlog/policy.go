// Package requestlog implements the built-in request logging policy
// (spec.md §4.6.3): an optional, provider-defined policy that always
// Continues after emitting one structured log line per request.
package requestlog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aras-services/bouncer/pkg/policy"
)

// PolicyID is @bouncer/observability/request-logger/v1.
const PolicyID = "@bouncer/observability/request-logger/v1"

// Config is the request logger's parameter shape.
type Config struct {
	LogLevel       string `json:"log_level"`
	IncludeHeaders bool   `json:"include_headers"`
}

// Factory builds request logger policy instances.
type Factory struct{}

func (Factory) PolicyID() string { return PolicyID }

func (Factory) ValidateConfig(raw json.RawMessage) error {
	_, _, err := decode(raw)
	return err
}

func (Factory) New(_ context.Context, raw json.RawMessage, deps policy.Dependencies) (policy.Policy, error) {
	cfg, level, err := decode(raw)
	if err != nil {
		return nil, err
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Policy{config: cfg, level: level, logger: logger}, nil
}

func decode(raw json.RawMessage) (Config, zapcore.Level, error) {
	cfg := Config{LogLevel: "info"}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return Config{}, 0, fmt.Errorf("request logger policy: decoding config: %w", err)
		}
	}

	var level zapcore.Level
	switch cfg.LogLevel {
	case "debug":
		level = zapcore.DebugLevel
	case "info", "":
		level = zapcore.InfoLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		return Config{}, 0, fmt.Errorf("request logger policy: invalid log_level %q", cfg.LogLevel)
	}
	return cfg, level, nil
}

// Policy logs a structured line per request and always Continues.
type Policy struct {
	config Config
	level  zapcore.Level
	logger *zap.Logger
}

func (p *Policy) Provider() string { return "bouncer" }
func (p *Policy) Category() string { return "observability" }
func (p *Policy) Name() string     { return "request-logger" }
func (p *Policy) Version() string  { return "v1" }

func (p *Policy) ProcessesRequests() bool                   { return true }
func (p *Policy) RegisterRoutes() []policy.RouteRegistration { return nil }

func (p *Policy) Process(r *http.Request) policy.Result {
	client := r.Header.Get("x-forwarded-for")
	if client == "" {
		client = r.RemoteAddr
	}

	fields := []zap.Field{
		zap.String("correlation_id", uuid.New().String()),
		zap.String("method", r.Method),
		zap.String("uri", r.URL.RequestURI()),
		zap.String("client", client),
	}
	if p.config.IncludeHeaders && p.level == zapcore.DebugLevel {
		fields = append(fields, zap.Any("headers", r.Header))
	}

	p.logger.Check(p.level, "request").Write(fields...)
	return policy.Continue(r)
}
