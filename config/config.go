// Package config implements the Configuration Model (C7): the in-memory
// shape the rest of the gateway consumes, a viper-backed loader, and the
// bouncer_version gate. Parsing the YAML surface itself is an ambient
// concern grounded on the teacher's use of spf13/viper; the shape below is
// the one spec.md's data model names.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/spf13/viper"
)

// ServerConfig is the gateway's own bind address and upstream destination.
type ServerConfig struct {
	BindAddress        string `json:"bind_address" validate:"required"`
	Port               uint16 `json:"port" validate:"required"`
	DestinationAddress string `json:"destination_address"`
}

// PolicyConfig is one entry in the ordered policy chain.
type PolicyConfig struct {
	ID         string          `json:"id"`
	Provider   string          `json:"provider" validate:"required"`
	Parameters json.RawMessage `json:"parameters"`
}

// SQLConfig backs a postgres or mysql handle.
type SQLConfig struct {
	ConnectionURL      string `json:"connection_url" validate:"required"`
	ConnectionPoolSize int    `json:"connection_pool_size"`
}

// RedisConfig backs the redis handle.
type RedisConfig struct {
	ConnectionURL string `json:"connection_url" validate:"required"`
	Password      string `json:"password"`
	Database      int    `json:"database"`
}

// MongoConfig backs the mongo handle. Database names the database the
// shared *mongo.Database handle is bound to; it defaults to "bouncer" when
// empty, since spec.md's TokenLookup document adapter only ever names a
// collection, not a database.
type MongoConfig struct {
	ConnectionURL string `json:"connection_url" validate:"required"`
	Database      string `json:"database"`
}

// DatabasesConfig names the optional shared handles declared by kind. The
// gateway opens at most one pool per populated field.
type DatabasesConfig struct {
	Redis    *RedisConfig `json:"redis"`
	Postgres *SQLConfig   `json:"postgres"`
	MySQL    *SQLConfig   `json:"mysql"`
	Mongo    *MongoConfig `json:"mongo"`
}

// Configuration is the full in-memory configuration shape (spec.md §3).
type Configuration struct {
	Server         ServerConfig    `json:"server" validate:"required"`
	Policies       []PolicyConfig  `json:"policies" validate:"dive"`
	Databases      DatabasesConfig `json:"databases"`
	BouncerVersion string          `json:"bouncer_version" validate:"required"`
}

var validate = validator.New()

// Load reads the YAML file at path, expands ENV.<NAME> string leaves,
// defaults missing PolicyConfig.ID values to a generated UUID, and
// validates the result's shape.
func Load(path string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("loading config %s: %w", path, err)
	}

	expanded := expandEnvDeep(v.AllSettings())

	buf, err := json.Marshal(expanded)
	if err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}

	var cfg Configuration
	if err := json.Unmarshal(buf, &cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	for i := range cfg.Policies {
		if cfg.Policies[i].ID == "" {
			cfg.Policies[i].ID = uuid.New().String()
		}
	}

	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// expandEnvDeep walks an arbitrary decoded-YAML tree (maps, slices,
// strings, and scalars, as produced by viper.AllSettings) and replaces
// every string of the form "ENV.<NAME>" with the value of the environment
// variable NAME, left as-is when NAME is unset.
func expandEnvDeep(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[k] = expandEnvDeep(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = expandEnvDeep(val)
		}
		return out
	case string:
		if name, ok := strings.CutPrefix(t, "ENV."); ok {
			if value, present := os.LookupEnv(name); present {
				return value
			}
		}
		return t
	default:
		return v
	}
}
