package policy

import (
	"fmt"
	"strings"
)

// Identifier is a parsed PolicyIdentifier: "@<provider>/<category>/<name>/v<version>".
type Identifier struct {
	Provider string
	Category string
	Name     string
	Version  string // includes the leading "v", e.g. "v1"
}

func (id Identifier) String() string {
	return fmt.Sprintf("@%s/%s/%s/%s", id.Provider, id.Category, id.Name, id.Version)
}

// AdminBasePath returns the reserved admin path under which this policy's
// contributed routes are mounted.
func (id Identifier) AdminBasePath() string {
	return fmt.Sprintf("/_admin/%s/%s/%s/%s", id.Provider, id.Category, id.Name, id.Version)
}

// ParseIdentifier parses a PolicyIdentifier string. The leading "@" is
// required, at least four "/"-separated segments must follow it, and the
// last segment must begin with "v" (unversioned identifiers are rejected).
func ParseIdentifier(raw string) (Identifier, error) {
	if !strings.HasPrefix(raw, "@") {
		return Identifier{}, fmt.Errorf("policy identifier %q must start with '@'", raw)
	}
	body := strings.TrimPrefix(raw, "@")
	parts := strings.Split(body, "/")
	if len(parts) < 4 {
		return Identifier{}, fmt.Errorf("policy identifier %q must have at least four '/'-separated segments", raw)
	}

	version := parts[len(parts)-1]
	if !strings.HasPrefix(version, "v") || len(version) < 2 {
		return Identifier{}, fmt.Errorf("policy identifier %q must end with a version segment starting with 'v'", raw)
	}

	for _, p := range parts {
		if p == "" {
			return Identifier{}, fmt.Errorf("policy identifier %q has an empty segment", raw)
		}
	}

	return Identifier{
		Provider: parts[0],
		Category: parts[1],
		Name:     strings.Join(parts[2:len(parts)-1], "/"),
		Version:  version,
	}, nil
}
