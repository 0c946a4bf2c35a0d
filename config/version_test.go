package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateVersionExactMatch(t *testing.T) {
	assert.NoError(t, ValidateVersion("1.2.3", "1.2.3"))
}

func TestValidateVersionWildcardMinorAndPatch(t *testing.T) {
	assert.NoError(t, ValidateVersion("1.*.*", "1.9.4"))
}

func TestValidateVersionMismatchedMajorRejected(t *testing.T) {
	assert.Error(t, ValidateVersion("2.0.0", "1.2.3"))
}

func TestValidateVersionWildcardMajorRejected(t *testing.T) {
	assert.Error(t, ValidateVersion("*.0.0", "1.0.0"))
}

func TestValidateVersionMalformedRejected(t *testing.T) {
	assert.Error(t, ValidateVersion("1.2", "1.2.3"))
	assert.Error(t, ValidateVersion("1.2.x", "1.2.3"))
}
