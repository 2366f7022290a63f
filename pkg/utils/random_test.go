package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hexPattern = regexp.MustCompile(`^[0-9a-f]+$`)

func TestGenerateAuthorizationCode(t *testing.T) {
	code, err := GenerateAuthorizationCode()
	require.NoError(t, err)

	assert.Len(t, code, 32)
	assert.True(t, hexPattern.MatchString(code), "code must be lowercase hex")
}

func TestGenerateAuthorizationCode_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		code, err := GenerateAuthorizationCode()
		require.NoError(t, err)
		assert.False(t, seen[code], "duplicate code generated")
		seen[code] = true
	}
}

func TestGenerateOpaqueID(t *testing.T) {
	id, err := GenerateOpaqueID()
	require.NoError(t, err)

	assert.Len(t, id, 48)
	assert.True(t, hexPattern.MatchString(id))
}
