package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateVerificationCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := generateVerificationCode()
		require.NoError(t, err)
		require.Len(t, code, 6)
		for _, r := range code {
			assert.True(t, r >= '0' && r <= '9', "code must be numeric, got %q", code)
		}
		seen[code] = true
	}
	// 100 draws from a million values colliding every time would mean
	// the generator is broken.
	assert.Greater(t, len(seen), 1)
}

func TestGenerateJoinCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := generateJoinCode()
		require.NoError(t, err)
		require.Len(t, code, joinCodeLength)
		for _, r := range code {
			assert.True(t, strings.ContainsRune(joinCodeAlphabet, r), "unexpected rune %q in %q", r, code)
		}
		seen[code] = true
	}
	assert.Equal(t, 100, len(seen), "join codes should effectively never collide")
}
