package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("Sup3rSecret!")
	require.NoError(t, err)

	assert.NotEqual(t, "Sup3rSecret!", hash)
	assert.True(t, CheckPassword(hash, "Sup3rSecret!"))
}

func TestCheckPasswordRejectsWrongPassword(t *testing.T) {
	hash, err := HashPassword("Sup3rSecret!")
	require.NoError(t, err)

	assert.False(t, CheckPassword(hash, "sup3rsecret!"))
	assert.False(t, CheckPassword(hash, ""))
}

func TestHashPasswordProducesDistinctHashes(t *testing.T) {
	first, err := HashPassword("Sup3rSecret!")
	require.NoError(t, err)
	second, err := HashPassword("Sup3rSecret!")
	require.NoError(t, err)

	// bcrypt salts every hash
	assert.NotEqual(t, first, second)
}
