// internal/auth/auth_test.go
package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyPlaintext(t *testing.T) {
	v := NewVerifier("admin", "secret")

	ok, err := v.Verify("admin", "secret")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = v.Verify("admin", "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = v.Verify("intruder", "secret")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyHashedPassword(t *testing.T) {
	hash, err := HashPassword("secret")
	require.NoError(t, err)
	require.Contains(t, hash, "$argon2id$")

	v := NewVerifier("admin", hash)

	ok, err := v.Verify("admin", "secret")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = v.Verify("admin", "wrong")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyRateLimited(t *testing.T) {
	v := NewVerifier("admin", "secret")

	for i := 0; i < 5; i++ {
		_, err := v.Verify("admin", "wrong")
		require.NoError(t, err)
	}

	_, err := v.Verify("admin", "secret")
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestHashPasswordSaltsDiffer(t *testing.T) {
	first, err := HashPassword("secret")
	require.NoError(t, err)
	second, err := HashPassword("secret")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}
