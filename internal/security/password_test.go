package security_test

import (
	"testing"

	"github.com/cornucopia-shop/cornucopia-backend/internal/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	t.Run("Success - Hash Verifies", func(t *testing.T) {
		// Arrange
		password := "correct horse battery staple"

		// Act
		hash, err := security.HashPassword(password)

		// Assert
		require.NoError(t, err)
		assert.NotEqual(t, password, hash)
		assert.True(t, security.VerifyPassword(password, hash))
	})

	t.Run("Success - Same Password Yields Different Hashes", func(t *testing.T) {
		// Arrange
		password := "repeatable-input"

		// Act
		first, err1 := security.HashPassword(password)
		second, err2 := security.HashPassword(password)

		// Assert
		require.NoError(t, err1)
		require.NoError(t, err2)
		assert.NotEqual(t, first, second, "each hash must carry a fresh salt")
		assert.True(t, security.VerifyPassword(password, first))
		assert.True(t, security.VerifyPassword(password, second))
	})
}

func TestVerifyPassword(t *testing.T) {
	t.Run("Failure - Wrong Password", func(t *testing.T) {
		// Arrange
		hash, err := security.HashPassword("right-password")
		require.NoError(t, err)

		// Act & Assert
		assert.False(t, security.VerifyPassword("wrong-password", hash))
	})

	t.Run("Failure - Malformed Hash Does Not Panic", func(t *testing.T) {
		// Act & Assert
		assert.NotPanics(t, func() {
			assert.False(t, security.VerifyPassword("any", "not-a-bcrypt-hash"))
		})
	})

	t.Run("Failure - Empty Hash", func(t *testing.T) {
		assert.False(t, security.VerifyPassword("any", ""))
	})
}
