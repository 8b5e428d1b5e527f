package security_test

import (
	"net/http/httptest"
	"testing"

	apperrors "github.com/cornucopia-shop/cornucopia-backend/internal/errors"
	"github.com/cornucopia-shop/cornucopia-backend/internal/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOriginValidator(t *testing.T) {
	validator := security.NewOriginValidator([]string{
		"http://localhost:3000",
		"https://shop.example.com",
	})

	t.Run("Success - Trusted Origin", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/cart/items", nil)
		req.Header.Set("Origin", "https://shop.example.com")

		assert.NoError(t, validator.ValidateRequest(req))
	})

	t.Run("Failure - Untrusted Origin", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/cart/items", nil)
		req.Header.Set("Origin", "https://evil.example")

		err := validator.ValidateRequest(req)
		require.Error(t, err)

		appErr, ok := apperrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrCodeOriginRejected, appErr.Code)
		assert.Equal(t, 403, appErr.StatusCode)
	})

	t.Run("Success - No Origin And No Referer", func(t *testing.T) {
		// Non-browser clients send neither header.
		req := httptest.NewRequest("POST", "/cart/items", nil)

		assert.NoError(t, validator.ValidateRequest(req))
	})

	t.Run("Success - Trusted Referer Fallback", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/cart/items", nil)
		req.Header.Set("Referer", "https://shop.example.com/checkout?step=2")

		assert.NoError(t, validator.ValidateRequest(req))
	})

	t.Run("Failure - Untrusted Referer", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/cart/items", nil)
		req.Header.Set("Referer", "https://evil.example/page")

		err := validator.ValidateRequest(req)
		require.Error(t, err)

		appErr, _ := apperrors.IsAppError(err)
		assert.Equal(t, apperrors.ErrCodeOriginRejected, appErr.Code)
	})

	t.Run("Failure - Unparsable Referer", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/cart/items", nil)
		req.Header.Set("Referer", "::not a url::")

		assert.Error(t, validator.ValidateRequest(req))
	})

	t.Run("Success - Origin Wins Over Bad Referer", func(t *testing.T) {
		// A trusted Origin short-circuits; Referer is only a fallback.
		req := httptest.NewRequest("POST", "/cart/items", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Referer", "https://evil.example/page")

		assert.NoError(t, validator.ValidateRequest(req))
	})
}
