package utils

import (
	"regexp"
	"strings"

	apperrors "github.com/cornucopia-shop/cornucopia-backend/internal/errors"
	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicy = bluemonday.StrictPolicy()

	usernamePattern  = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	productIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	pricePattern     = regexp.MustCompile(`^[0-9.,]+$`)
)

// SanitizeText strips markup and surrounding whitespace from free-form input.
func SanitizeText(text string) string {
	return strings.TrimSpace(strictPolicy.Sanitize(text))
}

// SanitizeUsername enforces the username shape: letters, digits, underscore.
func SanitizeUsername(username string) (string, error) {

	username = strings.TrimSpace(username)

	if username == "" {
		return "", apperrors.AddValidationError("username", "cannot be empty")
	}

	if !usernamePattern.MatchString(username) {
		return "", apperrors.AddValidationError("username", "can only contain letters, numbers, and underscores")
	}

	if len(username) < 3 || len(username) > 50 {
		return "", apperrors.AddValidationError("username", "must be between 3 and 50 characters")
	}

	return username, nil
}

// SanitizeProductID allows opaque catalog identifiers: letters, digits,
// hyphen, underscore, at most 100 characters.
func SanitizeProductID(productID string) (string, error) {

	productID = strings.TrimSpace(productID)

	if productID == "" {
		return "", apperrors.AddValidationError("product_id", "cannot be empty")
	}

	if !productIDPattern.MatchString(productID) {
		return "", apperrors.AddValidationError("product_id", "can only contain letters, numbers, hyphens, and underscores")
	}

	if len(productID) > 100 {
		return "", apperrors.AddValidationError("product_id", "cannot exceed 100 characters")
	}

	return productID, nil
}

// SanitizePrice checks a decimal-as-string price snapshot. Empty input stays
// empty; snapshots are optional.
func SanitizePrice(price string) (string, error) {

	price = strings.TrimSpace(price)

	if price == "" {
		return "", nil
	}

	if !pricePattern.MatchString(price) {
		return "", apperrors.AddValidationError("price_snapshot", "invalid price format")
	}

	if len(price) > 20 {
		return "", apperrors.AddValidationError("price_snapshot", "cannot exceed 20 characters")
	}

	return price, nil
}
