package security

import (
	"golang.org/x/crypto/bcrypt"
)

// HashPassword produces a salted adaptive-cost hash. Two calls with the same
// input never return the same string.
func HashPassword(password string) (string, error) {

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(hashed), nil
}

// VerifyPassword reports whether password matches hash. A malformed hash is
// simply a non-match, never an error surfaced to callers.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
