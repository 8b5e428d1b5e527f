package security

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	CSRFCookieName = "csrftoken"
	CSRFHeaderName = "X-CSRF-Token"
)

// CSRFGuard generates and checks anti-forgery tokens of the form
// "timestamp:nonce:signature" where signature = HMAC-SHA256(secret,
// "timestamp:nonce"). Tokens are stateless and expire after ttl.
type CSRFGuard struct {
	secret []byte
	ttl    time.Duration
}

func NewCSRFGuard(secret []byte, ttl time.Duration) *CSRFGuard {
	return &CSRFGuard{secret: secret, ttl: ttl}
}

func (g *CSRFGuard) TTL() time.Duration {
	return g.ttl
}

func (g *CSRFGuard) Generate() string {

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)

	nonce := make([]byte, 16)
	_, _ = rand.Read(nonce)

	message := timestamp + ":" + base64.RawURLEncoding.EncodeToString(nonce)

	return fmt.Sprintf("%s:%s", message, g.sign(message))
}

// Validate accepts only well-formed, correctly signed, unexpired tokens.
// Any parse failure is a plain rejection.
func (g *CSRFGuard) Validate(token string) bool {

	parts := strings.Split(token, ":")
	if len(parts) != 3 {
		return false
	}

	timestamp, nonce, signature := parts[0], parts[1], parts[2]
	message := timestamp + ":" + nonce

	expected := g.sign(message)
	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return false
	}

	tokenTime, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return false
	}

	return time.Now().Unix()-tokenTime <= int64(g.ttl.Seconds())
}

func (g *CSRFGuard) sign(message string) string {

	mac := hmac.New(sha256.New, g.secret)
	mac.Write([]byte(message))

	return hex.EncodeToString(mac.Sum(nil))
}
