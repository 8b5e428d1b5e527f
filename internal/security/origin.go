package security

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/cornucopia-shop/cornucopia-backend/internal/errors"
)

// OriginValidator rejects state-changing requests whose Origin (or, as a
// fallback, Referer) is not on the trusted allow-list. Requests carrying
// neither header pass through; non-browser clients send neither.
type OriginValidator struct {
	allowed map[string]struct{}
}

func NewOriginValidator(trustedOrigins []string) *OriginValidator {

	allowed := make(map[string]struct{}, len(trustedOrigins))
	for _, origin := range trustedOrigins {
		allowed[origin] = struct{}{}
	}

	return &OriginValidator{allowed: allowed}
}

// ValidateRequest returns an ORIGIN_REJECTED error on any mismatch.
func (v *OriginValidator) ValidateRequest(r *http.Request) error {

	if origin := r.Header.Get("Origin"); origin != "" {
		if _, ok := v.allowed[origin]; !ok {
			return errors.OriginRejectedError(fmt.Sprintf("Origin '%s' not allowed", origin))
		}

		return nil
	}

	if referer := r.Header.Get("Referer"); referer != "" {

		parsed, err := url.Parse(referer)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return errors.OriginRejectedError("Invalid referer header")
		}

		refererOrigin := parsed.Scheme + "://" + parsed.Host
		if _, ok := v.allowed[refererOrigin]; !ok {
			return errors.OriginRejectedError(fmt.Sprintf("Referer origin '%s' not allowed", refererOrigin))
		}
	}

	return nil
}
