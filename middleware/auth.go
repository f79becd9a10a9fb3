package middleware

import (
	"net/http"

	"github.com/bdc/weather-api/apierror"
	"github.com/bdc/weather-api/authenticator"
)

// DefaultAPIKeyHeader is the header the access gate reads the credential from
const DefaultAPIKeyHeader = "x-api-key"

// RequireAPIKey ensures the caller presents the shared secret in header.
// Anything else ends the request with 403; downstream handlers never run.
func RequireAPIKey(verifier authenticator.Verifier, header string) func(http.Handler) http.Handler {
	if header == "" {
		header = DefaultAPIKeyHeader
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !verifier.Verify(r.Header.Get(header)) {
				apierror.Write(w, apierror.Forbidden())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
