package middleware

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/bdc/weather-api/reqctx"
)

// ClientIP resolves the caller address once and stores it, together with the
// request start time, in the request context
func ClientIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := reqctx.SetClientIP(r.Context(), getIPAddress(r))
		ctx = reqctx.SetStartedAt(ctx, time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// getIPAddress extracts IP address from request, checking X-Forwarded-For first
func getIPAddress(r *http.Request) string {
	// Check X-Forwarded-For header (proxy/load balancer)
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		// Take first IP if multiple
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	// Fall back to RemoteAddr, stripping the port for both IPv4 and IPv6
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// RemoteAddr might not have a port
		return r.RemoteAddr
	}
	return host
}

// requestIP returns the address resolved by ClientIP, resolving it now if the
// middleware was not installed
func requestIP(r *http.Request) string {
	if ip := reqctx.GetClientIP(r.Context()); ip != "" {
		return ip
	}
	return getIPAddress(r)
}
