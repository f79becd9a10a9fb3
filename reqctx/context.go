package reqctx

import (
	"context"
	"time"
)

// Context key type
type contextKey string

const clientIPKey contextKey = "client_ip"
const startedAtKey contextKey = "started_at"

// SetClientIP adds the resolved client address to request context
func SetClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

// GetClientIP retrieves the resolved client address from request context
func GetClientIP(ctx context.Context) string {
	ip, ok := ctx.Value(clientIPKey).(string)
	if !ok {
		return ""
	}
	return ip
}

// SetStartedAt records when the server began handling the request
func SetStartedAt(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, startedAtKey, t)
}

// GetStartedAt retrieves the request start time, zero if never set
func GetStartedAt(ctx context.Context) time.Time {
	if t, ok := ctx.Value(startedAtKey).(time.Time); ok {
		return t
	}
	return time.Time{}
}
