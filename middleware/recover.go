package middleware

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/bdc/weather-api/apierror"
)

// Recoverer turns handler panics into a JSON 500 and logs them with a stack trace
func Recoverer(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler {
					// Let net/http abort the connection as requested
					panic(rvr)
				}

				logger.Error("panic while handling request",
					zap.Any("panic", rvr),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Stack("stack"),
				)

				if r.Header.Get("Connection") != "Upgrade" {
					apierror.Write(w, apierror.New(apierror.Internal, apierror.MsgInternal))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
