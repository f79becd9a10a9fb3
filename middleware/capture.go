package middleware

import (
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/bdc/weather-api/models"
	"github.com/bdc/weather-api/reqctx"
)

// Recorder accepts finished request records for asynchronous persistence.
// Enqueue must not block.
type Recorder interface {
	Enqueue(entry models.RequestLog) bool
}

// CaptureRequests records the outcome of every request that reaches it.
// The record is handed to rec after the handler has produced its response, so
// the client never waits on persistence. A handler panic is recorded as a 500
// and then re-raised for Recoverer to answer.
func CaptureRequests(rec Recorder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := reqctx.GetStartedAt(r.Context())
			if start.IsZero() {
				start = time.Now()
			}

			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				rvr := recover()
				if rvr == http.ErrAbortHandler {
					// The connection is being torn down on purpose; there is no outcome
					panic(rvr)
				}

				status := ww.Status()
				switch {
				case rvr != nil && status == 0:
					status = http.StatusInternalServerError
				case status == 0:
					// Client went away before anything was written; there is no outcome to record
					if r.Context().Err() != nil {
						return
					}
					// net/http sends 200 for handlers that return without writing
					status = http.StatusOK
				}

				rec.Enqueue(newRecord(r, status, start))

				if rvr != nil {
					panic(rvr)
				}
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

func newRecord(r *http.Request, status int, start time.Time) models.RequestLog {
	userAgent := r.UserAgent()
	if userAgent == "" {
		userAgent = models.UnknownUserAgent
	}

	return models.RequestLog{
		Endpoint:   r.URL.Path,
		Method:     r.Method,
		IP:         requestIP(r),
		Status:     status,
		UserAgent:  userAgent,
		DurationMs: time.Since(start).Milliseconds(),
	}
}
