package models

import "time"

// UnknownUserAgent is stored when the client sends no User-Agent header
const UnknownUserAgent = "unknown"

// RequestLog represents one completed request on the protected API surface.
// Entries are written once and never updated.
type RequestLog struct {
	ID         string    `json:"id" db:"id"`
	Endpoint   string    `json:"endpoint" db:"endpoint"`
	Method     string    `json:"method" db:"method"`
	IP         string    `json:"ip" db:"ip"`
	Status     int       `json:"status" db:"status"`
	UserAgent  string    `json:"userAgent" db:"user_agent"`
	DurationMs int64     `json:"durationMs" db:"duration_ms"`
	Timestamp  time.Time `json:"timestamp" db:"timestamp"`
}

// Validate checks the minimal contract of a log entry before it is persisted
func (l *RequestLog) Validate() ValidationErrors {
	var errs ValidationErrors

	if l.Endpoint == "" {
		errs = append(errs, ValidationError{Field: "endpoint", Message: "endpoint is required"})
	}
	if l.IP == "" {
		errs = append(errs, ValidationError{Field: "ip", Message: "ip is required"})
	}
	if l.Status < 100 || l.Status > 999 {
		errs = append(errs, ValidationError{Field: "status", Message: "status must be a 3-digit HTTP code"})
	}

	return errs
}
