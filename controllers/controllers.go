package controllers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/bdc/weather-api/apierror"
	"github.com/bdc/weather-api/services"
)

// renderJSON writes data as a JSON response with the given status code
func renderJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// renderError logs server-side failures and writes the client-facing error body
func renderError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	kind := apierror.KindOf(err)
	if kind.Status() >= http.StatusInternalServerError || kind == apierror.Upstream {
		logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Stringer("kind", kind),
			zap.Error(err),
		)
	}
	apierror.Write(w, err)
}

// NotFound answers unmatched API routes
func NotFound(w http.ResponseWriter, r *http.Request) {
	apierror.Write(w, apierror.RouteNotFound())
}

// MethodNotAllowed answers known API paths hit with the wrong verb
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	apierror.Write(w, apierror.RouteNotFound())
}

// Controllers holds all controller instances
type Controllers struct {
	Logs    *LogsController
	Weather *WeatherController
	Health  *HealthController
}

// NewControllers creates and initializes all controller instances
func NewControllers(services *services.Services, logger *zap.Logger) *Controllers {
	return &Controllers{
		Logs:    NewLogsController(services, logger),
		Weather: NewWeatherController(services, logger),
		Health:  NewHealthController(services),
	}
}
