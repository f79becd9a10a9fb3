package controllers

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/bdc/weather-api/apierror"
	"github.com/bdc/weather-api/services"
)

// WeatherController proxies forecast lookups
type WeatherController struct {
	services *services.Services
	logger   *zap.Logger
}

// NewWeatherController creates a new weather controller
func NewWeatherController(services *services.Services, logger *zap.Logger) *WeatherController {
	return &WeatherController{
		services: services,
		logger:   logger,
	}
}

// Show handles GET /api/weather?lat=&lon=
func (c *WeatherController) Show(w http.ResponseWriter, r *http.Request) {
	lat, latOK := parseCoordinate(r.URL.Query().Get("lat"))
	lon, lonOK := parseCoordinate(r.URL.Query().Get("lon"))
	if !latOK || !lonOK {
		renderError(w, r, c.logger, apierror.New(apierror.Validation, "lat & lon are required numbers"))
		return
	}

	report, err := c.services.Weather.Forecast(r.Context(), lat, lon)
	if err != nil {
		renderError(w, r, c.logger, err)
		return
	}

	renderJSON(w, http.StatusOK, report)
}

// parseCoordinate accepts finite decimal numbers only
func parseCoordinate(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
