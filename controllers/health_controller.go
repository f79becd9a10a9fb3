package controllers

import (
	"net/http"

	"github.com/bdc/weather-api/services"
)

// HealthController reports liveness
type HealthController struct {
	services *services.Services
}

// NewHealthController creates a new health controller
func NewHealthController(services *services.Services) *HealthController {
	return &HealthController{services: services}
}

// Show handles GET /api/health
func (c *HealthController) Show(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, c.services.Health.Status())
}
