package controllers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/bdc/weather-api/apierror"
	"github.com/bdc/weather-api/services"
)

// LogsController serves the request log query
type LogsController struct {
	services *services.Services
	logger   *zap.Logger
}

// NewLogsController creates a new logs controller
func NewLogsController(services *services.Services, logger *zap.Logger) *LogsController {
	return &LogsController{
		services: services,
		logger:   logger,
	}
}

// Index handles GET /api/logs
func (c *LogsController) Index(w http.ResponseWriter, r *http.Request) {
	plan := services.ResolveQueryPlan(r.URL.Query())

	page, err := c.services.LogQuery.Query(r.Context(), plan)
	if err != nil {
		renderError(w, r, c.logger, apierror.StoreFailure(err))
		return
	}

	renderJSON(w, http.StatusOK, page)
}
