package services

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/bdc/weather-api/repositories"
)

// Options carries the settings the services need from configuration
type Options struct {
	Clock          clockwork.Clock
	Store          Readiness
	QueryTimeout   time.Duration
	WeatherBaseURL string
	WeatherTimeout time.Duration
}

// Services holds all service instances
type Services struct {
	LogQuery LogQueryService
	Weather  WeatherService
	Health   HealthService
}

// NewServices creates and initializes all service instances
func NewServices(repos *repositories.Repositories, opts Options) *Services {
	return &Services{
		LogQuery: NewLogQueryService(repos.RequestLog, opts.QueryTimeout),
		Weather:  NewWeatherService(opts.WeatherBaseURL, opts.WeatherTimeout),
		Health:   NewHealthService(opts.Clock, opts.Store),
	}
}
