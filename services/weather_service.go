package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"emperror.dev/errors"

	"github.com/bdc/weather-api/apierror"
	"github.com/bdc/weather-api/models"
)

// Upstream responses larger than this are treated as failures
const maxWeatherBody = 1 << 20

// WeatherService fetches forecasts from the upstream provider
type WeatherService interface {
	Forecast(ctx context.Context, lat, lon float64) (*models.WeatherReport, error)
}

type openMeteoService struct {
	baseURL string
	client  *http.Client
}

// NewWeatherService creates an open-meteo client rooted at baseURL
func NewWeatherService(baseURL string, timeout time.Duration) WeatherService {
	return &openMeteoService{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Forecast proxies one forecast call. Any transport error, non-2xx status or
// non-JSON body is an Upstream error.
func (s *openMeteoService) Forecast(ctx context.Context, lat, lon float64) (*models.WeatherReport, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("current_weather", "true")
	q.Set("hourly", "temperature_2m,relative_humidity_2m,wind_speed_10m")
	q.Set("timezone", "auto")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/v1/forecast?"+q.Encode(), nil)
	if err != nil {
		return nil, upstreamError(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, upstreamError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, upstreamError(fmt.Errorf("weather provider returned %d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxWeatherBody+1))
	if err != nil {
		return nil, upstreamError(err)
	}
	if len(body) > maxWeatherBody {
		return nil, upstreamError(errors.New("weather provider response too large"))
	}
	if !json.Valid(body) {
		return nil, upstreamError(errors.New("weather provider returned invalid JSON"))
	}

	return &models.WeatherReport{
		Source: models.WeatherSourceOpenMeteo,
		Lat:    lat,
		Lon:    lon,
		Data:   json.RawMessage(body),
	}, nil
}

func upstreamError(err error) error {
	return apierror.Wrap(apierror.Upstream, "Failed to fetch weather data", errors.WithStack(err))
}
