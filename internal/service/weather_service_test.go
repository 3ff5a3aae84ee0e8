package service

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/civic-report/internal/config"
	apperrors "github.com/spec-kit/civic-report/pkg/util/errorutil"
)

const currentPayload = `{
  "coord": {"lon": 77.59, "lat": 12.97},
  "weather": [{"main": "Clouds", "description": "broken clouds", "icon": "04d"}],
  "main": {"temp": 27.4, "feels_like": 28.1, "humidity": 61, "pressure": 1012},
  "visibility": 10000,
  "wind": {"speed": 4.1},
  "clouds": {"all": 75},
  "sys": {"country": "IN", "sunrise": 1718000000, "sunset": 1718046000},
  "timezone": 19800,
  "name": "Bengaluru"
}`

const forecastPayload = `{
  "city": {"name": "Bengaluru", "country": "IN"},
  "list": [
    {"dt": 1718020800, "dt_txt": "2024-06-10 12:00:00",
     "main": {"temp": 26.0, "feels_like": 26.5, "humidity": 70, "pressure": 1010},
     "weather": [{"main": "Rain", "description": "light rain", "icon": "10d"}],
     "wind": {"speed": 5.2}, "clouds": {"all": 90}, "pop": 0.62}
  ]
}`

func newWeatherServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("units") != "metric" || q.Get("appid") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"cod":401,"message":"Invalid API key"}`))
			return
		}
		switch {
		case r.URL.Path == "/weather" && q.Get("q") == "Atlantis":
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"cod":"404","message":"city not found"}`))
		case r.URL.Path == "/weather":
			_, _ = w.Write([]byte(currentPayload))
		case r.URL.Path == "/forecast":
			_, _ = w.Write([]byte(forecastPayload))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestWeatherCurrent(t *testing.T) {
	srv := newWeatherServer(t)
	svc := NewWeatherService(config.WeatherConfig{APIKey: "test-key", BaseURL: srv.URL, TimeoutSeconds: 2}, nil)

	current, err := svc.Current(context.Background(), 12.97, 77.59)
	require.NoError(t, err)
	assert.Equal(t, "Bengaluru", current.Location)
	assert.Equal(t, "IN", current.Country)
	assert.Equal(t, 27.4, current.Temperature)
	assert.Equal(t, 61, current.Humidity)
	assert.Equal(t, "Clouds", current.Weather)
	assert.Equal(t, 75, current.Clouds)
	assert.Nil(t, current.Coordinates)

	byCity, err := svc.CurrentByCity(context.Background(), "Bengaluru")
	require.NoError(t, err)
	require.NotNil(t, byCity.Coordinates)
	assert.Equal(t, 12.97, byCity.Coordinates.Lat)
}

func TestWeatherForecast(t *testing.T) {
	srv := newWeatherServer(t)
	svc := NewWeatherService(config.WeatherConfig{APIKey: "test-key", BaseURL: srv.URL, TimeoutSeconds: 2}, nil)

	forecast, err := svc.Forecast(context.Background(), 12.97, 77.59)
	require.NoError(t, err)
	assert.Equal(t, "Bengaluru", forecast.Location)
	require.Len(t, forecast.Entries, 1)
	assert.Equal(t, "2024-06-10 12:00:00", forecast.Entries[0].DateText)
	assert.Equal(t, 0.62, forecast.Entries[0].Pop)
}

func TestWeatherUpstreamFailure(t *testing.T) {
	srv := newWeatherServer(t)
	svc := NewWeatherService(config.WeatherConfig{APIKey: "test-key", BaseURL: srv.URL, TimeoutSeconds: 2}, nil)

	_, err := svc.CurrentByCity(context.Background(), "Atlantis")
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, apperrors.CodeUpstreamFailure, domainErr.Code)
	assert.Equal(t, "Failed to fetch weather data", domainErr.Message)
	assert.Equal(t, "city not found", domainErr.Details["upstream"])
	assert.Equal(t, http.StatusInternalServerError, domainErr.HTTPStatus)
}

func TestWeatherRequiresKeyAndInput(t *testing.T) {
	svc := NewWeatherService(config.WeatherConfig{BaseURL: "http://127.0.0.1:1"}, nil)

	_, err := svc.Current(context.Background(), 1, 1)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, apperrors.CodeWeatherNotConfigured, domainErr.Code)
	assert.Equal(t, "Weather API key not configured", domainErr.Message)

	_, err = svc.CurrentByCity(context.Background(), " ")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))

	_, err = svc.Forecast(context.Background(), 100, 1)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}

func TestWeatherRejectsNaNCoordinatesBeforeUpstream(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		_, _ = w.Write([]byte(currentPayload))
	}))
	t.Cleanup(srv.Close)
	svc := NewWeatherService(config.WeatherConfig{APIKey: "test-key", BaseURL: srv.URL}, nil)

	for _, coords := range [][2]float64{{math.NaN(), 0}, {0, math.NaN()}, {math.Inf(-1), 0}} {
		_, err := svc.Current(context.Background(), coords[0], coords[1])
		require.Error(t, err)
		domainErr := apperrors.ToDomainError(err)
		assert.Equal(t, apperrors.CodeValidation, domainErr.Code)
		_, marshalErr := json.Marshal(domainErr.Details)
		assert.NoError(t, marshalErr)

		_, err = svc.Forecast(context.Background(), coords[0], coords[1])
		assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
	}
	assert.Zero(t, calls)
}
