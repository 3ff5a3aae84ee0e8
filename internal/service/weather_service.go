package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/civic-report/internal/config"
	"github.com/spec-kit/civic-report/internal/domain"
	apperrors "github.com/spec-kit/civic-report/pkg/util/errorutil"
)

const (
	weatherFailureMessage  = "Failed to fetch weather data"
	forecastFailureMessage = "Failed to fetch weather forecast"
)

// WeatherService proxies OpenWeather lookups and flattens the responses.
type WeatherService struct {
	cfg    config.WeatherConfig
	logger *zap.Logger
}

// NewWeatherService constructs the proxy.
func NewWeatherService(cfg config.WeatherConfig, logger *zap.Logger) *WeatherService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WeatherService{cfg: cfg, logger: logger}
}

// Coordinates is a latitude/longitude pair.
type Coordinates struct {
	Lat float64
	Lon float64
}

// CurrentWeather is the flattened current conditions.
type CurrentWeather struct {
	Location    string
	Country     string
	Temperature float64
	FeelsLike   float64
	Humidity    int
	Pressure    int
	Weather     string
	Description string
	Icon        string
	WindSpeed   float64
	Clouds      int
	Visibility  int
	Sunrise     int64
	Sunset      int64
	Timezone    int
	Coordinates *Coordinates
}

// ForecastEntry is one 3-hour forecast slot.
type ForecastEntry struct {
	Date        int64
	DateText    string
	Temperature float64
	FeelsLike   float64
	Humidity    int
	Weather     string
	Description string
	Icon        string
	WindSpeed   float64
	Clouds      int
	Pop         float64
}

// WeatherForecast is the flattened multi-day forecast for a place.
type WeatherForecast struct {
	Location string
	Country  string
	Entries  []ForecastEntry
}

type owCondition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type owMain struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	Humidity  int     `json:"humidity"`
	Pressure  int     `json:"pressure"`
}

type owCurrent struct {
	Name  string `json:"name"`
	Coord struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Sys struct {
		Country string `json:"country"`
		Sunrise int64  `json:"sunrise"`
		Sunset  int64  `json:"sunset"`
	} `json:"sys"`
	Main    owMain        `json:"main"`
	Weather []owCondition `json:"weather"`
	Wind    struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Clouds struct {
		All int `json:"all"`
	} `json:"clouds"`
	Visibility int `json:"visibility"`
	Timezone   int `json:"timezone"`
}

type owForecast struct {
	City struct {
		Name    string `json:"name"`
		Country string `json:"country"`
	} `json:"city"`
	List []struct {
		Dt      int64         `json:"dt"`
		DtTxt   string        `json:"dt_txt"`
		Main    owMain        `json:"main"`
		Weather []owCondition `json:"weather"`
		Wind    struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
		Clouds struct {
			All int `json:"all"`
		} `json:"clouds"`
		Pop float64 `json:"pop"`
	} `json:"list"`
}

type owError struct {
	Message string `json:"message"`
}

// Current returns conditions at a coordinate.
func (s *WeatherService) Current(ctx context.Context, lat, lon float64) (*CurrentWeather, error) {
	if err := validateCoordinates(lat, lon); err != nil {
		return nil, err
	}
	var payload owCurrent
	if err := s.fetch(ctx, "/weather", coordinateQuery(lat, lon), weatherFailureMessage, &payload); err != nil {
		return nil, err
	}
	return flattenCurrent(payload, false), nil
}

// CurrentByCity returns conditions for a named city, including its coordinates.
func (s *WeatherService) CurrentByCity(ctx context.Context, city string) (*CurrentWeather, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, apperrors.NewValidationError("City name is required", map[string]any{"city": "required"})
	}
	var payload owCurrent
	if err := s.fetch(ctx, "/weather", url.Values{"q": {city}}, weatherFailureMessage, &payload); err != nil {
		return nil, err
	}
	return flattenCurrent(payload, true), nil
}

// Forecast returns the 5 day / 3 hour forecast at a coordinate.
func (s *WeatherService) Forecast(ctx context.Context, lat, lon float64) (*WeatherForecast, error) {
	if err := validateCoordinates(lat, lon); err != nil {
		return nil, err
	}
	var payload owForecast
	if err := s.fetch(ctx, "/forecast", coordinateQuery(lat, lon), forecastFailureMessage, &payload); err != nil {
		return nil, err
	}

	forecast := &WeatherForecast{
		Location: payload.City.Name,
		Country:  payload.City.Country,
		Entries:  make([]ForecastEntry, 0, len(payload.List)),
	}
	for _, item := range payload.List {
		cond := firstCondition(item.Weather)
		forecast.Entries = append(forecast.Entries, ForecastEntry{
			Date:        item.Dt,
			DateText:    item.DtTxt,
			Temperature: item.Main.Temp,
			FeelsLike:   item.Main.FeelsLike,
			Humidity:    item.Main.Humidity,
			Weather:     cond.Main,
			Description: cond.Description,
			Icon:        cond.Icon,
			WindSpeed:   item.Wind.Speed,
			Clouds:      item.Clouds.All,
			Pop:         item.Pop,
		})
	}
	return forecast, nil
}

func (s *WeatherService) fetch(ctx context.Context, path string, query url.Values, failure string, out any) error {
	if strings.TrimSpace(s.cfg.APIKey) == "" {
		return apperrors.NewDomainError(apperrors.CodeWeatherNotConfigured, "Weather API key not configured", http.StatusInternalServerError, nil)
	}
	query.Set("appid", s.cfg.APIKey)
	query.Set("units", "metric")

	timeout := s.cfg.Timeout()
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	agent := fiber.Get(s.cfg.BaseURL + path + "?" + query.Encode())
	agent.Timeout(timeout)
	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		s.logger.Warn("weather provider unreachable", zap.String("path", path), zap.Errors("errors", errs))
		return apperrors.NewUpstreamFailure(failure, errs[0].Error(), errs[0])
	}
	if code != http.StatusOK {
		var providerErr owError
		_ = json.Unmarshal(body, &providerErr)
		message := providerErr.Message
		if message == "" {
			message = fmt.Sprintf("provider responded with status %d", code)
		}
		s.logger.Warn("weather provider error", zap.String("path", path), zap.Int("status", code), zap.String("message", message))
		return apperrors.NewUpstreamFailure(failure, message, nil)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return apperrors.NewUpstreamFailure(failure, "malformed provider response", err)
	}
	return nil
}

func flattenCurrent(p owCurrent, withCoordinates bool) *CurrentWeather {
	cond := firstCondition(p.Weather)
	current := &CurrentWeather{
		Location:    p.Name,
		Country:     p.Sys.Country,
		Temperature: p.Main.Temp,
		FeelsLike:   p.Main.FeelsLike,
		Humidity:    p.Main.Humidity,
		Pressure:    p.Main.Pressure,
		Weather:     cond.Main,
		Description: cond.Description,
		Icon:        cond.Icon,
		WindSpeed:   p.Wind.Speed,
		Clouds:      p.Clouds.All,
		Visibility:  p.Visibility,
		Sunrise:     p.Sys.Sunrise,
		Sunset:      p.Sys.Sunset,
		Timezone:    p.Timezone,
	}
	if withCoordinates {
		current.Coordinates = &Coordinates{Lat: p.Coord.Lat, Lon: p.Coord.Lon}
	}
	return current
}

func firstCondition(conds []owCondition) owCondition {
	if len(conds) == 0 {
		return owCondition{}
	}
	return conds[0]
}

func coordinateQuery(lat, lon float64) url.Values {
	return url.Values{
		"lat": {strconv.FormatFloat(lat, 'f', -1, 64)},
		"lon": {strconv.FormatFloat(lon, 'f', -1, 64)},
	}
}

func validateCoordinates(lat, lon float64) error {
	if !domain.ValidLatitude(lat) || !domain.ValidLongitude(lon) {
		return apperrors.NewValidationError("Latitude and longitude are out of range",
			map[string]any{"lat": strconv.FormatFloat(lat, 'g', -1, 64), "lon": strconv.FormatFloat(lon, 'g', -1, 64)})
	}
	return nil
}
