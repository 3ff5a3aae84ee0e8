package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/civic-report/internal/api/dto"
	"github.com/spec-kit/civic-report/internal/service"
	apperrors "github.com/spec-kit/civic-report/pkg/util/errorutil"
)

// WeatherHandler proxies weather lookups.
type WeatherHandler struct {
	weather *service.WeatherService
}

// NewWeatherHandler constructs handler.
func NewWeatherHandler(weather *service.WeatherService) *WeatherHandler {
	return &WeatherHandler{weather: weather}
}

// Current handles GET /api/weather?lat&lon.
func (h *WeatherHandler) Current(c *fiber.Ctx) error {
	lat, lon, err := coordinates(c)
	if err != nil {
		return err
	}
	current, err := h.weather.Current(c.UserContext(), lat, lon)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(dto.NewCurrentWeatherResponse(current)))
}

// ByCity handles GET /api/weather/city?city.
func (h *WeatherHandler) ByCity(c *fiber.Ctx) error {
	current, err := h.weather.CurrentByCity(c.UserContext(), c.Query("city"))
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(dto.NewCurrentWeatherResponse(current)))
}

// Forecast handles GET /api/weather/forecast?lat&lon.
func (h *WeatherHandler) Forecast(c *fiber.Ctx) error {
	lat, lon, err := coordinates(c)
	if err != nil {
		return err
	}
	forecast, err := h.weather.Forecast(c.UserContext(), lat, lon)
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(dto.NewForecastResponse(forecast)))
}

func coordinates(c *fiber.Ctx) (float64, float64, error) {
	lat, err := queryFloat(c, "lat")
	if err != nil {
		return 0, 0, err
	}
	lon, err := queryFloat(c, "lon")
	if err != nil {
		return 0, 0, err
	}
	if lat == nil || lon == nil {
		return 0, 0, apperrors.NewValidationError("Latitude and longitude are required", nil)
	}
	return *lat, *lon, nil
}
