package dto

import "github.com/spec-kit/civic-report/internal/service"

// CoordinatesResponse is a lat/lon pair.
type CoordinatesResponse struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// CurrentWeatherResponse is the flattened current conditions.
type CurrentWeatherResponse struct {
	Location    string               `json:"location"`
	Country     string               `json:"country"`
	Temperature float64              `json:"temperature"`
	FeelsLike   float64              `json:"feelsLike"`
	Humidity    int                  `json:"humidity"`
	Pressure    int                  `json:"pressure"`
	Weather     string               `json:"weather"`
	Description string               `json:"description"`
	Icon        string               `json:"icon"`
	WindSpeed   float64              `json:"windSpeed"`
	Clouds      int                  `json:"clouds"`
	Visibility  int                  `json:"visibility"`
	Sunrise     int64                `json:"sunrise"`
	Sunset      int64                `json:"sunset"`
	Timezone    int                  `json:"timezone"`
	Coordinates *CoordinatesResponse `json:"coordinates,omitempty"`
}

// NewCurrentWeatherResponse maps service output.
func NewCurrentWeatherResponse(w *service.CurrentWeather) CurrentWeatherResponse {
	resp := CurrentWeatherResponse{
		Location:    w.Location,
		Country:     w.Country,
		Temperature: w.Temperature,
		FeelsLike:   w.FeelsLike,
		Humidity:    w.Humidity,
		Pressure:    w.Pressure,
		Weather:     w.Weather,
		Description: w.Description,
		Icon:        w.Icon,
		WindSpeed:   w.WindSpeed,
		Clouds:      w.Clouds,
		Visibility:  w.Visibility,
		Sunrise:     w.Sunrise,
		Sunset:      w.Sunset,
		Timezone:    w.Timezone,
	}
	if w.Coordinates != nil {
		resp.Coordinates = &CoordinatesResponse{Lat: w.Coordinates.Lat, Lon: w.Coordinates.Lon}
	}
	return resp
}

// ForecastEntryResponse is one forecast slot.
type ForecastEntryResponse struct {
	Date        int64   `json:"date"`
	DateText    string  `json:"dateText"`
	Temperature float64 `json:"temperature"`
	FeelsLike   float64 `json:"feelsLike"`
	Humidity    int     `json:"humidity"`
	Weather     string  `json:"weather"`
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
	WindSpeed   float64 `json:"windSpeed"`
	Clouds      int     `json:"clouds"`
	Pop         float64 `json:"pop"`
}

// ForecastResponse is the flattened forecast.
type ForecastResponse struct {
	Location string                  `json:"location"`
	Country  string                  `json:"country"`
	Forecast []ForecastEntryResponse `json:"forecast"`
}

// NewForecastResponse maps service output.
func NewForecastResponse(f *service.WeatherForecast) ForecastResponse {
	resp := ForecastResponse{Location: f.Location, Country: f.Country, Forecast: make([]ForecastEntryResponse, 0, len(f.Entries))}
	for _, e := range f.Entries {
		resp.Forecast = append(resp.Forecast, ForecastEntryResponse(e))
	}
	return resp
}
