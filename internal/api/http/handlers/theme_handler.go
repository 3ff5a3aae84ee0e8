package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/civic-report/internal/api/dto"
	"github.com/spec-kit/civic-report/internal/service"
)

// ThemeHandler serves the global theme setting.
type ThemeHandler struct {
	themes *service.ThemeService
}

// NewThemeHandler constructs handler.
func NewThemeHandler(themes *service.ThemeService) *ThemeHandler {
	return &ThemeHandler{themes: themes}
}

// Get handles GET /api/theme.
func (h *ThemeHandler) Get(c *fiber.Ctx) error {
	setting, err := h.themes.Get(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.OK(dto.ThemeResponse{Theme: setting.Theme}))
}

// Update handles PUT /api/theme.
func (h *ThemeHandler) Update(c *fiber.Ctx) error {
	var req dto.ThemeRequest
	if err := decodeJSON(c, &req); err != nil {
		return err
	}
	setting, err := h.themes.Set(c.UserContext(), req.Theme)
	if err != nil {
		return err
	}
	return c.JSON(dto.OKMessage("Theme updated successfully", dto.ThemeResponse{Theme: setting.Theme}))
}
