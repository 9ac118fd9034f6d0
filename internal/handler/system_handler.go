package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// SystemHandler serves liveness and service information.
type SystemHandler struct {
	name        string
	version     string
	environment string
}

// NewSystemHandler creates a new system handler.
func NewSystemHandler(name, version, environment string) *SystemHandler {
	return &SystemHandler{name: name, version: version, environment: environment}
}

// Health godoc
// @Summary Liveness check
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func (h *SystemHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}

// Root godoc
// @Summary Service information
// @Tags system
// @Produce json
// @Success 200 {object} map[string]string
// @Router / [get]
func (h *SystemHandler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"name":        h.name,
		"version":     h.version,
		"environment": h.environment,
	})
}
