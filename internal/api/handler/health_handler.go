package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/comp0022/film-analytics-api/internal/core/ports"
)

const (
	APIName    = "COMP0022 Film Analytics API"
	APIVersion = "0.1.0"
	DocsPath   = "/docs"
)

// HealthHandler serves the root metadata document and the health probes.
type HealthHandler struct {
	db    ports.HealthChecker
	redis ports.HealthChecker
}

// NewHealthHandler builds a HealthHandler. redis may be nil when Redis is not
// configured.
func NewHealthHandler(db, redis ports.HealthChecker) *HealthHandler {
	return &HealthHandler{db: db, redis: redis}
}

type rootResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Docs    string `json:"docs"`
}

type healthResponse struct {
	Status   string `json:"status"   example:"healthy"`
	Database string `json:"database" example:"connected"`
}

type readinessResponse struct {
	Status       string            `json:"status"`
	Dependencies map[string]string `json:"dependencies"`
}

// Root describes the service.
//
// @Summary  Service metadata
// @Tags     meta
// @Produce  json
// @Success  200  {object}  rootResponse
// @Router   / [get]
func (h *HealthHandler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, rootResponse{Name: APIName, Version: APIVersion, Docs: DocsPath})
}

// Health always answers 200; a database outage shows up as "degraded".
//
// @Summary  Health check
// @Tags     meta
// @Produce  json
// @Success  200  {object}  healthResponse
// @Router   /health [get]
func (h *HealthHandler) Health(c echo.Context) error {
	if h.db.Healthy(c.Request().Context()) {
		return c.JSON(http.StatusOK, healthResponse{Status: "healthy", Database: "connected"})
	}
	return c.JSON(http.StatusOK, healthResponse{Status: "degraded", Database: "unavailable"})
}

// Readiness answers 503 unless every configured dependency is reachable.
//
// @Summary  Readiness probe
// @Tags     meta
// @Produce  json
// @Success  200  {object}  readinessResponse
// @Failure  503  {object}  readinessResponse
// @Router   /health/ready [get]
func (h *HealthHandler) Readiness(c echo.Context) error {
	ctx := c.Request().Context()

	deps := map[string]string{"database": "ok"}
	ready := true
	if !h.db.Healthy(ctx) {
		deps["database"] = "unavailable"
		ready = false
	}
	if h.redis != nil {
		deps["redis"] = "ok"
		if !h.redis.Healthy(ctx) {
			deps["redis"] = "unavailable"
			ready = false
		}
	}

	if !ready {
		return c.JSON(http.StatusServiceUnavailable, readinessResponse{Status: "degraded", Dependencies: deps})
	}
	return c.JSON(http.StatusOK, readinessResponse{Status: "ok", Dependencies: deps})
}
