package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/civic-report/internal/api/dto"
	"github.com/spec-kit/civic-report/internal/observability"
	"github.com/spec-kit/civic-report/internal/persistence"
	apperrors "github.com/spec-kit/civic-report/pkg/util/errorutil"
)

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName string
	version     string
	postgres    *persistence.Postgres
	redis       *persistence.Redis
	metrics     *observability.Metrics
}

// NewHealthHandler returns a new handler instance. Nil or disabled stores are
// reported as in-memory rather than failing readiness.
func NewHealthHandler(serviceName, version string, postgres *persistence.Postgres, redis *persistence.Redis, metrics *observability.Metrics) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, postgres: postgres, redis: redis, metrics: metrics}
}

// Live handles GET /api/health.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"status":  "OK",
		"message": "Server is running",
		"data": fiber.Map{
			"service": h.serviceName,
			"version": h.version,
		},
	})
}

// Ready handles GET /api/health/ready by pinging configured dependencies.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	depStatus := map[string]any{}
	ready := true

	switch {
	case !h.postgres.Enabled():
		depStatus["postgres"] = "memory"
	case h.postgres.Ping(ctx) != nil:
		depStatus["postgres"] = "unreachable"
		ready = false
	default:
		depStatus["postgres"] = "ok"
	}

	switch {
	case !h.redis.Enabled():
		depStatus["redis"] = "memory"
	case h.redis.Ping(ctx) != nil:
		depStatus["redis"] = "unreachable"
		ready = false
	default:
		depStatus["redis"] = "ok"
	}

	if ready {
		return c.JSON(dto.OKMessage("ready", depStatus))
	}
	return c.Status(fiber.StatusServiceUnavailable).JSON(
		dto.Failure(apperrors.CodeDependencyUnavailable, "one or more dependencies unavailable", depStatus))
}

// Metrics handles GET /api/admin/metrics.
func (h *HealthHandler) Metrics(c *fiber.Ctx) error {
	return c.JSON(dto.OK(h.metrics.Snapshot()))
}
