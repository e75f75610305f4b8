package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/classifier"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
)

// Pinger checks a backing dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ClassifierStatus reports the active classification path.
type ClassifierStatus interface {
	Status() classifier.Status
}

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName string
	version     string
	postgres    Pinger
	redis       Pinger
	classifier  ClassifierStatus
	metrics     *observability.Metrics
}

// HealthDependencies bundles what readiness inspects. Nil pingers are skipped.
type HealthDependencies struct {
	ServiceName string
	Version     string
	Postgres    Pinger
	Redis       Pinger
	Classifier  ClassifierStatus
	Metrics     *observability.Metrics
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(deps HealthDependencies) *HealthHandler {
	return &HealthHandler{
		serviceName: deps.ServiceName,
		version:     deps.Version,
		postgres:    deps.Postgres,
		redis:       deps.Redis,
		classifier:  deps.Classifier,
		metrics:     deps.Metrics,
	}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready reports service readiness by checking dependencies. Dependencies that
// are not configured are reported as disabled and do not fail the probe.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	depStatus := fiber.Map{}
	ready := true
	check := func(name string, p Pinger) {
		if p == nil {
			depStatus[name] = "disabled"
			return
		}
		err := p.Ping(ctx)
		switch {
		case err == nil:
			depStatus[name] = "ok"
		case errors.Is(err, persistence.ErrNotConfigured):
			depStatus[name] = "disabled"
		default:
			depStatus[name] = err.Error()
			ready = false
		}
	}
	check("postgres", h.postgres)
	check("redis", h.redis)

	body := fiber.Map{
		"status":       "ready",
		"dependencies": depStatus,
		"metrics":      h.metrics.Snapshot(),
	}
	if h.classifier != nil {
		body["classifier"] = h.classifier.Status()
	}
	if ready {
		return c.JSON(body)
	}

	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    fiber.StatusServiceUnavailable,
			"message": "one or more dependencies unavailable",
			"data":    depStatus,
		},
	})
}
