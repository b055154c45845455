package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/queue-info-api/internal/api/dto"
	"github.com/spec-kit/queue-info-api/internal/domain"
	"github.com/spec-kit/queue-info-api/internal/service"
)

// MetricsHandler exposes measurement endpoints.
type MetricsHandler struct {
	metrics *service.MetricService
}

// NewMetricsHandler constructs handler.
func NewMetricsHandler(metrics *service.MetricService) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

// Record handles POST /metrics.
func (h *MetricsHandler) Record(c *fiber.Ctx) error {
	var req dto.MetricCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	metric := &domain.Metric{
		Prefix: req.Prefix,
		Type:   domain.MetricType(req.Type),
		Key:    req.Key,
		Value:  req.Value,
		Host:   req.Host,
	}
	if err := h.metrics.Record(c.UserContext(), metric); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewMetricResponse(metric))
}

// List handles GET /metrics.
func (h *MetricsHandler) List(c *fiber.Ctx) error {
	prefix := c.Query("prefix")
	if prefix == "" {
		return fiber.NewError(http.StatusBadRequest, "prefix query parameter required")
	}

	limit := c.QueryInt("limit", 0)
	offset := c.QueryInt("skip", 0)

	metrics, total, err := h.metrics.List(c.UserContext(), prefix, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewMetricRows(metrics, total))
}

// Get handles GET /metrics/:id.
func (h *MetricsHandler) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid metric id")
	}

	metric, err := h.metrics.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewMetricResponse(metric))
}
