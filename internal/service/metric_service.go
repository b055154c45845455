package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/queue-info-api/internal/domain"
	"github.com/spec-kit/queue-info-api/internal/persistence"
	"github.com/spec-kit/queue-info-api/internal/repository"
	apperrors "github.com/spec-kit/queue-info-api/pkg/util"
)

const defaultMetricPageSize = 100

// MetricService records measurements. Postgres is the durable store; Redis
// keeps the hot value per key so dashboards can poll without touching the
// database. A Redis failure degrades to Postgres-only, it does not fail the
// request.
type MetricService struct {
	metrics repository.MetricRepository
	redis   *persistence.Redis
}

// NewMetricService builds the service.
func NewMetricService(metrics repository.MetricRepository, redis *persistence.Redis) *MetricService {
	return &MetricService{metrics: metrics, redis: redis}
}

// Record validates and persists a measurement.
func (s *MetricService) Record(ctx context.Context, metric *domain.Metric) error {
	switch metric.Type {
	case domain.MetricTypeTime, domain.MetricTypeCount, domain.MetricTypeGauge:
	default:
		return apperrors.NewValidationError("type must be one of time, count, gauge", nil)
	}
	if metric.Prefix == "" || metric.Key == "" {
		return apperrors.NewValidationError("prefix and key are required", nil)
	}

	if err := s.metrics.Upsert(ctx, metric); err != nil {
		return err
	}
	s.cacheHotValue(ctx, metric)
	return nil
}

// Get returns a single metric row.
func (s *MetricService) Get(ctx context.Context, id int64) (*domain.Metric, error) {
	metric, err := s.metrics.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("metric", nil)
		}
		return nil, err
	}
	return metric, nil
}

// List returns metric rows under a prefix with the total count.
func (s *MetricService) List(ctx context.Context, prefix string, limit, offset int) ([]domain.Metric, int64, error) {
	if limit <= 0 {
		limit = defaultMetricPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.metrics.ListByPrefix(ctx, prefix, limit, offset)
}

func (s *MetricService) cacheHotValue(ctx context.Context, metric *domain.Metric) {
	if s.redis == nil || s.redis.Client == nil {
		return
	}
	key := metricCacheKey(metric)
	switch metric.Type {
	case domain.MetricTypeCount:
		s.redis.Client.IncrBy(ctx, key, metric.Value)
	default:
		s.redis.Client.Set(ctx, key, metric.Value, 0)
	}
}

func metricCacheKey(metric *domain.Metric) string {
	return fmt.Sprintf("metrics:%s:%s:%s:%s", metric.Prefix, metric.Type, metric.Key, metric.Host)
}
