package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/queue-info-api/internal/domain"
)

// MetricRepository manages measurement persistence. Rows are unique per
// (prefix, type, key, host); Upsert overwrites value and timestamp in place.
type MetricRepository interface {
	Upsert(ctx context.Context, metric *domain.Metric) error
	GetByID(ctx context.Context, id int64) (*domain.Metric, error)
	ListByPrefix(ctx context.Context, prefix string, limit, offset int) ([]domain.Metric, int64, error)
}

type metricRepository struct {
	pool *pgxpool.Pool
}

// NewMetricRepository constructs repository.
func NewMetricRepository(pool *pgxpool.Pool) MetricRepository {
	return &metricRepository{pool: pool}
}

func (r *metricRepository) Upsert(ctx context.Context, metric *domain.Metric) error {
	const query = `
        INSERT INTO metrics (prefix, type, key, value, host, timestamp)
        VALUES ($1, $2, $3, $4, $5, NOW())
        ON CONFLICT (prefix, type, key, host)
        DO UPDATE SET value=EXCLUDED.value, timestamp=NOW()
        RETURNING id, timestamp`

	return r.pool.QueryRow(ctx, query,
		metric.Prefix,
		metric.Type,
		metric.Key,
		metric.Value,
		metric.Host,
	).Scan(&metric.ID, &metric.Timestamp)
}

func (r *metricRepository) GetByID(ctx context.Context, id int64) (*domain.Metric, error) {
	const query = `
        SELECT id, prefix, type, key, value, host, timestamp
        FROM metrics WHERE id=$1`

	var metric domain.Metric
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&metric.ID,
		&metric.Prefix,
		&metric.Type,
		&metric.Key,
		&metric.Value,
		&metric.Host,
		&metric.Timestamp,
	); err != nil {
		return nil, err
	}
	return &metric, nil
}

func (r *metricRepository) ListByPrefix(ctx context.Context, prefix string, limit, offset int) ([]domain.Metric, int64, error) {
	const query = `
        SELECT id, prefix, type, key, value, host, timestamp
        FROM metrics WHERE prefix=$1
        ORDER BY key, host
        LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, prefix, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	metrics, err := collectMetrics(rows)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM metrics WHERE prefix=$1`, prefix).Scan(&total); err != nil {
		return nil, 0, err
	}
	return metrics, total, nil
}

func collectMetrics(rows pgx.Rows) ([]domain.Metric, error) {
	defer rows.Close()

	var metrics []domain.Metric
	for rows.Next() {
		var metric domain.Metric
		if err := rows.Scan(
			&metric.ID,
			&metric.Prefix,
			&metric.Type,
			&metric.Key,
			&metric.Value,
			&metric.Host,
			&metric.Timestamp,
		); err != nil {
			return nil, err
		}
		metrics = append(metrics, metric)
	}
	return metrics, rows.Err()
}
