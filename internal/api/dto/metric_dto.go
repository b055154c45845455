package dto

import (
	"time"

	"github.com/spec-kit/queue-info-api/internal/domain"
)

// MetricCreateRequest payload for recording a measurement.
type MetricCreateRequest struct {
	Prefix string `json:"prefix"`
	Type   string `json:"type"`
	Key    string `json:"key"`
	Value  int64  `json:"value"`
	Host   string `json:"host"`
}

// MetricResponse is the public view of a metric row.
type MetricResponse struct {
	ID        int64     `json:"id"`
	Prefix    string    `json:"prefix"`
	Type      string    `json:"type"`
	Key       string    `json:"key"`
	Value     int64     `json:"value"`
	Host      string    `json:"host,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// MetricRows is a paged list of metric rows.
type MetricRows struct {
	Data  []MetricResponse `json:"data"`
	Total int64            `json:"total"`
}

// NewMetricResponse maps a domain metric to its public view.
func NewMetricResponse(metric *domain.Metric) MetricResponse {
	return MetricResponse{
		ID:        metric.ID,
		Prefix:    metric.Prefix,
		Type:      string(metric.Type),
		Key:       metric.Key,
		Value:     metric.Value,
		Host:      metric.Host,
		Timestamp: metric.Timestamp,
	}
}

// NewMetricRows maps a page of metrics.
func NewMetricRows(metrics []domain.Metric, total int64) MetricRows {
	rows := MetricRows{Data: make([]MetricResponse, 0, len(metrics)), Total: total}
	for i := range metrics {
		rows.Data = append(rows.Data, NewMetricResponse(&metrics[i]))
	}
	return rows
}
