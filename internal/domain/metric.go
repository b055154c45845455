package domain

import "time"

// MetricType enumerates supported metric kinds.
type MetricType string

const (
	MetricTypeTime  MetricType = "time"
	MetricTypeCount MetricType = "count"
	MetricTypeGauge MetricType = "gauge"
)

// Metric is a single measurement keyed by (prefix, type, key, host).
type Metric struct {
	ID        int64
	Prefix    string
	Type      MetricType
	Key       string
	Value     int64
	Host      string
	Timestamp time.Time
}
