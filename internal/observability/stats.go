package observability

import (
	"context"
	"fmt"
	"time"

	"github.com/spec-kit/queue-info-api/internal/config"
	"github.com/spec-kit/queue-info-api/internal/persistence"
)

// StatsRecorder accumulates request counters in Redis so operators can poll
// them without a metrics pipeline. Disabled or unreachable Redis makes every
// call a no-op; stats never fail a request.
type StatsRecorder struct {
	redis   *persistence.Redis
	prefix  string
	enabled bool
}

// NewStatsRecorder initializes the recorder.
func NewStatsRecorder(cfg config.StatsConfig, redis *persistence.Redis) *StatsRecorder {
	return &StatsRecorder{
		redis:   redis,
		prefix:  cfg.Prefix,
		enabled: cfg.Enabled,
	}
}

// RecordRequest increments the per-route counter and accumulates duration.
func (s *StatsRecorder) RecordRequest(ctx context.Context, path, method string, status int, duration time.Duration) {
	if !s.active() {
		return
	}
	key := fmt.Sprintf("%s:requests:%s:%s:%d", s.prefix, method, path, status)
	s.redis.Client.Incr(ctx, key)
	s.redis.Client.IncrBy(ctx, key+":ms", duration.Milliseconds())
}

// RecordError increments error counters by domain error code.
func (s *StatsRecorder) RecordError(ctx context.Context, path, method, code string) {
	if !s.active() {
		return
	}
	key := fmt.Sprintf("%s:errors:%s:%s:%s", s.prefix, method, path, code)
	s.redis.Client.Incr(ctx, key)
}

func (s *StatsRecorder) active() bool {
	return s != nil && s.enabled && s.redis != nil && s.redis.Client != nil
}
