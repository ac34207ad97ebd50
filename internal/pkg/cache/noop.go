// Package cache holds the monthly stats caches: Redis when configured, otherwise a no-op.
package cache

import (
	"context"

	"github.com/wfo-tracker/attendance-backend-go/internal/domain/attendance"
)

type noopStatsCache struct{}

// NewNoopStatsCache returns a cache that never hits.
func NewNoopStatsCache() attendance.StatsCache {
	return noopStatsCache{}
}

func (noopStatsCache) Generation(context.Context, int64) (int64, error) { return 0, nil }

func (noopStatsCache) Get(context.Context, int64, int64, int, int) (*attendance.MonthlyStats, error) {
	return nil, nil
}

func (noopStatsCache) Set(context.Context, int64, int64, attendance.MonthlyStats) error { return nil }

func (noopStatsCache) InvalidateMonth(context.Context, int64, int, int) error { return nil }

func (noopStatsCache) InvalidateUser(context.Context, int64) error { return nil }
