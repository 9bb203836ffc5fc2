package projections

import (
	"fmt"
	"time"

	"moodadmin/internal/adapters/http/perf"
)

// PerformanceWindows are the selectable lookbacks of the performance page.
var PerformanceWindows = map[string]time.Duration{
	"15m": 15 * time.Minute,
	"1h":  time.Hour,
	"24h": 24 * time.Hour,
}

// DefaultPerformanceWindow is used when no window is requested.
const DefaultPerformanceWindow = "1h"

// PerformanceTopN is the number of slowest paths, queries and store operations listed.
const PerformanceTopN = 10

// PerformanceSource is the subset of the perf collector the page reads.
type PerformanceSource interface {
	Snapshot(since time.Time, topN int) perf.Snapshot
	TotalRecorded() int64
}

// GetPerformanceResult carries a snapshot of recent timings.
type GetPerformanceResult struct {
	Window        string
	Snapshot      perf.Snapshot
	TotalRecorded int64
}

// QueryGetPerformance snapshots the collector over the requested window.
// PRE: now is the request time
func QueryGetPerformance(window string, source PerformanceSource, now time.Time) (GetPerformanceResult, error) {
	if window == "" {
		window = DefaultPerformanceWindow
	}
	d, ok := PerformanceWindows[window]
	if !ok {
		return GetPerformanceResult{}, fmt.Errorf("window %q: %w", window, ErrInvalidFilter)
	}
	return GetPerformanceResult{
		Window:        window,
		Snapshot:      source.Snapshot(now.Add(-d), PerformanceTopN),
		TotalRecorded: source.TotalRecorded(),
	}, nil
}
