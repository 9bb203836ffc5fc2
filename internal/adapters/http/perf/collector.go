package perf

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRingSize is the default capacity of the ring buffer.
const DefaultRingSize = 10000

// EntryKind distinguishes what was timed.
type EntryKind uint8

const (
	KindRequest EntryKind = iota // HTTP request
	KindQuery                    // SQL statement on the local database
	KindStore                    // record store call (any backend)
)

// Entry is a single timing record stored in the ring buffer.
type Entry struct {
	Kind       EntryKind
	Path       string // "GET /admin/users", "SELECT document" or "ListUsers"
	StatusCode int    // HTTP status; 0 otherwise
	Failed     bool   // store call or query returned an error
	DurationMs float64
	Timestamp  time.Time
}

// Collector is a fixed-size ring buffer for timing entries.
// When full, the oldest entries are overwritten. Aggregation happens on read.
type Collector struct {
	mu      sync.Mutex
	entries []Entry
	size    int
	pos     int
	count   int64
}

// NewCollector creates a collector with the given ring buffer capacity.
// PRE: size > 0 (DefaultRingSize otherwise)
// POST: Returns a ready-to-use collector with pre-allocated storage
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{
		entries: make([]Entry, size),
		size:    size,
	}
}

// Record appends an entry, overwriting the oldest when full.
func (c *Collector) Record(e Entry) {
	c.mu.Lock()
	c.entries[c.pos] = e
	c.pos = (c.pos + 1) % c.size
	c.mu.Unlock()
	atomic.AddInt64(&c.count, 1)
}

// TotalRecorded returns the total number of entries ever recorded.
func (c *Collector) TotalRecorded() int64 {
	return atomic.LoadInt64(&c.count)
}

// Snapshot holds aggregated performance data for the performance page.
type Snapshot struct {
	Since           time.Time
	Requests        int
	RequestP50Ms    float64
	RequestP95Ms    float64
	RequestP99Ms    float64
	ServerErrors    int // 5xx responses
	RateLimited     int // 429 responses
	StoreCalls      int
	StoreFailures   int
	SlowestPaths    []PathStat
	SlowestQueries  []PathStat
	SlowestStoreOps []PathStat
}

// PathStat aggregates timing for one path, statement or store method.
type PathStat struct {
	Path    string
	AvgMs   float64
	MaxMs   float64
	Count   int
	TotalMs float64
}

func (s *PathStat) add(ms float64) {
	s.Count++
	s.TotalMs += ms
	if ms > s.MaxMs {
		s.MaxMs = ms
	}
}

type statMap map[string]*PathStat

func (m statMap) add(path string, ms float64) {
	s, ok := m[path]
	if !ok {
		s = &PathStat{Path: path}
		m[path] = s
	}
	s.add(ms)
}

// Snapshot aggregates entries recorded at or after since.
// PRE: topN > 0
// POST: percentiles are over request durations only; lists hold at most topN items by average
func (c *Collector) Snapshot(since time.Time, topN int) Snapshot {
	c.mu.Lock()
	buf := make([]Entry, c.size)
	copy(buf, c.entries)
	c.mu.Unlock()

	snap := Snapshot{Since: since}
	var durations []float64
	requests, queries, store := statMap{}, statMap{}, statMap{}

	for _, e := range buf {
		if e.Timestamp.IsZero() || e.Timestamp.Before(since) {
			continue
		}
		switch e.Kind {
		case KindRequest:
			durations = append(durations, e.DurationMs)
			requests.add(e.Path, e.DurationMs)
			if e.StatusCode >= 500 {
				snap.ServerErrors++
			}
			if e.StatusCode == 429 {
				snap.RateLimited++
			}
		case KindQuery:
			queries.add(e.Path, e.DurationMs)
		case KindStore:
			store.add(e.Path, e.DurationMs)
			snap.StoreCalls++
			if e.Failed {
				snap.StoreFailures++
			}
		}
	}

	snap.Requests = len(durations)
	snap.SlowestPaths = topByAvg(requests, topN)
	snap.SlowestQueries = topByAvg(queries, topN)
	snap.SlowestStoreOps = topByAvg(store, topN)

	if len(durations) > 0 {
		sort.Float64s(durations)
		snap.RequestP50Ms = percentile(durations, 50)
		snap.RequestP95Ms = percentile(durations, 95)
		snap.RequestP99Ms = percentile(durations, 99)
	}
	return snap
}

// percentile interpolates the p-th percentile of a sorted slice.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (p / 100) * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	if lower == upper || upper >= len(sorted) {
		return sorted[lower]
	}
	frac := idx - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

// topByAvg returns the n entries with the highest average, ties broken by path.
func topByAvg(stats statMap, n int) []PathStat {
	list := make([]PathStat, 0, len(stats))
	for _, s := range stats {
		s.AvgMs = s.TotalMs / float64(s.Count)
		list = append(list, *s)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].AvgMs != list[j].AvgMs {
			return list[i].AvgMs > list[j].AvgMs
		}
		return list[i].Path < list[j].Path
	})
	if len(list) > n {
		list = list[:n]
	}
	return list
}
