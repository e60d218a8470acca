package metrics

import "sync/atomic"

// LookupCounter tracks how lookups were satisfied since process start.
type LookupCounter struct {
	live   atomic.Int64
	cached atomic.Int64
	failed atomic.Int64
}

// LookupStats is a point in time copy of the counters.
type LookupStats struct {
	Live   int64 `json:"live"`
	Cached int64 `json:"cached"`
	Failed int64 `json:"failed"`
}

// NewLookupCounter constructs a zeroed counter.
func NewLookupCounter() *LookupCounter {
	return &LookupCounter{}
}

func (c *LookupCounter) IncLive()   { c.live.Add(1) }
func (c *LookupCounter) IncCached() { c.cached.Add(1) }
func (c *LookupCounter) IncFailed() { c.failed.Add(1) }

// Snapshot returns the current values.
func (c *LookupCounter) Snapshot() LookupStats {
	return LookupStats{
		Live:   c.live.Load(),
		Cached: c.cached.Load(),
		Failed: c.failed.Load(),
	}
}

// Total reports the number of lookups recorded.
func (s LookupStats) Total() int64 {
	return s.Live + s.Cached + s.Failed
}
