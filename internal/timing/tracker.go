package timing

import (
	"sort"
	"sync"
	"time"
)

// Tracker collects durations per named operation. It is safe for concurrent
// use; background requests and the UI goroutine share one instance.
type Tracker struct {
	timings map[string][]time.Duration
	mu      sync.RWMutex
	limit   int
}

// NewTracker keeps at most limit samples per operation, dropping the oldest.
// A non-positive limit keeps 100.
func NewTracker(limit int) *Tracker {
	if limit <= 0 {
		limit = 100
	}
	return &Tracker{
		timings: make(map[string][]time.Duration),
		limit:   limit,
	}
}

// Start begins timing operation; calling the returned func records it.
func (tt *Tracker) Start(operation string) func() time.Duration {
	start := time.Now()
	return func() time.Duration {
		d := time.Since(start)
		tt.Record(operation, d)
		return d
	}
}

func (tt *Tracker) Record(operation string, d time.Duration) {
	tt.mu.Lock()
	defer tt.mu.Unlock()

	samples := append(tt.timings[operation], d)
	if len(samples) > tt.limit {
		samples = samples[len(samples)-tt.limit:]
	}
	tt.timings[operation] = samples
}

func (tt *Tracker) GetTimings(operation string) []time.Duration {
	tt.mu.RLock()
	defer tt.mu.RUnlock()

	timings := tt.timings[operation]
	if timings == nil {
		return nil
	}

	result := make([]time.Duration, len(timings))
	copy(result, timings)
	return result
}

func (tt *Tracker) GetAverageTime(operation string) time.Duration {
	timings := tt.GetTimings(operation)
	if len(timings) == 0 {
		return 0
	}

	var total time.Duration
	for _, duration := range timings {
		total += duration
	}

	return total / time.Duration(len(timings))
}

// Summary returns sample count and average per operation, for logging.
func (tt *Tracker) Summary() map[string]interface{} {
	tt.mu.RLock()
	ops := make([]string, 0, len(tt.timings))
	for op := range tt.timings {
		ops = append(ops, op)
	}
	tt.mu.RUnlock()
	sort.Strings(ops)

	out := make(map[string]interface{}, len(ops))
	for _, op := range ops {
		out[op] = map[string]interface{}{
			"count":  len(tt.GetTimings(op)),
			"avg_ms": tt.GetAverageTime(op).Milliseconds(),
		}
	}
	return out
}

func (tt *Tracker) Reset(operation string) {
	tt.mu.Lock()
	defer tt.mu.Unlock()

	if operation == "" {
		tt.timings = make(map[string][]time.Duration)
	} else {
		delete(tt.timings, operation)
	}
}
