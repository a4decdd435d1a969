package subtrans

import (
	"sync/atomic"

	"github.com/rs/zerolog"
)

// UsageTracker accumulates process-wide usage counters and relays progress
// events to a caller-supplied sink. All counter mutations are atomic, so
// dispatcher workers record events without serializing on each other.
//
// Each tracker is owned by one Engine; independent engines never share
// counters.
type UsageTracker struct {
	charactersTranslated atomic.Int64
	apiCalls             atomic.Int64
	cacheHits            atomic.Int64
	cacheMisses          atomic.Int64

	logger zerolog.Logger
}

// NewUsageTracker creates a tracker with all counters at zero.
func NewUsageTracker(logger zerolog.Logger) *UsageTracker {
	return &UsageTracker{logger: logger}
}

// RecordCacheHit increments the cache hit counter.
func (t *UsageTracker) RecordCacheHit() {
	t.cacheHits.Add(1)
}

// RecordCacheMiss increments the cache miss counter.
func (t *UsageTracker) RecordCacheMiss() {
	t.cacheMisses.Add(1)
}

// RecordAPICall records one provider call unit and the characters it
// carried. One unit per call regardless of batch size; batching is what
// amortizes this cost.
func (t *UsageTracker) RecordAPICall(charCount int) {
	t.apiCalls.Add(1)
	t.charactersTranslated.Add(int64(charCount))
}

// Snapshot returns a point-in-time copy of the counters.
func (t *UsageTracker) Snapshot() UsageCounters {
	return UsageCounters{
		CharactersTranslated: t.charactersTranslated.Load(),
		APICalls:             t.apiCalls.Load(),
		CacheHits:            t.cacheHits.Load(),
		CacheMisses:          t.cacheMisses.Load(),
	}
}

// Reset zeroes all counters.
func (t *UsageTracker) Reset() {
	t.charactersTranslated.Store(0)
	t.apiCalls.Store(0)
	t.cacheHits.Store(0)
	t.cacheMisses.Store(0)
}

// ReportProgress computes the completion percentage and invokes the sink.
// A nil sink is a no-op. Sink panics are recovered and logged so a broken
// caller callback cannot abort translation.
func (t *UsageTracker) ReportProgress(sink ProgressSink, completed, total int) {
	if sink == nil {
		return
	}

	percentage := 100.0
	if total > 0 {
		percentage = 100.0 * float64(completed) / float64(total)
	}

	defer func() {
		if r := recover(); r != nil {
			t.logger.Warn().Interface("panic", r).Msg("progress sink panicked")
		}
	}()

	sink(ProgressEvent{Completed: completed, Total: total, Percentage: percentage})
}
