package subtrans

import (
	"context"
	"time"
)

// Key identifies one unit of translatable work: a normalized source text
// and a target language. Normalization strips surrounding whitespace only;
// case and punctuation are preserved, so "Hello" and "hello" are distinct keys.
type Key struct {
	Text       string // Trimmed source text
	TargetLang string // Target language code (e.g., "zh", "en")
}

// NewKey builds a Key from raw caller input.
func NewKey(text, targetLang string) Key {
	return Key{Text: normalizeText(text), TargetLang: targetLang}
}

// Batch is a bounded group of unique pending texts awaiting a single
// provider call. Positions[i] lists every original request index that
// maps back to Texts[i], so duplicated inputs share one provider result.
type Batch struct {
	TargetLang string
	Texts      []string
	Positions  [][]int
}

// Size returns the number of unique texts in the batch.
func (b Batch) Size() int {
	return len(b.Texts)
}

// Result is the per-item outcome of a provider call. A nil Err means
// Text holds the translation.
type Result struct {
	Text string
	Err  *ProviderError
}

// Provider is the boundary to one remote translation back-end.
//
// TranslateBatch returns one Result per input text, in input order.
// Per-item failures surface as Result.Err values; only adapter-wide
// failures (the endpoint is unreachable, the response is unusable)
// abort the whole call with a non-nil error.
type Provider interface {
	TranslateBatch(ctx context.Context, texts []string, targetLang string) ([]Result, error)
}

// FallbackTranslator is the always-available terminal translation path.
// It never fails, so the engine can resolve every requested item even
// when the provider path is exhausted.
type FallbackTranslator interface {
	Translate(text, targetLang string) string
}

// Cache is the fingerprint cache the engine deduplicates through.
// Put is first-writer-wins: once a key holds a value, later writes are
// no-ops even when they carry a different value.
type Cache interface {
	Get(key string) (string, bool)
	Put(key, value string) error
}

// ProgressEvent reports live translation progress to a caller-supplied sink.
// Completed is monotonically non-decreasing and reaches Total exactly once.
type ProgressEvent struct {
	Completed  int
	Total      int
	Percentage float64
}

// ProgressSink receives ProgressEvents. A panicking sink is recovered and
// logged; it never aborts translation.
type ProgressSink func(ProgressEvent)

// UsageCounters is a read-only snapshot of the engine's cumulative usage.
type UsageCounters struct {
	CharactersTranslated int64
	APICalls             int64
	CacheHits            int64
	CacheMisses          int64
}

// Defaults for the engine's resource ceilings.
const (
	DefaultMaxBatchSize       = 50
	DefaultMaxParallelWorkers = 5
	DefaultRequestsPerSecond  = 10.0
	DefaultRetryAttempts      = 3
	DefaultRetryBaseDelay     = 500 * time.Millisecond
	DefaultRequestTimeout     = 30 * time.Second
)
