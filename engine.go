package subtrans

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ZaguanLabs/subtrans/cache"
)

// Engine is the public entry point of the translation dispatch layer. It
// ties the fingerprint cache, batcher, rate-limited dispatcher, usage
// tracker, and local fallback into the cache-then-dispatch-then-fallback
// policy. TranslateOne and TranslateMany are total functions: provider
// failures degrade quality, they never surface as errors.
//
// One Engine owns one set of usage counters and one rate-limit bucket;
// concurrent TranslateMany calls share both safely.
type Engine struct {
	provider     Provider
	cache        Cache
	cacheEnabled bool
	fallback     FallbackTranslator
	tracker      *UsageTracker
	limiter      *RateLimiter
	retry        RetryConfig
	maxBatchSize int
	workers      int
	rps          float64
	timeout      time.Duration
	logger       zerolog.Logger
	progress     ProgressSink
}

// EngineOption is a functional option for configuring the Engine.
type EngineOption func(*Engine)

// WithCache replaces the default in-memory fingerprint cache.
func WithCache(c Cache) EngineOption {
	return func(e *Engine) { e.cache = c }
}

// WithCacheDisabled turns off cache lookups and writes entirely.
// Intended for tests that need every call to reach the provider.
func WithCacheDisabled() EngineOption {
	return func(e *Engine) { e.cacheEnabled = false }
}

// WithFallback replaces the built-in local fallback translator.
func WithFallback(f FallbackTranslator) EngineOption {
	return func(e *Engine) { e.fallback = f }
}

// WithMaxBatchSize sets the provider call fan-in limit.
func WithMaxBatchSize(n int) EngineOption {
	return func(e *Engine) { e.maxBatchSize = n }
}

// WithMaxParallelWorkers sets how many batches may be in flight at once.
func WithMaxParallelWorkers(n int) EngineOption {
	return func(e *Engine) { e.workers = n }
}

// WithRequestsPerSecond sets the global provider QPS ceiling.
func WithRequestsPerSecond(rps float64) EngineOption {
	return func(e *Engine) { e.rps = rps }
}

// WithRetryAttempts sets the retry budget for transient provider failures.
func WithRetryAttempts(n int) EngineOption {
	return func(e *Engine) { e.retry.MaxRetries = n }
}

// WithRetryBaseDelay sets the initial backoff delay.
func WithRetryBaseDelay(d time.Duration) EngineOption {
	return func(e *Engine) { e.retry.BaseDelay = d }
}

// WithRequestTimeout bounds each individual provider call.
func WithRequestTimeout(d time.Duration) EngineOption {
	return func(e *Engine) { e.timeout = d }
}

// WithLogger attaches a zerolog logger. Default is a no-op logger.
func WithLogger(logger zerolog.Logger) EngineOption {
	return func(e *Engine) { e.logger = logger }
}

// WithProgressSink sets a default progress sink used when a TranslateMany
// call does not supply its own.
func WithProgressSink(sink ProgressSink) EngineOption {
	return func(e *Engine) { e.progress = sink }
}

// NewEngine creates an Engine for the given provider. A nil provider is
// allowed: every miss then resolves through the local fallback, which is
// how the fully offline mode works.
func NewEngine(provider Provider, opts ...EngineOption) (*Engine, error) {
	e := &Engine{
		provider:     provider,
		cacheEnabled: true,
		fallback:     NewLocalFallback(),
		retry:        DefaultRetryConfig(),
		maxBatchSize: DefaultMaxBatchSize,
		workers:      DefaultMaxParallelWorkers,
		rps:          DefaultRequestsPerSecond,
		timeout:      DefaultRequestTimeout,
		logger:       zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(e)
	}

	if err := e.validate(); err != nil {
		return nil, err
	}

	if e.cache == nil {
		e.cache = cache.NewMemoryCache()
	}
	e.tracker = NewUsageTracker(e.logger)
	e.limiter = NewRateLimiter(e.rps)

	return e, nil
}

func (e *Engine) validate() error {
	if e.maxBatchSize <= 0 {
		return &ConfigError{Field: "max_batch_size", Message: "must be positive"}
	}
	if e.workers <= 0 {
		return &ConfigError{Field: "max_parallel_workers", Message: "must be positive"}
	}
	if e.rps <= 0 {
		return &ConfigError{Field: "max_requests_per_second", Message: "must be positive"}
	}
	if e.retry.MaxRetries < 0 {
		return &ConfigError{Field: "retry_attempts", Message: "must not be negative"}
	}
	if e.retry.BaseDelay <= 0 {
		return &ConfigError{Field: "retry_base_delay", Message: "must be positive"}
	}
	if e.timeout <= 0 {
		return &ConfigError{Field: "request_timeout", Message: "must be positive"}
	}
	return nil
}

// TranslateOne translates a single text. It never fails: a cache hit
// returns immediately, a miss goes through the dispatch path, and any
// unresolved error resolves through the local fallback.
func (e *Engine) TranslateOne(ctx context.Context, text, targetLang string) string {
	return e.TranslateMany(ctx, []string{text}, targetLang, nil)[0]
}

// TranslateMany translates an ordered sequence of texts into targetLang.
// The result has the same length and order as the input: result[i] always
// corresponds to texts[i], including duplicates. Duplicate inputs share a
// single cached or dispatched result, but each original position still
// advances the progress counter.
//
// onProgress may be nil; the engine's default sink (if any) is used then.
// Cancelling ctx lets in-flight provider calls finish, dispatches nothing
// new, and resolves the remainder through the fallback.
func (e *Engine) TranslateMany(ctx context.Context, texts []string, targetLang string, onProgress ProgressSink) []string {
	out := make([]string, len(texts))
	if len(texts) == 0 {
		return out
	}
	if onProgress == nil {
		onProgress = e.progress
	}

	total := len(texts)
	var progressMu sync.Mutex
	completed := 0

	// advance serializes sink invocations so Completed values arrive
	// monotonically even when batches finish out of order.
	advance := func(n int) {
		progressMu.Lock()
		defer progressMu.Unlock()
		for i := 0; i < n; i++ {
			completed++
			e.tracker.ReportProgress(onProgress, completed, total)
		}
	}

	// Pass 1: deduplicate into unique keys, resolving cache hits and
	// blank lines immediately. One cache lookup per unique key.
	type unique struct {
		value     string
		resolved  bool
		positions []int
	}
	seen := make(map[string]*unique)
	var pendingOrder []string

	for i, raw := range texts {
		trimmed := normalizeText(raw)
		if trimmed == "" {
			out[i] = raw
			advance(1)
			continue
		}

		u, ok := seen[trimmed]
		if !ok {
			u = &unique{}
			if e.cacheEnabled {
				if cached, hit := e.cache.Get(CacheKey(Fingerprint(trimmed), targetLang)); hit {
					e.tracker.RecordCacheHit()
					u.value = cached
					u.resolved = true
				} else {
					e.tracker.RecordCacheMiss()
				}
			}
			seen[trimmed] = u
			if !u.resolved {
				pendingOrder = append(pendingOrder, trimmed)
			}
		}
		u.positions = append(u.positions, i)
	}

	// Resolve cache hits (and their duplicates) up front.
	for _, u := range seen {
		if u.resolved {
			for _, pos := range u.positions {
				out[pos] = u.value
			}
			advance(len(u.positions))
		}
	}

	if len(pendingOrder) == 0 {
		return out
	}

	// No provider configured: the fallback is the whole dispatch path.
	if e.provider == nil {
		for _, text := range pendingOrder {
			u := seen[text]
			value := e.fallback.Translate(text, targetLang)
			for _, pos := range u.positions {
				out[pos] = value
			}
			advance(len(u.positions))
		}
		return out
	}

	// Pass 2: partition misses and fan out under the rate limiter.
	pendingPositions := make([][]int, len(pendingOrder))
	for i, text := range pendingOrder {
		pendingPositions[i] = seen[text].positions
	}
	batches := PartitionBatches(pendingOrder, pendingPositions, targetLang, e.maxBatchSize)

	d := &dispatcher{
		provider: e.provider,
		limiter:  e.limiter,
		retry:    e.retry,
		workers:  e.workers,
		timeout:  e.timeout,
		usage:    e.tracker,
		logger:   e.logger,
	}

	d.Run(ctx, batches, func(index int, results []Result) {
		batch := batches[index]
		for j, res := range results {
			var value string
			if res.Err == nil {
				value = res.Text
				if e.cacheEnabled {
					// First-committed-wins; a racing write of the same
					// key keeps whichever value landed first.
					_ = e.cache.Put(CacheKey(Fingerprint(batch.Texts[j]), targetLang), value)
				}
			} else {
				value = e.fallback.Translate(batch.Texts[j], targetLang)
			}
			// Positions are disjoint across unique texts, so workers
			// write distinct slice indices without a lock.
			for _, pos := range batch.Positions[j] {
				out[pos] = value
			}
			advance(len(batch.Positions[j]))
		}
	})

	return out
}

// Stats is the caller-facing performance summary.
type Stats struct {
	CacheHits            int64
	CacheMisses          int64
	CacheHitRate         float64
	APICalls             int64
	CharactersTranslated int64
	AvgCharsPerCall      float64
}

// Stats returns a snapshot of cumulative performance counters.
func (e *Engine) Stats() Stats {
	c := e.tracker.Snapshot()

	s := Stats{
		CacheHits:            c.CacheHits,
		CacheMisses:          c.CacheMisses,
		APICalls:             c.APICalls,
		CharactersTranslated: c.CharactersTranslated,
	}
	if lookups := c.CacheHits + c.CacheMisses; lookups > 0 {
		s.CacheHitRate = float64(c.CacheHits) / float64(lookups)
	}
	if c.APICalls > 0 {
		s.AvgCharsPerCall = float64(c.CharactersTranslated) / float64(c.APICalls)
	}
	return s
}

// Usage returns the raw usage counters.
func (e *Engine) Usage() UsageCounters {
	return e.tracker.Snapshot()
}

// ResetStats zeroes the usage counters.
func (e *Engine) ResetStats() {
	e.tracker.Reset()
}
