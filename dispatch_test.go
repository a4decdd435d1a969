package subtrans

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func singleTextBatches(n int) []Batch {
	batches := make([]Batch, n)
	for i := range batches {
		batches[i] = Batch{
			TargetLang: "zh",
			Texts:      []string{fmt.Sprintf("text-%d", i)},
			Positions:  [][]int{{i}},
		}
	}
	return batches
}

func TestDispatcher_AllBatchesSettle(t *testing.T) {
	p := &scriptedProvider{}
	d := &dispatcher{
		provider: p,
		limiter:  NewRateLimiter(1000),
		retry:    RetryConfig{MaxRetries: 0, BaseDelay: time.Millisecond, MaxDelay: time.Second},
		workers:  3,
		timeout:  time.Second,
		usage:    NewUsageTracker(zerolog.Nop()),
		logger:   zerolog.Nop(),
	}

	batches := singleTextBatches(7)
	settled := make([]bool, len(batches))
	var mu sync.Mutex

	d.Run(context.Background(), batches, func(index int, results []Result) {
		mu.Lock()
		defer mu.Unlock()
		if settled[index] {
			t.Errorf("Batch %d settled twice", index)
		}
		settled[index] = true
		if len(results) != 1 {
			t.Errorf("Batch %d: %d results, want 1", index, len(results))
		}
	})

	for i, ok := range settled {
		if !ok {
			t.Errorf("Batch %d never settled", i)
		}
	}
}

func TestDispatcher_WorkerCeiling(t *testing.T) {
	p := &scriptedProvider{delay: 20 * time.Millisecond}
	d := &dispatcher{
		provider: p,
		limiter:  NewRateLimiter(1000),
		retry:    RetryConfig{MaxRetries: 0, BaseDelay: time.Millisecond, MaxDelay: time.Second},
		workers:  2,
		timeout:  time.Second,
		usage:    NewUsageTracker(zerolog.Nop()),
		logger:   zerolog.Nop(),
	}

	d.Run(context.Background(), singleTextBatches(8), func(int, []Result) {})

	p.mu.Lock()
	max := p.maxInFlight
	p.mu.Unlock()
	if max > 2 {
		t.Errorf("Observed %d concurrent provider calls, ceiling is 2", max)
	}
}

func TestDispatcher_RateCeiling(t *testing.T) {
	if testing.Short() {
		t.Skip("timing-sensitive")
	}

	const rps = 5
	p := &scriptedProvider{}
	d := &dispatcher{
		provider: p,
		limiter:  NewRateLimiter(rps),
		retry:    RetryConfig{MaxRetries: 0, BaseDelay: time.Millisecond, MaxDelay: time.Second},
		workers:  4,
		timeout:  time.Second,
		usage:    NewUsageTracker(zerolog.Nop()),
		logger:   zerolog.Nop(),
	}

	const calls = 20
	d.Run(context.Background(), singleTextBatches(calls), func(int, []Result) {})

	ts := p.callTimestamps()
	if len(ts) != calls {
		t.Fatalf("Expected %d provider calls, got %d", calls, len(ts))
	}

	// The bucket starts full, so the first second absorbs an initial
	// burst. Past that, every sliding one-second window must stay at or
	// under the configured rate.
	cutoff := ts[0].Add(1100 * time.Millisecond)
	var steady []time.Time
	for _, tm := range ts {
		if !tm.Before(cutoff) {
			steady = append(steady, tm)
		}
	}
	for i, start := range steady {
		inWindow := 0
		for _, tm := range steady[i:] {
			if tm.Sub(start) < time.Second {
				inWindow++
			}
		}
		if inWindow > rps {
			t.Errorf("Window starting at call %d saw %d calls, ceiling is %d", i, inWindow, rps)
		}
	}

	// Refill pacing also bounds total duration from below: after the
	// initial burst the remaining calls arrive at rps per second.
	elapsed := ts[len(ts)-1].Sub(ts[0])
	if minElapsed := 2200 * time.Millisecond; elapsed < minElapsed {
		t.Errorf("%d calls at %d rps finished in %v, expected at least %v", calls, rps, elapsed, minElapsed)
	}
}

func TestDispatcher_RetryExhaustionMarksItems(t *testing.T) {
	p := &scriptedProvider{failBatches: -1}
	d := &dispatcher{
		provider: p,
		limiter:  NewRateLimiter(1000),
		retry:    RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond, MaxDelay: 10 * time.Millisecond},
		workers:  1,
		timeout:  time.Second,
		usage:    NewUsageTracker(zerolog.Nop()),
		logger:   zerolog.Nop(),
	}

	var got []Result
	d.Run(context.Background(), singleTextBatches(1), func(_ int, results []Result) {
		got = results
	})

	// MaxRetries 2 means one initial attempt plus two retries.
	if p.callCount() != 3 {
		t.Errorf("Expected 3 provider calls, got %d", p.callCount())
	}
	if got[0].Err == nil {
		t.Fatal("Expected the item to carry its last error")
	}
	if got[0].Err.Code != CodeNetworkFailure {
		t.Errorf("Error code = %q, want %q", got[0].Err.Code, CodeNetworkFailure)
	}
}

func TestDispatcher_ShortCircuitSkipsPendingBatches(t *testing.T) {
	p := &scriptedProvider{
		failBatches: -1,
		failWith:    &ProviderError{Code: CodeQuotaExceeded, Message: "quota exhausted"},
	}
	d := &dispatcher{
		provider: p,
		limiter:  NewRateLimiter(1000),
		retry:    RetryConfig{MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: 10 * time.Millisecond},
		workers:  1,
		timeout:  time.Second,
		usage:    NewUsageTracker(zerolog.Nop()),
		logger:   zerolog.Nop(),
	}

	var codes []ErrorCode
	d.Run(context.Background(), singleTextBatches(5), func(_ int, results []Result) {
		codes = append(codes, results[0].Err.Code)
	})

	// Quota errors are account-wide and not retryable: one probe call,
	// everything after it settles without touching the provider.
	if p.callCount() != 1 {
		t.Errorf("Expected 1 provider call, got %d", p.callCount())
	}
	if len(codes) != 5 {
		t.Fatalf("Expected 5 settled batches, got %d", len(codes))
	}
	for i, code := range codes {
		if code != CodeQuotaExceeded {
			t.Errorf("Batch %d error code = %q, want %q", i, code, CodeQuotaExceeded)
		}
	}
}

func TestDispatcher_CountMismatchSurfaces(t *testing.T) {
	p := &shortChangingProvider{}
	d := &dispatcher{
		provider: p,
		limiter:  NewRateLimiter(1000),
		retry:    RetryConfig{MaxRetries: 0, BaseDelay: time.Millisecond, MaxDelay: time.Second},
		workers:  1,
		timeout:  time.Second,
		usage:    NewUsageTracker(zerolog.Nop()),
		logger:   zerolog.Nop(),
	}

	var got []Result
	batch := Batch{TargetLang: "zh", Texts: []string{"a", "b"}, Positions: [][]int{{0}, {1}}}
	d.Run(context.Background(), []Batch{batch}, func(_ int, results []Result) {
		got = results
	})

	if got[0].Err == nil || got[1].Err == nil {
		t.Fatal("Expected both items to fail on count mismatch")
	}
	var mismatch *CountMismatchError
	if !errors.As(got[0].Err, &mismatch) {
		t.Fatalf("Expected CountMismatchError in chain, got %v", got[0].Err)
	}
	if mismatch.Expected != 2 || mismatch.Got != 1 {
		t.Errorf("Mismatch = %d/%d, want 2/1", mismatch.Expected, mismatch.Got)
	}
}

// shortChangingProvider returns fewer results than texts.
type shortChangingProvider struct{}

func (p *shortChangingProvider) TranslateBatch(ctx context.Context, texts []string, targetLang string) ([]Result, error) {
	return []Result{{Text: "only one"}}, nil
}
