package subtrans

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

// dispatcher fans batches out to the provider through a fixed-size worker
// pool, honoring two independent ceilings: the worker count bounds batches
// in flight, and the shared token bucket bounds provider calls per second.
type dispatcher struct {
	provider Provider
	limiter  *RateLimiter
	retry    RetryConfig
	workers  int
	timeout  time.Duration
	usage    *UsageTracker
	logger   zerolog.Logger
}

// Run executes every batch and invokes onBatch with its results as soon as
// it settles. It returns only after each batch has either produced provider
// results or exhausted retries; failed items carry their last error so the
// caller can resolve them through the fallback path.
//
// Account-wide failures (unauthorized, quota exhausted) short-circuit all
// not-yet-dispatched batches. Context cancellation lets in-flight calls
// finish but dispatches nothing new.
func (d *dispatcher) Run(ctx context.Context, batches []Batch, onBatch func(index int, results []Result)) {
	if len(batches) == 0 {
		return
	}

	workers := d.workers
	if workers > len(batches) {
		workers = len(batches)
	}

	// Holds the first account-wide error observed by any worker.
	var shortCircuit atomic.Pointer[ProviderError]

	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				batch := batches[idx]

				if sc := shortCircuit.Load(); sc != nil {
					onBatch(idx, failBatch(batch, sc))
					continue
				}
				if err := ctx.Err(); err != nil {
					onBatch(idx, failBatch(batch, canceledError(err)))
					continue
				}

				results, err := d.callWithRetry(ctx, batch)
				if err != nil {
					perr := asProviderError(err)
					if perr.AccountWide() {
						if shortCircuit.CompareAndSwap(nil, perr) {
							d.logger.Warn().Str("code", string(perr.Code)).
								Msg("account-wide provider failure, short-circuiting remaining batches")
						}
					}
					onBatch(idx, failBatch(batch, perr))
					continue
				}

				onBatch(idx, results)
			}
		}()
	}

	for i := range batches {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
}

// callWithRetry performs one rate-limited provider call with bounded
// exponential backoff on transient failures.
func (d *dispatcher) callWithRetry(ctx context.Context, batch Batch) ([]Result, error) {
	attempt := 0
	return WithRetry(ctx, d.retry, func() ([]Result, error) {
		attempt++

		// Block for a rate-limit token before touching the provider.
		if err := d.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		// Once dispatched, a call runs to completion even if the caller
		// cancels; only the per-call timeout can interrupt it. The worker
		// loop checks the parent context before dispatching anything new.
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()

		results, err := d.provider.TranslateBatch(callCtx, batch.Texts, batch.TargetLang)
		if err != nil {
			perr := classifyCallError(err)
			if perr.Retryable() {
				d.logger.Debug().Str("code", string(perr.Code)).Int("attempt", attempt).
					Int("batch_size", batch.Size()).Msg("provider call failed, will retry")
			}
			return nil, perr
		}
		if len(results) != len(batch.Texts) {
			return nil, &ProviderError{
				Code:    CodeUnknown,
				Message: "provider returned wrong result count",
				Cause:   &CountMismatchError{Expected: len(batch.Texts), Got: len(results)},
			}
		}

		chars := 0
		for _, text := range batch.Texts {
			chars += utf8.RuneCountInString(text)
		}
		d.usage.RecordAPICall(chars)

		return results, nil
	})
}

// classifyCallError maps a batch-level provider failure onto the error
// taxonomy. The per-call context carries only our own timeout, so a
// deadline error here is always a timed-out provider call.
func classifyCallError(err error) *ProviderError {
	var perr *ProviderError
	if errors.As(err, &perr) {
		return perr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &ProviderError{Code: CodeNetworkFailure, Message: "provider call timed out", Cause: err}
	}
	if errors.Is(err, context.Canceled) {
		return canceledError(err)
	}
	return &ProviderError{Code: CodeUnknown, Message: "provider call failed", Cause: err}
}

// asProviderError normalizes retry-loop errors (which may be raw context
// errors) into the provider taxonomy.
func asProviderError(err error) *ProviderError {
	var perr *ProviderError
	if errors.As(err, &perr) {
		return perr
	}
	return canceledError(err)
}

func canceledError(err error) *ProviderError {
	return &ProviderError{Code: CodeUnknown, Message: "dispatch canceled", Cause: err}
}

// failBatch marks every item in a batch with the same error.
func failBatch(batch Batch, perr *ProviderError) []Result {
	results := make([]Result, len(batch.Texts))
	for i := range results {
		results[i] = Result{Err: perr}
	}
	return results
}
