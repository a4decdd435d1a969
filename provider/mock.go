package provider

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ZaguanLabs/subtrans"
)

// MockProvider is a scriptable provider for testing. It records every call
// with its timestamp, so tests can assert on dedup, batching, and rate
// ceilings.
type MockProvider struct {
	mu sync.Mutex

	// Translations maps source text to translation. Unknown texts come
	// back bracketed so tests can spot them.
	Translations map[string]string

	// FailBatches makes the first N calls fail with FailWith.
	FailBatches int
	// FailWith is the batch-level error returned while failing.
	FailWith *subtrans.ProviderError
	// Delay is an artificial latency per call.
	Delay time.Duration

	callCount      int
	callTimestamps []time.Time
	lastTexts      []string
}

// NewMockProvider creates a mock with a small default dictionary.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Translations: map[string]string{
			"Hello": "你好",
			"World": "世界",
		},
	}
}

// TranslateBatch returns scripted translations.
func (m *MockProvider) TranslateBatch(ctx context.Context, texts []string, targetLang string) ([]Result, error) {
	m.mu.Lock()
	m.callCount++
	m.callTimestamps = append(m.callTimestamps, time.Now())
	m.lastTexts = append([]string(nil), texts...)
	failing := m.FailBatches > 0
	if failing {
		m.FailBatches--
	}
	failWith := m.FailWith
	delay := m.Delay
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	if failing {
		if failWith == nil {
			failWith = &subtrans.ProviderError{Code: subtrans.CodeNetworkFailure, Message: "scripted failure"}
		}
		return nil, failWith
	}

	results := make([]Result, len(texts))
	for i, text := range texts {
		if translation, ok := m.Translations[text]; ok {
			results[i] = Result{Text: translation}
		} else {
			results[i] = Result{Text: fmt.Sprintf("[%s]", text)}
		}
	}
	return results, nil
}

// CallCount returns how many times TranslateBatch was invoked.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// CallTimestamps returns the time of each invocation.
func (m *MockProvider) CallTimestamps() []time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Time(nil), m.callTimestamps...)
}

// LastTexts returns the texts of the most recent invocation.
func (m *MockProvider) LastTexts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.lastTexts...)
}

// Reset clears recorded calls.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.callTimestamps = nil
	m.lastTexts = nil
}

// Verify MockProvider implements Provider
var _ Provider = (*MockProvider)(nil)
