package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/ZaguanLabs/subtrans"
)

func libreMirror(t *testing.T, handler http.HandlerFunc) string {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv.URL
}

func echoTranslator(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req libreRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Decoding request: %v", err)
		}
		json.NewEncoder(w).Encode(libreResponse{TranslatedText: "zh:" + req.Q})
	}
}

func TestLibreProvider_TranslateBatch(t *testing.T) {
	mirror := libreMirror(t, echoTranslator(t))
	p := NewLibreProvider(LibreConfig{Mirrors: []string{mirror}})

	results, err := p.TranslateBatch(context.Background(), []string{"Hello", "World"}, "zh")
	if err != nil {
		t.Fatalf("TranslateBatch failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if results[0].Text != "zh:Hello" || results[1].Text != "zh:World" {
		t.Errorf("Unexpected results: %v", results)
	}
}

func TestLibreProvider_MirrorRotation(t *testing.T) {
	var deadCalls atomic.Int32
	dead := libreMirror(t, func(w http.ResponseWriter, r *http.Request) {
		deadCalls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	alive := libreMirror(t, echoTranslator(t))

	p := NewLibreProvider(LibreConfig{Mirrors: []string{dead, alive}})

	results, err := p.TranslateBatch(context.Background(), []string{"Hello", "World"}, "zh")
	if err != nil {
		t.Fatalf("TranslateBatch failed: %v", err)
	}
	if results[0].Text != "zh:Hello" || results[1].Text != "zh:World" {
		t.Errorf("Expected second mirror to serve both texts, got %v", results)
	}

	// The dead mirror is tried once, then rotation sticks with the live one.
	if deadCalls.Load() != 1 {
		t.Errorf("Dead mirror called %d times, want 1", deadCalls.Load())
	}
}

func TestLibreProvider_PerItemErrors(t *testing.T) {
	mirror := libreMirror(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	p := NewLibreProvider(LibreConfig{Mirrors: []string{mirror}})

	results, err := p.TranslateBatch(context.Background(), []string{"Hello"}, "zh")
	if err != nil {
		t.Fatalf("Expected per-item errors, not a batch error: %v", err)
	}
	if results[0].Err == nil {
		t.Fatal("Expected a per-item error")
	}
	if results[0].Err.Code != subtrans.CodeRateLimited {
		t.Errorf("Code = %q, want %q", results[0].Err.Code, subtrans.CodeRateLimited)
	}
}

func TestLibreProvider_CancelledContextAbortsBatch(t *testing.T) {
	mirror := libreMirror(t, echoTranslator(t))
	p := NewLibreProvider(LibreConfig{Mirrors: []string{mirror}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.TranslateBatch(ctx, []string{"Hello"}, "zh")
	if err == nil {
		t.Fatal("Expected a batch error on cancelled context")
	}
}

func TestLibreProvider_DefaultMirrors(t *testing.T) {
	p := NewLibreProvider(LibreConfig{})
	if len(p.mirrors) != len(defaultLibreMirrors) {
		t.Errorf("Expected default mirrors, got %v", p.mirrors)
	}
}
