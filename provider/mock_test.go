package provider

import (
	"context"
	"testing"

	"github.com/ZaguanLabs/subtrans"
)

func TestMockProvider_Defaults(t *testing.T) {
	m := NewMockProvider()

	results, err := m.TranslateBatch(context.Background(), []string{"Hello", "unknown"}, "zh")
	if err != nil {
		t.Fatalf("TranslateBatch failed: %v", err)
	}
	if results[0].Text != "你好" {
		t.Errorf("Dictionary result = %q, want 你好", results[0].Text)
	}
	if results[1].Text != "[unknown]" {
		t.Errorf("Unknown text = %q, want bracketed original", results[1].Text)
	}
}

func TestMockProvider_RecordsCalls(t *testing.T) {
	m := NewMockProvider()
	ctx := context.Background()

	m.TranslateBatch(ctx, []string{"a"}, "zh")
	m.TranslateBatch(ctx, []string{"b", "c"}, "zh")

	if m.CallCount() != 2 {
		t.Errorf("CallCount = %d, want 2", m.CallCount())
	}
	if got := m.LastTexts(); len(got) != 2 || got[0] != "b" {
		t.Errorf("LastTexts = %v", got)
	}
	if len(m.CallTimestamps()) != 2 {
		t.Errorf("Expected 2 timestamps, got %d", len(m.CallTimestamps()))
	}

	m.Reset()
	if m.CallCount() != 0 {
		t.Errorf("CallCount after reset = %d, want 0", m.CallCount())
	}
}

func TestMockProvider_ScriptedFailures(t *testing.T) {
	m := NewMockProvider()
	m.FailBatches = 1
	m.FailWith = &subtrans.ProviderError{Code: subtrans.CodeRateLimited, Message: "scripted"}
	ctx := context.Background()

	_, err := m.TranslateBatch(ctx, []string{"a"}, "zh")
	if err == nil {
		t.Fatal("Expected the first call to fail")
	}

	if _, err := m.TranslateBatch(ctx, []string{"a"}, "zh"); err != nil {
		t.Fatalf("Expected the second call to succeed, got %v", err)
	}
}
