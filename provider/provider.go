// Package provider contains translation back-end adapters.
//
// Every adapter exposes the same contract: one Result per input text, in
// input order, with per-item failures carried as values. Only adapter-wide
// failures (endpoint unreachable, unusable response) abort a whole call.
package provider

import "github.com/ZaguanLabs/subtrans"

// Provider is the interface for translation back-ends.
// This is an alias to the main package interface for convenience.
type Provider = subtrans.Provider

// Result is an alias to the main package type.
type Result = subtrans.Result

// okResults wraps successful translations into per-item results.
func okResults(texts []string) []Result {
	results := make([]Result, len(texts))
	for i, text := range texts {
		results[i] = Result{Text: text}
	}
	return results
}
