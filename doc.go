// Package subtrans is the translation dispatch engine behind the bilingual
// subtitle pipeline.
//
// Subtrans sits between subtitle generation and remote translation
// back-ends. It deduplicates identical lines through a fingerprint cache,
// groups the remaining work into provider-sized batches, drives those
// batches through a rate-limited worker pool with bounded retries, and
// degrades to an always-available local fallback when a provider cannot
// answer. Callers get back exactly one translation per input line, in
// input order, no matter what the provider did.
//
// Basic usage:
//
//	import (
//	    "context"
//	    "github.com/ZaguanLabs/subtrans"
//	    "github.com/ZaguanLabs/subtrans/provider"
//	)
//
//	func main() {
//	    p := provider.NewMicrosoftProvider(provider.MicrosoftConfig{
//	        APIKey: os.Getenv("AZURE_TRANSLATOR_KEY"),
//	    })
//
//	    engine, err := subtrans.NewEngine(p,
//	        subtrans.WithMaxParallelWorkers(5),
//	        subtrans.WithRequestsPerSecond(10),
//	    )
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    lines := engine.TranslateMany(context.Background(),
//	        []string{"Hello", "World"}, "zh", nil)
//	    fmt.Println(lines) // [你好 世界]
//	}
package subtrans
