// Package cache provides fingerprint cache implementations for the
// translation dispatch engine.
package cache

// TranslationCache maps a (source text fingerprint, target language) key
// to its translation. Writes are idempotent: the first committed value for
// a key wins and is never overwritten, so concurrent workers racing on the
// same key always converge on one answer.
type TranslationCache interface {
	// Get retrieves a cached translation. Returns false if not present.
	Get(key string) (string, bool)

	// Put stores a translation unless the key already holds one.
	Put(key, value string) error

	// Contains reports whether the key holds a value.
	Contains(key string) bool
}
