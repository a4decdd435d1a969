package subtrans

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// normalizeText strips leading and trailing whitespace. Case and
// punctuation are preserved so distinct casings stay distinct keys.
func normalizeText(text string) string {
	return strings.TrimSpace(text)
}

// Fingerprint computes the SHA-256 hash of the normalized text.
func Fingerprint(text string) string {
	sum := sha256.Sum256([]byte(normalizeText(text)))
	return hex.EncodeToString(sum[:])
}

// CacheKey generates a cache key from a text fingerprint and target language.
func CacheKey(fingerprint, targetLang string) string {
	return fingerprint + ":" + targetLang
}

// String returns the cache key for this Key.
func (k Key) String() string {
	return CacheKey(Fingerprint(k.Text), k.TargetLang)
}
