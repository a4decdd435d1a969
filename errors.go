package subtrans

import "fmt"

// ErrorCode classifies a provider failure.
type ErrorCode string

const (
	// CodeUnauthorized means the API key was rejected. Account-wide.
	CodeUnauthorized ErrorCode = "unauthorized"
	// CodeQuotaExceeded means the account's quota is exhausted. Account-wide.
	CodeQuotaExceeded ErrorCode = "quota_exceeded"
	// CodeRateLimited means the provider throttled the call. Retryable.
	CodeRateLimited ErrorCode = "rate_limited"
	// CodeUnsupportedLanguage means the target language is not offered.
	CodeUnsupportedLanguage ErrorCode = "unsupported_language"
	// CodeNetworkFailure means the call never produced a usable response.
	// Timeouts are classified here. Retryable.
	CodeNetworkFailure ErrorCode = "network_failure"
	// CodeUnknown covers everything else.
	CodeUnknown ErrorCode = "unknown"
)

// ProviderError indicates a translation back-end failure.
type ProviderError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func (e *ProviderError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("provider error (%s): %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("provider error (%s): %s", e.Code, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// Retryable reports whether the failure is transient enough to retry.
func (e *ProviderError) Retryable() bool {
	return e.Code == CodeRateLimited || e.Code == CodeNetworkFailure
}

// AccountWide reports whether the failure condemns every pending call on
// this account, not just the batch that observed it.
func (e *ProviderError) AccountWide() bool {
	return e.Code == CodeUnauthorized || e.Code == CodeQuotaExceeded
}

// ConfigError indicates an invalid engine configuration. It is fatal at
// construction time; the engine never silently clamps bad values.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s: %s", e.Field, e.Message)
}

// CountMismatchError indicates a provider returned a different number of
// translations than it was asked for.
type CountMismatchError struct {
	Expected int
	Got      int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("translation count mismatch: expected %d, got %d", e.Expected, e.Got)
}
