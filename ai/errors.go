package ai

import "errors"

var (
	// ErrMalformedResponse indicates the extraction service returned a
	// response that could not be interpreted. Retryable: models frequently
	// produce well-formed output on a second attempt.
	ErrMalformedResponse = errors.New("malformed extraction response")

	// ErrTransient indicates a transient service failure such as a timeout,
	// rate limit, or connection reset. Retryable with backoff.
	ErrTransient = errors.New("transient extraction failure")
)

// IsRetryable reports whether an extraction error is worth retrying.
// Everything outside the malformed-response and transient classes is fatal
// for the document being processed.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrMalformedResponse) || errors.Is(err, ErrTransient)
}
