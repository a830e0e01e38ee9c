package run

import (
	"errors"
	"fmt"
)

// ErrNoAvailableTheme signals that every candidate theme was used within the
// recency window. Fatal before any side effect; the caller should widen the
// window or add candidates.
var ErrNoAvailableTheme = errors.New("no available theme: all candidates used within the recency window")

// GenerationError wraps a failure of the article generation collaborator.
type GenerationError struct {
	Cause     error
	Transient bool // rate limit / network, worth retrying
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("article generation failed: %v", e.Cause)
}

func (e *GenerationError) Unwrap() error { return e.Cause }

// ImageError wraps a failure of the image generation collaborator. Always
// recoverable: the asset resolver falls back to a local render.
type ImageError struct {
	Cause error
}

func (e *ImageError) Error() string {
	return fmt.Sprintf("image generation failed: %v", e.Cause)
}

func (e *ImageError) Unwrap() error { return e.Cause }

// AuthError is a login rejection for one account. Not transient: retrying
// the same credentials will not help.
type AuthError struct {
	Account string
	Cause   error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("login failed for account %s: %v", e.Account, e.Cause)
}

func (e *AuthError) Unwrap() error { return e.Cause }

// PublishError is a failed post submission for one account.
type PublishError struct {
	Account   string
	Cause     error
	Transient bool // timeout / navigation failure, retried once
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish failed for account %s: %v", e.Account, e.Cause)
}

func (e *PublishError) Unwrap() error { return e.Cause }

// LedgerWriteError means the run finished but could not be durably recorded.
// Fatal: the run is not complete without a ledger entry, even if publishing
// succeeded. The operator must reconcile manually.
type LedgerWriteError struct {
	Cause error
}

func (e *LedgerWriteError) Error() string {
	return fmt.Sprintf("ledger write failed: %v", e.Cause)
}

func (e *LedgerWriteError) Unwrap() error { return e.Cause }

// IsTransient reports whether an error belongs to the narrow class worth an
// automatic retry (timeouts, navigation failures, rate limits).
func IsTransient(err error) bool {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr.Transient
	}
	var pubErr *PublishError
	if errors.As(err, &pubErr) {
		return pubErr.Transient
	}
	return false
}
