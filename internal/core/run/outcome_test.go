package run

import (
	"errors"
	"fmt"
	"testing"
)

func TestDeriveOutcome(t *testing.T) {
	tests := []struct {
		name     string
		attempts []AttemptOutcome
		want     Outcome
	}{
		{"no attempts", nil, OutcomeFailure},
		{"all published", []AttemptOutcome{AttemptPublished, AttemptPublished}, OutcomeSuccess},
		{"all drafts", []AttemptOutcome{AttemptDraftSaved, AttemptDraftSaved}, OutcomeSuccess},
		{"mixed success kinds", []AttemptOutcome{AttemptPublished, AttemptDraftSaved}, OutcomeSuccess},
		{"one failed", []AttemptOutcome{AttemptPublished, AttemptFailed}, OutcomePartial},
		{"all failed", []AttemptOutcome{AttemptFailed, AttemptFailed}, OutcomeFailure},
		{"single failed", []AttemptOutcome{AttemptFailed}, OutcomeFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveOutcome(tt.attempts); got != tt.want {
				t.Errorf("DeriveOutcome(%v) = %s, want %s", tt.attempts, got, tt.want)
			}
		})
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limited generation", &GenerationError{Cause: errors.New("429"), Transient: true}, true},
		{"invalid key", &GenerationError{Cause: errors.New("401")}, false},
		{"publish timeout", &PublishError{Account: "a", Cause: errors.New("timeout"), Transient: true}, true},
		{"layout change", &PublishError{Account: "a", Cause: errors.New("selector missing")}, false},
		{"auth rejection", &AuthError{Account: "a", Cause: errors.New("rejected")}, false},
		{"plain error", errors.New("boom"), false},
		{"wrapped transient", fmt.Errorf("attempt failed: %w", &PublishError{Account: "a", Cause: errors.New("nav"), Transient: true}), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrorUnwrapping(t *testing.T) {
	cause := errors.New("root cause")
	wrapped := []error{
		&GenerationError{Cause: cause},
		&ImageError{Cause: cause},
		&AuthError{Account: "a", Cause: cause},
		&PublishError{Account: "a", Cause: cause},
		&LedgerWriteError{Cause: cause},
	}
	for _, err := range wrapped {
		if !errors.Is(err, cause) {
			t.Errorf("%T does not unwrap to its cause", err)
		}
	}
}
