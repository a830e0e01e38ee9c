// Package run contains the pure domain rules of a single pipeline run:
// outcome derivation and the error taxonomy shared across stages.
package run

// Outcome is the overall result of one run, recorded in the ledger.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomePartial Outcome = "partial_success"
	OutcomeFailure Outcome = "failure"
)

// AttemptOutcome is the result of one per-account publish attempt.
type AttemptOutcome string

const (
	AttemptPublished  AttemptOutcome = "published"
	AttemptDraftSaved AttemptOutcome = "draft_saved"
	AttemptFailed     AttemptOutcome = "failed"
)

// DeriveOutcome folds per-account attempt outcomes into the run outcome.
// Draft saves count as success: the content reached the platform.
func DeriveOutcome(attempts []AttemptOutcome) Outcome {
	if len(attempts) == 0 {
		return OutcomeFailure
	}

	failed := 0
	for _, a := range attempts {
		if a == AttemptFailed {
			failed++
		}
	}

	switch failed {
	case 0:
		return OutcomeSuccess
	case len(attempts):
		return OutcomeFailure
	default:
		return OutcomePartial
	}
}
