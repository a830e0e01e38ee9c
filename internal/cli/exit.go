package cli

import "fmt"

// ExitError carries a process exit code up through cobra so main can run
// its cleanup before exiting. It signals a reported, non-exceptional
// failure; main exits with Code without printing it again.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}
