package cli

import (
	"errors"
	"fmt"
	"testing"
)

func TestExitErrorCarriesCode(t *testing.T) {
	err := fmt.Errorf("command failed: %w", &ExitError{Code: 1})

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatal("ExitError not recoverable through a wrap")
	}
	if exitErr.Code != 1 {
		t.Errorf("Code = %d, want 1", exitErr.Code)
	}
}
