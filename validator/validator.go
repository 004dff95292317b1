package validator

import (
	"context"
	"fmt"

	"github.com/zlnvch/tracereport/models"
)

// CodeValidator performs the two independent round trips of a report:
// one disclosing the onset date for a covid code, one handing out the
// authorization tokens. Both take a fake flag so decoy traffic goes down
// the exact same path.
type CodeValidator interface {
	RequestOnsetDate(ctx context.Context, code string, isFake bool) (models.OnsetDate, error)
	RequestTokens(ctx context.Context, code string, isFake bool) (models.TokenWrapper, error)
}

// ValidationError is returned when the server rejects a code, e.g.
// because it is invalid or expired. StatusCode is 0 for failures below
// the HTTP layer.
type ValidationError struct {
	StatusCode int
	Cause      error
}

func (e *ValidationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("code validation rejected with status %d", e.StatusCode)
	}
	return fmt.Sprintf("code validation failed: %v", e.Cause)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}
