package exposure

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zlnvch/tracereport/models"
)

// Subsystem is the exposure-notification collaborator: consent
// acquisition, authenticated key submission and status resync.
type Subsystem interface {
	// AcquireConsent asks the user to authorize exposure-key sharing and
	// returns the opaque state blob the submission phase needs.
	AcquireConsent(ctx context.Context) (models.ExposureState, error)

	// SubmitKeys uploads the exposure keys held in state, authorized by
	// the EN bearer token. It returns the server-reported date of the
	// oldest shared key.
	SubmitKeys(ctx context.Context, state models.ExposureState, onset time.Time, token models.BearerToken) (time.Time, error)

	// Resync refreshes the tracing status after a completed report.
	Resync(ctx context.Context) error
}

// ErrPermission is returned when a real submission is attempted without
// previously acquired user consent.
var ErrPermission = errors.New("user consent required")

// TracingError wraps failures of the exposure-notification subsystem.
type TracingError struct {
	Op    string
	Cause error
}

func (e *TracingError) Error() string {
	return fmt.Sprintf("tracing %s failed: %v", e.Op, e.Cause)
}

func (e *TracingError) Unwrap() error {
	return e.Cause
}
