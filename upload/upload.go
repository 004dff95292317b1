package upload

import (
	"context"
	"fmt"

	"github.com/zlnvch/tracereport/models"
)

// Uploader posts a serialized check-in batch, authenticated with the
// check-in bearer token.
type Uploader interface {
	Upload(ctx context.Context, token models.BearerToken, body []byte) error
}

// StatusError reports a non-200 response from the upload endpoint.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upload rejected with status %d", e.StatusCode)
}

// NetworkError reports a failure below the HTTP layer.
type NetworkError struct {
	Cause error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("upload network failure: %v", e.Cause)
}

func (e *NetworkError) Unwrap() error {
	return e.Cause
}
