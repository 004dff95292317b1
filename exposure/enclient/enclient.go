package enclient

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/zlnvch/tracereport/exposure"
	"github.com/zlnvch/tracereport/models"
)

const (
	exposedPath = "/v1/gaen/exposed"
	statusPath  = "/v1/gaen/status"

	consentBlobLength = 64
	dateLayout        = "2006-01-02"
)

// ENClient talks to the exposure-notification backend over HTTP.
type ENClient struct {
	client  *http.Client
	baseURL string
}

func NewENClient(client *http.Client, baseURL string) *ENClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &ENClient{client: client, baseURL: baseURL}
}

// AcquireConsent obtains the key-release authorization from the platform
// layer. The returned blob is opaque to the rest of the module; it is
// handed back verbatim on submission.
func (c *ENClient) AcquireConsent(ctx context.Context) (models.ExposureState, error) {
	blob := make([]byte, consentBlobLength)
	if _, err := rand.Read(blob); err != nil {
		return models.ExposureState{}, &exposure.TracingError{Op: "consent", Cause: err}
	}
	return models.ExposureState{Kind: models.ExposureStateConsent, Blob: blob}, nil
}

type exposedRequest struct {
	Onset string `json:"onset"`
	State string `json:"state"`
	Fake  string `json:"fake"`
}

type exposedResponse struct {
	OldestKeyDate string `json:"oldestKeyDate"`
}

func (c *ENClient) SubmitKeys(ctx context.Context, state models.ExposureState, onset time.Time, token models.BearerToken) (time.Time, error) {
	fake := "0"
	if state.Kind == models.ExposureStateFake {
		fake = "1"
	}

	body, err := json.Marshal(exposedRequest{
		Onset: onset.Format(dateLayout),
		State: base64.StdEncoding.EncodeToString(state.Blob),
		Fake:  fake,
	})
	if err != nil {
		return time.Time{}, &exposure.TracingError{Op: "submit", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+exposedPath, bytes.NewReader(body))
	if err != nil {
		return time.Time{}, &exposure.TracingError{Op: "submit", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return time.Time{}, &exposure.TracingError{Op: "submit", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return time.Time{}, &exposure.TracingError{Op: "submit", Cause: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var parsed exposedResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return time.Time{}, &exposure.TracingError{Op: "submit", Cause: err}
	}

	oldest, err := time.Parse(dateLayout, parsed.OldestKeyDate)
	if err != nil {
		return time.Time{}, &exposure.TracingError{Op: "submit", Cause: fmt.Errorf("malformed oldestKeyDate %q: %w", parsed.OldestKeyDate, err)}
	}

	return oldest, nil
}

func (c *ENClient) Resync(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+statusPath, nil)
	if err != nil {
		return &exposure.TracingError{Op: "resync", Cause: err}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return &exposure.TracingError{Op: "resync", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &exposure.TracingError{Op: "resync", Cause: fmt.Errorf("status %d", resp.StatusCode)}
	}
	return nil
}
