package enclient_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/zlnvch/tracereport/exposure"
	"github.com/zlnvch/tracereport/exposure/enclient"
	"github.com/zlnvch/tracereport/models"
)

func TestAcquireConsent(t *testing.T) {
	c := enclient.NewENClient(nil, "http://unused")

	state, err := c.AcquireConsent(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, models.ExposureStateConsent, state.Kind)
	assert.NotEmpty(t, state.Blob)

	other, err := c.AcquireConsent(context.Background())
	assert.NoError(t, err)
	assert.NotEqual(t, state.Blob, other.Blob)
}

func TestSubmitKeys_Success(t *testing.T) {
	var gotAuth string
	var gotBody map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/gaen/exposed", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]string{"oldestKeyDate": "2021-03-05"})
	}))
	defer server.Close()

	c := enclient.NewENClient(server.Client(), server.URL)
	state := models.ExposureState{Kind: models.ExposureStateConsent, Blob: []byte("blob")}
	onset := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)

	oldest, err := c.SubmitKeys(context.Background(), state, onset, models.BearerToken{AccessToken: "en-token"})
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2021, 3, 5, 0, 0, 0, 0, time.UTC), oldest)
	assert.Equal(t, "Bearer en-token", gotAuth)
	assert.Equal(t, "2021-03-01", gotBody["onset"])
	assert.Equal(t, "0", gotBody["fake"])
}

func TestSubmitKeys_FakeStateSetsFlag(t *testing.T) {
	var gotBody map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]string{"oldestKeyDate": "2021-03-05"})
	}))
	defer server.Close()

	c := enclient.NewENClient(server.Client(), server.URL)

	_, err := c.SubmitKeys(context.Background(), models.FakeExposureState(), time.Now(), models.BearerToken{})
	assert.NoError(t, err)
	assert.Equal(t, "1", gotBody["fake"])
}

func TestSubmitKeys_BackendError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := enclient.NewENClient(server.Client(), server.URL)

	_, err := c.SubmitKeys(context.Background(), models.FakeExposureState(), time.Now(), models.BearerToken{})
	var tracingErr *exposure.TracingError
	assert.ErrorAs(t, err, &tracingErr)
	assert.Equal(t, "submit", tracingErr.Op)
}

func TestResync(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/gaen/status", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := enclient.NewENClient(server.Client(), server.URL)
	assert.NoError(t, c.Resync(context.Background()))
}
