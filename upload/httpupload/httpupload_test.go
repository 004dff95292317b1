package httpupload_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zlnvch/tracereport/models"
	"github.com/zlnvch/tracereport/upload"
	"github.com/zlnvch/tracereport/upload/httpupload"
)

func TestUpload_Success(t *testing.T) {
	var gotBody []byte
	var gotContentType, gotAuth, gotPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotContentType = r.Header.Get("Content-Type")
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	u := httpupload.NewHTTPUploader(server.Client(), server.URL)
	token := models.BearerToken{AccessToken: "checkin-token"}

	err := u.Upload(context.Background(), token, []byte{0x08, 0x04})
	assert.NoError(t, err)
	assert.Equal(t, "/userupload", gotPath)
	assert.Equal(t, "application/x-protobuf", gotContentType)
	assert.Equal(t, "Bearer checkin-token", gotAuth)
	assert.Equal(t, []byte{0x08, 0x04}, gotBody)
}

func TestUpload_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	u := httpupload.NewHTTPUploader(server.Client(), server.URL)

	err := u.Upload(context.Background(), models.BearerToken{}, nil)
	var statusErr *upload.StatusError
	assert.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
}

func TestUpload_TransportFailure(t *testing.T) {
	u := httpupload.NewHTTPUploader(nil, "http://127.0.0.1:1")

	err := u.Upload(context.Background(), models.BearerToken{}, nil)
	var netErr *upload.NetworkError
	assert.ErrorAs(t, err, &netErr)
	assert.Error(t, netErr.Cause)
}

func TestUpload_CancelledContext(t *testing.T) {
	blocked := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-blocked
	}))
	defer server.Close()
	defer close(blocked)

	u := httpupload.NewHTTPUploader(server.Client(), server.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := u.Upload(ctx, models.BearerToken{}, nil)
	var netErr *upload.NetworkError
	assert.ErrorAs(t, err, &netErr)
}
