package httpupload

import (
	"bytes"
	"context"
	"net/http"

	"github.com/zlnvch/tracereport/models"
	"github.com/zlnvch/tracereport/upload"
)

const uploadPath = "/userupload"

type HTTPUploader struct {
	client  *http.Client
	baseURL string
}

func NewHTTPUploader(client *http.Client, baseURL string) *HTTPUploader {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPUploader{client: client, baseURL: baseURL}
}

func (u *HTTPUploader) Upload(ctx context.Context, token models.BearerToken, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.baseURL+uploadPath, bytes.NewReader(body))
	if err != nil {
		return &upload.NetworkError{Cause: err}
	}
	req.Header.Set("Content-Type", "application/x-protobuf")
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	resp, err := u.client.Do(req)
	if err != nil {
		return &upload.NetworkError{Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &upload.StatusError{StatusCode: resp.StatusCode}
	}
	return nil
}
