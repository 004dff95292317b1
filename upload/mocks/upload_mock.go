package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/zlnvch/tracereport/models"
)

type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, token models.BearerToken, body []byte) error {
	args := m.Called(ctx, token, body)
	return args.Error(0)
}
