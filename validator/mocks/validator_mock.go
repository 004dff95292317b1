package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/zlnvch/tracereport/models"
)

type MockCodeValidator struct {
	mock.Mock
}

func (m *MockCodeValidator) RequestOnsetDate(ctx context.Context, code string, isFake bool) (models.OnsetDate, error) {
	args := m.Called(ctx, code, isFake)
	return args.Get(0).(models.OnsetDate), args.Error(1)
}

func (m *MockCodeValidator) RequestTokens(ctx context.Context, code string, isFake bool) (models.TokenWrapper, error) {
	args := m.Called(ctx, code, isFake)
	return args.Get(0).(models.TokenWrapper), args.Error(1)
}
