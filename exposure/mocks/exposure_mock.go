package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/zlnvch/tracereport/models"
)

type MockSubsystem struct {
	mock.Mock
}

func (m *MockSubsystem) AcquireConsent(ctx context.Context) (models.ExposureState, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.ExposureState), args.Error(1)
}

func (m *MockSubsystem) SubmitKeys(ctx context.Context, state models.ExposureState, onset time.Time, token models.BearerToken) (time.Time, error) {
	args := m.Called(ctx, state, onset, token)
	return args.Get(0).(time.Time), args.Error(1)
}

func (m *MockSubsystem) Resync(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
