package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/zlnvch/tracereport/models"
)

type MockCheckInStore struct {
	mock.Mock
}

func (m *MockCheckInStore) SaveCheckIn(ctx context.Context, checkIn models.CheckIn) (models.CheckIn, error) {
	args := m.Called(ctx, checkIn)
	return args.Get(0).(models.CheckIn), args.Error(1)
}

func (m *MockCheckInStore) CheckOut(ctx context.Context, checkInId string) error {
	args := m.Called(ctx, checkInId)
	return args.Error(0)
}

func (m *MockCheckInStore) GetCompletedCheckIns(ctx context.Context) ([]models.CheckIn, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.CheckIn), args.Error(1)
}

type MockVenueProtocol struct {
	mock.Mock
}

func (m *MockVenueProtocol) DeriveUploadInfos(checkIn models.CheckIn) ([]models.UploadVenueInfo, error) {
	args := m.Called(checkIn)
	return args.Get(0).([]models.UploadVenueInfo), args.Error(1)
}
