package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type MockReportStore struct {
	mock.Mock
}

func (m *MockReportStore) SetOldestSharedKeyDate(ctx context.Context, date time.Time) error {
	args := m.Called(ctx, date)
	return args.Error(0)
}

func (m *MockReportStore) GetOldestSharedKeyDate(ctx context.Context) (time.Time, error) {
	args := m.Called(ctx)
	return args.Get(0).(time.Time), args.Error(1)
}

func (m *MockReportStore) SetEndIsolationQuestionDate(ctx context.Context, date time.Time) error {
	args := m.Called(ctx, date)
	return args.Error(0)
}

func (m *MockReportStore) GetEndIsolationQuestionDate(ctx context.Context) (time.Time, error) {
	args := m.Called(ctx)
	return args.Get(0).(time.Time), args.Error(1)
}
