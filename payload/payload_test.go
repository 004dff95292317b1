package payload_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/zlnvch/tracereport/checkins/mocks"
	"github.com/zlnvch/tracereport/models"
	"github.com/zlnvch/tracereport/payload"
)

func completedCheckIn(venueId string, arrival time.Time, duration time.Duration) models.CheckIn {
	return models.CheckIn{
		VenueId:   venueId,
		Arrival:   arrival,
		Departure: arrival.Add(duration),
	}
}

func realInfo(venueId string) models.UploadVenueInfo {
	key := make([]byte, models.KeyLength)
	copy(key, venueId)
	return models.UploadVenueInfo{
		PreId:           key,
		TimeKey:         key,
		NotificationKey: key,
		IntervalStartMs: 1000,
		IntervalEndMs:   2000,
		Fake:            false,
	}
}

func TestBuildBatch_EmptySelectionIsAllChaff(t *testing.T) {
	mockProtocol := new(mocks.MockVenueProtocol)
	batcher := payload.NewBatcher(mockProtocol)

	batch, err := batcher.BuildBatch(nil, 0, time.Now())
	assert.NoError(t, err)
	assert.Len(t, batch.VenueInfos, payload.BatchSize)
	for _, info := range batch.VenueInfos {
		assert.True(t, info.Fake)
	}
	mockProtocol.AssertNotCalled(t, "DeriveUploadInfos")
}

func TestBuildBatch_PadsRealRecordsToFixedSize(t *testing.T) {
	mockProtocol := new(mocks.MockVenueProtocol)
	batcher := payload.NewBatcher(mockProtocol)
	now := time.Now()

	c1 := completedCheckIn("venue-a", now.Add(-3*time.Hour), time.Hour)
	c2 := completedCheckIn("venue-b", now.Add(-2*time.Hour), 30*time.Minute)

	mockProtocol.On("DeriveUploadInfos", c1).Return([]models.UploadVenueInfo{realInfo("a1"), realInfo("a2")}, nil)
	mockProtocol.On("DeriveUploadInfos", c2).Return([]models.UploadVenueInfo{realInfo("b1")}, nil)

	batch, err := batcher.BuildBatch([]models.CheckIn{c1, c2}, 0, now)
	assert.NoError(t, err)
	assert.Len(t, batch.VenueInfos, payload.BatchSize)

	realCount := 0
	for _, info := range batch.VenueInfos {
		if !info.Fake {
			realCount++
		}
	}
	assert.Equal(t, 3, realCount)
	mockProtocol.AssertExpectations(t)
}

func TestBuildBatch_SkipsOpenCheckIns(t *testing.T) {
	mockProtocol := new(mocks.MockVenueProtocol)
	batcher := payload.NewBatcher(mockProtocol)
	now := time.Now()

	open := models.CheckIn{VenueId: "venue-open", Arrival: now.Add(-time.Hour)}

	batch, err := batcher.BuildBatch([]models.CheckIn{open}, 0, now)
	assert.NoError(t, err)
	assert.Len(t, batch.VenueInfos, payload.BatchSize)
	mockProtocol.AssertNotCalled(t, "DeriveUploadInfos")
}

func TestBuildBatch_NeverTruncatesRealRecords(t *testing.T) {
	mockProtocol := new(mocks.MockVenueProtocol)
	batcher := payload.NewBatcher(mockProtocol)
	now := time.Now()

	oversized := make([]models.UploadVenueInfo, payload.BatchSize+10)
	for i := range oversized {
		oversized[i] = realInfo("big")
	}

	c := completedCheckIn("venue-big", now.Add(-time.Hour), time.Hour)
	mockProtocol.On("DeriveUploadInfos", c).Return(oversized, nil)

	batch, err := batcher.BuildBatch([]models.CheckIn{c}, 0, now)
	assert.NoError(t, err)
	assert.Len(t, batch.VenueInfos, payload.BatchSize+10)
	for _, info := range batch.VenueInfos {
		assert.False(t, info.Fake)
	}
}

func TestBuildBatch_ChaffFieldsAreIndependentlyRandom(t *testing.T) {
	mockProtocol := new(mocks.MockVenueProtocol)
	batcher := payload.NewBatcher(mockProtocol)

	batch, err := batcher.BuildBatch(nil, 0, time.Now())
	assert.NoError(t, err)

	seen := make(map[string]bool)
	for _, info := range batch.VenueInfos {
		assert.Len(t, info.PreId, models.KeyLength)
		assert.Len(t, info.TimeKey, models.KeyLength)
		assert.Len(t, info.NotificationKey, models.KeyLength)
		assert.LessOrEqual(t, info.IntervalStartMs, info.IntervalEndMs)

		// Uniqueness sampling: 32 random bytes colliding means a broken source
		for _, key := range [][]byte{info.PreId, info.TimeKey, info.NotificationKey} {
			assert.False(t, seen[string(key)], "duplicate chaff key")
			seen[string(key)] = true
		}
	}
}

func TestBuildBatch_StampsVersionAndInteractionDuration(t *testing.T) {
	mockProtocol := new(mocks.MockVenueProtocol)
	batcher := payload.NewBatcher(mockProtocol)

	batch, err := batcher.BuildBatch(nil, 2500*time.Millisecond, time.Now())
	assert.NoError(t, err)
	assert.Equal(t, uint32(payload.Version), batch.Version)
	assert.Equal(t, uint32(2500), batch.InteractionDurationMs)
}
