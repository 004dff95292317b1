package payload_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/zlnvch/tracereport/checkins/mocks"
	"github.com/zlnvch/tracereport/models"
	"github.com/zlnvch/tracereport/payload"
)

// decodedPayload is a minimal reader for the wire format, used to verify
// that Marshal produces what the upload endpoint expects.
type decodedPayload struct {
	version               uint64
	interactionDurationMs uint64
	venueInfos            [][]byte
}

func decodePayload(t *testing.T, buf []byte) decodedPayload {
	t.Helper()
	var p decodedPayload

	for len(buf) > 0 {
		num, typ, n := protowire.ConsumeTag(buf)
		assert.Greater(t, n, 0, "malformed tag")
		buf = buf[n:]

		switch num {
		case 1:
			assert.Equal(t, protowire.VarintType, typ)
			v, n := protowire.ConsumeVarint(buf)
			p.version = v
			buf = buf[n:]
		case 2:
			assert.Equal(t, protowire.BytesType, typ)
			b, n := protowire.ConsumeBytes(buf)
			p.venueInfos = append(p.venueInfos, b)
			buf = buf[n:]
		case 3:
			assert.Equal(t, protowire.VarintType, typ)
			v, n := protowire.ConsumeVarint(buf)
			p.interactionDurationMs = v
			buf = buf[n:]
		default:
			t.Fatalf("unexpected field number %d", num)
		}
	}

	return p
}

func decodeVenueInfo(t *testing.T, buf []byte) models.UploadVenueInfo {
	t.Helper()
	var info models.UploadVenueInfo

	for len(buf) > 0 {
		num, _, n := protowire.ConsumeTag(buf)
		assert.Greater(t, n, 0, "malformed tag")
		buf = buf[n:]

		switch num {
		case 1, 2, 3:
			b, n := protowire.ConsumeBytes(buf)
			buf = buf[n:]
			switch num {
			case 1:
				info.PreId = b
			case 2:
				info.TimeKey = b
			case 3:
				info.NotificationKey = b
			}
		case 4, 5, 6:
			v, n := protowire.ConsumeVarint(buf)
			buf = buf[n:]
			switch num {
			case 4:
				info.IntervalStartMs = int64(v)
			case 5:
				info.IntervalEndMs = int64(v)
			case 6:
				info.Fake = v == 1
			}
		default:
			t.Fatalf("unexpected venue info field number %d", num)
		}
	}

	return info
}

func TestMarshal_RoundTrip(t *testing.T) {
	real := models.UploadVenueInfo{
		PreId:           make([]byte, models.KeyLength),
		TimeKey:         make([]byte, models.KeyLength),
		NotificationKey: make([]byte, models.KeyLength),
		IntervalStartMs: 1700000000000,
		IntervalEndMs:   1700003600000,
		Fake:            false,
	}

	body := payload.Marshal(payload.Batch{
		Version:               payload.Version,
		InteractionDurationMs: 3000,
		VenueInfos:            []models.UploadVenueInfo{real},
	})

	decoded := decodePayload(t, body)
	assert.Equal(t, uint64(4), decoded.version)
	assert.Equal(t, uint64(3000), decoded.interactionDurationMs)
	assert.Len(t, decoded.venueInfos, 1)

	info := decodeVenueInfo(t, decoded.venueInfos[0])
	assert.Equal(t, real, info)
}

func TestMarshal_FullBatch(t *testing.T) {
	mockProtocol := new(mocks.MockVenueProtocol)
	batcher := payload.NewBatcher(mockProtocol)

	batch, err := batcher.BuildBatch(nil, 0, time.Now())
	assert.NoError(t, err)

	decoded := decodePayload(t, payload.Marshal(batch))
	assert.Equal(t, uint64(payload.Version), decoded.version)
	assert.Len(t, decoded.venueInfos, payload.BatchSize)

	chaff := decodeVenueInfo(t, decoded.venueInfos[0])
	assert.True(t, chaff.Fake)
	assert.Len(t, chaff.PreId, models.KeyLength)
}
