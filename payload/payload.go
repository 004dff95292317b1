package payload

import (
	"crypto/rand"
	"fmt"
	mathrand "math/rand/v2"
	"time"

	"github.com/zlnvch/tracereport/checkins"
	"github.com/zlnvch/tracereport/models"
)

// BatchSize is the fixed record count of every upload. Real records are
// topped up with chaff so the server (and anyone on the wire) can't tell
// how many venues were actually disclosed.
const BatchSize = 1024

// Version is the upload payload protocol version.
const Version = 4

const (
	chaffIntervalWindow = 14 * 24 * time.Hour
	chaffIntervalMax    = 24 * time.Hour
)

// Batch is a fully assembled upload payload, ready for serialization.
type Batch struct {
	Version               uint32
	InteractionDurationMs uint32
	VenueInfos            []models.UploadVenueInfo
}

// Batcher turns selected check-ins into a padded upload batch. Record
// derivation is delegated to the venue protocol; the batcher only skips
// open visits, pads with chaff and stamps the interaction duration.
type Batcher struct {
	protocol checkins.VenueProtocol
}

func NewBatcher(protocol checkins.VenueProtocol) *Batcher {
	return &Batcher{protocol: protocol}
}

func (b *Batcher) BuildBatch(selected []models.CheckIn, interaction time.Duration, now time.Time) (Batch, error) {
	infos := make([]models.UploadVenueInfo, 0, BatchSize)

	for _, checkIn := range selected {
		if !checkIn.CheckedOut() {
			continue
		}
		derived, err := b.protocol.DeriveUploadInfos(checkIn)
		if err != nil {
			return Batch{}, fmt.Errorf("derive upload infos for venue %s: %w", checkIn.VenueId, err)
		}
		infos = append(infos, derived...)
	}

	// Never drop a real record: when real records alone reach the batch
	// size the batch goes out oversized and chaff count clamps at zero.
	fakeCount := BatchSize - len(infos)
	for i := 0; i < fakeCount; i++ {
		chaff, err := newChaffRecord(now)
		if err != nil {
			return Batch{}, err
		}
		infos = append(infos, chaff)
	}

	interactionMs := interaction.Milliseconds()
	if interactionMs < 0 {
		interactionMs = 0
	}

	return Batch{
		Version:               Version,
		InteractionDurationMs: uint32(interactionMs),
		VenueInfos:            infos,
	}, nil
}

// newChaffRecord builds a record indistinguishable from a real one: every
// key field is freshly random and the interval is drawn from the same
// two-week window real check-ins come from.
func newChaffRecord(now time.Time) (models.UploadVenueInfo, error) {
	preId, err := randomKey()
	if err != nil {
		return models.UploadVenueInfo{}, err
	}
	timeKey, err := randomKey()
	if err != nil {
		return models.UploadVenueInfo{}, err
	}
	notificationKey, err := randomKey()
	if err != nil {
		return models.UploadVenueInfo{}, err
	}

	start := now.Add(-time.Duration(mathrand.Int64N(int64(chaffIntervalWindow))))
	end := start.Add(time.Duration(mathrand.Int64N(int64(chaffIntervalMax))))

	return models.UploadVenueInfo{
		PreId:           preId,
		TimeKey:         timeKey,
		NotificationKey: notificationKey,
		IntervalStartMs: start.UnixMilli(),
		IntervalEndMs:   end.UnixMilli(),
		Fake:            true,
	}, nil
}

func randomKey() ([]byte, error) {
	key := make([]byte, models.KeyLength)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("chaff key generation: %w", err)
	}
	return key, nil
}
