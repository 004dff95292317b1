package venueproto

import (
	"crypto/hmac"
	"crypto/sha256"
	"time"

	"github.com/zlnvch/tracereport/models"
)

// sliceLength is the interval granularity of derived upload records: a
// visit spanning several slices expands into one record per slice.
const sliceLength = time.Hour

// HMACVenueProtocol is a self-contained venue protocol: record keys are
// derived with HMAC-SHA256 from a device secret, the venue id and the
// slice start, so the server can match notified venues without learning
// the visit list.
type HMACVenueProtocol struct {
	secret []byte
}

func NewHMACVenueProtocol(secret []byte) *HMACVenueProtocol {
	return &HMACVenueProtocol{secret: secret}
}

func (p *HMACVenueProtocol) DeriveUploadInfos(checkIn models.CheckIn) ([]models.UploadVenueInfo, error) {
	if !checkIn.CheckedOut() {
		return nil, nil
	}

	var infos []models.UploadVenueInfo

	sliceStart := checkIn.Arrival.Truncate(sliceLength)
	for sliceStart.Before(checkIn.Departure) {
		sliceEnd := sliceStart.Add(sliceLength)

		start := maxTime(checkIn.Arrival, sliceStart)
		end := minTime(checkIn.Departure, sliceEnd)

		infos = append(infos, models.UploadVenueInfo{
			PreId:           p.derive("preid", checkIn.VenueId, sliceStart),
			TimeKey:         p.derive("timekey", checkIn.VenueId, sliceStart),
			NotificationKey: p.derive("notificationkey", checkIn.VenueId, sliceStart),
			IntervalStartMs: start.UnixMilli(),
			IntervalEndMs:   end.UnixMilli(),
			Fake:            false,
		})

		sliceStart = sliceEnd
	}

	return infos, nil
}

func (p *HMACVenueProtocol) derive(label string, venueId string, sliceStart time.Time) []byte {
	mac := hmac.New(sha256.New, p.secret)
	mac.Write([]byte(label))
	mac.Write([]byte{0})
	mac.Write([]byte(venueId))
	mac.Write([]byte{0})
	mac.Write([]byte(sliceStart.UTC().Format(time.RFC3339)))
	return mac.Sum(nil)
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
