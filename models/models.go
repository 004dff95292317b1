package models

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// OnsetDate is the server-disclosed estimated start of infectiousness,
// returned once per covid code.
type OnsetDate struct {
	Date       time.Time
	ServerTime time.Time
}

// BearerToken is an opaque JWT credential plus the claims this module
// cares about.
type BearerToken struct {
	AccessToken string
	ExpiresAt   time.Time
}

// ENToken authorizes exposure-key submission and carries its own onset date.
type ENToken struct {
	Onset time.Time
	Token BearerToken
}

// TokenWrapper bundles the two authorization artifacts bound to a code:
// one for the exposure-notification key upload, one for the venue
// check-in upload.
type TokenWrapper struct {
	Code         string
	ENToken      ENToken
	CheckInToken BearerToken
}

type ExposureStateKind int

const (
	ExposureStateConsent ExposureStateKind = iota
	ExposureStateFake
)

// ExposureState is the opaque consent blob handed back by the
// exposure-notification subsystem, or a fake marker used for decoy
// submissions.
type ExposureState struct {
	Kind ExposureStateKind
	Blob []byte
}

func FakeExposureState() ExposureState {
	return ExposureState{Kind: ExposureStateFake}
}

// CheckIn is a recorded venue visit. Departure is zero while the visit
// is still open; only checked-out entries are eligible for upload.
type CheckIn struct {
	Id        uuid.UUID
	VenueId   string
	Arrival   time.Time
	Departure time.Time
}

func (c CheckIn) CheckedOut() bool {
	return !c.Departure.IsZero()
}

// KeyLength is the size of each identifier field in an upload record.
const KeyLength = 32

// UploadVenueInfo is one record of the padded upload batch. Real records
// are derived by the venue protocol from a check-in; chaff records carry
// independently random fields and Fake=true.
type UploadVenueInfo struct {
	PreId           []byte
	TimeKey         []byte
	NotificationKey []byte
	IntervalStartMs int64
	IntervalEndMs   int64
	Fake            bool
}
