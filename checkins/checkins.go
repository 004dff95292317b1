package checkins

import (
	"context"
	"errors"

	"github.com/zlnvch/tracereport/models"
)

type CheckInStore interface {
	SaveCheckIn(ctx context.Context, checkIn models.CheckIn) (models.CheckIn, error)
	CheckOut(ctx context.Context, checkInId string) error
	GetCompletedCheckIns(ctx context.Context) ([]models.CheckIn, error)
}

// VenueProtocol is the external privacy-preserving check-in protocol. It
// derives zero or more upload records covering the arrival-to-departure
// interval; interval slicing and key derivation happen inside the
// protocol, not here.
type VenueProtocol interface {
	DeriveUploadInfos(checkIn models.CheckIn) ([]models.UploadVenueInfo, error)
}

var (
	ErrCheckInNotFound   = errors.New("check-in does not exist")
	ErrAlreadyCheckedOut = errors.New("check-in already has a departure time")
)
