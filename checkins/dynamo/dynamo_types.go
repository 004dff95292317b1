package dynamo

import (
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/zlnvch/tracereport/models"
)

const checkInPK = "CHECKIN"

type dynamoCheckIn struct {
	PK          string `dynamodbav:"PK"`
	SK          string `dynamodbav:"SK"`
	VenueId     string `dynamodbav:"VenueId"`
	ArrivalMs   int64  `dynamodbav:"ArrivalMs"`
	DepartureMs int64  `dynamodbav:"DepartureMs"`
}

func checkInToDynamo(c models.CheckIn) dynamoCheckIn {
	dc := dynamoCheckIn{
		PK:        checkInPK,
		SK:        c.Id.String(),
		VenueId:   c.VenueId,
		ArrivalMs: c.Arrival.UnixMilli(),
	}
	if c.CheckedOut() {
		dc.DepartureMs = c.Departure.UnixMilli()
	}
	return dc
}

func checkInFromDynamo(dc dynamoCheckIn) (models.CheckIn, error) {
	checkInId, err := uuid.FromString(dc.SK)
	if err != nil {
		return models.CheckIn{}, err
	}

	checkIn := models.CheckIn{
		Id:      checkInId,
		VenueId: dc.VenueId,
		Arrival: time.UnixMilli(dc.ArrivalMs),
	}
	if dc.DepartureMs > 0 {
		checkIn.Departure = time.UnixMilli(dc.DepartureMs)
	}
	return checkIn, nil
}
