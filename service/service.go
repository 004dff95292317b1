package service

import (
	"context"
	"sync"
	"time"

	"github.com/zlnvch/tracereport/checkins"
	"github.com/zlnvch/tracereport/exposure"
	"github.com/zlnvch/tracereport/models"
	"github.com/zlnvch/tracereport/mq"
	"github.com/zlnvch/tracereport/payload"
	"github.com/zlnvch/tracereport/store"
	"github.com/zlnvch/tracereport/upload"
	"github.com/zlnvch/tracereport/validator"
)

// Service coordinates the four-phase reporting workflow: onset
// disclosure, consent, token retrieval and the two uploads. It is the
// single owner of the token cache, the consent state and the pending
// upload task; every mutation goes through its mutex, so overlapping
// real and fake flows can't race each other.
type Service struct {
	Validator validator.CodeValidator
	Exposure  exposure.Subsystem
	CheckIns  checkins.CheckInStore
	Batcher   *payload.Batcher
	Store     store.ReportStore
	MQ        mq.MessageQueue
	Uploader  upload.Uploader

	// Now and Sleep are scheduling hooks; tests substitute them for a
	// fixed clock and a recorded delay.
	Now   func() time.Time
	Sleep func(d time.Duration)

	mu                  sync.Mutex
	tokenCache          map[string]models.TokenWrapper
	exposureState       *models.ExposureState
	onsetDate           *models.OnsetDate
	onsetResponseTime   time.Time
	interactionDuration time.Duration
	pendingUploadCtx    context.Context
	cancelUpload        context.CancelFunc
}

func NewService(
	codeValidator validator.CodeValidator,
	exposureSubsystem exposure.Subsystem,
	checkInStore checkins.CheckInStore,
	batcher *payload.Batcher,
	reportStore store.ReportStore,
	messageQueue mq.MessageQueue,
	uploader upload.Uploader,
) *Service {
	return &Service{
		Validator:  codeValidator,
		Exposure:   exposureSubsystem,
		CheckIns:   checkInStore,
		Batcher:    batcher,
		Store:      reportStore,
		MQ:         messageQueue,
		Uploader:   uploader,
		Now:        time.Now,
		Sleep:      time.Sleep,
		tokenCache: make(map[string]models.TokenWrapper),
	}
}
