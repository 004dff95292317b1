package service

import (
	"context"

	"github.com/zlnvch/tracereport/models"
	"github.com/zlnvch/tracereport/payload"
)

// SubmitCheckIns uploads the selected venue visits as a padded batch.
// Only the most recent selection matters, so starting a new submission
// cancels any upload still in flight (replace, not queue).
func (s *Service) SubmitCheckIns(ctx context.Context, tokens models.TokenWrapper, selected []models.CheckIn, isFake bool) error {
	uploadCtx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	if s.cancelUpload != nil {
		s.cancelUpload()
	}
	s.cancelUpload = cancel
	s.pendingUploadCtx = uploadCtx
	interaction := s.interactionDuration
	s.mu.Unlock()

	release := func() {
		s.mu.Lock()
		// Only free the slot if a newer submission hasn't taken it over
		if s.pendingUploadCtx == uploadCtx {
			s.cancelUpload = nil
			s.pendingUploadCtx = nil
		}
		s.mu.Unlock()
		cancel()
	}
	defer release()

	if isFake {
		// Decoy uploads disclose nothing; the batch is all chaff.
		selected = nil
	}

	batch, err := s.Batcher.BuildBatch(selected, interaction, s.Now())
	if err != nil {
		return err
	}

	return s.Uploader.Upload(uploadCtx, tokens.CheckInToken, payload.Marshal(batch))
}
