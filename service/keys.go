package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/zlnvch/tracereport/exposure"
	"github.com/zlnvch/tracereport/models"
)

const (
	// Keys older than this are never reported as shared, even if the
	// server claims otherwise.
	oldestSharedKeyFloor = 10 * 24 * time.Hour

	endIsolationQuestionDelay = 14 * 24 * time.Hour
)

// HasUserConsent reports whether consent state has been acquired.
func (s *Service) HasUserConsent() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exposureState != nil
}

// AcquireUserConsent asks the exposure-notification subsystem for
// authorization and stores the opaque state it hands back. Fake flows
// never write this state; consent acquisition is its only writer.
func (s *Service) AcquireUserConsent(ctx context.Context) error {
	state, err := s.Exposure.AcquireConsent(ctx)
	if err != nil {
		return &exposure.TracingError{Op: "consent", Cause: err}
	}

	s.mu.Lock()
	s.exposureState = &state
	s.mu.Unlock()

	return nil
}

// ReportCompletedMessage is published after a successful key submission
// so the resync worker refreshes the tracing status.
type ReportCompletedMessage struct {
	Fake        bool  `json:"fake"`
	CompletedAt int64 `json:"completedAt"`
}

// SubmitExposureKeys uploads the exposure keys authorized by the given
// tokens. Real submissions require previously acquired consent; decoys
// run with a dedicated fake state. On success the consumed tokens leave
// the cache, and for real submissions the oldest-shared-key watermark
// and the end-isolation reminder are persisted before returning.
func (s *Service) SubmitExposureKeys(ctx context.Context, tokens models.TokenWrapper, isFake bool) error {
	var state models.ExposureState
	if isFake {
		state = models.FakeExposureState()
	} else {
		s.mu.Lock()
		if s.exposureState == nil {
			s.mu.Unlock()
			return &exposure.TracingError{Op: "submit", Cause: exposure.ErrPermission}
		}
		state = *s.exposureState
		s.mu.Unlock()
	}

	serverOldestKeyDate, err := s.Exposure.SubmitKeys(ctx, state, tokens.ENToken.Onset, tokens.ENToken.Token)
	if err != nil {
		// Tokens stay cached so a retry skips the token round trip.
		return err
	}

	s.mu.Lock()
	delete(s.tokenCache, tokens.Code)
	s.mu.Unlock()

	now := s.Now()
	if !isFake {
		watermark := now.Add(-oldestSharedKeyFloor)
		if serverOldestKeyDate.After(watermark) {
			watermark = serverOldestKeyDate
		}
		if err := s.Store.SetOldestSharedKeyDate(ctx, watermark); err != nil {
			return err
		}
		if err := s.Store.SetEndIsolationQuestionDate(ctx, now.Add(endIsolationQuestionDelay)); err != nil {
			return err
		}
	}

	// Async side-effect - the resync doesn't gate the caller's result
	go func() {
		msg := ReportCompletedMessage{Fake: isFake, CompletedAt: now.UnixMilli()}
		if msgBytes, err := json.Marshal(msg); err == nil {
			if err := s.MQ.Send(context.Background(), string(msgBytes)); err != nil {
				log.Printf("Failed to publish report-completed message: %v", err)
			}
		}
	}()

	return nil
}
