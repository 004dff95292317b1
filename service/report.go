package service

import (
	"context"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/zlnvch/tracereport/models"
	"github.com/zlnvch/tracereport/timing"
)

const fakeCodeLength = 12

// RequestOnsetDate discloses the onset date for a covid code. On success
// the response instant is recorded backdated by an exponential sample,
// so the stored timestamp doesn't pin down the real round trip. A
// failure leaves all coordinator state untouched; the caller may retry.
func (s *Service) RequestOnsetDate(ctx context.Context, code string, isFake bool) (models.OnsetDate, error) {
	onset, err := s.Validator.RequestOnsetDate(ctx, code, isFake)
	if err != nil {
		return models.OnsetDate{}, err
	}

	s.mu.Lock()
	s.onsetResponseTime = s.Now().Add(-timing.SampleDelay(timing.OnsetBackdateRate))
	s.onsetDate = &onset
	s.mu.Unlock()

	return onset, nil
}

// RequestFakeOnsetDate runs the onset phase with a synthesized code so
// non-reporting devices produce the same traffic shape as reporting ones.
func (s *Service) RequestFakeOnsetDate(ctx context.Context) (models.OnsetDate, error) {
	return s.RequestOnsetDate(ctx, fakeCode(), true)
}

// RequestTokens obtains the authorization tokens for a code. A cached,
// unexpired result is returned without a network call, which makes a
// retry after a partially failed flow idempotent. Otherwise the request
// is held back until the gap since the onset response lands on a padded
// boundary.
func (s *Service) RequestTokens(ctx context.Context, code string, isFake bool) (models.TokenWrapper, error) {
	now := s.Now()

	s.mu.Lock()
	if cached, ok := s.tokenCache[code]; ok && cached.CheckInToken.ExpiresAt.After(now) {
		s.mu.Unlock()
		return cached, nil
	}

	var delay time.Duration
	if !s.onsetResponseTime.IsZero() {
		s.interactionDuration = now.Sub(s.onsetResponseTime)
		delay = timing.PaddedDelay(s.onsetResponseTime, now)
	}
	s.mu.Unlock()

	// The delay always fires; cancellation here would leak the real
	// latency through an early abort.
	if delay > 0 {
		s.Sleep(delay)
	}

	tokens, err := s.Validator.RequestTokens(ctx, code, isFake)
	if err != nil {
		return models.TokenWrapper{}, err
	}

	s.mu.Lock()
	s.tokenCache[code] = tokens
	s.mu.Unlock()

	return tokens, nil
}

// RequestFakeTokens is the decoy variant of RequestTokens.
func (s *Service) RequestFakeTokens(ctx context.Context) (models.TokenWrapper, error) {
	return s.RequestTokens(ctx, fakeCode(), true)
}

// InteractionDuration is the measured gap between the onset response and
// the token request, embedded in the upload payload.
func (s *Service) InteractionDuration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interactionDuration
}

// OnsetDate returns the last disclosed onset date, if any.
func (s *Service) OnsetDate() *models.OnsetDate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.onsetDate
}

func fakeCode() string {
	var b strings.Builder
	for i := 0; i < fakeCodeLength; i++ {
		b.WriteByte(byte('0' + rand.IntN(10)))
	}
	return b.String()
}
