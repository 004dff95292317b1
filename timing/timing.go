package timing

import (
	"math/rand/v2"
	"time"
)

// OnsetBackdateRate is the exponential rate used to backdate the
// onset-response timestamp, so the recorded instant doesn't pinpoint the
// real network round trip.
const OnsetBackdateRate = 0.2

// paddingStep is the alignment unit for padded delays. An observer only
// ever sees request gaps that are multiples of this.
const paddingStep = 5 * time.Second

// SampleDelay draws a random elapsed time from an exponential
// distribution with the given rate parameter.
func SampleDelay(rate float64) time.Duration {
	return time.Duration(rand.ExpFloat64() / rate * float64(time.Second))
}

// PaddedDelay returns how long to wait from now so that the gap since
// `from` lands on the next 5-second boundary strictly covering the true
// elapsed time. The padded gap is never shorter than the real one, so
// the masked timing can't underreport.
func PaddedDelay(from, now time.Time) time.Duration {
	if !now.After(from) {
		return 0
	}

	padding := paddingStep
	for from.Add(padding).Before(now) {
		padding += paddingStep
	}
	return from.Add(padding).Sub(now)
}
