package worker

import (
	"context"
	"log"
	"math/rand/v2"
	"time"

	"golang.org/x/time/rate"

	"github.com/zlnvch/tracereport/service"
)

// DecoyWorker keeps non-reporting devices indistinguishable from
// reporting ones: it runs the full fake onset+token flow on a randomized
// schedule, so an observer of the network sees the same two-request
// pattern whether or not a real report ever happens.
type DecoyWorker struct {
	svc          *service.Service
	meanInterval time.Duration
	limiter      *rate.Limiter
}

func NewDecoyWorker(svc *service.Service, meanInterval time.Duration) *DecoyWorker {
	// The limiter caps decoy traffic even when the exponential draw
	// comes up short several times in a row.
	limit := rate.Every(meanInterval / 4)
	return &DecoyWorker{
		svc:          svc,
		meanInterval: meanInterval,
		limiter:      rate.NewLimiter(limit, 1),
	}
}

func (w *DecoyWorker) Run(shutdownCtx context.Context) {
	for {
		wait := time.Duration(rand.ExpFloat64() * float64(w.meanInterval))

		select {
		case <-time.After(wait):
		case <-shutdownCtx.Done():
			return
		}

		if err := w.limiter.Wait(shutdownCtx); err != nil {
			return
		}

		w.runDecoyFlow(shutdownCtx)
	}
}

func (w *DecoyWorker) runDecoyFlow(ctx context.Context) {
	if _, err := w.svc.RequestFakeOnsetDate(ctx); err != nil {
		log.Printf("Decoy onset request failed: %v", err)
		return
	}
	if _, err := w.svc.RequestFakeTokens(ctx); err != nil {
		log.Printf("Decoy token request failed: %v", err)
	}
}
