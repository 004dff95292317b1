package worker

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/zlnvch/tracereport/exposure"
	"github.com/zlnvch/tracereport/mq"
	"github.com/zlnvch/tracereport/service"
)

// Resync should finish well within the queue visibility window
const visibilityTimeout = 60

// ResyncWorker consumes report-completed messages and refreshes the
// tracing status, decoupling the resync from the submission call path.
type ResyncWorker struct {
	reportCompletedQueue mq.MessageQueue
	exposureSubsystem    exposure.Subsystem
}

func NewResyncWorker(reportCompletedQueue mq.MessageQueue, exposureSubsystem exposure.Subsystem) *ResyncWorker {
	return &ResyncWorker{
		reportCompletedQueue: reportCompletedQueue,
		exposureSubsystem:    exposureSubsystem,
	}
}

func (w ResyncWorker) Run(shutdownCtx context.Context) {
	for {
		msg, err := w.reportCompletedQueue.Receive(shutdownCtx, visibilityTimeout)

		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			log.Printf("resync worker receive error: %v", err)
			continue
		}

		if msg == nil {
			continue
		}

		var completed service.ReportCompletedMessage
		if err := json.Unmarshal([]byte(msg.Body), &completed); err != nil {
			continue
		}

		// timeout should be a little less than queue visibility timeout
		ctx, cancel := context.WithTimeout(context.Background(), (visibilityTimeout-1)*time.Second)
		if err := w.exposureSubsystem.Resync(ctx); err != nil {
			log.Printf("Tracing resync failed: %v", err)
			cancel()
			continue
		}
		cancel()

		if err := w.reportCompletedQueue.Delete(context.Background(), msg); err != nil {
			log.Printf("resync worker delete error: %v", err)
		}
	}
}
