package api

import (
	"context"
	"net/http"
	"time"

	"github.com/zlnvch/tracereport/api/rest"
	"github.com/zlnvch/tracereport/checkins"
	"github.com/zlnvch/tracereport/exposure"
	"github.com/zlnvch/tracereport/mq"
	"github.com/zlnvch/tracereport/payload"
	"github.com/zlnvch/tracereport/service"
	"github.com/zlnvch/tracereport/store"
	"github.com/zlnvch/tracereport/upload"
	"github.com/zlnvch/tracereport/validator"
	"github.com/zlnvch/tracereport/worker"
)

type ReportAPI struct {
	restHandler *rest.Handler
	shutdownCtx context.Context
}

func NewReportAPI(
	codeValidator validator.CodeValidator,
	exposureSubsystem exposure.Subsystem,
	checkInStore checkins.CheckInStore,
	venueProtocol checkins.VenueProtocol,
	reportStore store.ReportStore,
	reportCompletedQueue mq.MessageQueue,
	uploader upload.Uploader,
	decoyMeanInterval time.Duration,
	shutdownCtx context.Context,
) (*ReportAPI, error) {
	batcher := payload.NewBatcher(venueProtocol)

	svc := service.NewService(
		codeValidator,
		exposureSubsystem,
		checkInStore,
		batcher,
		reportStore,
		reportCompletedQueue,
		uploader,
	)

	resyncWorker := worker.NewResyncWorker(reportCompletedQueue, exposureSubsystem)
	go resyncWorker.Run(shutdownCtx)

	if decoyMeanInterval > 0 {
		decoyWorker := worker.NewDecoyWorker(svc, decoyMeanInterval)
		go decoyWorker.Run(shutdownCtx)
	}

	return &ReportAPI{
		restHandler: rest.NewHandler(svc),
		shutdownCtx: shutdownCtx,
	}, nil
}

func (reportAPI *ReportAPI) RegisterRoutes(mux *http.ServeMux) {
	// Health check endpoint (no auth required)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("/report/onset", reportAPI.restHandler.HandleOnset)
	mux.HandleFunc("/report/tokens", reportAPI.restHandler.HandleTokens)
	mux.HandleFunc("/report/consent", reportAPI.restHandler.HandleConsent)
	mux.HandleFunc("/report/keys", reportAPI.restHandler.HandleKeys)
	mux.HandleFunc("/report/checkins", reportAPI.restHandler.HandleCheckIns)
}
