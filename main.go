package main

import (
	"context"
	"encoding/base64"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/zlnvch/tracereport/api"
	"github.com/zlnvch/tracereport/checkins/dynamo"
	"github.com/zlnvch/tracereport/checkins/venueproto"
	"github.com/zlnvch/tracereport/exposure/enclient"
	"github.com/zlnvch/tracereport/mq/sqsmq"
	"github.com/zlnvch/tracereport/store/redisstore"
	"github.com/zlnvch/tracereport/upload/httpupload"
	"github.com/zlnvch/tracereport/validator/httpvalidator"
)

const (
	DynamoDBTable           = "TraceReport"
	SQSReportCompletedQueue = "ReportCompletedQueue"
)

func main() {
	ctx := context.Background()
	devMode := os.Getenv("DEV_MODE") == "true"

	checkInStore, err := dynamo.NewDynamoCheckInStore(ctx, devMode, os.Getenv("DYNAMODB_ENDPOINT"), DynamoDBTable)
	if err != nil {
		log.Fatalf("Failed to create dynamodb check-in store: %v", err)
	}

	reportCompletedQueue, err := sqsmq.NewSQSMessageQueue(ctx, devMode, os.Getenv("SQS_ENDPOINT"), SQSReportCompletedQueue)
	if err != nil {
		log.Fatalf("Failed to create SQS MQ: %v", err)
	}

	reportStore, err := redisstore.NewRedisReportStore(ctx, devMode, os.Getenv("REDIS_ENDPOINT"))
	if err != nil {
		log.Fatalf("Failed to create redis report store: %v", err)
	}

	venueSecret, err := base64.StdEncoding.DecodeString(os.Getenv("VENUE_SECRET"))
	if err != nil {
		log.Fatalf("Failed to decode base64 venueSecret: %v", err)
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	codeValidator := httpvalidator.NewHTTPCodeValidator(httpClient, os.Getenv("CODE_SERVICE_URL"))
	exposureSubsystem := enclient.NewENClient(httpClient, os.Getenv("EN_SERVICE_URL"))
	uploader := httpupload.NewHTTPUploader(httpClient, os.Getenv("UPLOAD_SERVICE_URL"))
	venueProtocol := venueproto.NewHMACVenueProtocol(venueSecret)

	decoyMeanInterval := 6 * time.Hour
	if raw := os.Getenv("DECOY_MEAN_INTERVAL"); raw != "" {
		decoyMeanInterval, err = time.ParseDuration(raw)
		if err != nil {
			log.Fatalf("Failed to parse DECOY_MEAN_INTERVAL: %v", err)
		}
	}

	shutdownCtx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	reportAPI, err := api.NewReportAPI(
		codeValidator,
		exposureSubsystem,
		checkInStore,
		venueProtocol,
		reportStore,
		reportCompletedQueue,
		uploader,
		decoyMeanInterval,
		shutdownCtx,
	)
	if err != nil {
		log.Fatalf("Failed to create report api: %v", err)
	}

	mux := http.NewServeMux()
	reportAPI.RegisterRoutes(mux)

	hostPort := "8080"
	if p := os.Getenv("HOST_PORT"); p != "" {
		hostPort = p
	}
	log.Printf("Starting server on host port: %s\n", hostPort)
	log.Fatal(http.ListenAndServe(":"+hostPort, mux))
}
