package jobs

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"

	"zonekids/internal/config"
	"zonekids/internal/services"
)

// JobScheduler runs the periodic maintenance jobs
type JobScheduler struct {
	scheduler gocron.Scheduler
	receipts  services.ReceiptServiceInterface
	cfg       config.ReceiptsConfig
}

// NewJobScheduler creates the scheduler and registers all jobs
func NewJobScheduler(receipts services.ReceiptServiceInterface, cfg config.ReceiptsConfig) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler: scheduler,
		receipts:  receipts,
		cfg:       cfg,
	}

	if err := js.registerJobs(); err != nil {
		return nil, err
	}
	return js, nil
}

// Start starts the job scheduler
func (js *JobScheduler) Start() {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() error {
	_, err := js.scheduler.NewJob(
		gocron.DurationJob(js.cfg.ExpiryInterval()),
		gocron.NewTask(js.expireStaleReceipts, context.Background()),
		gocron.WithName("receipt-expiry"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return err
	}

	log.Printf("Registered receipt-expiry job (every %s, ttl %s)", js.cfg.ExpiryInterval(), js.cfg.PendingTTL())
	return nil
}

// expireStaleReceipts cancels receipts that sat pending past the TTL,
// returning their reserved stock to the catalog.
func (js *JobScheduler) expireStaleReceipts(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	expired, err := js.receipts.ExpireStalePending(ctx, js.cfg.PendingTTL(), js.cfg.ExpiryBatchSize)
	if err != nil {
		log.Printf("Receipt expiry run failed: %v", err)
		return err
	}
	if expired > 0 {
		log.Printf("Expired %d stale pending receipts", expired)
	}
	return nil
}
