// Package tally keeps campaigns.raised_amount in step with the donation
// ledger. Recorded donations enqueue a recompute job; a fixed pool of workers
// overwrites the total with the ledger sum, so repeated jobs are harmless.
package tally

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/frahmantamala/photo-fundraising/internal/core/events"
)

var (
	ErrQueueFull = stderrors.New("tally queue full")
	ErrStopped   = stderrors.New("tally stopped")
)

type Job struct {
	CampaignID string
}

// Store reads the ledger sum and writes the denormalised total.
type Store interface {
	SumDonations(ctx context.Context, campaignID string) (float64, error)
	SetRaisedAmount(ctx context.Context, campaignID string, amount float64) error
}

type Worker struct {
	ID         int
	WorkerPool chan chan Job
	JobChannel chan Job
	Logger     *slog.Logger
}

func NewWorker(id int, workerPool chan chan Job, logger *slog.Logger) *Worker {
	return &Worker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan Job),
		Logger:     logger,
	}
}

func (w *Worker) Start(ctx context.Context, wg *sync.WaitGroup, process func(Job)) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case w.WorkerPool <- w.JobChannel:
			case <-ctx.Done():
				w.Logger.Debug("tally worker shutting down", "worker_id", w.ID)
				return
			}

			select {
			case job := <-w.JobChannel:
				w.Logger.Debug("tally worker processing job", "worker_id", w.ID, "campaign_id", job.CampaignID)
				process(job)
			case <-ctx.Done():
				w.Logger.Debug("tally worker shutting down", "worker_id", w.ID)
				return
			}
		}
	}()
}

type Config struct {
	MaxWorkers   int
	JobQueueSize int
	JobTimeout   time.Duration
}

type Tally struct {
	store     Store
	publisher events.Publisher
	logger    *slog.Logger

	jobQueue   chan Job
	workerPool chan chan Job
	maxWorkers int
	jobTimeout time.Duration
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	once       sync.Once

	mu      sync.Mutex
	pending map[string]bool
}

func New(store Store, publisher events.Publisher, config Config, logger *slog.Logger) *Tally {
	ctx, cancel := context.WithCancel(context.Background())

	maxWorkers := config.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = 4
	}
	jobQueueSize := config.JobQueueSize
	if jobQueueSize <= 0 {
		jobQueueSize = 100
	}
	jobTimeout := config.JobTimeout
	if jobTimeout <= 0 {
		jobTimeout = 10 * time.Second
	}

	t := &Tally{
		store:      store,
		publisher:  publisher,
		logger:     logger,
		jobQueue:   make(chan Job, jobQueueSize),
		workerPool: make(chan chan Job, maxWorkers),
		maxWorkers: maxWorkers,
		jobTimeout: jobTimeout,
		ctx:        ctx,
		cancel:     cancel,
		pending:    make(map[string]bool),
	}

	t.start()

	return t
}

func (t *Tally) start() {
	t.once.Do(func() {
		for i := 0; i < t.maxWorkers; i++ {
			NewWorker(i, t.workerPool, t.logger).Start(t.ctx, &t.wg, t.process)
		}

		t.wg.Add(1)
		go t.dispatch()

		t.logger.Info("tally worker pool started",
			"max_workers", t.maxWorkers,
			"queue_size", cap(t.jobQueue))
	})
}

func (t *Tally) dispatch() {
	defer t.wg.Done()

	for {
		select {
		case job := <-t.jobQueue:
			select {
			case jobChannel := <-t.workerPool:
				select {
				case jobChannel <- job:
				case <-t.ctx.Done():
					return
				}
			case <-t.ctx.Done():
				return
			}
		case <-t.ctx.Done():
			t.logger.Info("tally dispatcher shutting down")
			return
		}
	}
}

// Enqueue schedules a recompute. A campaign already waiting in the queue is
// not queued twice.
func (t *Tally) Enqueue(campaignID string) error {
	if t.ctx.Err() != nil {
		return ErrStopped
	}

	t.mu.Lock()
	if t.pending[campaignID] {
		t.mu.Unlock()
		return nil
	}
	t.pending[campaignID] = true
	t.mu.Unlock()

	select {
	case t.jobQueue <- Job{CampaignID: campaignID}:
		return nil
	default:
		t.clearPending(campaignID)
		t.logger.Warn("tally queue full, dropping recompute",
			"campaign_id", campaignID,
			"queue_capacity", cap(t.jobQueue))
		return ErrQueueFull
	}
}

// OnDonationRecorded is the event bus handler for donation.recorded.
func (t *Tally) OnDonationRecorded(ctx context.Context, event events.Event) error {
	campaignID := ""
	if e, ok := event.(*events.DonationRecordedEvent); ok {
		campaignID = e.CampaignID
	} else if data, ok := event.Payload().(map[string]interface{}); ok {
		campaignID, _ = data["campaign_id"].(string)
	}
	if campaignID == "" {
		return fmt.Errorf("donation event %s has no campaign id", event.EventID())
	}
	return t.Enqueue(campaignID)
}

// Recompute sets the campaign's raised amount to the ledger sum and tells
// cached views to refresh.
func (t *Tally) Recompute(ctx context.Context, campaignID string) (float64, error) {
	total, err := t.store.SumDonations(ctx, campaignID)
	if err != nil {
		return 0, err
	}
	if err := t.store.SetRaisedAmount(ctx, campaignID, total); err != nil {
		return 0, err
	}

	if t.publisher != nil {
		if err := t.publisher.Publish(ctx, events.NewCampaignInvalidatedEvent(campaignID, "raised_amount")); err != nil {
			t.logger.Warn("failed to publish campaign invalidation", "error", err, "campaign_id", campaignID)
		}
	}
	return total, nil
}

func (t *Tally) process(job Job) {
	// cleared first so a donation landing mid-job queues another pass
	t.clearPending(job.CampaignID)

	ctx, cancel := context.WithTimeout(t.ctx, t.jobTimeout)
	defer cancel()

	total, err := t.Recompute(ctx, job.CampaignID)
	if err != nil {
		t.logger.Error("failed to recompute raised amount", "error", err, "campaign_id", job.CampaignID)
		return
	}
	t.logger.Info("raised amount recomputed", "campaign_id", job.CampaignID, "raised_amount", total)
}

func (t *Tally) clearPending(campaignID string) {
	t.mu.Lock()
	delete(t.pending, campaignID)
	t.mu.Unlock()
}

// Shutdown stops the workers. Jobs still queued are dropped; the next
// donation or a reconcile run brings the totals back in line.
func (t *Tally) Shutdown() {
	t.logger.Info("shutting down tally")
	t.cancel()
	t.wg.Wait()
	t.logger.Info("tally shutdown complete")
}
