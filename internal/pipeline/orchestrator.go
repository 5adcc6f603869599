package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/pdfoutline/internal/config"
	"github.com/dgallion1/pdfoutline/internal/outline"
)

const maxConcurrentStore = 10

// Orchestrator manages the asynchronous outline pipeline.
type Orchestrator struct {
	jobs  *JobStore
	queue chan *Job
	store RecordStore
	stats *Stats
	log   *slog.Logger
	cfg   config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline. A nil store disables persistence.
func NewOrchestrator(cfg config.Config, st RecordStore, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:  NewJobStore(cfg.JobTTL),
		queue: make(chan *Job, cfg.MaxQueueSize),
		store: st,
		stats: NewStats(cfg.StatsWindow, time.Hour),
		log:   log,
		cfg:   cfg,
	}
}

func (o *Orchestrator) newWorker() *Worker {
	return NewWorker(o.store, o.log, outline.Options{
		Workers:            o.cfg.PageWorkers,
		NormalizeLineFonts: o.cfg.NormalizeLineFonts,
	}, o.stats, maxConcurrentStore)
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := o.newWorker()
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Start job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", o.cfg.MaxQueueSize)
	}
}

// Outline runs parsing and structure inference synchronously.
func (o *Orchestrator) Outline(ctx context.Context, filename string, data []byte) (*outline.Result, error) {
	_, res, err := o.newWorker().Outline(ctx, filename, data)
	return res, err
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Stats returns the rolling outline timing stats.
func (o *Orchestrator) Stats() *Stats {
	return o.stats
}

// StoreEnabled reports whether records are persisted.
func (o *Orchestrator) StoreEnabled() bool {
	return o.store != nil
}
