package worker

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"sync"

	"github.com/nicolasmmb/go-datacollector/internal/core"
	"github.com/nicolasmmb/go-datacollector/internal/domain"
)

var (
	ErrQueueFull     = errors.New("device data queue is full")
	ErrWorkerStopped = errors.New("device data worker stopped")
)

type deviceDataJob struct {
	ctx            context.Context
	installationID string
	req            domain.DeviceDataRequest
	reply          chan domain.DeviceDataResult
}

type deviceDataWorker struct {
	collector core.DeviceDataCollectorInterface
	WORKERS   int

	jobs chan deviceDataJob

	mu      sync.RWMutex
	stopped bool
}

func NewDeviceDataWorker(collector core.DeviceDataCollectorInterface, WORKERS int, queueLen int) *deviceDataWorker {
	if WORKERS < 1 {
		WORKERS = 1
	}
	return &deviceDataWorker{
		collector: collector,
		WORKERS:   WORKERS,
		jobs:      make(chan deviceDataJob, queueLen),
	}
}

// Run starts the pool. Once ctx is done Submit is refused and jobs still
// queued are answered with ErrWorkerStopped.
func (w *deviceDataWorker) Run(ctx context.Context) {
	for i := 0; i < w.WORKERS; i++ {
		go w.processJobs(ctx)
	}
	go func() {
		<-ctx.Done()
		w.stop()
	}()
}

func (w *deviceDataWorker) stop() {
	w.mu.Lock()
	w.stopped = true
	w.mu.Unlock()

	for {
		select {
		case job := <-w.jobs:
			job.reply <- domain.DeviceDataResult{Err: ErrWorkerStopped}
			close(job.reply)
		default:
			slog.Info("[Worker:DeviceData:Stop] - Device data worker stopped")
			return
		}
	}
}

// Submit enqueues a collection without blocking. The returned channel
// receives exactly one result.
func (w *deviceDataWorker) Submit(ctx context.Context, installationID string, req domain.DeviceDataRequest) (<-chan domain.DeviceDataResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	job := deviceDataJob{
		ctx:            ctx,
		installationID: installationID,
		req:            req,
		reply:          make(chan domain.DeviceDataResult, 1),
	}

	// The read lock keeps enqueues from racing the drain in stop.
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.stopped {
		return nil, ErrWorkerStopped
	}
	select {
	case w.jobs <- job:
		return job.reply, nil
	default:
		slog.Warn("[Worker:DeviceData:Submit] - Queue is full", "installation_id", installationID)
		return nil, ErrQueueFull
	}
}

func (w *deviceDataWorker) processJobs(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-w.jobs:
			w.process(job)
		}
	}
}

func (w *deviceDataWorker) process(job deviceDataJob) {
	defer close(job.reply)
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic in device data worker: %v", r)
			job.reply <- domain.DeviceDataResult{Err: errors.New("device data collection panicked")}
		}
	}()

	if err := job.ctx.Err(); err != nil {
		job.reply <- domain.DeviceDataResult{Err: err}
		return
	}

	data, err := w.collector.CollectDeviceData(job.ctx, job.installationID, job.req)
	job.reply <- domain.DeviceDataResult{Data: data, Err: err}
}
