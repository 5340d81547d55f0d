package workers

import (
	"context"
	"fmt"
	"sync"

	"github.com/alimgiray/lotdesk/internal/realtime"
	"github.com/alimgiray/lotdesk/pkg/logger"
)

// WorkerManager manages the realtime feed workers
type WorkerManager struct {
	workers     []Worker
	feed        *realtime.Feed
	subscriber  realtime.Subscriber
	workerCount int
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
}

// NewWorkerManager creates a new worker manager
func NewWorkerManager(feed *realtime.Feed, subscriber realtime.Subscriber, workerCount int) *WorkerManager {
	ctx, cancel := context.WithCancel(context.Background())
	if workerCount < 1 {
		workerCount = 1
	}
	return &WorkerManager{
		workers:     make([]Worker, 0, workerCount+1),
		feed:        feed,
		subscriber:  subscriber,
		workerCount: workerCount,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// StartAll starts one listener and the configured number of fetch workers
func (wm *WorkerManager) StartAll() error {
	listener := NewFeedListener("feed-listener", wm.feed, wm.subscriber)
	wm.workers = append(wm.workers, listener)
	wm.startWorker(listener)

	for i := 0; i < wm.workerCount; i++ {
		worker := NewFeedWorker(fmt.Sprintf("feed-%d", i+1), wm.feed)
		wm.workers = append(wm.workers, worker)
		wm.startWorker(worker)
	}

	logger.Infof("Started %d total workers", len(wm.workers))
	return nil
}

// StopAll gracefully stops all workers
func (wm *WorkerManager) StopAll() error {
	logger.Info("Stopping all workers...")

	// Cancel the context to signal all workers to stop
	wm.cancel()

	for _, worker := range wm.workers {
		if err := worker.Stop(); err != nil {
			logger.WithError(err).Errorf("Error stopping worker %s", worker.GetWorkerID())
		}
	}

	// Wait for all workers to finish
	wm.wg.Wait()

	logger.Info("All workers stopped")
	return nil
}

// startWorker starts a single worker in a goroutine
func (wm *WorkerManager) startWorker(worker Worker) {
	wm.wg.Add(1)
	go func() {
		defer wm.wg.Done()
		if err := worker.Start(wm.ctx); err != nil {
			logger.WithError(err).Errorf("Worker %s stopped with error", worker.GetWorkerID())
		}
	}()
}

// GetWorkerStatus returns the status of all workers
func (wm *WorkerManager) GetWorkerStatus() map[string]bool {
	status := make(map[string]bool, len(wm.workers))
	for _, worker := range wm.workers {
		status[worker.GetWorkerID()] = worker.IsRunning()
	}
	return status
}
