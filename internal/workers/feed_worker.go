package workers

import (
	"context"
	"errors"

	"github.com/alimgiray/lotdesk/internal/realtime"
	"github.com/alimgiray/lotdesk/pkg/logger"
)

// FeedListener moves realtime changes into the feed's fetch queue
type FeedListener struct {
	*BaseWorker
	feed       *realtime.Feed
	subscriber realtime.Subscriber
}

// NewFeedListener creates a listener for the tow request channel
func NewFeedListener(workerID string, feed *realtime.Feed, subscriber realtime.Subscriber) *FeedListener {
	return &FeedListener{
		BaseWorker: NewBaseWorker(workerID),
		feed:       feed,
		subscriber: subscriber,
	}
}

// Start subscribes and blocks until stopped
func (w *FeedListener) Start(ctx context.Context) error {
	ctx, cancel := w.runContext(ctx)
	defer cancel()

	w.setRunning(true)
	defer w.setRunning(false)
	logger.WithField("worker", w.WorkerID).Info("Feed listener started")

	err := w.feed.Listen(ctx, w.subscriber)
	if errors.Is(err, context.Canceled) {
		logger.WithField("worker", w.WorkerID).Info("Feed listener stopping")
		return nil
	}
	return err
}

// FeedWorker point-fetches queued tow request IDs and merges them into the feed
type FeedWorker struct {
	*BaseWorker
	feed *realtime.Feed
}

// NewFeedWorker creates a new fetch worker
func NewFeedWorker(workerID string, feed *realtime.Feed) *FeedWorker {
	return &FeedWorker{
		BaseWorker: NewBaseWorker(workerID),
		feed:       feed,
	}
}

// Start drains the fetch queue until stopped
func (w *FeedWorker) Start(ctx context.Context) error {
	ctx, cancel := w.runContext(ctx)
	defer cancel()

	w.setRunning(true)
	defer w.setRunning(false)
	logger.WithField("worker", w.WorkerID).Info("Feed worker started")

	for {
		id, ok := w.feed.Next(ctx)
		if !ok {
			logger.WithField("worker", w.WorkerID).Info("Feed worker stopping")
			return nil
		}

		// fetch failures are logged by the feed; the next change for the row retries it
		_ = w.feed.Process(ctx, id)
	}
}
