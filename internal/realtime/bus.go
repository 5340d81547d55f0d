package realtime

import (
	"context"
	"sync"

	"github.com/alimgiray/lotdesk/internal/metrics"
	"github.com/alimgiray/lotdesk/pkg/logger"
)

const subscriberBuffer = 64

// Bus provides in-process pub/sub for changes.
type Bus struct {
	subscribers map[string]map[chan Change]struct{}
	mu          sync.RWMutex
}

// NewBus constructs an empty bus.
func NewBus() *Bus {
	return &Bus{subscribers: make(map[string]map[chan Change]struct{})}
}

// Subscribe registers a buffered channel for table. It is removed and closed when ctx ends.
func (b *Bus) Subscribe(ctx context.Context, table string) (<-chan Change, error) {
	ch := make(chan Change, subscriberBuffer)

	b.mu.Lock()
	if b.subscribers[table] == nil {
		b.subscribers[table] = make(map[chan Change]struct{})
	}
	b.subscribers[table][ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subscribers[table], ch)
		close(ch)
		b.mu.Unlock()
	}()

	return ch, nil
}

// Publish fans the change out without blocking. Full subscribers miss it.
func (b *Bus) Publish(ctx context.Context, change Change) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subscribers[change.Table] {
		select {
		case ch <- change:
		default:
			metrics.IncRealtimeDropped()
			logger.WithField("id", change.ID).Warn("Realtime subscriber full, dropping change")
		}
	}
	return nil
}
