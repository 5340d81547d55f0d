package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusDeliversToTableSubscribers(t *testing.T) {
	bus := NewBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tows, err := bus.Subscribe(ctx, TableTowRequests)
	require.NoError(t, err)
	vehicles, err := bus.Subscribe(ctx, "vehicles")
	require.NoError(t, err)

	change := Change{Table: TableTowRequests, Type: ChangeInsert, ID: "r1", OrgID: "org-1"}
	require.NoError(t, bus.Publish(ctx, change))

	select {
	case got := <-tows:
		assert.Equal(t, change, got)
	case <-time.After(time.Second):
		t.Fatal("change not delivered")
	}

	select {
	case got := <-vehicles:
		t.Fatalf("unexpected change %+v", got)
	default:
	}
}

func TestBusClosesOnCancel(t *testing.T) {
	bus := NewBus()
	ctx, cancel := context.WithCancel(context.Background())

	changes, err := bus.Subscribe(ctx, TableTowRequests)
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-changes:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel not closed")
	}

	// publishing after unsubscribe must not panic
	assert.NoError(t, bus.Publish(context.Background(), Change{Table: TableTowRequests, ID: "r2"}))
}

func TestBusDropsWhenFull(t *testing.T) {
	bus := NewBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := bus.Subscribe(ctx, TableTowRequests)
	require.NoError(t, err)

	for i := 0; i < subscriberBuffer+5; i++ {
		require.NoError(t, bus.Publish(ctx, Change{Table: TableTowRequests, ID: "r"}))
	}
	assert.Len(t, changes, subscriberBuffer)
}
