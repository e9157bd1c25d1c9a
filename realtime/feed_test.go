package realtime

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitFor[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for value")
	}
	var zero T
	return zero
}

func TestFeedDeliversInPublishOrder(t *testing.T) {
	feed := NewFeed()
	got := make(chan Change, 10)
	unsubscribe := feed.Subscribe(func(c Change) { got <- c })
	defer unsubscribe()

	for i := uint(1); i <= 5; i++ {
		feed.Publish(Change{ID: i, Collection: "orders"})
	}
	for i := uint(1); i <= 5; i++ {
		assert.Equal(t, i, waitFor(t, got).ID)
	}
}

func TestFeedFiltersCollections(t *testing.T) {
	feed := NewFeed()
	got := make(chan Change, 10)
	unsubscribe := feed.Subscribe(func(c Change) { got <- c }, "deliveries")
	defer unsubscribe()

	feed.Publish(
		Change{ID: 1, Collection: "orders"},
		Change{ID: 2, Collection: "deliveries"},
	)
	assert.Equal(t, uint(2), waitFor(t, got).ID)

	select {
	case c := <-got:
		t.Fatalf("unexpected change %+v", c)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestFeedUnsubscribe(t *testing.T) {
	feed := NewFeed()
	var calls int32
	unsubscribe := feed.Subscribe(func(Change) { atomic.AddInt32(&calls, 1) })
	require.Equal(t, 1, feed.SubscriberCount())

	unsubscribe()
	unsubscribe()
	assert.Zero(t, feed.SubscriberCount())

	feed.Publish(Change{ID: 1})
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestFeedSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	feed := NewFeed()
	release := make(chan struct{})
	unsubscribe := feed.Subscribe(func(Change) { <-release })
	defer unsubscribe()

	done := make(chan struct{})
	go func() {
		for i := uint(0); i < 100; i++ {
			feed.Publish(Change{ID: i})
		}
		close(done)
	}()
	waitFor(t, done)
	close(release)
}

func TestWatchSendsSnapshotThenReloads(t *testing.T) {
	feed := NewFeed()
	var version int32
	load := func(ctx context.Context) (int32, error) {
		return atomic.LoadInt32(&version), nil
	}

	got := make(chan int32, 10)
	unsubscribe := Watch(feed, "delivery_drivers", load, func(v int32, err error) {
		assert.NoError(t, err)
		got <- v
	})

	assert.Equal(t, int32(0), waitFor(t, got))

	atomic.StoreInt32(&version, 1)
	feed.Publish(Change{ID: 1, Collection: "delivery_drivers"})
	assert.Equal(t, int32(1), waitFor(t, got))

	feed.Publish(Change{ID: 2, Collection: "orders"})
	unsubscribe()
	feed.Publish(Change{ID: 3, Collection: "delivery_drivers"})

	select {
	case v := <-got:
		t.Fatalf("unexpected snapshot %d", v)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestWatchPassesLoadErrors(t *testing.T) {
	feed := NewFeed()
	boom := errors.New("boom")
	got := make(chan error, 1)

	unsubscribe := Watch(feed, "menus", func(context.Context) ([]string, error) {
		return nil, boom
	}, func(_ []string, err error) {
		got <- err
	})
	defer unsubscribe()

	assert.Equal(t, boom, waitFor(t, got))
}
