package realtime

import (
	"context"
	"sync"
	"time"
)

// ActionSnapshot marks the synthetic change that primes a Watch subscription.
const ActionSnapshot = "SNAPSHOT"

// Change describes one committed mutation of a document in a collection.
type Change struct {
	ID         uint      `json:"id"`
	Collection string    `json:"collection"`
	DocumentID string    `json:"document_id"`
	Action     string    `json:"action"`
	ChangedAt  time.Time `json:"changed_at"`
}

// Feed fans committed changes out to in-process subscribers.
// Each subscriber receives changes on its own goroutine, in publish order.
type Feed struct {
	mu          sync.RWMutex
	subscribers map[uint64]*subscriber
	nextID      uint64
}

func NewFeed() *Feed {
	return &Feed{subscribers: make(map[uint64]*subscriber)}
}

type subscriber struct {
	collections map[string]struct{}
	handler     func(Change)

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []Change
	closed bool
}

func (s *subscriber) wants(c Change) bool {
	if len(s.collections) == 0 {
		return true
	}
	_, ok := s.collections[c.Collection]
	return ok
}

func (s *subscriber) push(c Change) {
	s.mu.Lock()
	if !s.closed {
		s.queue = append(s.queue, c)
		s.cond.Signal()
	}
	s.mu.Unlock()
}

func (s *subscriber) close() {
	s.mu.Lock()
	s.closed = true
	s.queue = nil
	s.cond.Signal()
	s.mu.Unlock()
}

func (s *subscriber) run() {
	for {
		s.mu.Lock()
		for len(s.queue) == 0 && !s.closed {
			s.cond.Wait()
		}
		if s.closed {
			s.mu.Unlock()
			return
		}
		c := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		s.handler(c)
	}
}

// Subscribe registers handler for changes on the given collections, or on every
// collection when none is given. The returned func removes the subscription and may be
// called more than once; callers must call it when they are done.
func (f *Feed) Subscribe(handler func(Change), collections ...string) (unsubscribe func()) {
	return f.subscribe(handler, nil, collections)
}

func (f *Feed) subscribe(handler func(Change), initial []Change, collections []string) func() {
	sub := &subscriber{
		collections: make(map[string]struct{}, len(collections)),
		handler:     handler,
		queue:       initial,
	}
	sub.cond = sync.NewCond(&sub.mu)
	for _, c := range collections {
		sub.collections[c] = struct{}{}
	}

	f.mu.Lock()
	f.nextID++
	id := f.nextID
	f.subscribers[id] = sub
	f.mu.Unlock()

	go sub.run()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subscribers, id)
			f.mu.Unlock()
			sub.close()
		})
	}
}

// Publish enqueues changes for every interested subscriber without waiting for handlers.
func (f *Feed) Publish(changes ...Change) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, c := range changes {
		for _, sub := range f.subscribers {
			if sub.wants(c) {
				sub.push(c)
			}
		}
	}
}

// SubscriberCount returns the number of live subscriptions.
func (f *Feed) SubscriberCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subscribers)
}

// Watch calls fn with a snapshot from load right away and again after every change on
// collection, until the returned func is called.
func Watch[T any](f *Feed, collection string, load func(ctx context.Context) (T, error), fn func(T, error)) (unsubscribe func()) {
	ctx, cancel := context.WithCancel(context.Background())
	handler := func(Change) {
		if ctx.Err() != nil {
			return
		}
		v, err := load(ctx)
		if ctx.Err() != nil {
			return
		}
		fn(v, err)
	}

	prime := []Change{{Collection: collection, Action: ActionSnapshot, ChangedAt: time.Now()}}
	stop := f.subscribe(handler, prime, []string{collection})
	return func() {
		cancel()
		stop()
	}
}
