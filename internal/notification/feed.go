// File: internal/notification/feed.go
package notification

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EventKind identifies what changed about a user's notification stream.
type EventKind string

const (
	EventCreated EventKind = "created"
	EventRead    EventKind = "read"
	EventReadAll EventKind = "read_all"
	EventDeleted EventKind = "deleted"
)

// Event is a change signal. It deliberately carries no counts or row data:
// the store stays the single source of truth and consumers react by
// re-fetching, so duplicate or dropped-while-backlogged signals are harmless.
type Event struct {
	Kind           EventKind  `json:"kind"`
	UserID         uuid.UUID  `json:"-"`
	NotificationID *uuid.UUID `json:"notification_id,omitempty"`
}

// Publisher is the mutation-side view of the change feed.
type Publisher interface {
	Publish(event Event)
}

type subscriber struct {
	ch      chan Event
	dropped int
}

// Feed is the in-process change feed: per-user subscriber channels with
// non-blocking, at-least-once publication. A subscriber whose buffer is full
// already has undrained signals queued; by the time it drains them and
// re-fetches, the change that could not be enqueued is visible too.
type Feed struct {
	mu     sync.Mutex
	buffer int
	subs   map[uuid.UUID]map[*subscriber]struct{}
	logger *zap.Logger
	closed bool
}

// NewFeed creates a change feed whose subscriber channels buffer up to
// bufferSize pending signals each.
func NewFeed(bufferSize int, logger *zap.Logger) *Feed {
	if bufferSize <= 0 {
		bufferSize = 16
	}
	return &Feed{
		buffer: bufferSize,
		subs:   make(map[uuid.UUID]map[*subscriber]struct{}),
		logger: logger,
	}
}

// Subscribe registers a listener for one user's change signals. The returned
// cancel function must be called when the consumer goes away; it closes the
// channel after unregistering, so a pending range over the channel ends.
func (f *Feed) Subscribe(userID uuid.UUID) (<-chan Event, func()) {
	sub := &subscriber{ch: make(chan Event, f.buffer)}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		close(sub.ch)
		return sub.ch, func() {}
	}
	if f.subs[userID] == nil {
		f.subs[userID] = make(map[*subscriber]struct{})
	}
	f.subs[userID][sub] = struct{}{}

	cancel := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if _, ok := f.subs[userID][sub]; !ok {
			return
		}
		delete(f.subs[userID], sub)
		if len(f.subs[userID]) == 0 {
			delete(f.subs, userID)
		}
		close(sub.ch)
	}
	return sub.ch, cancel
}

// Publish fans a change signal out to the owner's subscribers without
// blocking the mutation path.
func (f *Feed) Publish(event Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for sub := range f.subs[event.UserID] {
		select {
		case sub.ch <- event:
		default:
			sub.dropped++
			if f.logger != nil {
				f.logger.Debug("Change feed subscriber backlogged, signal coalesced",
					zap.String("userID", event.UserID.String()),
					zap.Int("dropped", sub.dropped))
			}
		}
	}
}

// SubscriberCount reports the number of live subscribers for a user.
func (f *Feed) SubscriberCount(userID uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs[userID])
}

// Close shuts the feed down, closing every subscriber channel. Subsequent
// Publish calls are no-ops.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.closed = true
	for userID, subs := range f.subs {
		for sub := range subs {
			close(sub.ch)
		}
		delete(f.subs, userID)
	}
}
