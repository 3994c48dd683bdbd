// Package feed fans combo change events out to Server-Sent Events subscribers.
// Every subscriber owns a buffered channel; a subscriber that falls behind
// misses events instead of slowing down the request that published them.
package feed

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const subscriberBuffer = 32

type subscriber struct {
	events  chan Event
	dropped atomic.Uint64
}

// Broadcaster keeps the set of live subscribers.
type Broadcaster struct {
	mu          sync.RWMutex
	subscribers map[string]*subscriber
	nextID      atomic.Uint64
	dropped     atomic.Uint64
	logger      logrus.FieldLogger
}

// NewBroadcaster creates an empty Broadcaster.
func NewBroadcaster(logger logrus.FieldLogger) *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[string]*subscriber),
		logger:      logger.WithField("component", "feed"),
	}
}

// Subscribe registers a new listener and returns its id and event channel.
// The channel is closed by Unsubscribe.
func (b *Broadcaster) Subscribe() (string, <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.NewString()
	sub := &subscriber{events: make(chan Event, subscriberBuffer)}
	b.subscribers[id] = sub
	b.logger.WithField("subscriber", id).Debug("subscriber joined")
	return id, sub.events
}

// Unsubscribe removes the listener and closes its channel. Unknown ids are ignored.
func (b *Broadcaster) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub, ok := b.subscribers[id]
	if !ok {
		return
	}
	close(sub.events)
	delete(b.subscribers, id)
	b.logger.WithFields(logrus.Fields{
		"subscriber": id,
		"dropped":    sub.dropped.Load(),
	}).Debug("subscriber left")
}

// Publish stamps the event with the next sequence number and offers it to
// every subscriber without blocking.
func (b *Broadcaster) Publish(event Event) {
	event.ID = b.nextID.Add(1)

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subscribers {
		select {
		case sub.events <- event:
		default:
			sub.dropped.Add(1)
			b.dropped.Add(1)
		}
	}
}

// PublishPayload builds an event from payload and publishes it. Marshal
// failures are logged, never returned: the change itself already happened.
func (b *Broadcaster) PublishPayload(eventType string, payload any) {
	event, err := NewEvent(eventType, payload)
	if err != nil {
		b.logger.WithError(err).Warn("dropping unpublishable event")
		return
	}
	b.Publish(event)
}

// Subscribers returns the number of live subscribers.
func (b *Broadcaster) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Dropped returns how many deliveries were skipped because a subscriber's buffer was full.
func (b *Broadcaster) Dropped() uint64 {
	return b.dropped.Load()
}

// Close ends every subscription, which lets open streams return. Later
// subscribers are unaffected.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, sub := range b.subscribers {
		close(sub.events)
		delete(b.subscribers, id)
	}
}
