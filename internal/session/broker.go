package session

import (
	"context"
	"sync"

	"github.com/skout-hq/skout/internal/metrics"
	"github.com/skout-hq/skout/internal/models"
)

// Subscription receives auth events on C until Unsubscribe is called or the
// context given to Subscribe is done. C is closed afterwards.
type Subscription struct {
	C <-chan models.AuthEvent

	broker *Broker
	id     uint64
	once   sync.Once
	done   chan struct{}
}

// Unsubscribe stops delivery and closes C. It is safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.broker.remove(s.id)
		close(s.done)
	})
}

type subscriber struct {
	ch        chan models.AuthEvent
	sessionID string
}

// Broker fans auth events out to subscribers. Publishing never blocks: a
// subscriber whose buffer is full misses the event.
type Broker struct {
	mu     sync.RWMutex
	subs   map[uint64]*subscriber
	nextID uint64
	buffer int
}

// NewBroker creates a broker with buffer slots per subscriber.
func NewBroker(buffer int) *Broker {
	if buffer < 1 {
		buffer = 1
	}
	return &Broker{
		subs:   make(map[uint64]*subscriber),
		buffer: buffer,
	}
}

// Subscribe registers a subscriber for the events of sessionID, or for all
// events when sessionID is empty.
func (b *Broker) Subscribe(ctx context.Context, sessionID string) *Subscription {
	ch := make(chan models.AuthEvent, b.buffer)

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs[id] = &subscriber{ch: ch, sessionID: sessionID}
	b.mu.Unlock()

	sub := &Subscription{C: ch, broker: b, id: id, done: make(chan struct{})}
	if ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				sub.Unsubscribe()
			case <-sub.done:
			}
		}()
	}
	return sub
}

// Publish delivers ev to every matching subscriber without blocking.
func (b *Broker) Publish(ev models.AuthEvent) {
	metrics.AuthEventsTotal.WithLabelValues(ev.Type).Inc()

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subs {
		if sub.sessionID != "" && sub.sessionID != ev.SessionID {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			metrics.AuthEventDrops.Inc()
		}
	}
}

// Len returns the number of active subscribers.
func (b *Broker) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (b *Broker) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if sub, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(sub.ch)
	}
}
