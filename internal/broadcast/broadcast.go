// Package broadcast fans win events out to every connected live viewer.
package broadcast

import (
	"errors"
	"sync"

	"github.com/goccy/go-json"

	"github.com/abrezinsky/outletplay/internal/logger"
	"github.com/abrezinsky/outletplay/internal/metrics"
	"github.com/abrezinsky/outletplay/internal/models"
)

// Errors a Channel reports when it cannot take an event
var (
	ErrChannelFull   = errors.New("live channel buffer is full")
	ErrChannelClosed = errors.New("live channel is closed")
)

// Channel is one live viewer connection. WriteEvent must not block: a
// transport that cannot take the event right away returns an error and is
// dropped from the registry.
type Channel interface {
	WriteEvent(id string, payload []byte) error
}

// Broadcaster is the registry of live viewers
type Broadcaster struct {
	log  logger.Logger
	mu   sync.RWMutex
	subs map[*subscription]struct{}
}

type subscription struct {
	ch   Channel
	once sync.Once
}

// New creates an empty Broadcaster
func New(log logger.Logger) *Broadcaster {
	return &Broadcaster{
		log:  log,
		subs: make(map[*subscription]struct{}),
	}
}

// Subscribe registers ch and returns the function that removes it. The
// returned function may be called any number of times, including after
// the channel was pruned by a failed write.
func (b *Broadcaster) Subscribe(ch Channel) (unsubscribe func()) {
	sub := &subscription{ch: ch}

	b.mu.Lock()
	b.subs[sub] = struct{}{}
	size := len(b.subs)
	b.mu.Unlock()

	metrics.LiveViewers.Set(float64(size))
	b.log.Debug("Live viewer subscribed", "viewers", size)

	return func() {
		sub.once.Do(func() {
			b.remove(sub)
		})
	}
}

func (b *Broadcaster) remove(subs ...*subscription) {
	b.mu.Lock()
	for _, sub := range subs {
		delete(b.subs, sub)
	}
	size := len(b.subs)
	b.mu.Unlock()

	metrics.LiveViewers.Set(float64(size))
	b.log.Debug("Live viewers removed", "removed", len(subs), "viewers", size)
}

// Publish serializes event once and writes it to every registered channel.
// A failing channel is pruned and does not stop delivery to the others.
func (b *Broadcaster) Publish(event models.WinEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		b.log.Error("Failed to encode win event", "id", event.ID, "error", err)
		return
	}
	metrics.LiveEventsTotal.Inc()

	b.mu.RLock()
	snapshot := make([]*subscription, 0, len(b.subs))
	for sub := range b.subs {
		snapshot = append(snapshot, sub)
	}
	b.mu.RUnlock()

	var failed []*subscription
	for _, sub := range snapshot {
		if err := sub.ch.WriteEvent(event.ID, payload); err != nil {
			b.log.Debug("Dropping live viewer", "error", err)
			failed = append(failed, sub)
		}
	}
	if len(failed) == 0 {
		return
	}

	metrics.LivePrunedTotal.Add(float64(len(failed)))
	// Claim each once so a later unsubscribe call is a no-op
	for _, sub := range failed {
		sub.once.Do(func() {})
	}
	b.remove(failed...)
}

// Size returns the number of registered channels
func (b *Broadcaster) Size() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
