package hub

import (
	"context"
	"log"
	"sync"

	"github.com/atikulmunna/edlog/internal/model"
)

const (
	inputBuffer      = 4096
	subscriberBuffer = 1024
)

// Hub receives events from a tailer and broadcasts them to all subscribers.
type Hub struct {
	input       chan model.Event
	mu          sync.RWMutex
	subscribers []chan model.Event
	dropped     int64
}

// New creates a Hub with its own buffered input.
func New() *Hub {
	return &Hub{input: make(chan model.Event, inputBuffer)}
}

// OnEvent queues ev for broadcast. It never blocks the caller; when the
// input is full the event is dropped and counted. Hub satisfies
// tailer.Listener.
func (h *Hub) OnEvent(ev model.Event) {
	select {
	case h.input <- ev:
	default:
		h.mu.Lock()
		h.dropped++
		n := h.dropped
		h.mu.Unlock()
		log.Printf("hub: input full, dropped %s (total dropped: %d)", ev.Kind(), n)
	}
}

// Subscribe returns a buffered channel that will receive events.
// Multiple consumers can subscribe; each gets every event.
func (h *Hub) Subscribe() <-chan model.Event {
	ch := make(chan model.Event, subscriberBuffer)
	h.mu.Lock()
	h.subscribers = append(h.subscribers, ch)
	h.mu.Unlock()
	return ch
}

// Unsubscribe removes and closes a channel returned by Subscribe. Unknown
// channels are ignored.
func (h *Hub) Unsubscribe(sub <-chan model.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, ch := range h.subscribers {
		if ch == sub {
			close(ch)
			h.subscribers = append(h.subscribers[:i], h.subscribers[i+1:]...)
			return
		}
	}
}

// Dropped returns the total number of events dropped for slow consumers.
func (h *Hub) Dropped() int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.dropped
}

// Start broadcasts queued events until the context is cancelled, then
// closes every subscriber channel.
func (h *Hub) Start(ctx context.Context) {
	defer h.closeAll()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-h.input:
			h.broadcast(ev)
		}
	}
}

// broadcast sends ev to all subscribers.
// If a subscriber's channel is full, the event is dropped for that subscriber.
func (h *Hub) broadcast(ev model.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subscribers {
		select {
		case ch <- ev:
		default:
			h.dropped++
			log.Printf("hub: dropped event for slow consumer (total dropped: %d)", h.dropped)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subscribers {
		close(ch)
	}
	h.subscribers = nil
}
