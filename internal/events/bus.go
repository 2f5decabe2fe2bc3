package events

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/fsnav/fsnav/internal/constants"
)

// EventBus fans events out to buffered subscriber channels.
// Publishing never blocks; events for a full subscriber are dropped and counted.
type EventBus struct {
	subscribers   map[EventType][]chan Event
	all           []chan Event
	mu            sync.RWMutex
	bufferSize    int
	closed        bool
	droppedEvents atomic.Int64
	onDrop        func(EventType, int64)
}

// NewEventBus creates a new event bus with specified buffer size
func NewEventBus(bufferSize int) *EventBus {
	if bufferSize <= 0 {
		bufferSize = constants.EventBusDefaultBuffer
	}
	if bufferSize > constants.EventBusMaxBuffer {
		bufferSize = constants.EventBusMaxBuffer
	}
	return &EventBus{
		subscribers: make(map[EventType][]chan Event),
		bufferSize:  bufferSize,
	}
}

// OnDrop registers a callback invoked whenever an event is dropped.
// It receives the event type and the running drop count.
func (eb *EventBus) OnDrop(fn func(EventType, int64)) {
	eb.mu.Lock()
	eb.onDrop = fn
	eb.mu.Unlock()
}

func (eb *EventBus) newChanLocked() chan Event {
	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}
	return make(chan Event, eb.bufferSize)
}

// Subscribe creates a subscription to a specific event type
func (eb *EventBus) Subscribe(eventType EventType) <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	ch := eb.newChanLocked()
	if !eb.closed {
		eb.subscribers[eventType] = append(eb.subscribers[eventType], ch)
	}
	return ch
}

// SubscribeAll creates a subscription to all events
func (eb *EventBus) SubscribeAll() <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	ch := eb.newChanLocked()
	if !eb.closed {
		eb.all = append(eb.all, ch)
	}
	return ch
}

// Listen calls fn for every event of the given types until ctx is done or
// the bus is closed. With no types it listens to everything. The returned
// channel is closed once the listener has stopped.
func (eb *EventBus) Listen(ctx context.Context, fn func(Event), types ...EventType) <-chan struct{} {
	var ch <-chan Event
	if len(types) == 0 {
		ch = eb.SubscribeAll()
	} else {
		merged := make(chan Event, eb.bufferSize)
		eb.mu.Lock()
		if eb.closed {
			close(merged)
		} else {
			for _, t := range types {
				eb.subscribers[t] = append(eb.subscribers[t], merged)
			}
		}
		eb.mu.Unlock()
		ch = merged
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer eb.UnsubscribeAll(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-ch:
				if !ok {
					return
				}
				fn(ev)
			}
		}
	}()
	return done
}

// Publish sends an event to all subscribers (non-blocking)
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if eb.closed {
		return
	}

	for _, ch := range eb.subscribers[event.Type()] {
		eb.sendLocked(ch, event)
	}
	for _, ch := range eb.all {
		eb.sendLocked(ch, event)
	}
}

func (eb *EventBus) sendLocked(ch chan Event, event Event) {
	select {
	case ch <- event:
	default:
		dropped := eb.droppedEvents.Add(1)
		if eb.onDrop != nil {
			eb.onDrop(event.Type(), dropped)
		}
	}
}

// Close shuts down the event bus and closes all channels
func (eb *EventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}
	eb.closed = true

	// A channel may be registered under several types (Listen); close it once.
	seen := make(map[chan Event]bool)
	closeOnce := func(ch chan Event) {
		if !seen[ch] {
			seen[ch] = true
			close(ch)
		}
	}
	for _, channels := range eb.subscribers {
		for _, ch := range channels {
			closeOnce(ch)
		}
	}
	for _, ch := range eb.all {
		closeOnce(ch)
	}
}

// Unsubscribe removes a subscription channel from a specific event type
func (eb *EventBus) Unsubscribe(eventType EventType, ch <-chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}
	eb.subscribers[eventType] = removeChan(eb.subscribers[eventType], ch)
}

// UnsubscribeAll removes a subscription channel from every event type and
// from the all-events list.
func (eb *EventBus) UnsubscribeAll(ch <-chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}
	for eventType, subscribers := range eb.subscribers {
		eb.subscribers[eventType] = removeChan(subscribers, ch)
	}
	eb.all = removeChan(eb.all, ch)
}

func removeChan(list []chan Event, ch <-chan Event) []chan Event {
	for i, subCh := range list {
		if subCh == ch {
			list[i] = list[len(list)-1]
			return list[:len(list)-1]
		}
	}
	return list
}

// GetDroppedEventCount returns the total number of events dropped due to full buffers
func (eb *EventBus) GetDroppedEventCount() int64 {
	return eb.droppedEvents.Load()
}

// ResetDroppedEventCount resets the dropped event counter to zero
func (eb *EventBus) ResetDroppedEventCount() int64 {
	return eb.droppedEvents.Swap(0)
}
