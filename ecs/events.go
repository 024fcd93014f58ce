package ecs

// EventKind identifies world events.
type EventKind string

const (
	EventBodyRemoved   EventKind = "body_removed"
	EventSystemRemoved EventKind = "system_removed"
)

// Event is emitted by the world during housekeeping.
type Event struct {
	Kind   EventKind
	Entity Entity
	System System
}

// EventQueue is a simple FIFO queue. The world never drains it on its own;
// the queue is capped so an unattended harness cannot grow it forever.
type EventQueue struct {
	items []Event
	limit int
}

const defaultEventLimit = 4096

// Push adds an event, dropping the oldest when the queue is full.
func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	limit := q.limit
	if limit <= 0 {
		limit = defaultEventLimit
	}
	if len(q.items) >= limit {
		copy(q.items, q.items[1:])
		q.items = q.items[:len(q.items)-1]
	}
	q.items = append(q.items, evt)
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}

// Len returns the number of pending events.
func (q *EventQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}
