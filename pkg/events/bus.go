// Package events carries cross-store notifications. Stores never call each
// other; the session store publishes and other stores subscribe.
package events

import (
	"sync"
)

// Type identifies an event
type Type string

const (
	// LoggedOut is published after the session has been cleared. Every store
	// holding per-user state resets on it.
	LoggedOut       Type = "logged_out"
	LoggedIn        Type = "logged_in"
	TokensRefreshed Type = "tokens_refreshed"
	CartChanged     Type = "cart_changed"
)

// Event is a published notification. Payload depends on Type.
type Event struct {
	Type    Type
	Payload interface{}
}

type listener struct {
	id int
	fn func(Event)
}

// Bus delivers events synchronously, in subscription order, on the
// publisher's goroutine. Publish returns after every listener has run.
type Bus struct {
	mu        sync.RWMutex
	nextID    int
	listeners map[Type][]listener
}

// NewBus creates an empty bus
func NewBus() *Bus {
	return &Bus{listeners: make(map[Type][]listener)}
}

// Subscribe registers fn for events of type t and returns its unsubscribe
// function.
func (b *Bus) Subscribe(t Type, fn func(Event)) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.listeners[t] = append(b.listeners[t], listener{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()

			current := b.listeners[t]
			for i, l := range current {
				if l.id == id {
					next := make([]listener, 0, len(current)-1)
					next = append(next, current[:i]...)
					b.listeners[t] = append(next, current[i+1:]...)
					break
				}
			}
		})
	}
}

// Publish delivers e to the listeners registered for its type. Listeners may
// subscribe or unsubscribe while being called.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	callbacks := b.listeners[e.Type]
	b.mu.RUnlock()

	for _, l := range callbacks {
		l.fn(e)
	}
}

// Len returns the number of listeners for t.
func (b *Bus) Len(t Type) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners[t])
}
