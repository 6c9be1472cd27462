// Package events allows for the registering and receiving of events.
package events

import (
	"sync"

	"github.com/google/uuid"
)

// Events maintains a mapping of unique id and channels so goroutines
// can register and receive events.
type Events struct {
	mu sync.RWMutex
	m  map[string]chan string
}

// New constructs an events for registering and receiving events.
func New() *Events {
	return &Events{
		m: make(map[string]chan string),
	}
}

// Shutdown closes and removes all channels that exist in the map.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, ch := range evt.m {
		delete(evt.m, id)
		close(ch)
	}
}

// Acquire takes a unique id and returns a channel that can be used
// to receive events.
func (evt *Events) Acquire(id string) chan string {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	// If this id doesn't exist yet create a channel for this
	// new registration.
	ch, exists := evt.m[id]
	if exists {
		return ch
	}

	// This channel must not block the caller so use a buffer since
	// the message is sent under the mutex lock.
	evt.m[id] = make(chan string, 100)

	return evt.m[id]
}

// Release closes and removes the channel for the specified id.
func (evt *Events) Release(id string) error {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	ch, exists := evt.m[id]
	if !exists {
		return nil
	}

	delete(evt.m, id)
	close(ch)

	return nil
}

// Send signals a message to every registered channel. Send will not
// block waiting for a receiver on any given channel.
func (evt *Events) Send(s string) {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	for _, ch := range evt.m {
		select {
		case ch <- s:
		default:
		}
	}
}

// NewID generates a unique id for an event channel registration.
func NewID() string {
	return uuid.NewString()
}
