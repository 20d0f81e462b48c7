// Package notification provides the notification manager for broadcasting
// player updates to subscribers.
package notification

import (
	"sync"

	"github.com/google/uuid"
)

// Envelope wraps a broadcast value with its sequence number.
type Envelope[T any] struct {
	SequenceNo uint64
	Value      T
}

// subscription represents a subscriber's subscription.
type subscription[T any] struct {
	id string
	ch chan Envelope[T]
}

// Manager manages notification subscriptions and broadcasting.
// Subscribers that fall behind only see the most recent value.
type Manager[T any] struct {
	mu            sync.RWMutex
	subscriptions map[string]*subscription[T]
	sequenceNo    uint64
	sequenceNoMu  sync.Mutex
	closed        bool
}

// NewManager creates a new notification manager.
func NewManager[T any]() *Manager[T] {
	return &Manager[T]{
		subscriptions: make(map[string]*subscription[T]),
	}
}

// Subscribe adds a new subscription and returns its ID and channel.
// The channel is closed by Unsubscribe or Close.
func (m *Manager[T]) Subscribe() (string, <-chan Envelope[T]) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := uuid.New().String()
	ch := make(chan Envelope[T], 1)
	if m.closed {
		close(ch)
		return id, ch
	}
	m.subscriptions[id] = &subscription[T]{
		id: id,
		ch: ch,
	}
	return id, ch
}

// Unsubscribe removes a subscription.
func (m *Manager[T]) Unsubscribe(subscriptionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sub, ok := m.subscriptions[subscriptionID]; ok {
		close(sub.ch)
		delete(m.subscriptions, subscriptionID)
	}
}

// NextSequenceNo returns the next sequence number and increments the counter.
func (m *Manager[T]) NextSequenceNo() uint64 {
	m.sequenceNoMu.Lock()
	defer m.sequenceNoMu.Unlock()
	m.sequenceNo++
	return m.sequenceNo
}

// Broadcast sends a value to all subscribers without blocking.
// A pending value a subscriber has not read yet is replaced.
func (m *Manager[T]) Broadcast(value T) uint64 {
	env := Envelope[T]{SequenceNo: m.NextSequenceNo(), Value: value}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, sub := range m.subscriptions {
		select {
		case sub.ch <- env:
			continue
		default:
		}
		// Drop the stale value and retry once.
		select {
		case <-sub.ch:
		default:
		}
		select {
		case sub.ch <- env:
		default:
		}
	}
	return env.SequenceNo
}

// Count returns the number of subscribers.
func (m *Manager[T]) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subscriptions)
}

// Close closes every subscription. Later subscriptions are closed immediately.
func (m *Manager[T]) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, sub := range m.subscriptions {
		close(sub.ch)
		delete(m.subscriptions, id)
	}
	m.closed = true
}
