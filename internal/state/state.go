// Package state implements a small observable value cell. A Store holds a
// single value that one writer replaces wholesale and any number of readers
// snapshot or subscribe to.
package state

import "sync"

// Store holds a value of type T and notifies subscribers when it changes.
// The zero value is not usable; construct with New.
type Store[T any] struct {
	mu    sync.RWMutex
	value T
	subs  map[int]chan T
	next  int
}

// New creates a Store seeded with the given initial value.
func New[T any](initial T) *Store[T] {
	return &Store[T]{
		value: initial,
		subs:  make(map[int]chan T),
	}
}

// Get returns a snapshot of the current value.
func (s *Store[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set replaces the value and notifies every subscriber. Notification is
// non-blocking: a subscriber whose buffer is full misses the intermediate
// value but will still observe the latest one on its next receive or Get.
func (s *Store[T]) Set(value T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = value
	for _, ch := range s.subs {
		select {
		case ch <- value:
		default:
		}
	}
}

// Update applies fn to the current value and stores the result atomically
// with respect to other writers.
func (s *Store[T]) Update(fn func(T) T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = fn(s.value)
	for _, ch := range s.subs {
		select {
		case ch <- s.value:
		default:
		}
	}
}

// Subscribe registers a change listener. The returned channel receives the
// current value immediately, then every subsequent change. The cancel
// function must be called when the listener is done; the channel is closed
// by cancel, never by Set.
func (s *Store[T]) Subscribe() (<-chan T, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan T, 8)
	ch <- s.value

	id := s.next
	s.next++
	s.subs[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}
