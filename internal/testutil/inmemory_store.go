package testutil

import (
	"context"
	"sync"

	ierr "github.com/resumeforge/resumeforge/internal/errors"
)

// InMemoryStore provides a generic thread-safe in-memory store for testing
type InMemoryStore[T any] struct {
	mu    sync.RWMutex
	items map[string]T
}

// NewInMemoryStore creates a new in-memory store
func NewInMemoryStore[T any]() *InMemoryStore[T] {
	return &InMemoryStore[T]{
		items: make(map[string]T),
	}
}

func (s *InMemoryStore[T]) Create(ctx context.Context, id string, item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[id]; exists {
		return ierr.NewError("item already exists").
			Mark(ierr.ErrAlreadyExists)
	}
	s.items[id] = item
	return nil
}

func (s *InMemoryStore[T]) Get(ctx context.Context, id string) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.items[id]
	if !exists {
		var zero T
		return zero, ierr.NewError("item not found").
			Mark(ierr.ErrNotFound)
	}
	return item, nil
}

func (s *InMemoryStore[T]) Update(ctx context.Context, id string, item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[id]; !exists {
		return ierr.NewError("item not found").
			Mark(ierr.ErrNotFound)
	}
	s.items[id] = item
	return nil
}

func (s *InMemoryStore[T]) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[id]; !exists {
		return ierr.NewError("item not found").
			Mark(ierr.ErrNotFound)
	}
	delete(s.items, id)
	return nil
}

// List returns every item matching the filter, or all items when the filter
// is nil. Order is unspecified.
func (s *InMemoryStore[T]) List(ctx context.Context, filter func(item T) bool) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []T
	for _, item := range s.items {
		if filter == nil || filter(item) {
			out = append(out, item)
		}
	}
	return out
}

func (s *InMemoryStore[T]) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *InMemoryStore[T]) Clear(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]T)
}
