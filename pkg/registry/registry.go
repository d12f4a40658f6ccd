package registry

import (
	"errors"
	"sync"
)

// ErrNotFound is returned for unknown registry IDs
var ErrNotFound = errors.New("item not found")

// Registry is an in memory structure holding objects by numeric ID.
// rexpect uses registries to hold the sessions started by running scripts
type Registry[T any] struct {
	data     map[int]T
	latestID int

	mu sync.Mutex
}

// NewRegistry creates a new registry
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{
		data:     make(map[int]T),
		latestID: 0,
	}
}

// Add adds an items to the registry in a thread safe way
func (r *Registry[T]) Add(t T) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.latestID++
	r.data[r.latestID] = t
	return r.latestID
}

// GetAll returns a copy of the registry contents
func (r *Registry[T]) GetAll() map[int]T {
	r.mu.Lock()
	defer r.mu.Unlock()

	ret := make(map[int]T, len(r.data))
	for k, v := range r.data {
		ret[k] = v
	}
	return ret
}

// GetByID returns an item give its registry ID
func (r *Registry[T]) GetByID(id int) (T, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if val, ok := r.data[id]; ok {
		return val, nil
	}
	var zero T
	return zero, ErrNotFound
}

// Len returns the number of items
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.data)
}

// Delete removes an item from registry
func (r *Registry[T]) Delete(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.data[id]; !ok {
		return ErrNotFound
	}
	delete(r.data, id)
	return nil
}
