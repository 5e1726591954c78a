package store

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"
)

type memoryCollection struct {
	lastID int64
	docs   map[int64]Envelope
}

// MemoryStore is a DocumentStore held in process memory.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
	now         func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]*memoryCollection),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStore) collection(name string) *memoryCollection {
	c, ok := s.collections[name]
	if !ok {
		c = &memoryCollection{docs: make(map[int64]Envelope)}
		s.collections[name] = c
	}
	return c
}

func (s *MemoryStore) Insert(_ context.Context, collection string, body []byte) (Envelope, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.collection(collection)
	c.lastID++
	now := s.now()
	env := Envelope{ID: c.lastID, CreatedAt: now, UpdatedAt: now, Body: slices.Clone(body)}
	c.docs[env.ID] = env
	return env, nil
}

func (s *MemoryStore) List(_ context.Context, collection string) ([]Envelope, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[collection]
	if !ok {
		return nil, nil
	}

	out := make([]Envelope, 0, len(c.docs))
	for _, id := range slices.Sorted(maps.Keys(c.docs)) {
		out = append(out, c.docs[id])
	}
	return out, nil
}

func (s *MemoryStore) Get(_ context.Context, collection string, id int64) (Envelope, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if c, ok := s.collections[collection]; ok {
		if env, ok := c.docs[id]; ok {
			return env, nil
		}
	}
	return Envelope{}, ErrNotFound
}

func (s *MemoryStore) Modify(_ context.Context, collection string, id int64, fn func(Envelope) ([]byte, error)) (Envelope, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[collection]
	if !ok {
		return Envelope{}, ErrNotFound
	}
	env, ok := c.docs[id]
	if !ok {
		return Envelope{}, ErrNotFound
	}

	body, err := fn(env)
	if err != nil {
		return Envelope{}, err
	}
	env.Body = slices.Clone(body)
	env.UpdatedAt = s.now()
	c.docs[id] = env
	return env, nil
}

func (s *MemoryStore) Remove(_ context.Context, collection string, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[collection]
	if !ok {
		return false, nil
	}
	if _, ok := c.docs[id]; !ok {
		return false, nil
	}
	delete(c.docs, id)
	return true, nil
}
