// Package store is an in-memory product repository backing the mock API.
package store

import (
	"errors"
	"sort"
	"strconv"
	"sync"

	"github.com/fairyhunter13/product-console/internal/model"
)

// ErrNotFound is returned for unknown product ids.
var ErrNotFound = errors.New("product not found")

type productState struct {
	p   model.Product
	seq uint64
}

type Store struct {
	mu  sync.RWMutex
	m   map[model.ID]productState
	seq Sequencer
}

func New() *Store {
	return &Store{m: make(map[model.ID]productState)}
}

// List returns all products ordered by creation.
func (s *Store) List() []model.Product {
	s.mu.RLock()
	states := make([]productState, 0, len(s.m))
	for _, st := range s.m {
		states = append(states, st)
	}
	s.mu.RUnlock()
	sort.Slice(states, func(i, j int) bool { return states[i].seq < states[j].seq })
	out := make([]model.Product, len(states))
	for i, st := range states {
		out[i] = st.p
	}
	return out
}

func (s *Store) Get(id model.ID) (model.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.m[id]
	if !ok {
		return model.Product{}, false
	}
	return st.p, true
}

// Create assigns the next id to p and stores it.
func (s *Store) Create(p model.Product) model.Product {
	n := s.seq.Next()
	p.ID = model.ID(strconv.FormatUint(n, 10))
	s.mu.Lock()
	s.m[p.ID] = productState{p: p, seq: n}
	s.mu.Unlock()
	return p
}

// Update replaces every field of the product with id except the id itself.
func (s *Store) Update(id model.ID, p model.Product) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.m[id]
	if !ok {
		return model.Product{}, ErrNotFound
	}
	p.ID = id
	st.p = p
	s.m[id] = st
	return p, nil
}

func (s *Store) Delete(id model.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[id]; !ok {
		return ErrNotFound
	}
	delete(s.m, id)
	return nil
}

// Len returns the number of stored products.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}
