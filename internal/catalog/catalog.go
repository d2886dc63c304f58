package catalog

import (
	"errors"
	"sort"
	"sync"
)

var (
	ErrNotFound   = errors.New("product not found")
	ErrOutOfStock = errors.New("product out of stock")
)

type Product struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
	Stock int    `json:"stock"`
}

// Store holds the fixed product set. Stock is the only mutable field and
// Reserve is the only operation that touches it.
type Store struct {
	mu sync.RWMutex
	m  map[int]Product
}

func NewStore() *Store {
	s := &Store{m: map[int]Product{}}
	for _, p := range []Product{
		{ID: 1, Name: "T-Shirt", Price: 499, Stock: 10},
		{ID: 2, Name: "Shoes", Price: 1499, Stock: 6},
		{ID: 3, Name: "Mug", Price: 199, Stock: 15},
	} {
		s.m[p.ID] = p
	}
	return s
}

func (s *Store) List() []Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, 0, len(s.m))
	for _, p := range s.m {
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) Get(id int) (Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.m[id]
	return p, ok
}

// Reserve decrements stock for id by one and returns the product as it
// stands after the decrement. The check and the decrement happen under one
// lock so stock can never go negative under concurrent adds.
func (s *Store) Reserve(id int) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.m[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	if p.Stock <= 0 {
		return Product{}, ErrOutOfStock
	}

	p.Stock--
	s.m[id] = p
	return p, nil
}
