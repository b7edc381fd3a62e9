package sequence

import "iter"

// OrderedSet keeps unique values in insertion order. Uniqueness is decided by
// ==, so pointer and interface values are compared by identity. Interface
// values whose dynamic type is not comparable make == panic and must not be
// stored.
//
// OrderedSet is not safe for concurrent use.
type OrderedSet[T comparable] struct {
	items []T
	index map[T]int
}

func NewOrderedSet[T comparable](values ...T) *OrderedSet[T] {
	s := &OrderedSet[T]{index: make(map[T]int, len(values))}
	for _, v := range values {
		s.Add(v)
	}
	return s
}

// Add appends v and reports whether it was absent.
func (s *OrderedSet[T]) Add(v T) bool {
	if s.index == nil {
		s.index = make(map[T]int)
	}
	if _, ok := s.index[v]; ok {
		return false
	}
	s.index[v] = len(s.items)
	s.items = append(s.items, v)
	return true
}

func (s *OrderedSet[T]) Has(v T) bool {
	_, ok := s.index[v]
	return ok
}

// Remove deletes v, keeping the order of the remaining values, and reports
// whether it was present.
func (s *OrderedSet[T]) Remove(v T) bool {
	i, ok := s.index[v]
	if !ok {
		return false
	}
	delete(s.index, v)
	copy(s.items[i:], s.items[i+1:])
	var zero T
	s.items[len(s.items)-1] = zero
	s.items = s.items[:len(s.items)-1]
	for j := i; j < len(s.items); j++ {
		s.index[s.items[j]] = j
	}
	return true
}

func (s *OrderedSet[T]) Len() int {
	return len(s.items)
}

// Values returns a copy of the values in insertion order.
func (s *OrderedSet[T]) Values() []T {
	out := make([]T, len(s.items))
	copy(out, s.items)
	return out
}

// All iterates over a snapshot of the values, so the set may be modified
// while iterating.
func (s *OrderedSet[T]) All() iter.Seq[T] {
	snapshot := s.Values()
	return func(yield func(T) bool) {
		for _, v := range snapshot {
			if !yield(v) {
				return
			}
		}
	}
}
