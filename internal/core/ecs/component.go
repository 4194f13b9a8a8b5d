package ecs

// Removable is implemented by all component stores so the Registry can
// bulk-remove an entity's data from every store on destroy.
type Removable interface {
	Remove(id EntityID)
	Clear()
}

// Store is a dense component store. Iteration follows insertion order
// (removal swaps the last element into the hole), so two stores fed the
// same operations always iterate identically. The simulation relies on
// this for replayable runs; a map-backed store would not give it.
type Store[T any] struct {
	index map[EntityID]int
	ids   []EntityID
	data  []*T
}

func NewStore[T any](capacity int) *Store[T] {
	return &Store[T]{
		index: make(map[EntityID]int, capacity),
		ids:   make([]EntityID, 0, capacity),
		data:  make([]*T, 0, capacity),
	}
}

func (s *Store[T]) Set(id EntityID, c *T) {
	if i, ok := s.index[id]; ok {
		s.data[i] = c
		return
	}
	s.index[id] = len(s.ids)
	s.ids = append(s.ids, id)
	s.data = append(s.data, c)
}

func (s *Store[T]) Get(id EntityID) (*T, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.data[i], true
}

func (s *Store[T]) Has(id EntityID) bool {
	_, ok := s.index[id]
	return ok
}

func (s *Store[T]) Remove(id EntityID) {
	i, ok := s.index[id]
	if !ok {
		return
	}
	last := len(s.ids) - 1
	if i != last {
		s.ids[i] = s.ids[last]
		s.data[i] = s.data[last]
		s.index[s.ids[i]] = i
	}
	s.ids[last] = 0
	s.data[last] = nil
	s.ids = s.ids[:last]
	s.data = s.data[:last]
	delete(s.index, id)
}

func (s *Store[T]) Clear() {
	clear(s.index)
	for i := range s.data {
		s.data[i] = nil
	}
	s.ids = s.ids[:0]
	s.data = s.data[:0]
}

func (s *Store[T]) Len() int { return len(s.ids) }

// Each visits components in store order. fn must not add or remove
// entries; queue destruction through World.MarkForDestruction instead.
func (s *Store[T]) Each(fn func(EntityID, *T)) {
	for i, id := range s.ids {
		fn(id, s.data[i])
	}
}

// EachUntil is Each with early exit: iteration stops when fn returns false.
func (s *Store[T]) EachUntil(fn func(EntityID, *T) bool) {
	for i, id := range s.ids {
		if !fn(id, s.data[i]) {
			return
		}
	}
}
