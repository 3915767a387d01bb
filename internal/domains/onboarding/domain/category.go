package domain

import "sort"

// CategorySet is a set of backend category ids. The zero value is empty and ready to use.
type CategorySet struct {
	ids map[int64]struct{}
}

// NewCategorySet builds a set from ids, ignoring duplicates.
func NewCategorySet(ids ...int64) CategorySet {
	var s CategorySet
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

func (s *CategorySet) Add(id int64) {
	if s.ids == nil {
		s.ids = map[int64]struct{}{}
	}
	s.ids[id] = struct{}{}
}

func (s *CategorySet) Remove(id int64) {
	delete(s.ids, id)
}

// Toggle flips membership and reports whether id is now selected.
func (s *CategorySet) Toggle(id int64) bool {
	if s.Has(id) {
		s.Remove(id)
		return false
	}
	s.Add(id)
	return true
}

func (s CategorySet) Has(id int64) bool {
	_, ok := s.ids[id]
	return ok
}

func (s CategorySet) Len() int { return len(s.ids) }

// IDs returns the members in ascending order.
func (s CategorySet) IDs() []int64 {
	out := make([]int64, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SubsetOf reports whether every member of s is also in other.
func (s CategorySet) SubsetOf(other CategorySet) bool {
	for id := range s.ids {
		if !other.Has(id) {
			return false
		}
	}
	return true
}

// Difference returns the members of s missing from other.
func (s CategorySet) Difference(other CategorySet) []int64 {
	var out []int64
	for _, id := range s.IDs() {
		if !other.Has(id) {
			out = append(out, id)
		}
	}
	return out
}

func (s CategorySet) Clone() CategorySet {
	return NewCategorySet(s.IDs()...)
}
