package multiset

// Multiset is a counted set over comparable elements. The zero value is not
// usable; construct instances with New or FromSlice.
type Multiset[T comparable] struct {
	counts map[T]int
	size   int
}

// New returns an empty Multiset.
// Complexity: O(1).
func New[T comparable]() *Multiset[T] {
	return &Multiset[T]{counts: make(map[T]int)}
}

// FromSlice returns a Multiset holding every element of vs, with repeats
// counted.
// Complexity: O(len(vs)).
func FromSlice[T comparable](vs []T) *Multiset[T] {
	m := New[T]()
	m.AddRange(vs)
	return m
}

// Add inserts one occurrence of v.
// Complexity: O(1).
func (m *Multiset[T]) Add(v T) {
	m.counts[v]++
	m.size++
}

// AddN inserts n occurrences of v. Non-positive n is a no-op.
// Complexity: O(1).
func (m *Multiset[T]) AddN(v T, n int) {
	if n <= 0 {
		return
	}
	m.counts[v] += n
	m.size += n
}

// AddRange inserts one occurrence of every element of vs.
// Complexity: O(len(vs)).
func (m *Multiset[T]) AddRange(vs []T) {
	for _, v := range vs {
		m.Add(v)
	}
}

// Remove deletes one occurrence of v and reports whether an occurrence was
// present to delete.
// Complexity: O(1).
func (m *Multiset[T]) Remove(v T) bool {
	return m.RemoveMany(v, 1)
}

// RemoveMany deletes up to n occurrences of v and reports whether all n
// occurrences were present. Counts never go below zero.
// Complexity: O(1).
func (m *Multiset[T]) RemoveMany(v T, n int) bool {
	if n <= 0 {
		return true
	}
	have := m.counts[v]
	if have <= n {
		delete(m.counts, v)
		m.size -= have
		return have == n
	}
	m.counts[v] = have - n
	m.size -= n
	return true
}

// Count returns the number of occurrences of v.
// Complexity: O(1).
func (m *Multiset[T]) Count(v T) int { return m.counts[v] }

// Len returns the total number of occurrences across all elements.
// Complexity: O(1).
func (m *Multiset[T]) Len() int { return m.size }

// Distinct returns the elements with at least one occurrence, in
// unspecified order.
// Complexity: O(distinct elements).
func (m *Multiset[T]) Distinct() []T {
	out := make([]T, 0, len(m.counts))
	for v := range m.counts {
		out = append(out, v)
	}
	return out
}

// Clone returns an independent copy of the multiset. The copy-on-write
// search state clones before every mutation so snapshots stay immutable.
// Complexity: O(distinct elements).
func (m *Multiset[T]) Clone() *Multiset[T] {
	c := &Multiset[T]{counts: make(map[T]int, len(m.counts)), size: m.size}
	for v, n := range m.counts {
		c.counts[v] = n
	}
	return c
}

// Equal reports structural equality: the same elements with the same
// counts.
// Complexity: O(distinct elements).
func (m *Multiset[T]) Equal(o *Multiset[T]) bool {
	if m.size != o.size || len(m.counts) != len(o.counts) {
		return false
	}
	for v, n := range m.counts {
		if o.counts[v] != n {
			return false
		}
	}
	return true
}
