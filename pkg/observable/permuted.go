package observable

// Permuted describes a change of an ordered list.
type Permuted[T any] struct {
	// Permutation maps every old index to its new index, or -1 if the
	// element was removed. Its length is the old list length.
	Permutation []int

	// NewLength is the list length after the change.
	NewLength int

	// Items is a snapshot of the list after the change.
	Items []T
}

// Identity returns the permutation that maps each of n indices to itself.
func Identity(n int) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return p
}

// IsIdentity reports whether the event leaves the list unchanged in order and
// length.
func (p Permuted[T]) IsIdentity() bool {
	if len(p.Permutation) != p.NewLength {
		return false
	}
	for i, j := range p.Permutation {
		if i != j {
			return false
		}
	}
	return true
}

// Valid reports whether the permutation is a partial injective mapping from
// old indices into [0, NewLength).
func (p Permuted[T]) Valid() bool {
	seen := make(map[int]bool, len(p.Permutation))
	for _, j := range p.Permutation {
		if j == -1 {
			continue
		}
		if j < 0 || j >= p.NewLength || seen[j] {
			return false
		}
		seen[j] = true
	}
	return true
}

// Removed returns the number of old elements that were removed.
func (p Permuted[T]) Removed() int {
	n := 0
	for _, j := range p.Permutation {
		if j == -1 {
			n++
		}
	}
	return n
}

// Added returns the number of new positions not covered by an old element.
func (p Permuted[T]) Added() int {
	return p.NewLength - (len(p.Permutation) - p.Removed())
}
