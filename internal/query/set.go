package query

// InstanceSet is a set of entity-instance ids.
type InstanceSet map[string]struct{}

// NewInstanceSet creates a set from the given ids.
func NewInstanceSet(ids ...string) InstanceSet {
	s := make(InstanceSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Add inserts an id into the set.
func (s InstanceSet) Add(id string) {
	s[id] = struct{}{}
}

// Has reports whether id is in the set.
func (s InstanceSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Union returns a new set containing members of either set.
func (s InstanceSet) Union(other InstanceSet) InstanceSet {
	out := make(InstanceSet, len(s)+len(other))
	for id := range s {
		out[id] = struct{}{}
	}
	for id := range other {
		out[id] = struct{}{}
	}
	return out
}

// Intersect returns a new set containing members of both sets.
func (s InstanceSet) Intersect(other InstanceSet) InstanceSet {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	out := make(InstanceSet)
	for id := range small {
		if _, ok := large[id]; ok {
			out[id] = struct{}{}
		}
	}
	return out
}

// IDs returns the set members as a slice, in no particular order.
func (s InstanceSet) IDs() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	return out
}

// Selection is the result of the filter phase: either the ALL sentinel
// (no filtering, every instance matches) or a concrete id set. The empty
// set is a valid, distinct outcome meaning "nothing matched".
type Selection struct {
	All bool
	IDs InstanceSet
}

// SelectAll is the unfiltered selection.
func SelectAll() Selection {
	return Selection{All: true}
}

// SelectIDs wraps a concrete id set.
func SelectIDs(ids InstanceSet) Selection {
	return Selection{IDs: ids}
}

// Empty reports whether the selection is a concrete empty set.
func (sel Selection) Empty() bool {
	return !sel.All && len(sel.IDs) == 0
}

// combineAnd intersects selections; ALL is the identity element.
// Zero selections yield the empty set.
func combineAnd(sels []Selection) Selection {
	var acc InstanceSet
	sawSet := false
	for _, sel := range sels {
		if sel.All {
			continue
		}
		if !sawSet {
			acc = sel.IDs
			sawSet = true
			continue
		}
		acc = acc.Intersect(sel.IDs)
	}
	if !sawSet {
		if len(sels) > 0 {
			return SelectAll()
		}
		return SelectIDs(NewInstanceSet())
	}
	return SelectIDs(acc)
}

// combineOr unions selections; ALL dominates. Zero selections yield the
// empty set.
func combineOr(sels []Selection) Selection {
	acc := NewInstanceSet()
	for _, sel := range sels {
		if sel.All {
			return SelectAll()
		}
		acc = acc.Union(sel.IDs)
	}
	return SelectIDs(acc)
}
