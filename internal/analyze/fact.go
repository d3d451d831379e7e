package analyze

import (
	"cmp"
	"slices"
)

// Fact is one unit of extracted information. Implementations must be
// comparable values: two facts are the same fact when they are ==.
type Fact interface {
	Category() string
	String() string
}

// ResultSet is the set of facts produced for one entry. The zero value is
// an empty set ready for reads; use NewResultSet before adding.
type ResultSet map[Fact]struct{}

func NewResultSet(facts ...Fact) ResultSet {
	rs := make(ResultSet, len(facts))
	for _, f := range facts {
		rs.Add(f)
	}
	return rs
}

func (rs ResultSet) Add(f Fact) {
	rs[f] = struct{}{}
}

func (rs ResultSet) Contains(f Fact) bool {
	_, ok := rs[f]
	return ok
}

func (rs ResultSet) Len() int {
	return len(rs)
}

// Union adds every fact of other to rs.
func (rs ResultSet) Union(other ResultSet) {
	for f := range other {
		rs[f] = struct{}{}
	}
}

func (rs ResultSet) Equal(other ResultSet) bool {
	if len(rs) != len(other) {
		return false
	}
	for f := range rs {
		if !other.Contains(f) {
			return false
		}
	}
	return true
}

// Sorted returns the facts ordered by category, then by their text.
func (rs ResultSet) Sorted() []Fact {
	facts := make([]Fact, 0, len(rs))
	for f := range rs {
		facts = append(facts, f)
	}
	slices.SortFunc(facts, CompareFacts)
	return facts
}

func CompareFacts(a, b Fact) int {
	return cmp.Or(
		cmp.Compare(a.Category(), b.Category()),
		cmp.Compare(a.String(), b.String()),
	)
}
