package constructor

import (
	"github.com/chazu/nef3/pkg/snc"
	"github.com/chazu/nef3/pkg/spheremap"
)

// Selection combines the marks of two operands into the mark of the result.
type Selection func(a, b bool) bool

// Apply evaluates s, swapping the operands when inverted is set.
func (s Selection) Apply(a, b, inverted bool) bool {
	if inverted {
		a, b = b, a
	}
	return s(a, b)
}

var (
	Union               Selection = func(a, b bool) bool { return a || b }
	Intersection        Selection = func(a, b bool) bool { return a && b }
	Difference          Selection = func(a, b bool) bool { return a && !b }
	SymmetricDifference Selection = func(a, b bool) bool { return a != b }
)

// SelectionByName returns the predefined selection called name.
func SelectionByName(name string) (Selection, bool) {
	switch name {
	case "union", "join":
		return Union, true
	case "intersection", "intersect":
		return Intersection, true
	case "difference":
		return Difference, true
	case "symmetric-difference", "xor":
		return SymmetricDifference, true
	}
	return nil, false
}

// Association receives the pair of facets whose intersection produced a
// sphere vertex. The indexed variant of the overlay engine reports every
// new sphere vertex that lies on a facet/facet intersection.
type Association interface {
	HashFacetPair(v snc.VertexID, sv spheremap.SVertexID, f1, f2 spheremap.FacetID)
}

// FacetPair is one record of a FacetPairs association.
type FacetPair struct {
	Vertex snc.VertexID
	SV     spheremap.SVertexID
	F1, F2 spheremap.FacetID
}

// FacetPairs is an Association that records every reported pair.
type FacetPairs struct {
	Pairs []FacetPair
}

// HashFacetPair records the pair.
func (a *FacetPairs) HashFacetPair(v snc.VertexID, sv spheremap.SVertexID, f1, f2 spheremap.FacetID) {
	a.Pairs = append(a.Pairs, FacetPair{Vertex: v, SV: sv, F1: f1, F2: f2})
}
