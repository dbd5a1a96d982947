// Package infibox classifies points and features against the infimaximal
// box [-R, R]^3 that closes every polyhedron. A coordinate lies on the box
// when it equals R or -R; a point is standard when none of its coordinates
// depends on R.
package infibox

import (
	"math/big"

	"github.com/chazu/nef3/pkg/kernel"
	"github.com/chazu/nef3/pkg/spheremap"
)

var boxR = kernel.Frame(0, 1)

// IsStandard reports whether p is a finite point.
func IsStandard(p kernel.Point) bool { return p.Degree() == 0 }

// OnBox reports whether the coordinate n equals R or -R.
func OnBox(n kernel.Number) bool { return n.Abs().Equal(boxR) }

// XOnBox reports whether p lies on one of the box faces x = R, x = -R.
func XOnBox(p kernel.Point) bool { return OnBox(p.X) }

// YOnBox reports whether p lies on one of the box faces y = R, y = -R.
func YOnBox(p kernel.Point) bool { return OnBox(p.Y) }

// ZOnBox reports whether p lies on one of the box faces z = R, z = -R.
func ZOnBox(p kernel.Point) bool { return OnBox(p.Z) }

// BoxFaces returns how many box faces p lies on: 1 inside a face, 2 on a
// box edge, 3 at a corner.
func BoxFaces(p kernel.Point) int {
	n := 0
	for i := 0; i < 3; i++ {
		if OnBox(p.Coord(i)) {
			n++
		}
	}
	return n
}

// IsInfiboxCorner reports whether p is one of the eight box corners.
func IsInfiboxCorner(p kernel.Point) bool { return BoxFaces(p) == 3 }

// CreateExtendedPoint returns (x*R, y*R, z*R).
func CreateExtendedPoint(x, y, z int64) kernel.Point {
	return kernel.NewPoint(kernel.Frame(0, x), kernel.Frame(0, y), kernel.Frame(0, z))
}

// StandardPoint returns p with R replaced by eval.
func StandardPoint(p kernel.Point, eval *big.Rat) kernel.Point {
	return kernel.EvalPoint(p, eval)
}

// onBoxAlong counts the axes on which p lies on the box while d has no
// component, i.e. the box faces that contain the ray from p along d.
func onBoxAlong(p kernel.Point, d kernel.SpherePoint) int {
	n := 0
	for i := 0; i < 3; i++ {
		if OnBox(p.Coord(i)) && d.Coord(i).IsZero() {
			n++
		}
	}
	return n
}

// IsEdgeOnInfibox reports whether the edge leaving p in direction d runs
// inside a box face.
func IsEdgeOnInfibox(p kernel.Point, d kernel.SpherePoint) bool {
	if IsStandard(p) {
		return false
	}
	return onBoxAlong(p, d) > 0
}

// IsType4 reports whether the edge leaving p along d runs along a box edge.
func IsType4(p kernel.Point, d kernel.SpherePoint) bool {
	return onBoxAlong(p, d) >= 2
}

// IsType3 reports whether the edge leaving p along d runs inside a box face
// parallel to a coordinate axis, but not along a box edge.
func IsType3(p kernel.Point, d kernel.SpherePoint) bool {
	if !IsEdgeOnInfibox(p, d) || IsType4(p, d) {
		return false
	}
	nonzero := 0
	for i := 0; i < 3; i++ {
		if !d.Coord(i).IsZero() {
			nonzero++
		}
	}
	return nonzero == 1
}

// IsSEdgeOnInfibox reports whether a sphere half-edge with circle c in the
// local map of p lies in a box face through p.
func IsSEdgeOnInfibox(p kernel.Point, c kernel.SphereCircle) bool {
	if IsStandard(p) {
		return false
	}
	n := c.Normal()
	for i := 0; i < 3; i++ {
		if !OnBox(p.Coord(i)) || n.Coord(i).IsZero() {
			continue
		}
		if n.Coord((i+1)%3).IsZero() && n.Coord((i+2)%3).IsZero() {
			return true
		}
	}
	return false
}

// IsComplexFacetInfiboxIntersection reports whether more than one sphere
// edge of sm, the local map of p, leaves the box faces: the vertex is where
// several facets meet the box.
func IsComplexFacetInfiboxIntersection(p kernel.Point, sm *spheremap.Map) bool {
	found := false
	for _, e := range sm.SEdges() {
		if IsSEdgeOnInfibox(p, sm.SHalfedge(e).Circle) {
			continue
		}
		if found {
			return true
		}
		found = true
	}
	return false
}

// EvaluationConstant returns a value for R large enough to keep the order
// of all given points along every coordinate: four times the largest
// absolute constant term, or 1 when all constant terms vanish.
func EvaluationConstant(points []kernel.Point) *big.Rat {
	eval := new(big.Rat)
	for _, p := range points {
		for i := 0; i < 3; i++ {
			c := new(big.Rat).Abs(p.Coord(i).Constant())
			if c.Cmp(eval) > 0 {
				eval = c
			}
		}
	}
	if eval.Sign() == 0 {
		return big.NewRat(1, 1)
	}
	return eval.Mul(eval, big.NewRat(4, 1))
}

// ComputeMinMax returns the absolute constant terms of the normal of h and
// the indices of the smallest and largest of them, the first one on ties.
func ComputeMinMax(h kernel.Plane) (orth [3]*big.Rat, min, max int) {
	n := h.Normal()
	for i := 0; i < 3; i++ {
		orth[i] = new(big.Rat).Abs(n.Coord(i).Constant())
	}
	if orth[1].Cmp(orth[0]) > 0 {
		max = 1
	}
	if orth[2].Cmp(orth[max]) > 0 {
		max = 2
	}
	if orth[1].Cmp(orth[0]) < 0 {
		min = 1
	}
	if orth[2].Cmp(orth[min]) < 0 {
		min = 2
	}
	return orth, min, max
}
