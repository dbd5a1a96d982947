package kernel

import "fmt"

// Plane is the oriented plane a*x + b*y + c*z + d = 0. Its positive side is
// the half-space the normal (a, b, c) points into.
type Plane struct {
	A, B, C, D Number
}

// NewPlane returns the plane a*x + b*y + c*z + d = 0.
func NewPlane(a, b, c, d Number) Plane { return Plane{A: a, B: b, C: c, D: d} }

// Pl returns the standard plane a*x + b*y + c*z + d = 0.
func Pl(a, b, c, d int64) Plane { return Plane{A: Int(a), B: Int(b), C: Int(c), D: Int(d)} }

// PlaneThrough returns the plane through p, q and r, oriented so that the
// three points appear counterclockwise seen from its positive side.
func PlaneThrough(p, q, r Point) Plane {
	n := q.Sub(p).Cross(r.Sub(p))
	return Plane{A: n.X, B: n.Y, C: n.Z, D: n.Dot(p.Vector()).Neg()}
}

// Normal returns (a, b, c).
func (h Plane) Normal() Vector { return Vector{X: h.A, Y: h.B, Z: h.C} }

// Value returns a*x + b*y + c*z + d at p.
func (h Plane) Value(p Point) Number {
	return h.Normal().Dot(p.Vector()).Add(h.D)
}

// OrientedSide classifies p against h.
func (h Plane) OrientedSide(p Point) Sign { return h.Value(p).Sign() }

// HasOn reports whether p lies on h.
func (h Plane) HasOn(p Point) bool { return h.Value(p).IsZero() }

// Opposite returns h with reversed orientation.
func (h Plane) Opposite() Plane {
	return Plane{A: h.A.Neg(), B: h.B.Neg(), C: h.C.Neg(), D: h.D.Neg()}
}

// IsDegenerate reports whether the normal vanishes.
func (h Plane) IsDegenerate() bool { return h.Normal().IsZero() }

// IsStandard reports whether all coefficients are standard numbers.
func (h Plane) IsStandard() bool {
	return h.A.IsStandard() && h.B.IsStandard() && h.C.IsStandard() && h.D.IsStandard()
}

// Equal reports whether h and g have identical coefficients.
func (h Plane) Equal(g Plane) bool {
	return h.A.Equal(g.A) && h.B.Equal(g.B) && h.C.Equal(g.C) && h.D.Equal(g.D)
}

func (h Plane) String() string {
	return fmt.Sprintf("[%s, %s, %s, %s]", h.A, h.B, h.C, h.D)
}
