package kernel

import (
	"fmt"
	"math"
	"math/big"
)

// SpherePoint is a direction, i.e. a point on the unit sphere around a
// vertex. It is stored as the primitive integer vector of that direction, so
// two sphere points are equal exactly when their fields are equal.
type SpherePoint struct {
	x, y, z *big.Int
}

// NewSpherePoint returns the direction of (x, y, z).
func NewSpherePoint(x, y, z int64) SpherePoint {
	return primitive(big.NewInt(x), big.NewInt(y), big.NewInt(z))
}

// SpherePointOf returns the direction of v. For vectors that depend on R the
// leading-degree coefficients are used, which is the direction v tends to as
// R grows.
func SpherePointOf(v Vector) SpherePoint {
	d := max(v.X.Degree(), v.Y.Degree(), v.Z.Degree())
	return spherePointFromRats(v.X.Coeff(d), v.Y.Coeff(d), v.Z.Coeff(d))
}

func spherePointFromRats(x, y, z *big.Rat) SpherePoint {
	l := big.NewInt(1)
	for _, r := range []*big.Rat{x, y, z} {
		l = lcm(l, r.Denom())
	}
	scale := func(r *big.Rat) *big.Int {
		n := new(big.Int).Mul(r.Num(), l)
		return n.Quo(n, r.Denom())
	}
	return primitive(scale(x), scale(y), scale(z))
}

func lcm(a, b *big.Int) *big.Int {
	g := new(big.Int).GCD(nil, nil, a, b)
	r := new(big.Int).Mul(a, b)
	r.Quo(r, g)
	return r.Abs(r)
}

func primitive(x, y, z *big.Int) SpherePoint {
	g := new(big.Int).GCD(nil, nil, new(big.Int).Abs(x), new(big.Int).Abs(y))
	g.GCD(nil, nil, g, new(big.Int).Abs(z))
	if g.Sign() == 0 {
		return SpherePoint{x: new(big.Int), y: new(big.Int), z: new(big.Int)}
	}
	return SpherePoint{
		x: new(big.Int).Quo(x, g),
		y: new(big.Int).Quo(y, g),
		z: new(big.Int).Quo(z, g),
	}
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}

// X returns a copy of the x component.
func (p SpherePoint) X() *big.Int { return new(big.Int).Set(orZero(p.x)) }

// Y returns a copy of the y component.
func (p SpherePoint) Y() *big.Int { return new(big.Int).Set(orZero(p.y)) }

// Z returns a copy of the z component.
func (p SpherePoint) Z() *big.Int { return new(big.Int).Set(orZero(p.z)) }

func (p SpherePoint) comps() [3]*big.Int {
	return [3]*big.Int{orZero(p.x), orZero(p.y), orZero(p.z)}
}

// Coord returns component i as a standard number.
func (p SpherePoint) Coord(i int) Number {
	return FromRat(new(big.Rat).SetInt(p.comps()[i]))
}

// IsZero reports whether p is the degenerate zero direction.
func (p SpherePoint) IsZero() bool {
	c := p.comps()
	return c[0].Sign() == 0 && c[1].Sign() == 0 && c[2].Sign() == 0
}

// Antipode returns -p.
func (p SpherePoint) Antipode() SpherePoint {
	c := p.comps()
	return SpherePoint{x: new(big.Int).Neg(c[0]), y: new(big.Int).Neg(c[1]), z: new(big.Int).Neg(c[2])}
}

// Equal reports whether p and q are the same direction.
func (p SpherePoint) Equal(q SpherePoint) bool {
	a, b := p.comps(), q.comps()
	return a[0].Cmp(b[0]) == 0 && a[1].Cmp(b[1]) == 0 && a[2].Cmp(b[2]) == 0
}

// Vector returns the representative of p as a standard vector.
func (p SpherePoint) Vector() Vector {
	return Vector{X: p.Coord(0), Y: p.Coord(1), Z: p.Coord(2)}
}

// Float64 returns the unit vector approximating p.
func (p SpherePoint) Float64() [3]float64 {
	c := p.comps()
	var v [3]float64
	var n float64
	for i := range c {
		v[i], _ = new(big.Float).SetInt(c[i]).Float64()
		n += v[i] * v[i]
	}
	if n == 0 {
		return v
	}
	n = math.Sqrt(n)
	for i := range v {
		v[i] /= n
	}
	return v
}

func (p SpherePoint) String() string {
	c := p.comps()
	return fmt.Sprintf("(%s, %s, %s)", c[0], c[1], c[2])
}

// Key returns a canonical string usable as a map key.
func (p SpherePoint) Key() string { return p.String() }

func dot(a, b [3]*big.Int) *big.Int {
	r := new(big.Int)
	t := new(big.Int)
	for i := 0; i < 3; i++ {
		r.Add(r, t.Mul(a[i], b[i]))
	}
	return r
}

func cross(a, b [3]*big.Int) [3]*big.Int {
	m := func(i, j int) *big.Int {
		l := new(big.Int).Mul(a[i], b[j])
		return l.Sub(l, new(big.Int).Mul(a[j], b[i]))
	}
	return [3]*big.Int{m(1, 2), m(2, 0), m(0, 1)}
}

func det(a, b, c [3]*big.Int) Sign {
	return signOf(dot(a, cross(b, c)).Sign())
}

// SphericalOrientation returns the orientation of the sphere triangle
// (p1, p2, p3): positive when the points appear counterclockwise seen from
// outside the sphere.
func SphericalOrientation(p1, p2, p3 SpherePoint) Sign {
	return det(p1.comps(), p2.comps(), p3.comps())
}

// CompareAround orders u and v by the counterclockwise angle from ref
// around axis, measured in [0, 2pi). None of the directions may be parallel
// to axis.
func CompareAround(axis, ref, u, v SpherePoint) int {
	a, r := axis.comps(), ref.comps()
	aa := dot(a, a)
	ar := dot(a, r)
	half := func(w [3]*big.Int) int {
		s := det(a, r, w)
		if s == Positive {
			return 0
		}
		if s == Negative {
			return 1
		}
		// w is parallel or antiparallel to ref once projected.
		t := new(big.Int).Mul(aa, dot(r, w))
		t.Sub(t, new(big.Int).Mul(ar, dot(a, w)))
		if t.Sign() > 0 {
			return 0
		}
		return 1
	}
	uc, vc := u.comps(), v.comps()
	hu, hv := half(uc), half(vc)
	if hu != hv {
		return hu - hv
	}
	return -int(det(a, uc, vc))
}

// SphereCircle is a great circle, the intersection of the unit sphere with a
// plane through the origin. It is oriented counterclockwise around its
// normal; its positive side is on the left of that traversal.
type SphereCircle struct {
	n SpherePoint
}

// NewSphereCircle returns the circle with normal (a, b, c).
func NewSphereCircle(a, b, c int64) SphereCircle {
	return SphereCircle{n: NewSpherePoint(a, b, c)}
}

// CircleFromPlane returns the great circle parallel to h.
func CircleFromPlane(h Plane) SphereCircle {
	return SphereCircle{n: SpherePointOf(h.Normal())}
}

// CircleWithNormal returns the great circle with the given normal.
func CircleWithNormal(n SpherePoint) SphereCircle { return SphereCircle{n: n} }

// CircleThrough returns the great circle through p and q oriented so that
// the short arc from p to q is counterclockwise. The result is degenerate
// when p and q are equal or antipodal.
func CircleThrough(p, q SpherePoint) SphereCircle {
	c := cross(p.comps(), q.comps())
	return SphereCircle{n: primitive(c[0], c[1], c[2])}
}

// Normal returns the normal direction of c.
func (c SphereCircle) Normal() SpherePoint { return c.n }

// Plane returns the plane through the origin supporting c.
func (c SphereCircle) Plane() Plane {
	return Plane{A: c.n.Coord(0), B: c.n.Coord(1), C: c.n.Coord(2)}
}

// Opposite returns c with reversed orientation.
func (c SphereCircle) Opposite() SphereCircle { return SphereCircle{n: c.n.Antipode()} }

// IsDegenerate reports whether c has a zero normal.
func (c SphereCircle) IsDegenerate() bool { return c.n.IsZero() }

// OrientedSide classifies p against c.
func (c SphereCircle) OrientedSide(p SpherePoint) Sign {
	return signOf(dot(c.n.comps(), p.comps()).Sign())
}

// HasOn reports whether p lies on c.
func (c SphereCircle) HasOn(p SpherePoint) bool { return c.OrientedSide(p) == Zero }

// Equal reports whether c and d are the same oriented circle.
func (c SphereCircle) Equal(d SphereCircle) bool { return c.n.Equal(d.n) }

func (c SphereCircle) String() string { return "circle" + c.n.String() }

// Intersection returns one of the two antipodal intersection points of c1
// and c2. It is zero when the circles coincide.
func Intersection(c1, c2 SphereCircle) SpherePoint {
	v := cross(c1.n.comps(), c2.n.comps())
	return primitive(v[0], v[1], v[2])
}

// SphereSegment is the arc of Circle from Source counterclockwise to Target.
type SphereSegment struct {
	Source, Target SpherePoint
	Circle         SphereCircle
}

// NewSphereSegment returns the arc of c from p to q.
func NewSphereSegment(p, q SpherePoint, c SphereCircle) SphereSegment {
	return SphereSegment{Source: p, Target: q, Circle: c}
}

// HasOn reports whether x lies on the closed arc.
func (s SphereSegment) HasOn(x SpherePoint) bool {
	if !s.Circle.HasOn(x) {
		return false
	}
	n := s.Circle.n.comps()
	p, q, xc := s.Source.comps(), s.Target.comps(), x.comps()
	if x.Equal(s.Source) || x.Equal(s.Target) {
		return true
	}
	o := func(a, b [3]*big.Int) Sign { return det(n, a, b) }
	switch o(p, q) {
	case Positive:
		return o(p, xc) == Positive && o(xc, q) == Positive
	case Negative:
		return !(o(q, xc) == Positive && o(xc, p) == Positive)
	}
	if s.Source.Equal(s.Target) {
		return false
	}
	// half circle from p to -p
	return o(p, xc) == Positive
}
