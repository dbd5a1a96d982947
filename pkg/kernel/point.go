package kernel

import "fmt"

// Point is a point in extended 3-space.
type Point struct {
	X, Y, Z Number
}

// NewPoint returns the point (x, y, z).
func NewPoint(x, y, z Number) Point { return Point{X: x, Y: y, Z: z} }

// Pt returns the standard point (x, y, z).
func Pt(x, y, z int64) Point { return Point{X: Int(x), Y: Int(y), Z: Int(z)} }

// Origin is the point (0, 0, 0).
var Origin = Point{}

// Coord returns coordinate i (0=x, 1=y, 2=z).
func (p Point) Coord(i int) Number {
	switch i {
	case 0:
		return p.X
	case 1:
		return p.Y
	case 2:
		return p.Z
	}
	panic(fmt.Sprintf("kernel: coordinate index %d out of range", i))
}

// Sub returns the vector p - q.
func (p Point) Sub(q Point) Vector {
	return Vector{X: p.X.Sub(q.X), Y: p.Y.Sub(q.Y), Z: p.Z.Sub(q.Z)}
}

// Add returns p + v.
func (p Point) Add(v Vector) Point {
	return Point{X: p.X.Add(v.X), Y: p.Y.Add(v.Y), Z: p.Z.Add(v.Z)}
}

// Vector returns p - Origin.
func (p Point) Vector() Vector { return Vector(p) }

// Equal reports whether p and q coincide.
func (p Point) Equal(q Point) bool {
	return p.X.Equal(q.X) && p.Y.Equal(q.Y) && p.Z.Equal(q.Z)
}

// Degree returns the maximal coordinate degree.
func (p Point) Degree() int {
	return max(p.X.Degree(), p.Y.Degree(), p.Z.Degree())
}

func (p Point) String() string {
	return fmt.Sprintf("(%s, %s, %s)", p.X, p.Y, p.Z)
}

// CompareXYZ orders points lexicographically by x, then y, then z.
func CompareXYZ(p, q Point) int {
	if c := p.X.Cmp(q.X); c != 0 {
		return c
	}
	if c := p.Y.Cmp(q.Y); c != 0 {
		return c
	}
	return p.Z.Cmp(q.Z)
}

// LexLess reports whether p is lexicographically smaller than q.
func LexLess(p, q Point) bool { return CompareXYZ(p, q) < 0 }

// Vector is a displacement in extended 3-space.
type Vector struct {
	X, Y, Z Number
}

// Vec returns the standard vector (x, y, z).
func Vec(x, y, z int64) Vector { return Vector{X: Int(x), Y: Int(y), Z: Int(z)} }

// Coord returns component i (0=x, 1=y, 2=z).
func (v Vector) Coord(i int) Number { return Point(v).Coord(i) }

// Neg returns -v.
func (v Vector) Neg() Vector { return Vector{X: v.X.Neg(), Y: v.Y.Neg(), Z: v.Z.Neg()} }

// Add returns v + w.
func (v Vector) Add(w Vector) Vector {
	return Vector{X: v.X.Add(w.X), Y: v.Y.Add(w.Y), Z: v.Z.Add(w.Z)}
}

// Scale returns s * v.
func (v Vector) Scale(s Number) Vector {
	return Vector{X: v.X.Mul(s), Y: v.Y.Mul(s), Z: v.Z.Mul(s)}
}

// Dot returns the inner product v . w.
func (v Vector) Dot(w Vector) Number {
	return v.X.Mul(w.X).Add(v.Y.Mul(w.Y)).Add(v.Z.Mul(w.Z))
}

// Cross returns the cross product v x w.
func (v Vector) Cross(w Vector) Vector {
	return Vector{
		X: v.Y.Mul(w.Z).Sub(v.Z.Mul(w.Y)),
		Y: v.Z.Mul(w.X).Sub(v.X.Mul(w.Z)),
		Z: v.X.Mul(w.Y).Sub(v.Y.Mul(w.X)),
	}
}

// IsZero reports whether all components vanish.
func (v Vector) IsZero() bool { return v.X.IsZero() && v.Y.IsZero() && v.Z.IsZero() }

// Equal reports whether v and w are the same vector.
func (v Vector) Equal(w Vector) bool { return Point(v).Equal(Point(w)) }

func (v Vector) String() string { return Point(v).String() }

// Direction returns the direction of v as a point on the unit sphere.
func (v Vector) Direction() SpherePoint { return SpherePointOf(v) }
