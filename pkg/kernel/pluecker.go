package kernel

import (
	"math/big"
	"strings"
)

// PlueckerLine is the line through two standard points in Plücker
// coordinates: the direction q-p followed by the moment p x q.
type PlueckerLine struct {
	c [6]*big.Rat
}

// NewPlueckerLine returns the line through the standard points p and q.
// Coordinates depending on R are read through their constant term, so
// callers evaluate extended points first.
func NewPlueckerLine(p, q Point) PlueckerLine {
	pc := [3]*big.Rat{p.X.Constant(), p.Y.Constant(), p.Z.Constant()}
	qc := [3]*big.Rat{q.X.Constant(), q.Y.Constant(), q.Z.Constant()}
	var l PlueckerLine
	for i := 0; i < 3; i++ {
		l.c[i] = new(big.Rat).Sub(qc[i], pc[i])
	}
	m := func(i, j int) *big.Rat {
		r := new(big.Rat).Mul(pc[i], qc[j])
		return r.Sub(r, new(big.Rat).Mul(pc[j], qc[i]))
	}
	l.c[3], l.c[4], l.c[5] = m(1, 2), m(2, 0), m(0, 1)
	return l
}

// Coord returns Plücker coordinate i.
func (l PlueckerLine) Coord(i int) *big.Rat { return new(big.Rat).Set(l.c[i]) }

// IsDegenerate reports whether the line was built from equal points.
func (l PlueckerLine) IsDegenerate() bool {
	return l.c[0].Sign() == 0 && l.c[1].Sign() == 0 && l.c[2].Sign() == 0
}

// Categorize scales l to its canonical representative, whose first nonzero
// direction coordinate is +1. It returns -1 as the second value when the
// orientation had to be reversed and +1 otherwise.
func (l PlueckerLine) Categorize() (PlueckerLine, int) {
	var lead *big.Rat
	for i := 0; i < 3; i++ {
		if l.c[i].Sign() != 0 {
			lead = l.c[i]
			break
		}
	}
	var out PlueckerLine
	if lead == nil {
		for i := range out.c {
			out.c[i] = new(big.Rat)
		}
		return out, 1
	}
	inv := new(big.Rat).Inv(new(big.Rat).Abs(lead))
	inverted := 1
	if lead.Sign() < 0 {
		inv.Neg(inv)
		inverted = -1
	}
	for i := range out.c {
		out.c[i] = new(big.Rat).Mul(l.c[i], inv)
	}
	return out, inverted
}

// Key returns a string identifying the canonical line. Lines must be
// categorized first for equal lines to share a key.
func (l PlueckerLine) Key() string {
	var sb strings.Builder
	for i, r := range l.c {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(r.RatString())
	}
	return sb.String()
}

// Less orders Plücker lines lexicographically by coordinates.
func (l PlueckerLine) Less(m PlueckerLine) bool {
	for i := range l.c {
		if c := l.c[i].Cmp(m.c[i]); c != 0 {
			return c < 0
		}
	}
	return false
}

// EvalPoint substitutes r for R in every coordinate of p.
func EvalPoint(p Point, r *big.Rat) Point {
	return Point{X: FromRat(p.X.Eval(r)), Y: FromRat(p.Y.Eval(r)), Z: FromRat(p.Z.Eval(r))}
}
