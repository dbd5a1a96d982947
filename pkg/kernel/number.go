package kernel

import (
	"math/big"
	"strings"
)

// Number is an exact polynomial c0 + c1*R + c2*R^2 + ... in the frame
// parameter R, an infinitely large positive symbol. The zero value is 0.
//
// A Number of degree 0 is a standard rational. Numbers are immutable; every
// operation returns a fresh value.
type Number struct {
	c []*big.Rat // c[i] is the coefficient of R^i, no trailing zeros
}

// Int returns the standard number v.
func Int(v int64) Number {
	return NewNumber(new(big.Rat).SetInt64(v))
}

// Rat returns the standard number a/b.
func Rat(a, b int64) Number {
	return NewNumber(big.NewRat(a, b))
}

// FromRat returns the standard number r.
func FromRat(r *big.Rat) Number {
	return NewNumber(r)
}

// Frame returns c0 + c1*R.
func Frame(c0, c1 int64) Number {
	return NewNumber(new(big.Rat).SetInt64(c0), new(big.Rat).SetInt64(c1))
}

// NewNumber builds a number from its coefficients, lowest degree first.
// The coefficients are copied.
func NewNumber(coeffs ...*big.Rat) Number {
	c := make([]*big.Rat, len(coeffs))
	for i, r := range coeffs {
		if r == nil {
			c[i] = new(big.Rat)
			continue
		}
		c[i] = new(big.Rat).Set(r)
	}
	return Number{c: trim(c)}
}

func trim(c []*big.Rat) []*big.Rat {
	n := len(c)
	for n > 0 && c[n-1].Sign() == 0 {
		n--
	}
	if n == 0 {
		return nil
	}
	return c[:n]
}

// Degree returns the degree of the polynomial. Zero has degree 0.
func (a Number) Degree() int {
	if len(a.c) == 0 {
		return 0
	}
	return len(a.c) - 1
}

// Coeff returns a copy of the coefficient of R^i.
func (a Number) Coeff(i int) *big.Rat {
	if i < 0 || i >= len(a.c) {
		return new(big.Rat)
	}
	return new(big.Rat).Set(a.c[i])
}

// Constant returns the coefficient of R^0.
func (a Number) Constant() *big.Rat { return a.Coeff(0) }

// IsStandard reports whether a does not depend on R.
func (a Number) IsStandard() bool { return len(a.c) <= 1 }

// IsZero reports whether a is 0.
func (a Number) IsZero() bool { return len(a.c) == 0 }

// Sign returns the sign of a for R tending to infinity.
func (a Number) Sign() Sign {
	if len(a.c) == 0 {
		return Zero
	}
	return signOf(a.c[len(a.c)-1].Sign())
}

// Cmp compares a and b: -1 if a < b, 0 if equal, +1 if a > b.
func (a Number) Cmp(b Number) int {
	return int(a.Sub(b).Sign())
}

// Equal reports whether a and b are the same polynomial.
func (a Number) Equal(b Number) bool {
	if len(a.c) != len(b.c) {
		return false
	}
	for i := range a.c {
		if a.c[i].Cmp(b.c[i]) != 0 {
			return false
		}
	}
	return true
}

// Add returns a + b.
func (a Number) Add(b Number) Number {
	n := max(len(a.c), len(b.c))
	c := make([]*big.Rat, n)
	for i := range c {
		c[i] = new(big.Rat)
		if i < len(a.c) {
			c[i].Add(c[i], a.c[i])
		}
		if i < len(b.c) {
			c[i].Add(c[i], b.c[i])
		}
	}
	return Number{c: trim(c)}
}

// Sub returns a - b.
func (a Number) Sub(b Number) Number { return a.Add(b.Neg()) }

// Neg returns -a.
func (a Number) Neg() Number {
	c := make([]*big.Rat, len(a.c))
	for i, r := range a.c {
		c[i] = new(big.Rat).Neg(r)
	}
	return Number{c: c}
}

// Abs returns |a|.
func (a Number) Abs() Number {
	if a.Sign() == Negative {
		return a.Neg()
	}
	return a
}

// Mul returns a * b.
func (a Number) Mul(b Number) Number {
	if a.IsZero() || b.IsZero() {
		return Number{}
	}
	c := make([]*big.Rat, len(a.c)+len(b.c)-1)
	for i := range c {
		c[i] = new(big.Rat)
	}
	t := new(big.Rat)
	for i, x := range a.c {
		for j, y := range b.c {
			c[i+j].Add(c[i+j], t.Mul(x, y))
		}
	}
	return Number{c: trim(c)}
}

// MulRat returns a * r.
func (a Number) MulRat(r *big.Rat) Number {
	return a.Mul(FromRat(r))
}

// QuoRat returns a / r. It panics if r is zero.
func (a Number) QuoRat(r *big.Rat) Number {
	if r.Sign() == 0 {
		panic("kernel: Number.QuoRat: division by zero")
	}
	return a.MulRat(new(big.Rat).Inv(r))
}

// Eval substitutes r for R.
func (a Number) Eval(r *big.Rat) *big.Rat {
	res := new(big.Rat)
	for i := len(a.c) - 1; i >= 0; i-- {
		res.Mul(res, r)
		res.Add(res, a.c[i])
	}
	return res
}

// String formats a as "3/2", "R", "-2R+1" or "R^2-1".
func (a Number) String() string {
	if len(a.c) == 0 {
		return "0"
	}
	var sb strings.Builder
	for i := len(a.c) - 1; i >= 0; i-- {
		r := a.c[i]
		if r.Sign() == 0 {
			continue
		}
		if sb.Len() > 0 && r.Sign() > 0 {
			sb.WriteByte('+')
		}
		switch {
		case i == 0:
			sb.WriteString(r.RatString())
		case r.Cmp(big.NewRat(1, 1)) == 0:
		case r.Cmp(big.NewRat(-1, 1)) == 0:
			sb.WriteByte('-')
		default:
			sb.WriteString(r.RatString())
		}
		switch {
		case i == 1:
			sb.WriteByte('R')
		case i > 1:
			sb.WriteString("R^")
			sb.WriteString(big.NewInt(int64(i)).String())
		}
	}
	return sb.String()
}
