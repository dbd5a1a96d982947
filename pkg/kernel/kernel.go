// Package kernel defines the exact geometry kernel used by the local-map
// constructors. Coordinates are polynomials in the frame parameter R with
// rational coefficients, so that points on the compactifying box [-R,R]^3
// can be represented and compared exactly next to standard points. All
// predicates are sign-exact; nothing in this package uses floating point
// except the explicit Float64 conversions used for previews.
package kernel

// Sign is the result of an exact predicate.
type Sign int

const (
	Negative Sign = -1
	Zero     Sign = 0
	Positive Sign = 1
)

// String returns the human-readable name of the sign.
func (s Sign) String() string {
	switch s {
	case Negative:
		return "negative"
	case Zero:
		return "zero"
	case Positive:
		return "positive"
	default:
		return "unknown"
	}
}

// Opposite returns the negated sign.
func (s Sign) Opposite() Sign { return -s }

func signOf(v int) Sign {
	switch {
	case v < 0:
		return Negative
	case v > 0:
		return Positive
	}
	return Zero
}
