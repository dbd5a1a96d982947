package spheremap

import "fmt"

// ValidationSeverity indicates whether a finding breaks the local map
// structure or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // broken structure
	SeverityWarning                           // geometric inconsistency
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Element  string             // offending entity, empty for map-level findings
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.Element == "" {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Element, e.Message)
}

// ValidationResult bundles errors and warnings from all checks.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// Validate runs the structural checks on m and returns the errors found.
// An empty slice means m is a valid sphere map. Validate never mutates m.
func Validate(m *Map) []ValidationError {
	return ValidateAll(m).Errors
}

// ValidateAll runs structural and geometric checks on m.
func ValidateAll(m *Map) ValidationResult {
	var res ValidationResult
	add := func(errs []ValidationError) {
		for _, e := range errs {
			if e.Severity == SeverityWarning {
				res.Warnings = append(res.Warnings, e)
			} else {
				res.Errors = append(res.Errors, e)
			}
		}
	}
	add(validateHalfedges(m))
	add(validateVertices(m))
	add(validateLoops(m))
	if len(res.Errors) == 0 {
		// Cycle walks below assume well-formed links.
		add(validateBoundaryObjects(m))
		add(validateEuler(m))
	}
	return res
}

func errorf(elem fmt.Stringer, format string, args ...any) ValidationError {
	return ValidationError{Element: elem.String(), Message: fmt.Sprintf(format, args...), Severity: SeverityError}
}

func warnf(elem fmt.Stringer, format string, args ...any) ValidationError {
	return ValidationError{Element: elem.String(), Message: fmt.Sprintf(format, args...), Severity: SeverityWarning}
}

func (m *Map) ownsVertex(h SVertexID) bool {
	return h.epoch == m.epoch && h.i >= 0 && int(h.i) < len(m.svertices)
}

func (m *Map) ownsFace(h SFaceID) bool {
	return h.epoch == m.epoch && h.i >= 0 && int(h.i) < len(m.sfaces)
}

func (m *Map) ownsLoop(h SHalfloopID) bool {
	return h.epoch == m.epoch && h.i >= 0 && int(h.i) < len(m.shalfloops)
}

// validateHalfedges checks twin, next/prev, source and face links.
func validateHalfedges(m *Map) []ValidationError {
	var errs []ValidationError
	for _, h := range m.SHalfedges() {
		e := m.SHalfedge(h)
		if !m.Owns(e.twin) || e.twin == h {
			errs = append(errs, errorf(h, "invalid twin %s", e.twin))
			continue
		}
		if m.SHalfedge(e.twin).twin != h {
			errs = append(errs, errorf(h, "twin of twin is %s", m.SHalfedge(e.twin).twin))
		}
		if !m.Owns(e.next) || !m.Owns(e.prev) {
			errs = append(errs, errorf(h, "missing next or prev"))
			continue
		}
		if m.SHalfedge(e.next).prev != h {
			errs = append(errs, errorf(h, "prev of next is %s", m.SHalfedge(e.next).prev))
		}
		if m.SHalfedge(e.prev).next != h {
			errs = append(errs, errorf(h, "next of prev is %s", m.SHalfedge(e.prev).next))
		}
		if !m.ownsVertex(e.source) {
			errs = append(errs, errorf(h, "missing source"))
			continue
		}
		if tgt := m.SHalfedge(e.twin).source; m.ownsVertex(tgt) && m.SHalfedge(e.next).source != tgt {
			errs = append(errs, errorf(h, "next starts at %s, not at target %s", m.SHalfedge(e.next).source, tgt))
		}
		if !m.ownsFace(e.face) {
			errs = append(errs, errorf(h, "not linked to a face"))
		} else if m.SHalfedge(e.next).face != e.face {
			errs = append(errs, errorf(h, "next lies in face %s, not %s", m.SHalfedge(e.next).face, e.face))
		}
		if !e.Circle.IsDegenerate() {
			if !e.Circle.HasOn(m.SVertex(e.source).Point) {
				errs = append(errs, warnf(h, "source %s not on circle %s", m.SVertex(e.source).Point, e.Circle))
			}
			if tc := m.SHalfedge(e.twin).Circle; !tc.Equal(e.Circle.Opposite()) {
				errs = append(errs, warnf(h, "twin circle %s is not opposite of %s", tc, e.Circle))
			}
		}
	}
	return errs
}

// validateVertices checks out-edge circulation and isolated vertex faces.
func validateVertices(m *Map) []ValidationError {
	var errs []ValidationError
	for _, v := range m.SVertices() {
		sv := m.SVertex(v)
		if sv.out.IsNil() {
			if !m.ownsFace(sv.face) {
				errs = append(errs, errorf(v, "isolated vertex not linked to a face"))
			}
			continue
		}
		if !m.Owns(sv.out) || m.SHalfedge(sv.out).source != v {
			errs = append(errs, errorf(v, "first out-edge %s does not start here", sv.out))
			continue
		}
		e := sv.out
		for steps := 0; ; steps++ {
			if steps > len(m.shalfedges) {
				errs = append(errs, errorf(v, "out-edge circulation does not close"))
				break
			}
			h := m.SHalfedge(e)
			if !m.Owns(h.prev) || !m.Owns(m.SHalfedge(h.prev).twin) {
				break // reported by validateHalfedges
			}
			e = m.SHalfedge(h.prev).twin
			if m.SHalfedge(e).source != v {
				errs = append(errs, errorf(v, "out-edge %s starts at %s", e, m.SHalfedge(e).source))
				break
			}
			if e == sv.out {
				break
			}
		}
	}
	return errs
}

// validateLoops checks the half-loop pair.
func validateLoops(m *Map) []ValidationError {
	var errs []ValidationError
	for _, l := range m.SHalfloops() {
		sl := m.SHalfloop(l)
		if !m.ownsLoop(sl.twin) || sl.twin == l || m.SHalfloop(sl.twin).twin != l {
			errs = append(errs, errorf(l, "invalid twin %s", sl.twin))
			continue
		}
		if !m.ownsFace(sl.face) {
			errs = append(errs, errorf(l, "not linked to a face"))
		}
		if tc := m.SHalfloop(sl.twin).Circle; !tc.Equal(sl.Circle.Opposite()) {
			errs = append(errs, warnf(l, "twin circle %s is not opposite of %s", tc, sl.Circle))
		}
	}
	return errs
}

// validateBoundaryObjects checks that each face cycle, isolated vertex and
// half-loop is recorded exactly once, by the face it lies in.
func validateBoundaryObjects(m *Map) []ValidationError {
	var errs []ValidationError
	cycleOf := make(map[SHalfedgeID]int)
	cycles := 0
	for _, h := range m.SHalfedges() {
		if _, seen := cycleOf[h]; seen {
			continue
		}
		e := h
		for steps := 0; ; steps++ {
			if steps > len(m.shalfedges) {
				errs = append(errs, errorf(h, "face cycle does not close"))
				return errs
			}
			cycleOf[e] = cycles
			e = m.SHalfedge(e).next
			if e == h {
				break
			}
		}
		cycles++
	}

	recorded := make(map[int]int)
	isolated := make(map[SVertexID]int)
	loops := make(map[SHalfloopID]int)
	for _, f := range m.SFaces() {
		for _, c := range m.SFace(f).cycles {
			switch c.Kind {
			case CycleSHalfedge:
				if !m.Owns(c.SHalfedge) {
					errs = append(errs, errorf(f, "boundary object %s is not a half-edge of this map", c.SHalfedge))
					continue
				}
				recorded[cycleOf[c.SHalfedge]]++
			case CycleSVertex:
				if !m.ownsVertex(c.SVertex) {
					errs = append(errs, errorf(f, "boundary object %s is not a vertex of this map", c.SVertex))
					continue
				}
				isolated[c.SVertex]++
			case CycleSHalfloop:
				if !m.ownsLoop(c.SHalfloop) {
					errs = append(errs, errorf(f, "boundary object %s is not a half-loop of this map", c.SHalfloop))
					continue
				}
				loops[c.SHalfloop]++
			}
			if got := m.CycleFace(c); got != f {
				errs = append(errs, errorf(f, "boundary object of kind %s lies in %s", c.Kind, got))
			}
		}
	}
	for i := 0; i < cycles; i++ {
		if recorded[i] != 1 {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("face cycle %d recorded %d times", i, recorded[i]),
				Severity: SeverityError,
			})
		}
	}
	for _, v := range m.SVertices() {
		if m.IsIsolated(v) && isolated[v] != 1 {
			errs = append(errs, errorf(v, "isolated vertex recorded %d times", isolated[v]))
		}
	}
	for _, l := range m.SHalfloops() {
		if loops[l] != 1 {
			errs = append(errs, errorf(l, "half-loop recorded %d times", loops[l]))
		}
	}
	return errs
}

// Components returns the number of connected components of m's graph. A
// half-loop counts as one component.
func Components(m *Map) int {
	parent := make([]int, len(m.svertices))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	for _, e := range m.shalfedges {
		a := e.source
		b := m.SHalfedge(e.twin).source
		if !m.ownsVertex(a) || !m.ownsVertex(b) {
			continue
		}
		ra, rb := find(int(a.i)), find(int(b.i))
		if ra != rb {
			parent[ra] = rb
		}
	}
	c := 0
	for i := range parent {
		if find(i) == i {
			c++
		}
	}
	if m.HasLoop() {
		c++
	}
	return c
}

// EulerCharacteristic returns V - E + F of m.
func EulerCharacteristic(m *Map) int {
	return m.NumSVertices() - m.NumSEdges() + m.NumSFaces()
}

// validateEuler checks V - E + F = 1 + C on the sphere.
func validateEuler(m *Map) []ValidationError {
	if m.IsEmpty() {
		return nil
	}
	chi, c := EulerCharacteristic(m), Components(m)
	if chi != 1+c {
		return []ValidationError{{
			Message:  fmt.Sprintf("Euler relation violated: V-E+F = %d, want %d for %d components", chi, 1+c, c),
			Severity: SeverityError,
		}}
	}
	return nil
}
