package engine

import (
	"strings"
	"testing"

	zygo "github.com/glycerine/zygomys/zygo"
	"go.uber.org/zap/zaptest"

	"github.com/chazu/nef3/pkg/constructor"
	"github.com/chazu/nef3/pkg/kernel"
	"github.com/chazu/nef3/pkg/snc"
	"github.com/chazu/nef3/pkg/spheremap"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(box-corner 1 1 1 :space true)`,
			expect: `(box_corner 1 1 1 "__kw_space" true)`,
		},
		{
			name:   "multiple keywords",
			input:  `(ray :at p :dir d)`,
			expect: `(ray "__kw_at" p "__kw_dir" d)`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(edge-facet e f :op :symmetric-difference)`,
			expect: `(edge_facet e f "__kw_op" "__kw_symmetric-difference")`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "negative literal preserved",
			input:  `(dir 0 0 -1)`,
			expect: `(dir 0 0 -1)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "single semicolon comment",
			input:  `; simple comment`,
			expect: `// simple comment`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// evaluate runs source and fails the test on any error.
func evaluate(t *testing.T, eng *Engine, source string) *Result {
	t.Helper()
	res, evalErrs, err := eng.EvaluateResult(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if res == nil || res.Structure == nil {
		t.Fatal("expected non-nil structure")
	}
	return res
}

// localMap returns the local map of the i-th live vertex.
func localMap(t *testing.T, s *snc.Structure, i int) *spheremap.Map {
	t.Helper()
	vs := s.Vertices()
	if i >= len(vs) {
		t.Fatalf("structure has %d vertices, want more than %d", len(vs), i)
	}
	return s.MustVertex(vs[i]).SM
}

func checkValid(t *testing.T, s *snc.Structure) {
	t.Helper()
	for _, v := range s.Vertices() {
		if errs := spheremap.Validate(s.MustVertex(v).SM); len(errs) > 0 {
			t.Errorf("vertex %s: invalid local map: %v", v, errs)
		}
	}
}

func faceMarks(m *spheremap.Map) []bool {
	var marks []bool
	for _, f := range m.SFaces() {
		marks = append(marks, m.SFace(f).Mark)
	}
	return marks
}

func sameMarks(a, b []bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// newBuiltins returns a builtin set bound to a fresh structure.
func newBuiltins(t *testing.T, opts ...constructor.Option) *builtins {
	t.Helper()
	opts = append([]constructor.Option{constructor.WithLogger(zaptest.NewLogger(t))}, opts...)
	c := constructor.New(snc.New(), opts...)
	return &builtins{c: c, s: c.Structure(), pairs: &constructor.FacetPairs{}}
}

func kw(name string) zygo.Sexp { return &zygo.SexpStr{S: kwPrefix + name} }

func num(n int64) zygo.Sexp { return &zygo.SexpInt{Val: n} }

// ---------------------------------------------------------------------------
// Box frame
// ---------------------------------------------------------------------------

func TestBoxFrame(t *testing.T) {
	eng := NewEngine()
	s := evaluate(t, eng, `(box-frame)`).Structure

	if s.NumVertices() != 8 {
		t.Fatalf("expected 8 corners, got %d", s.NumVertices())
	}
	checkValid(t, s)
	for i := range s.Vertices() {
		m := localMap(t, s, i)
		if m.NumSVertices() != 3 || m.NumSEdges() != 3 || m.NumSFaces() != 2 {
			t.Errorf("corner %d: got %d/%d/%d svertices/sedges/sfaces, want 3/3/2",
				i, m.NumSVertices(), m.NumSEdges(), m.NumSFaces())
		}
	}
}

func TestBoxCornerPoint(t *testing.T) {
	eng := NewEngine()
	s := evaluate(t, eng, `(label (box-corner 1 -1 1 :space true) "corner")`).Structure

	v, ok := s.Lookup("corner")
	if !ok {
		t.Fatal("expected vertex named 'corner'")
	}
	vx := s.MustVertex(v)
	if got := vx.Point.String(); got != "(R, -R, R)" {
		t.Errorf("corner point = %s, want (R, -R, R)", got)
	}
	if !vx.Mark {
		t.Error("box corner should lie on the boundary")
	}
	marks := faceMarks(vx.SM)
	if !sameMarks(marks, []bool{true, false}) && !sameMarks(marks, []bool{false, true}) {
		t.Errorf("expected one space face, got %v", marks)
	}
}

func TestBoxWithPlane(t *testing.T) {
	eng := NewEngine()
	s := evaluate(t, eng, `(box-with-plane 0 0 1 0)`).Structure

	// Four frame points where z=0 meets the box edges, plus eight corners.
	if s.NumVertices() != 12 {
		t.Fatalf("expected 12 vertices, got %d", s.NumVertices())
	}
	checkValid(t, s)
}

func TestBoxPoint(t *testing.T) {
	eng := NewEngine()
	source := `
(def R (frame 0 1))
(box-point (point 0 0 R))
(box-point (point R R 0))
(box-point (extended-point 1 1 1))
`
	s := evaluate(t, eng, source).Structure
	if s.NumVertices() != 3 {
		t.Fatalf("expected 3 vertices, got %d", s.NumVertices())
	}
	checkValid(t, s)

	face := localMap(t, s, 0)
	if !face.HasLoop() {
		t.Error("point on an open box face should be a plane vertex")
	}
	corner := localMap(t, s, 2)
	if corner.NumSVertices() != 3 {
		t.Errorf("corner has %d svertices, want 3", corner.NumSVertices())
	}
}

// ---------------------------------------------------------------------------
// Plane and facet vertices
// ---------------------------------------------------------------------------

func TestPlaneVertex(t *testing.T) {
	eng := NewEngine()
	source := `(plane-vertex 0 0 1 0 :at (point 0 0 0) :bnd true :in true :out false)`
	s := evaluate(t, eng, source).Structure

	m := localMap(t, s, 0)
	if !m.HasLoop() {
		t.Fatal("expected a half-loop pair")
	}
	// The face on the positive side is created first and carries :out.
	if got := faceMarks(m); !sameMarks(got, []bool{false, true}) {
		t.Errorf("face marks = %v, want [false true]", got)
	}
	checkValid(t, s)
}

func TestFacetVertex(t *testing.T) {
	eng := NewEngine()
	source := `
(def f (facet 0 0 1 -5 :mark true))
(facet-vertex f :at (point 1 2 5))
`
	s := evaluate(t, eng, source).Structure
	if s.NumVertices() != 1 {
		t.Fatalf("expected 1 vertex, got %d", s.NumVertices())
	}
	if s.NumVolumes() != 2 {
		t.Errorf("expected 2 volumes, got %d", s.NumVolumes())
	}
	vx := s.MustVertex(s.Vertices()[0])
	if !vx.Mark {
		t.Error("facet vertex should take the facet mark")
	}
	if !vx.SM.HasLoop() {
		t.Error("facet vertex should carry a half-loop pair")
	}
}

func TestCycleVertex(t *testing.T) {
	eng := NewEngine()
	source := `
(def v (cycle-vertex :at (point 0 0 0)
                     :dirs (list (dir 1 0 0) (dir 0 1 0) (dir 0 0 1))))
(inner-cycle v :dirs (list (dir -1 -1 -1) (dir -1 -1 -2) (dir -2 -1 -1)))
`
	s := evaluate(t, eng, source).Structure
	m := localMap(t, s, 0)
	if m.NumSVertices() != 6 || m.NumSEdges() != 6 || m.NumSFaces() != 4 {
		t.Errorf("got %d/%d/%d svertices/sedges/sfaces, want 6/6/4",
			m.NumSVertices(), m.NumSEdges(), m.NumSFaces())
	}
}

// ---------------------------------------------------------------------------
// Edges and overlays
// ---------------------------------------------------------------------------

func TestEdgeVertex(t *testing.T) {
	eng := NewEngine()
	source := `
(def a (ray :at (point 0 0 0) :dir (dir 0 0 1)))
(def b (ray :at (point 0 0 10) :dir (dir 0 0 -1)))
(link a b)
(edge-vertex a :at (point 0 0 4))
`
	s := evaluate(t, eng, source).Structure
	if s.NumVertices() != 3 {
		t.Fatalf("expected 3 vertices, got %d", s.NumVertices())
	}
	if len(s.Edges()) != 3 {
		t.Errorf("expected 3 edges (one linked pair, two new halves), got %d", len(s.Edges()))
	}
	m := localMap(t, s, 2)
	if m.NumSVertices() != 2 || m.NumSFaces() != 1 {
		t.Errorf("edge vertex got %d svertices and %d sfaces, want 2 and 1",
			m.NumSVertices(), m.NumSFaces())
	}
	checkValid(t, s)
}

func TestEdgeFacetOverlay(t *testing.T) {
	eng := NewEngine()
	source := `
(def e (ray :at (point 0 0 0) :dir (dir 0 0 1) :mark true :face true))
(def f (facet 0 0 1 -5 :mark false))
(edge-facet e f :at (point 0 0 5) :op :intersection)
`
	s := evaluate(t, eng, source).Structure
	if s.NumVertices() != 2 {
		t.Fatalf("expected 2 vertices, got %d", s.NumVertices())
	}
	vx := s.MustVertex(s.Vertices()[1])
	if vx.Mark {
		t.Error("intersection with an unmarked facet should not be marked")
	}
	if !vx.SM.HasLoop() {
		t.Error("expected the facet circle as a half-loop")
	}
	if got := faceMarks(vx.SM); !sameMarks(got, []bool{true, false}) {
		t.Errorf("face marks = %v, want [true false]", got)
	}
	checkValid(t, s)
}

func TestEdgeFacetOverlayIndexed(t *testing.T) {
	eng := NewEngine(WithIndexed(true))
	source := `
(def t (cycle-vertex :at (point 0 0 0)
                     :dirs (list (dir 1 0 0) (dir 0 1 0) (dir 0 0 1))))
(def f (facet 0 0 1 -5))
(edge-facet t f :at (point 0 0 5) :sv 2 :op :union)
`
	res := evaluate(t, eng, source)
	if len(res.Pairs) != 2 {
		t.Fatalf("expected 2 facet pairs, got %d", len(res.Pairs))
	}
	for _, p := range res.Pairs {
		if p.F2 != 1 {
			t.Errorf("pair %+v: second facet should be the canonical facet 1", p)
		}
	}
}

func TestEdgeEdgeOverlay(t *testing.T) {
	eng := NewEngine()
	source := `
(def a (ray :at (point 0 0 0) :dir (dir 1 0 0)))
(def b (ray :at (point 5 -5 0) :dir (dir 0 1 0)))
(edge-edge a b :at (point 5 0 0) :op :union)
`
	s := evaluate(t, eng, source).Structure
	m := localMap(t, s, 2)
	if m.NumSVertices() != 4 {
		t.Errorf("crossing has %d svertices, want 4", m.NumSVertices())
	}
	for _, v := range m.SVertices() {
		if !m.SVertex(v).Mark {
			t.Errorf("%s should be marked by the union", v)
		}
	}
	checkValid(t, s)
}

func TestCloneBuiltin(t *testing.T) {
	eng := NewEngine()
	source := `
(def v (cycle-vertex :at (point 1 1 1)
                     :dirs (list (dir 1 0 0) (dir 0 1 0) (dir 0 0 1))))
(clone v)
`
	s := evaluate(t, eng, source).Structure
	a, b := localMap(t, s, 0), localMap(t, s, 1)
	if a.NumSVertices() != b.NumSVertices() || a.NumSEdges() != b.NumSEdges() || a.NumSFaces() != b.NumSFaces() {
		t.Error("clone should copy the local map shape")
	}
	if !sameMarks(faceMarks(a), faceMarks(b)) {
		t.Errorf("clone face marks = %v, want %v", faceMarks(b), faceMarks(a))
	}
}

// ---------------------------------------------------------------------------
// Consolidation
// ---------------------------------------------------------------------------

func TestConsolidateKeepsCanonicalFrame(t *testing.T) {
	eng := NewEngine()
	source := `
(box-frame)
(consolidate)
(correct-marks)
(assign-indices)
`
	s := evaluate(t, eng, source).Structure
	if s.NumVertices() != 8 {
		t.Errorf("expected the 8 corners to survive, got %d vertices", s.NumVertices())
	}
	checkValid(t, s)
}

func TestVertexCountAndLookup(t *testing.T) {
	eng := NewEngine()
	source := `
(box-corner 1 1 1)
(def n (vertex-count))
(label (box-corner -1 -1 -1) "low")
(vertex "low")
`
	s := evaluate(t, eng, source).Structure
	v, ok := s.Lookup("low")
	if !ok {
		t.Fatal("expected vertex named 'low'")
	}
	if v.Ordinal() != 1 {
		t.Errorf("'low' has ordinal %d, want 1", v.Ordinal())
	}
}

// ---------------------------------------------------------------------------
// Direct builtin calls
// ---------------------------------------------------------------------------

func TestSMStats(t *testing.T) {
	b := newBuiltins(t)
	v := b.c.CreateExtendedBoxCorner(1, 1, 1, false, true)

	got, err := guarded(b.smStats)(nil, "sm_stats", []zygo.Sexp{b.vertexSexp(v)})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	st, ok := got.(*sexpStats)
	if !ok {
		t.Fatalf("expected *sexpStats, got %T", got)
	}
	if st.svertices != 3 || st.sedges != 3 || st.sfaces != 2 || st.loop || !st.valid {
		t.Errorf("unexpected stats %s", st.SexpString(nil))
	}
}

func TestConsolidateReturnsChange(t *testing.T) {
	b := newBuiltins(t)
	top := kernel.NewPoint(kernel.Int(0), kernel.Int(0), kernel.Frame(0, 1))
	b.c.CreateFromPointOnInfiboxFacet(top)
	b.c.CreateFromPointOnInfiboxFacet(top)

	got, err := guarded(b.consolidate)(nil, "consolidate", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bv, ok := got.(*zygo.SexpBool); !ok || !bv.Val {
		t.Errorf("first consolidation should report a change, got %s", got.SexpString(nil))
	}
	if b.s.NumVertices() != 1 {
		t.Errorf("expected the duplicate frame point to be erased, got %d vertices", b.s.NumVertices())
	}
}

func TestNumberArguments(t *testing.T) {
	tests := []struct {
		name string
		arg  zygo.Sexp
		want kernel.Number
	}{
		{"integer", num(-3), kernel.Int(-3)},
		{"float", &zygo.SexpFloat{Val: 2.5}, kernel.Rat(5, 2)},
		{"frame", &sexpNumber{n: kernel.Frame(1, 2)}, kernel.Frame(1, 2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := toNumber(tt.arg)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("toNumber = %s, want %s", got, tt.want)
			}
		})
	}

	if _, err := toNumber(&zygo.SexpStr{S: "x"}); err == nil {
		t.Error("expected error for string argument")
	}
}

func TestParseArgs(t *testing.T) {
	pa := parseArgs([]zygo.Sexp{num(1), kw("space"), &zygo.SexpBool{Val: true}, num(2), kw("flag")})
	if len(pa.positional) != 2 {
		t.Fatalf("expected 2 positional args, got %d", len(pa.positional))
	}
	space, err := pa.boolKW("space", false)
	if err != nil || !space {
		t.Errorf("space = %v (%v), want true", space, err)
	}
	if pa.kw["flag"] != zygo.SexpNull {
		t.Error("trailing keyword should map to nil")
	}
	if def, _ := pa.boolKW("absent", true); !def {
		t.Error("absent keyword should yield the default")
	}
}

func TestBuiltinErrors(t *testing.T) {
	b := newBuiltins(t)
	ray := b.vertexSexp(b.s.NewVertex(kernel.Pt(0, 0, 0), false))

	tests := []struct {
		name    string
		fn      builtinFunc
		builtin string
		args    []zygo.Sexp
		want    string
	}{
		{
			name:    "corner off the box diagonal",
			fn:      b.boxCorner,
			builtin: "box_corner",
			args:    []zygo.Sexp{num(1), num(2), num(3)},
			want:    "box-corner: constructor: CreateExtendedBoxCorner",
		},
		{
			name:    "zero direction",
			fn:      b.dir,
			builtin: "dir",
			args:    []zygo.Sexp{num(0), num(0), num(0)},
			want:    "zero direction",
		},
		{
			name:    "short point",
			fn:      b.point,
			builtin: "point",
			args:    []zygo.Sexp{num(1), num(2)},
			want:    "requires exactly 3 arguments",
		},
		{
			name:    "degenerate plane",
			fn:      b.planeVertex,
			builtin: "plane_vertex",
			args:    []zygo.Sexp{num(0), num(0), num(0), num(1), kw("at"), &sexpPoint{p: kernel.Pt(0, 0, 0)}},
			want:    "degenerate plane",
		},
		{
			name:    "unknown label",
			fn:      b.vertex,
			builtin: "vertex",
			args:    []zygo.Sexp{&zygo.SexpStr{S: "missing"}},
			want:    `no vertex named "missing"`,
		},
		{
			name:    "missing direction",
			fn:      b.edgeVertex,
			builtin: "edge_vertex",
			args:    []zygo.Sexp{ray, kw("at"), &sexpPoint{p: kernel.Pt(0, 0, 1)}},
			want:    "has no direction 0",
		},
		{
			name:    "second edge without direction",
			fn:      b.edgeEdge,
			builtin: "edge_edge",
			args:    []zygo.Sexp{ray, ray, kw("op"), kw("bogus")},
			want:    "has no direction 0",
		},
		{
			name:    "not a box point",
			fn:      b.boxPoint,
			builtin: "box_point",
			args:    []zygo.Sexp{&sexpPoint{p: kernel.Pt(1, 2, 3)}},
			want:    "is not on the box",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := guarded(tt.fn)(nil, tt.builtin, tt.args)
			if err == nil {
				t.Fatalf("expected error, got %s", got.SexpString(nil))
			}
			if got != zygo.SexpNull {
				t.Errorf("failed builtin should return nil, got %T", got)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want containing %q", err.Error(), tt.want)
			}
		})
	}
}

func TestSelectionKeyword(t *testing.T) {
	pa := parseArgs([]zygo.Sexp{kw("op"), kw("bogus")})
	if _, err := pa.selectionKW(); err == nil || !strings.Contains(err.Error(), "unknown operation") {
		t.Errorf("expected unknown operation error, got %v", err)
	}

	pa = parseArgs([]zygo.Sexp{kw("op"), kw("difference")})
	sel, err := pa.selectionKW()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sel.Apply(true, true, false) {
		t.Error("difference of two marked operands should be unmarked")
	}
}

func TestBuiltinErrorThroughEngine(t *testing.T) {
	eng := NewEngine()

	g, evalErrs, err := eng.Evaluate(`(box-corner 1 2 3)`)
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if g != nil {
		t.Fatal("expected nil structure on eval error")
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected at least one eval error")
	}
	if evalErrs[0].Message == "" {
		t.Error("eval error should have a non-empty message")
	}
}

func TestDeletedVertexArguments(t *testing.T) {
	const prelude = `
(def R (frame 0 1))
(def a (box-point (point 0 0 R)))
(def b (box-point (point 0 0 R)))
(consolidate)
`
	tests := []struct {
		name string
		call string
		want string
	}{
		{"infibox overlay", `(infibox-overlay a)`, "infibox-overlay: vertex v0 was deleted"},
		{"inner cycle", `(inner-cycle a :dirs (list (dir 1 0 0) (dir 0 1 0) (dir 0 0 1)))`, "inner-cycle: vertex v0 was deleted"},
		{"clone", `(clone a)`, "clone: vertex v0 was deleted"},
		{"sm stats", `(sm-stats a)`, "sm-stats: vertex v0 was deleted"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := NewEngine()
			_, evalErrs, err := eng.Evaluate(prelude + tt.call)
			if err != nil {
				t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
			}
			if len(evalErrs) == 0 {
				t.Fatal("expected an eval error")
			}
			msg := evalErrs[0].Message
			if !strings.Contains(msg, tt.want) {
				t.Errorf("error = %q, want it to contain %q", msg, tt.want)
			}
			if strings.Contains(msg, "goroutine") || strings.Contains(msg, "stale or invalid") {
				t.Errorf("error should not carry a panic trace: %q", msg)
			}
		})
	}
}
