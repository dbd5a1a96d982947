package engine

import (
	"fmt"
	"math/big"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/nef3/pkg/constructor"
	"github.com/chazu/nef3/pkg/infibox"
	"github.com/chazu/nef3/pkg/kernel"
	"github.com/chazu/nef3/pkg/snc"
	"github.com/chazu/nef3/pkg/spheremap"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms nef3 Lisp source code before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: box-corner -> box_corner
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}


// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpNumber wraps an exact kernel.Number, possibly depending on R.
type sexpNumber struct {
	n kernel.Number
}

func (n *sexpNumber) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(number %s)", n.n)
}
func (n *sexpNumber) Type() *zygo.RegisteredType { return nil }

// sexpPoint wraps a kernel.Point.
type sexpPoint struct {
	p kernel.Point
}

func (p *sexpPoint) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(point %s %s %s)", p.p.X, p.p.Y, p.p.Z)
}
func (p *sexpPoint) Type() *zygo.RegisteredType { return nil }

// sexpDirection wraps a kernel.SpherePoint.
type sexpDirection struct {
	d kernel.SpherePoint
}

func (d *sexpDirection) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(dir %s %s %s)", d.d.X(), d.d.Y(), d.d.Z())
}
func (d *sexpDirection) Type() *zygo.RegisteredType { return nil }

// sexpVertex wraps an snc.VertexID so it can be passed between builtins.
type sexpVertex struct {
	id snc.VertexID
	p  kernel.Point
}

func (v *sexpVertex) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vertex %s %s)", v.id, v.p)
}
func (v *sexpVertex) Type() *zygo.RegisteredType { return nil }

// sexpFacet wraps a halffacet id.
type sexpFacet struct {
	id spheremap.FacetID
}

func (f *sexpFacet) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(facet %d)", f.id)
}
func (f *sexpFacet) Type() *zygo.RegisteredType { return nil }

// sexpStats summarizes the local map of one vertex.
type sexpStats struct {
	svertices, sedges, sfaces int
	loop, valid               bool
}

func (s *sexpStats) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(sm :svertices %d :sedges %d :sfaces %d :loop %t :valid %t)",
		s.svertices, s.sedges, s.sfaces, s.loop, s.valid)
}
func (s *sexpStats) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			// Keyword at end with no value: treat as flag with nil.
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// boolKW returns keyword name as a bool, or def when it is absent.
func (a kwArgs) boolKW(name string, def bool) (bool, error) {
	v, ok := a.kw[name]
	if !ok {
		return def, nil
	}
	b, err := toBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", name, err)
	}
	return b, nil
}

// intKW returns keyword name as an int, or def when it is absent.
func (a kwArgs) intKW(name string, def int) (int, error) {
	v, ok := a.kw[name]
	if !ok {
		return def, nil
	}
	n, err := toInt64(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return int(n), nil
}

// pointKW returns the required point keyword name.
func (a kwArgs) pointKW(name string) (kernel.Point, error) {
	v, ok := a.kw[name]
	if !ok {
		return kernel.Point{}, fmt.Errorf("missing :%s", name)
	}
	p, err := toPoint(v)
	if err != nil {
		return kernel.Point{}, fmt.Errorf("%s: %w", name, err)
	}
	return p, nil
}

// selectionKW returns the :op keyword as a selection, union by default.
func (a kwArgs) selectionKW() (constructor.Selection, error) {
	v, ok := a.kw["op"]
	if !ok {
		return constructor.Union, nil
	}
	name, err := toKeywordString(v)
	if err != nil {
		return nil, fmt.Errorf("op: %w", err)
	}
	sel, ok := constructor.SelectionByName(name)
	if !ok {
		return nil, fmt.Errorf("op: unknown operation %q", name)
	}
	return sel, nil
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toInt64 extracts an integer from a Sexp.
func toInt64(s zygo.Sexp) (int64, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toNumber extracts an exact number from an integer, a float or a frame
// number. Floats are converted exactly.
func toNumber(s zygo.Sexp) (kernel.Number, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return kernel.Int(v.Val), nil
	case *zygo.SexpFloat:
		r := new(big.Rat)
		if r.SetFloat64(v.Val) == nil {
			return kernel.Number{}, fmt.Errorf("number %v is not finite", v.Val)
		}
		return kernel.FromRat(r), nil
	case *sexpNumber:
		return v.n, nil
	}
	return kernel.Number{}, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toBool extracts a boolean from a Sexp.
func toBool(s zygo.Sexp) (bool, error) {
	if v, ok := s.(*zygo.SexpBool); ok {
		return v.Val, nil
	}
	return false, fmt.Errorf("expected boolean, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString extracts a keyword name or plain string from a Sexp.
// Handles both preprocessed keywords (__kw_union) and plain strings ("union").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], nil
	}
	return str.S, nil
}

func toPoint(s zygo.Sexp) (kernel.Point, error) {
	if p, ok := s.(*sexpPoint); ok {
		return p.p, nil
	}
	return kernel.Point{}, fmt.Errorf("expected point, got %T (%s)", s, s.SexpString(nil))
}

func toDirection(s zygo.Sexp) (kernel.SpherePoint, error) {
	if d, ok := s.(*sexpDirection); ok {
		return d.d, nil
	}
	return kernel.SpherePoint{}, fmt.Errorf("expected direction, got %T (%s)", s, s.SexpString(nil))
}

func toVertex(s zygo.Sexp) (snc.VertexID, error) {
	if v, ok := s.(*sexpVertex); ok {
		return v.id, nil
	}
	return snc.VertexID{}, fmt.Errorf("expected vertex, got %T (%s)", s, s.SexpString(nil))
}

func toFacet(s zygo.Sexp) (spheremap.FacetID, error) {
	if f, ok := s.(*sexpFacet); ok {
		return f.id, nil
	}
	return 0, fmt.Errorf("expected facet, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// toDirections extracts a list of directions.
func toDirections(s zygo.Sexp) ([]kernel.SpherePoint, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	dirs := make([]kernel.SpherePoint, 0, len(items))
	for i, item := range items {
		d, err := toDirection(item)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		dirs = append(dirs, d)
	}
	return dirs, nil
}

// toPlane reads four leading positional numbers as a plane.
func toPlane(args []zygo.Sexp) (kernel.Plane, error) {
	if len(args) < 4 {
		return kernel.Plane{}, fmt.Errorf("expected 4 plane coefficients, got %d", len(args))
	}
	var c [4]kernel.Number
	for i := range c {
		n, err := toNumber(args[i])
		if err != nil {
			return kernel.Plane{}, fmt.Errorf("coefficient %d: %w", i, err)
		}
		c[i] = n
	}
	return kernel.NewPlane(c[0], c[1], c[2], c[3]), nil
}

// toInts reads exactly n positional integers.
func toInts(args []zygo.Sexp, n int) ([]int64, error) {
	if len(args) != n {
		return nil, fmt.Errorf("requires exactly %d arguments, got %d", n, len(args))
	}
	out := make([]int64, n)
	for i, a := range args {
		v, err := toInt64(a)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

func boolSexp(b bool) zygo.Sexp { return &zygo.SexpBool{Val: b} }

func intSexp(n int) zygo.Sexp { return &zygo.SexpInt{Val: int64(n)} }

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// builtinFunc is the shape zygomys expects of user functions.
type builtinFunc = func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error)

// guarded turns constructor precondition panics in fn into errors prefixed
// with the name the builtin is called by in user source.
func guarded(fn builtinFunc) builtinFunc {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (res zygo.Sexp, err error) {
		defer func() {
			if err != nil {
				res = zygo.SexpNull
				err = fmt.Errorf("%s: %w", strings.ReplaceAll(name, "_", "-"), err)
			}
		}()
		defer constructor.Recover(&err)
		return fn(env, name, args)
	}
}

// builtins installs the nef3 DSL builtins into a zygomys environment.
type builtins struct {
	c     *constructor.Constructor
	s     *snc.Structure
	pairs *constructor.FacetPairs
}

// registerBuiltins installs all nef3 DSL builtins into a zygomys environment.
// The builtins operate on the structure of c, populating it during
// evaluation. Indexed edge-facet overlays report to pairs.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals and
// kebab-case names match the underscore names registered here.
func registerBuiltins(env *zygo.Zlisp, c *constructor.Constructor, pairs *constructor.FacetPairs) {
	b := &builtins{c: c, s: c.Structure(), pairs: pairs}
	for name, fn := range map[string]builtinFunc{
		"frame":           b.frame,
		"point":           b.point,
		"extended_point":  b.extendedPoint,
		"dir":             b.dir,
		"box_corner":      b.boxCorner,
		"box_frame":       b.boxFrame,
		"box_point":       b.boxPoint,
		"box_with_plane":  b.boxWithPlane,
		"plane_vertex":    b.planeVertex,
		"facet":           b.facet,
		"facet_vertex":    b.facetVertex,
		"cycle_vertex":    b.cycleVertex,
		"inner_cycle":     b.innerCycle,
		"ray":             b.ray,
		"link":            b.link,
		"edge_vertex":     b.edgeVertex,
		"edge_facet":      b.edgeFacet,
		"edge_edge":       b.edgeEdge,
		"infibox_overlay": b.infiboxOverlay,
		"clone":           b.clone,
		"consolidate":     b.consolidate,
		"correct_marks":   b.correctMarks,
		"assign_indices":  b.assignIndices,
		"vertex_count":    b.vertexCount,
		"sm_stats":        b.smStats,
		"label":           b.label,
		"vertex":          b.vertex,
	} {
		env.AddFunction(name, guarded(fn))
	}
}

func (b *builtins) vertexSexp(v snc.VertexID) zygo.Sexp {
	return &sexpVertex{id: v, p: b.s.MustVertex(v).Point}
}

// liveVertex reads a vertex argument that must not have been deleted.
func (b *builtins) liveVertex(arg zygo.Sexp) (snc.VertexID, error) {
	v, err := toVertex(arg)
	if err != nil {
		return snc.VertexID{}, err
	}
	if !b.s.Alive(v) {
		return snc.VertexID{}, fmt.Errorf("vertex %s was deleted", v)
	}
	return v, nil
}

// halfedge returns the edge leaving v along its sv-th direction.
func (b *builtins) halfedge(v snc.VertexID, sv int) (snc.Halfedge, error) {
	vx := b.s.Vertex(v)
	if vx == nil {
		return snc.Halfedge{}, fmt.Errorf("vertex %s was deleted", v)
	}
	svs := vx.SM.SVertices()
	if sv < 0 || sv >= len(svs) {
		return snc.Halfedge{}, fmt.Errorf("vertex %s has no direction %d", v, sv)
	}
	return snc.Halfedge{Vertex: v, SV: svs[sv]}, nil
}

// (frame 3 1) is the number 3 + R.
func (b *builtins) frame(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	c, err := toInts(args, 2)
	if err != nil {
		return zygo.SexpNull, err
	}
	return &sexpNumber{n: kernel.Frame(c[0], c[1])}, nil
}

// (point 1 2 3), (point 0 (frame 0 1) 2.5)
func (b *builtins) point(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 3 {
		return zygo.SexpNull, fmt.Errorf("requires exactly 3 arguments, got %d", len(args))
	}
	var c [3]kernel.Number
	for i := range c {
		n, err := toNumber(args[i])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("coordinate %d: %w", i, err)
		}
		c[i] = n
	}
	return &sexpPoint{p: kernel.NewPoint(c[0], c[1], c[2])}, nil
}

// (extended-point 1 -1 1) is the point (R, -R, R).
func (b *builtins) extendedPoint(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	c, err := toInts(args, 3)
	if err != nil {
		return zygo.SexpNull, err
	}
	return &sexpPoint{p: infibox.CreateExtendedPoint(c[0], c[1], c[2])}, nil
}

// (dir 1 0 0)
func (b *builtins) dir(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	c, err := toInts(args, 3)
	if err != nil {
		return zygo.SexpNull, err
	}
	d := kernel.NewSpherePoint(c[0], c[1], c[2])
	if d.IsZero() {
		return zygo.SexpNull, fmt.Errorf("zero direction")
	}
	return &sexpDirection{d: d}, nil
}

// (box-corner 1 1 -1 :space true :boundary true)
func (b *builtins) boxCorner(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	c, err := toInts(pa.positional, 3)
	if err != nil {
		return zygo.SexpNull, err
	}
	space, err := pa.boolKW("space", false)
	if err != nil {
		return zygo.SexpNull, err
	}
	boundary, err := pa.boolKW("boundary", true)
	if err != nil {
		return zygo.SexpNull, err
	}
	return b.vertexSexp(b.c.CreateExtendedBoxCorner(c[0], c[1], c[2], space, boundary)), nil
}

// (box-frame :space false) creates all eight box corners.
func (b *builtins) boxFrame(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	space, err := pa.boolKW("space", false)
	if err != nil {
		return zygo.SexpNull, err
	}
	n := 0
	for _, z := range []int64{1, -1} {
		for _, y := range []int64{1, -1} {
			for _, x := range []int64{1, -1} {
				b.c.CreateExtendedBoxCorner(x, y, z, space, true)
				n++
			}
		}
	}
	return intSexp(n), nil
}

// (box-point (point 0 (frame 0 1) 3)) creates the frame vertex for a point
// on a box face, edge or corner.
func (b *builtins) boxPoint(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 1 {
		return zygo.SexpNull, fmt.Errorf("requires a point")
	}
	p, err := toPoint(args[0])
	if err != nil {
		return zygo.SexpNull, err
	}
	var v snc.VertexID
	switch infibox.BoxFaces(p) {
	case 1:
		v = b.c.CreateFromPointOnInfiboxFacet(p)
	case 2:
		v = b.c.CreateFromPointOnInfiboxEdge(p)
	case 3:
		v = b.c.CreateFromPointOnInfiboxVertex(p)
	default:
		return zygo.SexpNull, fmt.Errorf("%s is not on the box", p)
	}
	return b.vertexSexp(v), nil
}

// (box-with-plane 0 0 1 0 :mark true) returns the number of frame vertices.
func (b *builtins) boxWithPlane(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	h, err := toPlane(pa.positional)
	if err != nil {
		return zygo.SexpNull, err
	}
	mark, err := pa.boolKW("mark", true)
	if err != nil {
		return zygo.SexpNull, err
	}
	return intSexp(len(b.c.CreateVerticesOfBoxWithPlane(h, mark))), nil
}

// (plane-vertex 0 0 1 0 :at (point 0 0 0) :bnd true :in true :out false)
func (b *builtins) planeVertex(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	h, err := toPlane(pa.positional)
	if err != nil {
		return zygo.SexpNull, err
	}
	p, err := pa.pointKW("at")
	if err != nil {
		return zygo.SexpNull, err
	}
	bnd, err := pa.boolKW("bnd", true)
	if err != nil {
		return zygo.SexpNull, err
	}
	in, err := pa.boolKW("in", true)
	if err != nil {
		return zygo.SexpNull, err
	}
	out, err := pa.boolKW("out", false)
	if err != nil {
		return zygo.SexpNull, err
	}
	return b.vertexSexp(b.c.CreateFromPlane(h, p, bnd, in, out)), nil
}

// (facet 0 0 1 -5 :mark true :in true :out false) creates a halffacet pair
// with fresh volumes and returns the halffacet with volume :in.
func (b *builtins) facet(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	h, err := toPlane(pa.positional)
	if err != nil {
		return zygo.SexpNull, err
	}
	if h.IsDegenerate() {
		return zygo.SexpNull, fmt.Errorf("degenerate plane %s", h)
	}
	mark, err := pa.boolKW("mark", true)
	if err != nil {
		return zygo.SexpNull, err
	}
	in, err := pa.boolKW("in", true)
	if err != nil {
		return zygo.SexpNull, err
	}
	out, err := pa.boolKW("out", false)
	if err != nil {
		return zygo.SexpNull, err
	}
	f, _ := b.s.NewFacetPair(h, mark, b.s.NewVolume(in), b.s.NewVolume(out))
	return &sexpFacet{id: f}, nil
}

// (facet-vertex f :at (point 0 0 5))
func (b *builtins) facetVertex(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	if len(pa.positional) != 1 {
		return zygo.SexpNull, fmt.Errorf("requires a facet")
	}
	f, err := toFacet(pa.positional[0])
	if err != nil {
		return zygo.SexpNull, err
	}
	p, err := pa.pointKW("at")
	if err != nil {
		return zygo.SexpNull, err
	}
	return b.vertexSexp(b.c.CreateFromFacet(f, p)), nil
}

// (cycle-vertex :at (point 0 0 0) :dirs (list (dir 1 0 0) ...) :orient false)
func (b *builtins) cycleVertex(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	p, err := pa.pointKW("at")
	if err != nil {
		return zygo.SexpNull, err
	}
	dirs, err := toDirections(pa.kw["dirs"])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("dirs: %w", err)
	}
	orient, err := pa.boolKW("orient", false)
	if err != nil {
		return zygo.SexpNull, err
	}
	v := b.s.NewVertex(p, false)
	b.c.AddOuterSEdgeCycle(v, dirs, orient)
	return b.vertexSexp(v), nil
}

// (inner-cycle v :dirs (list ...) :orient false :camera true)
func (b *builtins) innerCycle(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	if len(pa.positional) != 1 {
		return zygo.SexpNull, fmt.Errorf("requires a vertex")
	}
	v, err := b.liveVertex(pa.positional[0])
	if err != nil {
		return zygo.SexpNull, err
	}
	dirs, err := toDirections(pa.kw["dirs"])
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("dirs: %w", err)
	}
	orient, err := pa.boolKW("orient", false)
	if err != nil {
		return zygo.SexpNull, err
	}
	camera, err := pa.boolKW("camera", false)
	if err != nil {
		return zygo.SexpNull, err
	}
	b.c.AddInnerSEdgeCycle(v, dirs, orient, camera)
	return b.vertexSexp(v), nil
}

// (ray :at (point 0 0 0) :dir (dir 0 0 1) :mark true :face false) creates a
// vertex with a single edge in an unbounded face.
func (b *builtins) ray(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	p, err := pa.pointKW("at")
	if err != nil {
		return zygo.SexpNull, err
	}
	dv, ok := pa.kw["dir"]
	if !ok {
		return zygo.SexpNull, fmt.Errorf("missing :dir")
	}
	d, err := toDirection(dv)
	if err != nil {
		return zygo.SexpNull, fmt.Errorf("dir: %w", err)
	}
	mark, err := pa.boolKW("mark", true)
	if err != nil {
		return zygo.SexpNull, err
	}
	face, err := pa.boolKW("face", false)
	if err != nil {
		return zygo.SexpNull, err
	}

	v := b.s.NewVertex(p, mark)
	m := b.s.MustVertex(v).SM
	sv := m.NewSVertex(d)
	m.SVertex(sv).Mark = mark
	f := m.NewSFace()
	m.SFace(f).Mark = face
	m.LinkAsIsolatedVertex(sv, f)
	return b.vertexSexp(v), nil
}

// (link v w) makes the first edges of v and w twins.
func (b *builtins) link(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 2 {
		return zygo.SexpNull, fmt.Errorf("requires two vertices")
	}
	var hs [2]snc.Halfedge
	for i := range hs {
		v, err := toVertex(args[i])
		if err != nil {
			return zygo.SexpNull, err
		}
		if hs[i], err = b.halfedge(v, 0); err != nil {
			return zygo.SexpNull, err
		}
	}
	b.s.LinkEdge(hs[0], hs[1])
	return args[0], nil
}

// (edge-vertex v :at (point 0 0 3) :sv 0)
func (b *builtins) edgeVertex(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	e, p, err := b.edgeAt(pa)
	if err != nil {
		return zygo.SexpNull, err
	}
	return b.vertexSexp(b.c.CreateFromEdge(e, p)), nil
}

// edgeAt reads a leading vertex, :sv and :at.
func (b *builtins) edgeAt(pa kwArgs) (snc.Halfedge, kernel.Point, error) {
	if len(pa.positional) < 1 {
		return snc.Halfedge{}, kernel.Point{}, fmt.Errorf("requires a vertex")
	}
	v, err := toVertex(pa.positional[0])
	if err != nil {
		return snc.Halfedge{}, kernel.Point{}, err
	}
	sv, err := pa.intKW("sv", 0)
	if err != nil {
		return snc.Halfedge{}, kernel.Point{}, err
	}
	e, err := b.halfedge(v, sv)
	if err != nil {
		return snc.Halfedge{}, kernel.Point{}, err
	}
	p, err := pa.pointKW("at")
	if err != nil {
		return snc.Halfedge{}, kernel.Point{}, err
	}
	return e, p, nil
}

// (edge-facet v f :at (point 0 0 5) :op :intersection :inverted false)
func (b *builtins) edgeFacet(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	e, p, err := b.edgeAt(pa)
	if err != nil {
		return zygo.SexpNull, err
	}
	if len(pa.positional) != 2 {
		return zygo.SexpNull, fmt.Errorf("requires a vertex and a facet")
	}
	f, err := toFacet(pa.positional[1])
	if err != nil {
		return zygo.SexpNull, err
	}
	sel, err := pa.selectionKW()
	if err != nil {
		return zygo.SexpNull, err
	}
	inverted, err := pa.boolKW("inverted", false)
	if err != nil {
		return zygo.SexpNull, err
	}
	var assoc constructor.Association
	if b.c.Indexed() {
		assoc = b.pairs
	}
	return b.vertexSexp(b.c.CreateEdgeFacetOverlay(e, f, p, sel, inverted, assoc)), nil
}

// (edge-edge v w :at (point 0 0 2) :op :union :inverted false)
func (b *builtins) edgeEdge(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	pa := parseArgs(args)
	e0, p, err := b.edgeAt(pa)
	if err != nil {
		return zygo.SexpNull, err
	}
	if len(pa.positional) != 2 {
		return zygo.SexpNull, fmt.Errorf("requires two vertices")
	}
	w, err := toVertex(pa.positional[1])
	if err != nil {
		return zygo.SexpNull, err
	}
	e1, err := b.halfedge(w, 0)
	if err != nil {
		return zygo.SexpNull, err
	}
	sel, err := pa.selectionKW()
	if err != nil {
		return zygo.SexpNull, err
	}
	inverted, err := pa.boolKW("inverted", false)
	if err != nil {
		return zygo.SexpNull, err
	}
	return b.vertexSexp(b.c.CreateEdgeEdgeOverlay(e0, e1, p, sel, inverted)), nil
}

// (infibox-overlay v)
func (b *builtins) infiboxOverlay(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 1 {
		return zygo.SexpNull, fmt.Errorf("requires a vertex")
	}
	v, err := b.liveVertex(args[0])
	if err != nil {
		return zygo.SexpNull, err
	}
	return b.vertexSexp(b.c.CreateForInfiboxOverlay(v)), nil
}

// (clone v)
func (b *builtins) clone(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 1 {
		return zygo.SexpNull, fmt.Errorf("requires a vertex")
	}
	v, err := b.liveVertex(args[0])
	if err != nil {
		return zygo.SexpNull, err
	}
	return b.vertexSexp(b.c.CloneSM(v)), nil
}

// (consolidate) returns whether any frame vertex was erased.
func (b *builtins) consolidate(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	return boolSexp(b.c.EraseRedundantVertices()), nil
}

// (correct-marks) runs both frame mark corrections.
func (b *builtins) correctMarks(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	b.c.CorrectInfiboxSFaceMarks()
	b.c.CorrectInfiboxSEdgeMarks()
	return zygo.SexpNull, nil
}

// (assign-indices)
func (b *builtins) assignIndices(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	b.c.AssignIndices()
	return zygo.SexpNull, nil
}

// (vertex-count)
func (b *builtins) vertexCount(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	return intSexp(b.s.NumVertices()), nil
}

// (sm-stats v)
func (b *builtins) smStats(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 1 {
		return zygo.SexpNull, fmt.Errorf("requires a vertex")
	}
	v, err := toVertex(args[0])
	if err != nil {
		return zygo.SexpNull, err
	}
	vx := b.s.Vertex(v)
	if vx == nil {
		return zygo.SexpNull, fmt.Errorf("vertex %s was deleted", v)
	}
	m := vx.SM
	return &sexpStats{
		svertices: m.NumSVertices(),
		sedges:    m.NumSEdges(),
		sfaces:    m.NumSFaces(),
		loop:      m.HasLoop(),
		valid:     len(spheremap.Validate(m)) == 0,
	}, nil
}

// (label v "apex")
func (b *builtins) label(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 2 {
		return zygo.SexpNull, fmt.Errorf("requires a vertex and a name")
	}
	v, err := toVertex(args[0])
	if err != nil {
		return zygo.SexpNull, err
	}
	l, err := toString(args[1])
	if err != nil {
		return zygo.SexpNull, err
	}
	if !b.s.Alive(v) {
		return zygo.SexpNull, fmt.Errorf("vertex %s was deleted", v)
	}
	b.s.SetLabel(v, l)
	return args[0], nil
}

// (vertex "apex")
func (b *builtins) vertex(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 1 {
		return zygo.SexpNull, fmt.Errorf("requires a name")
	}
	l, err := toString(args[0])
	if err != nil {
		return zygo.SexpNull, err
	}
	v, ok := b.s.Lookup(l)
	if !ok {
		return zygo.SexpNull, fmt.Errorf("no vertex named %q", l)
	}
	return b.vertexSexp(v), nil
}
