package constructor

import (
	"math/big"
	"sort"

	"go.uber.org/zap"

	"github.com/chazu/nef3/pkg/infibox"
	"github.com/chazu/nef3/pkg/kernel"
	"github.com/chazu/nef3/pkg/snc"
)

// frameKey is a frame halfedge on its supporting line.
type frameKey struct {
	p        kernel.Point
	inverted int
	h        snc.Halfedge
}

// frameLine collects the frame halfedges on one canonical line.
type frameLine struct {
	line kernel.PlueckerLine
	keys []frameKey
}

// frameFamily groups frame halfedges by line, in first-seen order.
type frameFamily struct {
	byKey map[string]*frameLine
	lines []*frameLine
}

func newFrameFamily() *frameFamily {
	return &frameFamily{byKey: make(map[string]*frameLine)}
}

func (f *frameFamily) add(l kernel.PlueckerLine, k frameKey) {
	fl, ok := f.byKey[l.Key()]
	if !ok {
		fl = &frameLine{line: l}
		f.byKey[l.Key()] = fl
		f.lines = append(f.lines, fl)
	}
	fl.keys = append(fl.keys, k)
}

// sorted returns the lines ordered by their Plücker coordinates.
func (f *frameFamily) sorted() []*frameLine {
	out := append([]*frameLine(nil), f.lines...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].line.Less(out[j].line) })
	return out
}

// EraseRedundantVertices consolidates the frame after an operation. It
// first drops duplicate frame vertices at the same point. Then, in rounds,
// it pairs the frame halfedges along every line of the box and deletes the
// frame vertices whose halfedges found no antiparallel partner; deleted box
// corners are recreated. It reports whether any vertex was deleted.
func (c *Constructor) EraseRedundantVertices() bool {
	const op = "EraseRedundantVertices"
	changed := false

	var frame []snc.VertexID
	for _, v := range c.s.Vertices() {
		if !infibox.IsStandard(c.s.MustVertex(v).Point) {
			frame = append(frame, v)
		}
	}
	complexAt := make(map[snc.VertexID]bool, len(frame))
	for _, v := range frame {
		vx := c.s.MustVertex(v)
		complexAt[v] = infibox.IsComplexFacetInfiboxIntersection(vx.Point, vx.SM)
	}
	sort.SliceStable(frame, func(i, j int) bool {
		pi, pj := c.s.MustVertex(frame[i]).Point, c.s.MustVertex(frame[j]).Point
		if cmp := kernel.CompareXYZ(pi, pj); cmp != 0 {
			return cmp < 0
		}
		return !complexAt[frame[i]] && complexAt[frame[j]]
	})
	for i := 0; i+1 < len(frame); i++ {
		a, b := frame[i], frame[i+1]
		if !c.s.MustVertex(a).Point.Equal(c.s.MustVertex(b).Point) {
			continue
		}
		if complexAt[a] {
			precondition(op, "duplicate frame vertices at %s are both complex", c.s.MustVertex(a).Point)
		}
		c.log.Debug("drop duplicate frame vertex",
			zap.Stringer("vertex", a),
			zap.Stringer("point", c.s.MustVertex(a).Point),
		)
		c.s.DeleteVertex(a)
		changed = true
	}

	var points []kernel.Point
	for _, v := range c.s.Vertices() {
		points = append(points, c.s.MustVertex(v).Point)
	}
	eval := infibox.EvaluationConstant(points)

	for round := 1; ; round++ {
		erase := c.unpairedFrameVertices(eval)

		var recreate []kernel.Point
		deleted := 0
		for _, v := range c.s.Vertices() {
			if !erase[v] {
				continue
			}
			p := c.s.MustVertex(v).Point
			if infibox.IsInfiboxCorner(p) {
				if c.isCanonicalCorner(v) {
					continue
				}
				recreate = append(recreate, p)
			}
			c.s.DeleteVertex(v)
			deleted++
		}
		for _, p := range recreate {
			c.CreateFromPointOnInfiboxVertex(p)
		}

		c.log.Debug("frame consolidation round",
			zap.Int("round", round),
			zap.Int("deleted", deleted),
			zap.Int("recreated", len(recreate)),
		)
		if deleted == 0 {
			break
		}
		changed = true
	}
	return changed
}

// unpairedFrameVertices returns the sources of the frame halfedges that have
// no antiparallel partner on their line.
func (c *Constructor) unpairedFrameVertices(eval *big.Rat) map[snc.VertexID]bool {
	m4, m3, m2 := newFrameFamily(), newFrameFamily(), newFrameFamily()
	for _, h := range c.s.Halfedges() {
		p := c.s.Source(h)
		d := c.s.Direction(h)
		if !infibox.IsEdgeOnInfibox(p, d) {
			continue
		}
		sp := infibox.StandardPoint(p, eval)
		sq := infibox.StandardPoint(p.Add(d.Vector()), eval)
		l, inverted := kernel.NewPlueckerLine(sp, sq).Categorize()
		k := frameKey{p: p, inverted: inverted, h: h}
		switch {
		case infibox.IsType4(p, d):
			m4.add(l, k)
		case infibox.IsType3(p, d):
			m3.add(l, k)
		default:
			m2.add(l, k)
		}
	}

	erase := make(map[snc.VertexID]bool)
	for _, fam := range []*frameFamily{m4, m3, m2} {
		for _, fl := range fam.sorted() {
			keys := fl.keys
			sort.SliceStable(keys, func(i, j int) bool { return c.frameKeyLess(keys[i], keys[j]) })
			for i := 0; i < len(keys); i++ {
				e1 := keys[i]
				if i+1 == len(keys) {
					erase[e1.h.Vertex] = true
					break
				}
				e2 := keys[i+1]
				if !c.s.Direction(e1.h).Equal(c.s.Direction(e2.h).Antipode()) {
					erase[e1.h.Vertex] = true
					continue
				}
				i++
			}
		}
	}
	return erase
}

// frameKeyLess orders halfedges of one line along its canonical direction.
// At equal points the reversed halfedge comes first.
func (c *Constructor) frameKeyLess(a, b frameKey) bool {
	if a.p.Equal(b.p) {
		return a.inverted < b.inverted
	}
	v := c.s.Direction(a.h).Vector()
	if a.inverted < 0 {
		v = v.Neg()
	}
	return b.p.Sub(a.p).Dot(v).Sign() == kernel.Positive
}

// isCanonicalCorner reports whether v carries the local map a box corner is
// created with: three directions back into the box joined by a triangle.
func (c *Constructor) isCanonicalCorner(v snc.VertexID) bool {
	vx := c.s.MustVertex(v)
	m := vx.SM
	if m.NumSVertices() != 3 || m.NumSEdges() != 3 || m.NumSFaces() != 2 || m.HasLoop() {
		return false
	}
	for _, sv := range m.SVertices() {
		if !infibox.IsEdgeOnInfibox(vx.Point, m.SVertex(sv).Point) {
			return false
		}
	}
	return true
}

// CorrectInfiboxSFaceMarks makes faces and volumes agree at frame vertices:
// frame points that are not corners push their face marks to the volumes,
// then box corners take their face marks from the volumes.
func (c *Constructor) CorrectInfiboxSFaceMarks() {
	for _, corners := range []bool{false, true} {
		for _, v := range c.s.Vertices() {
			vx := c.s.MustVertex(v)
			if infibox.IsStandard(vx.Point) || infibox.IsInfiboxCorner(vx.Point) != corners {
				continue
			}
			for _, f := range vx.SM.SFaces() {
				sf := vx.SM.SFace(f)
				if sf.Volume == 0 {
					continue
				}
				if corners {
					sf.Mark = c.s.VolumeMark(sf.Volume)
				} else {
					c.s.Volume(sf.Volume).Mark = sf.Mark
				}
			}
		}
	}
}

// CorrectInfiboxSEdgeMarks marks every sphere edge of a frame vertex that
// runs along the box, together with its source, as boundary.
func (c *Constructor) CorrectInfiboxSEdgeMarks() {
	for _, v := range c.s.Vertices() {
		vx := c.s.MustVertex(v)
		if infibox.IsStandard(vx.Point) {
			continue
		}
		for _, e := range vx.SM.SHalfedges() {
			se := vx.SM.SHalfedge(e)
			if infibox.IsSEdgeOnInfibox(vx.Point, se.Circle) {
				se.Mark = true
				vx.SM.SVertex(se.Source()).Mark = true
			}
		}
	}
}
