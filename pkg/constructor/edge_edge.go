package constructor

import (
	"go.uber.org/zap"

	"github.com/chazu/nef3/pkg/kernel"
	"github.com/chazu/nef3/pkg/snc"
	"github.com/chazu/nef3/pkg/spheremap"
)

// CreateEdgeEdgeOverlay creates the vertex at p where edge e0 of one operand
// crosses edge e1 of the other. At least one of the two edges must have no
// sphere edges around it; that edge only contributes its two directions
// and its surrounding face. Other configurations panic with a
// *PreconditionError wrapping ErrNotImplemented.
func (c *Constructor) CreateEdgeEdgeOverlay(e0, e1 snc.Halfedge, p kernel.Point, sel Selection, inverted bool) snc.VertexID {
	const op = "CreateEdgeEdgeOverlay"
	iso0 := c.sm(e0.Vertex).IsIsolated(e0.SV)
	iso1 := c.sm(e1.Vertex).IsIsolated(e1.SV)
	switch {
	case !iso0 && !iso1:
		notImplemented(op, "both edges carry sphere edges")
	case iso0 && !iso1:
		e0, e1 = e1, e0
		inverted = !inverted
	}

	d0 := c.s.Direction(e0)
	d1 := c.s.Direction(e1)
	if d1.Equal(d0) || d1.Equal(d0.Antipode()) {
		notImplemented(op, "edges %s and %s are collinear", e0, e1)
	}
	s0 := c.s.SVertex(e0)
	s1 := c.s.SVertex(e1)
	mark0 := s0.Mark
	mark1 := s1.Mark
	face1 := c.sm(e1.Vertex).SFace(s1.Face()).Mark

	v := c.CreateFromEdge(e0, p)
	m := c.sm(v)
	svs := m.SVertices()
	v1, v2 := svs[0], svs[1]

	type insertion struct {
		w    kernel.SpherePoint
		face spheremap.SFaceID
		mark bool
	}
	var ins []insertion
	for _, w := range []kernel.SpherePoint{d1, d1.Antipode()} {
		f := c.locateAround(op, m, v1, w)
		ins = append(ins, insertion{w: w, face: f, mark: sel.Apply(m.SFace(f).Mark, mark1, inverted)})
	}

	for _, f := range m.SFaces() {
		sf := m.SFace(f)
		sf.Mark = sel.Apply(sf.Mark, face1, inverted)
	}
	for _, e := range m.SHalfedges() {
		se := m.SHalfedge(e)
		se.Mark = sel.Apply(se.Mark, face1, inverted)
	}
	m.SVertex(v1).Mark = sel.Apply(mark0, face1, inverted)
	m.SVertex(v2).Mark = sel.Apply(mark0, face1, inverted)

	for _, in := range ins {
		sv := m.NewSVertex(in.w)
		m.SVertex(sv).Mark = in.mark
		if c.indexed {
			m.SVertex(sv).Index = s1.Index
		}
		m.LinkAsIsolatedVertex(sv, in.face)
	}
	c.s.MustVertex(v).Mark = sel.Apply(mark0, mark1, inverted)

	c.log.Debug("edge edge overlay",
		zap.Stringer("vertex", v),
		zap.Stringer("point", p),
		zap.Stringer("e0", e0),
		zap.Stringer("e1", e1),
	)
	return v
}

// locateAround returns the face of the lune decomposition around v1 that
// contains w. It panics when w lies on one of the lune boundaries.
func (c *Constructor) locateAround(op string, m *spheremap.Map, v1 spheremap.SVertexID, w kernel.SpherePoint) spheremap.SFaceID {
	out := m.OutEdges(v1)
	if len(out) == 0 {
		return m.SVertex(v1).Face()
	}
	axis := m.SVertex(v1).Point
	tangent := func(e spheremap.SHalfedgeID) kernel.SpherePoint {
		return kernel.CircleThrough(m.SHalfedge(e).Circle.Normal(), axis).Normal()
	}

	ref := tangent(out[0])
	best, bestT := out[0], ref
	for _, e := range out {
		t := tangent(e)
		switch kernel.CompareAround(axis, ref, t, w) {
		case 0:
			notImplemented(op, "direction %s lies on sphere edge %s", w, e)
		case -1:
			if kernel.CompareAround(axis, ref, bestT, t) <= 0 {
				best, bestT = e, t
			}
		}
	}
	return m.SHalfedge(best).Face()
}
