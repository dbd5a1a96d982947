package constructor

import (
	"go.uber.org/zap"

	"github.com/chazu/nef3/pkg/infibox"
	"github.com/chazu/nef3/pkg/kernel"
	"github.com/chazu/nef3/pkg/snc"
	"github.com/chazu/nef3/pkg/spheremap"
)

// CreateExtendedBoxCorner creates the vertex at the box corner
// (x*R, y*R, z*R). Its local map has the three directions pointing back
// along the box edges, joined by a triangle of sphere edges. The face
// inside the box gets the mark space, the face outside false.
func (c *Constructor) CreateExtendedBoxCorner(x, y, z int64, space, boundary bool) snc.VertexID {
	const op = "CreateExtendedBoxCorner"
	if x == 0 || abs64(x) != abs64(y) || abs64(y) != abs64(z) {
		precondition(op, "(%d, %d, %d) is not a box corner", x, y, z)
	}
	if !boundary {
		precondition(op, "box corners lie on the boundary")
	}

	p := infibox.CreateExtendedPoint(x, y, z)
	v := c.s.NewVertex(p, boundary)
	m := c.sm(v)

	sp := [3]kernel.SpherePoint{
		kernel.NewSpherePoint(-x, 0, 0),
		kernel.NewSpherePoint(0, -y, 0),
		kernel.NewSpherePoint(0, 0, -z),
	}
	var sv [3]spheremap.SVertexID
	for i := range sv {
		sv[i] = m.NewSVertex(sp[i])
		m.SVertex(sv[i]).Mark = boundary
	}
	var she [3]spheremap.SHalfedgeID
	for i := range she {
		she[i] = m.NewSHalfedgePair(sv[i], sv[(i+1)%3])
		setSEdge(m, she[i], kernel.CircleThrough(sp[i], sp[(i+1)%3]), boundary)
	}

	fi, fe := m.NewSFace(), m.NewSFace()
	m.LinkAsFaceCycle(she[0], fi)
	m.LinkAsFaceCycle(m.SHalfedge(she[0]).Twin(), fe)

	next := m.SHalfedge(she[0]).Next()
	p1 := m.SVertex(m.SHalfedge(she[0]).Source()).Point
	p2 := m.SVertex(m.Target(she[0])).Point
	p3 := m.SVertex(m.Target(next)).Point
	if kernel.SphericalOrientation(p1, p2, p3) == kernel.Positive {
		m.SFace(fi).Mark, m.SFace(fe).Mark = space, false
	} else {
		m.SFace(fi).Mark, m.SFace(fe).Mark = false, space
	}

	c.log.Debug("box corner",
		zap.Stringer("vertex", v),
		zap.Stringer("point", p),
		zap.Bool("space", space),
	)
	return v
}

// AddOuterSEdgeCycle adds to the empty local map of v a simple cycle of sphere
// edges through dirs, in order. The face on the left of the cycle is marked
// true and the one on its right false. With orient set the circle of the
// first edge is reversed.
func (c *Constructor) AddOuterSEdgeCycle(v snc.VertexID, dirs []kernel.SpherePoint, orient bool) {
	if len(dirs) == 0 {
		precondition("AddOuterSEdgeCycle", "no directions")
	}
	m := c.sm(v)
	first := c.buildSEdgeCycle(v, dirs, orient)

	sfa, sfi := m.NewSFace(), m.NewSFace()
	m.SFace(sfi).Mark = true
	m.SFace(sfa).Mark = false
	m.LinkAsFaceCycle(first, sfi)
	m.LinkAsFaceCycle(m.SHalfedge(first).Twin(), sfa)
}

// AddInnerSEdgeCycle adds a hole cycle through dirs to the local map of v.
// With camera set the outside of the cycle joins the second existing face
// of the map, which must exist. Otherwise a new face marked true is
// created for it. The inside gets a new face marked false.
func (c *Constructor) AddInnerSEdgeCycle(v snc.VertexID, dirs []kernel.SpherePoint, orient, camera bool) {
	const op = "AddInnerSEdgeCycle"
	if len(dirs) == 0 {
		precondition(op, "no directions")
	}
	m := c.sm(v)
	var sfa spheremap.SFaceID
	if camera {
		faces := m.SFaces()
		if len(faces) < 2 {
			precondition(op, "camera mode needs two existing faces, map has %d", len(faces))
		}
		sfa = faces[1]
	}
	first := c.buildSEdgeCycle(v, dirs, orient)

	if sfa.IsNil() {
		sfa = m.NewSFace()
		m.SFace(sfa).Mark = true
	}
	sfi := m.NewSFace()
	m.LinkAsFaceCycle(first, sfi)
	m.LinkAsFaceCycle(m.SHalfedge(first).Twin(), sfa)
}

// buildSEdgeCycle creates the sphere vertices for dirs and closes them into a
// cycle of sphere edges. It returns the first half-edge of the cycle.
func (c *Constructor) buildSEdgeCycle(v snc.VertexID, dirs []kernel.SpherePoint, orient bool) spheremap.SHalfedgeID {
	c.s.MustVertex(v).Mark = true
	m := c.sm(v)
	n := len(dirs)

	sv := make([]spheremap.SVertexID, n)
	for i, d := range dirs {
		sv[i] = m.NewSVertex(d)
		m.SVertex(sv[i]).Mark = true
	}
	se := make([]spheremap.SHalfedgeID, n)
	for i := range se {
		se[i] = m.NewSHalfedgePair(sv[i], sv[(i+1)%n])
		if i > 0 {
			m.LinkPrevNext(se[i-1], se[i])
			m.LinkPrevNext(m.SHalfedge(se[i]).Twin(), m.SHalfedge(se[i-1]).Twin())
		}
	}
	m.LinkPrevNext(se[n-1], se[0])
	m.LinkPrevNext(m.SHalfedge(se[0]).Twin(), m.SHalfedge(se[n-1]).Twin())

	for i, e := range se {
		circle := kernel.CircleThrough(dirs[i], dirs[(i+1)%n])
		if orient && i == 0 {
			circle = circle.Opposite()
		}
		setSEdge(m, e, circle, true)
	}
	return se[0]
}

// CreateFromPlane creates a vertex at p whose local map is the great circle
// parallel to pl: a loop pair splitting the sphere into the face on the
// positive side, marked outside, and the face on the negative side, marked
// inside. The loop and the vertex get the mark bnd.
func (c *Constructor) CreateFromPlane(pl kernel.Plane, p kernel.Point, bnd, inside, outside bool) snc.VertexID {
	if pl.IsDegenerate() {
		precondition("CreateFromPlane", "degenerate plane %s", pl)
	}
	v := c.s.NewVertex(p, bnd)
	m := c.sm(v)

	l := m.NewSHalfloopPair()
	lt := m.SHalfloop(l).Twin()
	f1, f2 := m.NewSFace(), m.NewSFace()
	m.LinkAsLoop(l, f1)
	m.LinkAsLoop(lt, f2)
	m.SFace(f1).Mark = outside
	m.SFace(f2).Mark = inside

	circle := kernel.CircleFromPlane(pl)
	m.SHalfloop(l).Circle = circle
	m.SHalfloop(lt).Circle = circle.Opposite()
	m.SHalfloop(l).Mark = bnd
	m.SHalfloop(lt).Mark = bnd
	return v
}

// CreateFromFacet creates a vertex at a point p of the relative interior
// of facet f.
func (c *Constructor) CreateFromFacet(f spheremap.FacetID, p kernel.Point) snc.VertexID {
	hf := c.s.Facet(f)
	twin := c.s.Facet(hf.Twin)
	v := c.CreateFromPlane(hf.Plane, p, hf.Mark, c.volumeMark(twin.Volume), c.volumeMark(hf.Volume))
	if !c.indexed {
		return v
	}

	m := c.sm(v)
	l, _ := m.Loop()
	lt := m.SHalfloop(l).Twin()
	m.SHalfloop(l).IndexFacet = hf.Twin
	m.SHalfloop(lt).IndexFacet = f
	if idx, twinIdx, ok := c.firstFacetIndex(hf.Twin); ok {
		m.SHalfloop(l).Index = idx
		m.SHalfloop(lt).Index = twinIdx
	}
	return v
}

// CreateFromEdge creates a vertex at a point p of the relative interior of
// edge e. The local map has the antipodal directions of e and one lune per
// sphere edge at the source of e.
func (c *Constructor) CreateFromEdge(e snc.Halfedge, p kernel.Point) snc.VertexID {
	em := c.sm(e.Vertex)
	es := em.SVertex(e.SV)

	v := c.s.NewVertex(p, es.Mark)
	m := c.sm(v)
	v1 := m.NewSVertex(es.Point)
	v2 := m.NewSVertex(es.Point.Antipode())
	m.SVertex(v1).Mark = es.Mark
	m.SVertex(v2).Mark = es.Mark
	if c.indexed {
		m.SVertex(v1).Index = es.Index
		m.SVertex(v2).Index = es.Index
	}

	if em.IsIsolated(e.SV) {
		f := m.NewSFace()
		m.SFace(f).Mark = em.SFace(es.Face()).Mark
		m.LinkAsIsolatedVertex(v1, f)
		m.LinkAsIsolatedVertex(v2, f)
		return v
	}

	src := em.OutEdges(e.SV)
	var e1 spheremap.SHalfedgeID
	for i := range src {
		if i == 0 {
			e1 = m.NewSHalfedgePair(v1, v2)
			continue
		}
		e1 = m.NewSHalfedgePairAt(e1, m.SHalfedge(e1).Twin(), spheremap.After, spheremap.Before)
	}

	dst := m.OutEdges(v1)
	for i, ec1 := range src {
		ec2 := dst[i]
		s1 := em.SHalfedge(ec1)
		s1t := em.SHalfedge(s1.Twin())
		d := m.SHalfedge(ec2)
		dt := m.SHalfedge(d.Twin())

		d.Mark, dt.Mark = s1.Mark, s1.Mark
		d.Circle, dt.Circle = s1.Circle, s1t.Circle
		f := m.NewSFace()
		m.SFace(f).Mark = em.SFace(s1.Face()).Mark
		m.LinkAsFaceCycle(ec2, f)

		if c.indexed {
			d.IndexFacet, dt.IndexFacet = s1.Facet, s1t.Facet
			d.Index, dt.Index = s1.Index, s1t.Index
		}
	}
	return v
}

// CreateFromPointOnInfiboxFacet creates the vertex of a frame point on an
// open box face: a plane vertex whose inside faces the box.
func (c *Constructor) CreateFromPointOnInfiboxFacet(p kernel.Point) snc.VertexID {
	const op = "CreateFromPointOnInfiboxFacet"
	if infibox.BoxFaces(p) != 1 {
		precondition(op, "%s is not on an open box face", p)
	}
	for i := 0; i < 3; i++ {
		if !infibox.OnBox(p.Coord(i)) {
			continue
		}
		n := [3]int64{}
		n[i] = int64(p.Coord(i).Sign())
		h := kernel.Pl(n[0], n[1], n[2], 1)
		return c.CreateFromPlane(h, p, true, true, false)
	}
	precondition(op, "%s is not on the box", p)
	return snc.VertexID{}
}

// CreateFromPointOnInfiboxEdge creates the vertex of a frame point on an
// open box edge. The local map is the quarter inside the box plus its
// complement, bounded by two half circles.
func (c *Constructor) CreateFromPointOnInfiboxEdge(p kernel.Point) snc.VertexID {
	const op = "CreateFromPointOnInfiboxEdge"
	var sp kernel.SpherePoint
	var c1, c2 kernel.SphereCircle
	hx := int64(p.X.Sign())
	hy := int64(p.Y.Sign())
	hz := int64(p.Z.Sign())
	switch {
	case !infibox.XOnBox(p):
		sp = kernel.NewSpherePoint(1, 0, 0)
		c1, c2 = kernel.NewSphereCircle(0, hy, 0), kernel.NewSphereCircle(0, 0, hz)
	case !infibox.YOnBox(p):
		sp = kernel.NewSpherePoint(0, 1, 0)
		c1, c2 = kernel.NewSphereCircle(hx, 0, 0), kernel.NewSphereCircle(0, 0, hz)
	case !infibox.ZOnBox(p):
		sp = kernel.NewSpherePoint(0, 0, 1)
		c1, c2 = kernel.NewSphereCircle(hx, 0, 0), kernel.NewSphereCircle(0, hy, 0)
	default:
		precondition(op, "%s is a box corner", p)
	}
	if infibox.BoxFaces(p) != 2 {
		precondition(op, "%s is not on a box edge", p)
	}

	v := c.s.NewVertex(p, true)
	m := c.sm(v)
	v1 := m.NewSVertex(sp)
	v2 := m.NewSVertex(sp.Antipode())
	m.SVertex(v1).Mark = true
	m.SVertex(v2).Mark = true
	e1 := m.NewSHalfedgePair(v1, v2)
	e2 := m.NewSHalfedgePair(v1, v2)

	f1, f2 := m.NewSFace(), m.NewSFace()
	m.LinkAsFaceCycle(e1, f1)
	m.LinkAsFaceCycle(e2, f2)
	m.SFace(f1).Mark = false
	m.SFace(f2).Mark = true

	setSEdge(m, e1, c1, true)
	setSEdge(m, m.SHalfedge(e1).Next(), c2, true)
	return v
}

// CreateFromPointOnInfiboxVertex creates the canonical box corner at p with
// the box interior marked as space.
func (c *Constructor) CreateFromPointOnInfiboxVertex(p kernel.Point) snc.VertexID {
	if !infibox.IsInfiboxCorner(p) {
		precondition("CreateFromPointOnInfiboxVertex", "%s is not a box corner", p)
	}
	q := infibox.StandardPoint(p, big1)
	sign := func(n kernel.Number) int64 { return int64(n.Sign()) }
	return c.CreateExtendedBoxCorner(sign(q.X), sign(q.Y), sign(q.Z), true, true)
}

// CreateForInfiboxOverlay creates a vertex at the point of vin whose local
// map is a lune decomposition around the first direction of vin that does
// not run along the box. Each lune is marked like the face the matching
// sphere edge of vin bounds on its right.
func (c *Constructor) CreateForInfiboxOverlay(vin snc.VertexID) snc.VertexID {
	const op = "CreateForInfiboxOverlay"
	in := c.s.MustVertex(vin)
	em := in.SM

	var e spheremap.SVertexID
	for _, sv := range em.SVertices() {
		if !infibox.IsEdgeOnInfibox(in.Point, em.SVertex(sv).Point) {
			e = sv
			break
		}
	}
	if e.IsNil() {
		precondition(op, "every direction of %s runs along the box", vin)
	}
	es := em.SVertex(e)

	v := c.s.NewVertex(in.Point, in.Mark)
	m := c.sm(v)
	v1 := m.NewSVertex(es.Point)
	v2 := m.NewSVertex(es.Point.Antipode())
	m.SVertex(v1).Mark = es.Mark
	m.SVertex(v2).Mark = es.Mark

	if em.IsIsolated(e) {
		f := m.NewSFace()
		m.SFace(f).Mark = em.SFace(es.Face()).Mark
		m.LinkAsIsolatedVertex(v1, f)
		m.LinkAsIsolatedVertex(v2, f)
		return v
	}

	markOfRight := make(map[spheremap.SHalfedgeID]bool)
	var se spheremap.SHalfedgeID
	for _, ec := range em.OutEdges(e) {
		if se.IsNil() {
			se = m.NewSHalfedgePair(v1, v2)
		} else {
			se = m.NewSHalfedgePairAt(se, m.SHalfedge(se).Twin(), spheremap.After, spheremap.Before)
		}
		s := em.SHalfedge(ec)
		d := m.SHalfedge(se)
		dt := m.SHalfedge(d.Twin())
		d.Mark, dt.Mark = s.Mark, s.Mark
		d.Circle = s.Circle
		dt.Circle = s.Circle.Opposite()
		markOfRight[se] = em.SFace(s.Face()).Mark
	}
	for _, ec := range m.OutEdges(v1) {
		f := m.NewSFace()
		m.SFace(f).Mark = markOfRight[ec]
		m.LinkAsFaceCycle(ec, f)
	}
	return v
}

// setSEdge sets the circle and mark of e and its twin.
func setSEdge(m *spheremap.Map, e spheremap.SHalfedgeID, circle kernel.SphereCircle, mark bool) {
	s := m.SHalfedge(e)
	t := m.SHalfedge(s.Twin())
	s.Circle, t.Circle = circle, circle.Opposite()
	s.Mark, t.Mark = mark, mark
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
