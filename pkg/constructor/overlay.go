package constructor

import (
	"go.uber.org/zap"

	"github.com/chazu/nef3/pkg/kernel"
	"github.com/chazu/nef3/pkg/snc"
	"github.com/chazu/nef3/pkg/spheremap"
)

// CreateEdgeFacetOverlay creates the vertex at p where edge e of one operand
// pierces facet f of the other. Every lune around e is split by the great
// circle of f, and all marks are combined with sel. With inverted set, the
// facet belongs to the first operand.
//
// The indexed variant copies identity indices from e and f and reports,
// for every new sphere vertex, the pair of facets it lies on to assoc.
// assoc may be nil otherwise.
func (c *Constructor) CreateEdgeFacetOverlay(e snc.Halfedge, f spheremap.FacetID, p kernel.Point, sel Selection, inverted bool, assoc Association) snc.VertexID {
	const op = "CreateEdgeFacetOverlay"
	if c.indexed && assoc == nil {
		precondition(op, "indexed overlay needs an association")
	}
	em := c.sm(e.Vertex)
	es := em.SVertex(e.SV)
	hf := c.s.Facet(f)

	v := c.s.NewVertex(p, sel.Apply(es.Mark, hf.Mark, inverted))
	m := c.sm(v)

	ps := es.Point
	v1 := m.NewSVertex(ps)
	v2 := m.NewSVertex(ps.Antipode())
	if c.indexed {
		m.SVertex(v1).Index = es.Index
		m.SVertex(v2).Index = es.Index
	}

	facesP := f
	if hf.Plane.OrientedSide(p.Add(ps.Vector())) == kernel.Negative {
		facesP = hf.Twin
	}
	fp := c.s.Facet(facesP)
	vol1 := c.volumeMark(fp.Volume)
	vol2 := c.volumeMark(c.s.Facet(fp.Twin).Volume)
	m.SVertex(v1).Mark = sel.Apply(es.Mark, vol1, inverted)
	m.SVertex(v2).Mark = sel.Apply(es.Mark, vol2, inverted)

	c.log.Debug("edge facet overlay",
		zap.Stringer("vertex", v),
		zap.Stringer("point", p),
		zap.Stringer("edge", e),
		zap.Int32("facet", int32(f)),
		zap.Bool("isolated", em.IsIsolated(e.SV)),
	)

	if em.IsIsolated(e.SV) {
		faceMark := em.SFace(es.Face()).Mark
		mf1 := sel.Apply(faceMark, vol1, inverted)
		mf2 := sel.Apply(faceMark, vol2, inverted)
		ml := sel.Apply(faceMark, fp.Mark, inverted)

		f1 := m.NewSFace()
		m.LinkAsIsolatedVertex(v1, f1)
		m.SFace(f1).Mark = mf1
		if mf1 == mf2 && mf1 == ml {
			m.LinkAsIsolatedVertex(v2, f1)
			return v
		}

		l := m.NewSHalfloopPair()
		lt := m.SHalfloop(l).Twin()
		f2 := m.NewSFace()
		m.LinkAsIsolatedVertex(v2, f2)
		m.LinkAsLoop(l, f1)
		m.LinkAsLoop(lt, f2)
		circle := kernel.CircleFromPlane(fp.Plane)
		m.SHalfloop(l).Circle = circle
		m.SHalfloop(lt).Circle = circle.Opposite()
		m.SFace(f2).Mark = mf2
		m.SHalfloop(l).Mark = ml
		m.SHalfloop(lt).Mark = ml
		if c.indexed {
			if idx, twinIdx, ok := c.firstFacetIndex(facesP); ok {
				m.SHalfloop(l).Index = twinIdx
				m.SHalfloop(lt).Index = idx
			}
		}
		return v
	}

	fc := kernel.CircleFromPlane(hf.Plane)
	markOfRight := make(map[spheremap.SHalfedgeID]bool)
	var nextEdge spheremap.SHalfedgeID
	for _, ec := range em.OutEdges(e.SV) {
		s := em.SHalfedge(ec)
		st := em.SHalfedge(s.Twin())

		src := em.SVertex(s.Source()).Point
		seg := kernel.NewSphereSegment(src, src.Antipode(), s.Circle)
		sp := kernel.Intersection(fc, s.Circle)
		if sp.IsZero() {
			precondition(op, "sphere edge %s lies in the plane of facet %d", ec, f)
		}
		if !seg.HasOn(sp) {
			sp = sp.Antipode()
		}
		sv := m.NewSVertex(sp)
		m.SVertex(sv).Mark = sel.Apply(s.Mark, hf.Mark, inverted)
		if c.indexed {
			f1, f2 := s.Facet, f
			if inverted {
				f1, f2 = f, s.Facet
			}
			assoc.HashFacetPair(v, sv, c.canonical(f1), c.canonical(f2))
		}

		se1 := m.NewSHalfedgePair(v1, sv)
		var se2 spheremap.SHalfedgeID
		if nextEdge.IsNil() {
			se2 = m.NewSHalfedgePair(sv, v2)
		} else {
			se2 = m.NewSHalfedgePairTo(sv, nextEdge, spheremap.Before)
		}
		nextEdge = m.SHalfedge(se2).Twin()

		setSEdge(m, se1, s.Circle, sel.Apply(s.Mark, vol1, inverted))
		setSEdge(m, se2, s.Circle, sel.Apply(s.Mark, vol2, inverted))
		markOfRight[se1] = em.SFace(s.Face()).Mark
		if c.indexed {
			for _, h := range []spheremap.SHalfedgeID{se1, se2} {
				m.SHalfedge(h).Index = s.Index
				m.SHalfedge(m.SHalfedge(h).Twin()).Index = st.Index
			}
		}
	}

	fpc := kernel.CircleFromPlane(fp.Plane)
	for _, ec2 := range m.OutEdges(v1) {
		en := m.CyclicAdjSucc(ec2)
		mr := markOfRight[ec2]
		se := m.NewSHalfedgePairAt(m.SHalfedge(ec2).Twin(), m.SHalfedge(en).Twin(), spheremap.Before, spheremap.After)
		setSEdge(m, se, fpc, sel.Apply(mr, fp.Mark, inverted))
		if c.indexed {
			if idx, twinIdx, ok := c.firstFacetIndex(facesP); ok {
				m.SHalfedge(se).Index = twinIdx
				m.SHalfedge(m.SHalfedge(se).Twin()).Index = idx
			}
		}

		sf := m.NewSFace()
		m.SFace(sf).Mark = sel.Apply(mr, vol1, inverted)
		m.LinkAsFaceCycle(se, sf)
		sf = m.NewSFace()
		m.SFace(sf).Mark = sel.Apply(mr, vol2, inverted)
		m.LinkAsFaceCycle(m.SHalfedge(se).Twin(), sf)
	}
	return v
}

// canonical returns the non-twin facet of the pair f belongs to. Zero stays
// zero.
func (c *Constructor) canonical(f spheremap.FacetID) spheremap.FacetID {
	if f == 0 {
		return 0
	}
	return c.s.CanonicalFacet(f)
}
