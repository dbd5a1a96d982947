package constructor

import (
	"github.com/chazu/nef3/pkg/snc"
	"github.com/chazu/nef3/pkg/spheremap"
)

// CloneSM creates a vertex with the point and mark of vin and an isomorphic
// copy of its local map. All geometry, marks and facet and volume links are
// copied; indices are copied by the indexed variant. Boundary objects keep
// their order.
func (c *Constructor) CloneSM(vin snc.VertexID) snc.VertexID {
	in := c.s.MustVertex(vin)
	e := in.SM

	v := c.s.NewVertex(in.Point, in.Mark)
	d := c.sm(v)

	vm := make(map[spheremap.SVertexID]spheremap.SVertexID, e.NumSVertices())
	em := make(map[spheremap.SHalfedgeID]spheremap.SHalfedgeID, e.NumSHalfedges())
	fm := make(map[spheremap.SFaceID]spheremap.SFaceID, e.NumSFaces())
	lm := make(map[spheremap.SHalfloopID]spheremap.SHalfloopID, e.NumSHalfloops())

	// First pass: create every entity and record the correspondence.
	for _, sv := range e.SVertices() {
		vm[sv] = d.NewSVertex(e.SVertex(sv).Point)
	}
	for _, se := range e.SEdges() {
		ne := d.NewSHalfedgePairUnlinked()
		em[se] = ne
		em[e.SHalfedge(se).Twin()] = d.SHalfedge(ne).Twin()
	}
	for _, sf := range e.SFaces() {
		fm[sf] = d.NewSFace()
	}
	if l, ok := e.Loop(); ok {
		nl := d.NewSHalfloopPair()
		lm[l] = nl
		lm[e.SHalfloop(l).Twin()] = d.SHalfloop(nl).Twin()
	}

	// Second pass: copy attributes and links through the correspondence.
	for _, sv := range e.SVertices() {
		src := e.SVertex(sv)
		dst := d.SVertex(vm[sv])
		dst.Mark = src.Mark
		if c.indexed {
			dst.Index = src.Index
		}
		if out := src.OutEdge(); !out.IsNil() {
			d.SetFirstOutEdge(vm[sv], em[out])
		}
		if f := src.Face(); !f.IsNil() {
			d.SetVertexFace(vm[sv], fm[f])
		}
	}
	for _, se := range e.SHalfedges() {
		src := e.SHalfedge(se)
		ne := em[se]
		dst := d.SHalfedge(ne)
		dst.Circle = src.Circle
		dst.Mark = src.Mark
		dst.Facet = src.Facet
		dst.IndexFacet = src.IndexFacet
		if c.indexed {
			dst.Index = src.Index
		}
		d.SetSource(ne, vm[src.Source()])
		d.SetPrev(ne, em[src.Prev()])
		d.SetNext(ne, em[src.Next()])
		if f := src.Face(); !f.IsNil() {
			d.SetFace(ne, fm[f])
		}
	}
	for l, nl := range lm {
		src := e.SHalfloop(l)
		dst := d.SHalfloop(nl)
		dst.Circle = src.Circle
		dst.Mark = src.Mark
		dst.Facet = src.Facet
		dst.IndexFacet = src.IndexFacet
		if c.indexed {
			dst.Index = src.Index
		}
		if f := src.Face(); !f.IsNil() {
			d.SetLoopFace(nl, fm[f])
		}
	}
	for _, sf := range e.SFaces() {
		src := e.SFace(sf)
		nf := fm[sf]
		d.SFace(nf).Mark = src.Mark
		d.SFace(nf).Volume = src.Volume
		for _, cy := range src.Cycles() {
			switch cy.Kind {
			case spheremap.CycleSHalfedge:
				d.StoreBoundaryObject(nf, spheremap.Cycle{Kind: cy.Kind, SHalfedge: em[cy.SHalfedge]})
			case spheremap.CycleSVertex:
				d.StoreBoundaryObject(nf, spheremap.Cycle{Kind: cy.Kind, SVertex: vm[cy.SVertex]})
			case spheremap.CycleSHalfloop:
				d.StoreBoundaryObject(nf, spheremap.Cycle{Kind: cy.Kind, SHalfloop: lm[cy.SHalfloop]})
			}
		}
	}
	return v
}
