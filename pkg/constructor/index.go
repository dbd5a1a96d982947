package constructor

import (
	"go.uber.org/zap"

	"github.com/chazu/nef3/pkg/infibox"
)

// AssignIndices gives every 3D edge and every halffacet off the frame a
// fresh identity index. Both halfedges of an edge share one index; a
// halffacet's index goes to every sphere half-edge and half-loop of its
// cycles. It does nothing unless c is indexed.
func (c *Constructor) AssignIndices() {
	if !c.indexed {
		return
	}
	edges, facets := 0, 0
	for _, h := range c.s.Edges() {
		if infibox.IsEdgeOnInfibox(c.s.Source(h), c.s.Direction(h)) {
			continue
		}
		idx := c.s.NewIndex()
		c.s.SVertex(h).Index = idx
		if t, ok := c.s.EdgeTwin(h); ok {
			c.s.SVertex(t).Index = idx
		}
		edges++
	}
	for _, f := range c.s.Halffacets() {
		hf := c.s.Facet(f)
		if !hf.Plane.IsStandard() || len(hf.Cycles) == 0 {
			continue
		}
		idx := c.s.NewIndex()
		for _, fc := range hf.Cycles {
			for _, u := range fc.Edges {
				c.s.SEdge(u).Index = idx
			}
			if fc.Loop != nil {
				c.s.SLoop(*fc.Loop).Index = idx
			}
		}
		facets++
	}
	c.log.Debug("assigned indices", zap.Int("edges", edges), zap.Int("facets", facets))
}
