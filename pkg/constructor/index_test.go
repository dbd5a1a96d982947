package constructor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/nef3/pkg/kernel"
	"github.com/chazu/nef3/pkg/snc"
)

type indexFixture struct {
	a, b, frame snc.Halfedge
	cycle       []snc.SEdgeUse
	far         snc.SEdgeUse
}

func newIndexFixture(c *Constructor) indexFixture {
	s := c.Structure()
	var fx indexFixture
	fx.a = lonely(s, kernel.Pt(0, 0, 0), sp(1, 0, 0), true, false)
	fx.b = lonely(s, kernel.Pt(4, 0, 0), sp(-1, 0, 0), true, false)
	s.LinkEdge(fx.a, fx.b)
	fx.frame = lonely(s, kernel.NewPoint(kernel.Int(0), posR, posR), sp(1, 0, 0), true, false)

	v := tripod(c, kernel.Pt(0, 0, 7))
	es := s.MustVertex(v).SM.SHalfedges()
	fx.cycle = []snc.SEdgeUse{{Vertex: v, SE: es[0]}, {Vertex: v, SE: es[2]}}
	fx.far = snc.SEdgeUse{Vertex: v, SE: es[4]}

	f, _ := s.NewFacetPair(kernel.Pl(0, 0, 1, -7), true, 0, 0)
	s.AddFacetCycle(f, snc.FacetCycle{Edges: fx.cycle})
	g, _ := s.NewFacetPair(kernel.NewPlane(kernel.Int(0), kernel.Int(0), kernel.Int(1), negR), true, 0, 0)
	s.AddFacetCycle(g, snc.FacetCycle{Edges: []snc.SEdgeUse{fx.far}})
	return fx
}

func TestAssignIndices(t *testing.T) {
	c, s := newTestConstructor(t, WithIndexed(true))
	fx := newIndexFixture(c)
	c.AssignIndices()

	ia := s.SVertex(fx.a).Index
	assert.NotZero(t, ia)
	assert.Equal(t, ia, s.SVertex(fx.b).Index, "twins share an index")
	assert.Zero(t, s.SVertex(fx.frame).Index, "frame edges get no index")

	fi := s.SEdge(fx.cycle[0]).Index
	assert.NotZero(t, fi)
	assert.NotEqual(t, ia, fi)
	assert.Equal(t, fi, s.SEdge(fx.cycle[1]).Index, "one index per facet")
	assert.Zero(t, s.SEdge(fx.far).Index, "facets on the frame get no index")
}

func TestAssignIndicesLoopFacet(t *testing.T) {
	c, s := newTestConstructor(t, WithIndexed(true))
	v := c.CreateFromPlane(kernel.Pl(0, 1, 0, 0), kernel.Pt(0, 0, 0), true, true, false)
	l, ok := s.MustVertex(v).SM.Loop()
	require.True(t, ok)
	f, _ := s.NewFacetPair(kernel.Pl(0, 1, 0, 0), true, 0, 0)
	s.AddFacetCycle(f, snc.FacetCycle{Loop: &snc.SLoopUse{Vertex: v, SL: l}})

	c.AssignIndices()
	assert.NotZero(t, s.SLoop(snc.SLoopUse{Vertex: v, SL: l}).Index)
}

func TestAssignIndicesPlain(t *testing.T) {
	c, s := newTestConstructor(t)
	fx := newIndexFixture(c)
	c.AssignIndices()

	assert.Zero(t, s.SVertex(fx.a).Index)
	assert.Zero(t, s.SVertex(fx.b).Index)
	for _, u := range fx.cycle {
		assert.Zero(t, s.SEdge(u).Index)
	}
}
