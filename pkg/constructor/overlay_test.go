package constructor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/nef3/pkg/kernel"
	"github.com/chazu/nef3/pkg/snc"
	"github.com/chazu/nef3/pkg/spheremap"
)

// horizontalFacet creates the facet pair of z = height. The solid volume lies
// on the positive side, above the plane, and empty space below.
func horizontalFacet(s *snc.Structure, height int64, mark bool) (spheremap.FacetID, spheremap.FacetID) {
	in := s.NewVolume(true)
	out := s.NewVolume(false)
	return s.NewFacetPair(kernel.Pl(0, 0, 1, -height), mark, in, out)
}

func TestCreateEdgeFacetOverlayIsolated(t *testing.T) {
	c, s := newTestConstructor(t)
	e := lonely(s, kernel.Pt(0, 0, 0), sp(0, 0, 1), true, true)
	f, _ := horizontalFacet(s, 5, false)

	v := c.CreateEdgeFacetOverlay(e, f, kernel.Pt(0, 0, 5), Intersection, false, nil)
	vx := s.MustVertex(v)
	m := vx.SM
	requireSound(t, m)

	assert.False(t, vx.Mark)
	assert.Equal(t, []string{sp(0, 0, 1).Key(), sp(0, 0, -1).Key()}, pointKeys(m, m.SVertices()))
	assert.Equal(t, []bool{true, false}, faceMarks(m))
	require.True(t, m.HasLoop())
	l, _ := m.Loop()
	assert.False(t, m.SHalfloop(l).Mark)
	assert.Equal(t, sp(0, 0, 1).Key(), m.SHalfloop(l).Circle.Normal().Key())
	assert.Equal(t, 3, spheremap.Components(m))

	sv := m.SVertices()
	assert.True(t, m.SVertex(sv[0]).Mark, "up direction runs inside the solid side")
	assert.False(t, m.SVertex(sv[1]).Mark)
}

func TestCreateEdgeFacetOverlayIsolatedUniform(t *testing.T) {
	c, s := newTestConstructor(t)
	e := lonely(s, kernel.Pt(0, 0, 0), sp(0, 0, 1), true, true)
	f, _ := horizontalFacet(s, 5, true)

	v := c.CreateEdgeFacetOverlay(e, f, kernel.Pt(0, 0, 5), Union, false, nil)
	m := s.MustVertex(v).SM
	requireSound(t, m)
	assert.False(t, m.HasLoop())
	assert.Equal(t, 1, m.NumSFaces())
	assert.Equal(t, 2, m.NumSVertices())
	assert.True(t, s.MustVertex(v).Mark)
}

func TestCreateEdgeFacetOverlayInverted(t *testing.T) {
	tests := []struct {
		name     string
		inverted bool
		want     bool
	}{
		{"edge first", false, true},
		{"facet first", true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, s := newTestConstructor(t)
			e := lonely(s, kernel.Pt(0, 0, 0), sp(0, 0, 1), true, true)
			f, _ := horizontalFacet(s, 5, false)
			v := c.CreateEdgeFacetOverlay(e, f, kernel.Pt(0, 0, 5), Difference, tt.inverted, nil)
			assert.Equal(t, tt.want, s.MustVertex(v).Mark)
		})
	}
}

func TestCreateEdgeFacetOverlaySplitsLunes(t *testing.T) {
	c, s := newTestConstructor(t)
	a := tripod(c, kernel.Pt(0, 0, 0))
	up := s.MustVertex(a).SM.SVertices()[2]
	f, _ := horizontalFacet(s, 5, true)

	v := c.CreateEdgeFacetOverlay(snc.Halfedge{Vertex: a, SV: up}, f, kernel.Pt(0, 0, 5), Intersection, false, nil)
	m := s.MustVertex(v).SM
	requireSound(t, m)

	assert.Equal(t, 4, m.NumSVertices())
	assert.Equal(t, 6, m.NumSEdges())
	assert.Equal(t, 4, m.NumSFaces())
	for _, fc := range m.SFaces() {
		cycles := m.SFace(fc).Cycles()
		require.Len(t, cycles, 1)
		assert.Len(t, m.FaceCycle(cycles[0].SHalfedge), 3)
	}

	svs := m.SVertices()
	assert.ElementsMatch(t,
		[]string{sp(1, 0, 0).Key(), sp(0, 1, 0).Key()},
		pointKeys(m, svs[2:]))
	assert.True(t, m.SVertex(svs[0]).Mark)
	assert.False(t, m.SVertex(svs[1]).Mark)
	for _, sv := range svs[2:] {
		assert.True(t, m.SVertex(sv).Mark)
	}

	// Faces: only the upper half of the lune inside the tripod survives the
	// intersection.
	upKey, downKey := sp(0, 0, 1).Key(), sp(0, 0, -1).Key()
	marked := 0
	for _, fc := range m.SFaces() {
		cycle := m.FaceCycle(m.SFace(fc).Cycles()[0].SHalfedge)
		pts := make([]kernel.SpherePoint, len(cycle))
		for i, h := range cycle {
			pts[i] = m.SVertex(m.SHalfedge(h).Source()).Point
		}
		upper := false
		for _, q := range pts {
			if q.Key() == upKey {
				upper = true
			}
		}
		positive := kernel.SphericalOrientation(pts[0], pts[1], pts[2]) == kernel.Positive
		want := upper && positive
		assert.Equal(t, want, m.SFace(fc).Mark, "face %s (upper %v, positive %v)", fc, upper, positive)
		if m.SFace(fc).Mark {
			marked++
			assert.ElementsMatch(t,
				[]string{sp(1, 0, 0).Key(), sp(0, 1, 0).Key(), upKey},
				[]string{pts[0].Key(), pts[1].Key(), pts[2].Key()})
		}
	}
	assert.Equal(t, 1, marked)

	// Sphere edges: the split edges keep the edge mark above the facet and
	// lose it below; the facet circle is marked only across the tripod.
	inside := sp(1, 1, 0)
	for _, h := range m.SEdges() {
		e := m.SHalfedge(h)
		src := m.SVertex(e.Source()).Point
		tgt := m.SVertex(m.Target(h)).Point
		switch {
		case src.Key() == upKey || tgt.Key() == upKey:
			assert.True(t, e.Mark, "upper split edge %s", h)
		case src.Key() == downKey || tgt.Key() == downKey:
			assert.False(t, e.Mark, "lower split edge %s", h)
		default:
			small := kernel.NewSphereSegment(src, tgt, e.Circle).HasOn(inside)
			assert.Equal(t, small, e.Mark, "facet circle edge %s (small arc %v)", h, small)
			assert.Equal(t, e.Mark, m.SHalfedge(e.Twin()).Mark)
		}
	}
}

func TestCreateEdgeFacetOverlayIndexed(t *testing.T) {
	c, s := newTestConstructor(t, WithIndexed(true))
	a := tripod(c, kernel.Pt(0, 0, 0))
	am := s.MustVertex(a).SM
	_, edgeFacet := horizontalFacet(s, -1, true)
	for _, h := range am.SHalfedges() {
		am.SHalfedge(h).Facet = edgeFacet
	}
	f, _ := horizontalFacet(s, 5, true)

	pairs := &FacetPairs{}
	up := am.SVertices()[2]
	v := c.CreateEdgeFacetOverlay(snc.Halfedge{Vertex: a, SV: up}, f, kernel.Pt(0, 0, 5), Union, false, pairs)
	requireSound(t, s.MustVertex(v).SM)

	require.Len(t, pairs.Pairs, 2)
	for _, p := range pairs.Pairs {
		assert.Equal(t, v, p.Vertex)
		assert.Equal(t, s.CanonicalFacet(edgeFacet), p.F1)
		assert.Equal(t, f, p.F2)
	}

	inv := &FacetPairs{}
	c.CreateEdgeFacetOverlay(snc.Halfedge{Vertex: a, SV: up}, f, kernel.Pt(0, 0, 5), Union, true, inv)
	require.Len(t, inv.Pairs, 2)
	assert.Equal(t, f, inv.Pairs[0].F1)
	assert.Equal(t, s.CanonicalFacet(edgeFacet), inv.Pairs[0].F2)
}

func TestCreateEdgeFacetOverlayPreconditions(t *testing.T) {
	t.Run("indexed without association", func(t *testing.T) {
		c, s := newTestConstructor(t, WithIndexed(true))
		e := lonely(s, kernel.Pt(0, 0, 0), sp(0, 0, 1), true, true)
		f, _ := horizontalFacet(s, 5, false)
		requirePrecondition(t, func() {
			c.CreateEdgeFacetOverlay(e, f, kernel.Pt(0, 0, 5), Union, false, nil)
		})
	})
	t.Run("sphere edge in facet plane", func(t *testing.T) {
		c, s := newTestConstructor(t)
		a := tripod(c, kernel.Pt(0, 0, 0))
		up := s.MustVertex(a).SM.SVertices()[2]
		f, _ := s.NewFacetPair(kernel.Pl(0, 1, 0, 0), true, s.NewVolume(true), s.NewVolume(false))
		pe := requirePrecondition(t, func() {
			c.CreateEdgeFacetOverlay(snc.Halfedge{Vertex: a, SV: up}, f, kernel.Pt(0, 0, 5), Union, false, nil)
		})
		assert.Equal(t, "CreateEdgeFacetOverlay", pe.Op)
	})
}
