package constructor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/nef3/pkg/kernel"
	"github.com/chazu/nef3/pkg/snc"
	"github.com/chazu/nef3/pkg/spheremap"
)

func TestCreateExtendedBoxCorner(t *testing.T) {
	tests := []struct {
		name      string
		x, y, z   int64
		space     bool
		wantFaces []bool // marks of the face left of the first edge, then its twin's
		wantDirs  []string
	}{
		{"positive corner", 1, 1, 1, true, []bool{false, true},
			[]string{sp(-1, 0, 0).Key(), sp(0, -1, 0).Key(), sp(0, 0, -1).Key()}},
		{"negative corner", -1, -1, -1, true, []bool{true, false},
			[]string{sp(1, 0, 0).Key(), sp(0, 1, 0).Key(), sp(0, 0, 1).Key()}},
		{"no space", 1, -1, 1, false, []bool{false, false},
			[]string{sp(-1, 0, 0).Key(), sp(0, 1, 0).Key(), sp(0, 0, -1).Key()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, s := newTestConstructor(t)
			v := c.CreateExtendedBoxCorner(tt.x, tt.y, tt.z, tt.space, true)
			vx := s.MustVertex(v)
			m := vx.SM

			assert.True(t, vx.Mark)
			assert.True(t, vx.Point.Equal(kernel.NewPoint(kernel.Frame(0, tt.x), kernel.Frame(0, tt.y), kernel.Frame(0, tt.z))))
			assert.Equal(t, 3, m.NumSVertices())
			assert.Equal(t, 3, m.NumSEdges())
			assert.Equal(t, 2, m.NumSFaces())
			assert.Equal(t, tt.wantDirs, pointKeys(m, m.SVertices()))
			assert.Equal(t, tt.wantFaces, faceMarks(m))
			for _, e := range m.SHalfedges() {
				assert.True(t, m.SHalfedge(e).Mark, "sphere edge %s", e)
			}
			requireSound(t, m)
		})
	}
}

func TestCreateExtendedBoxCornerPreconditions(t *testing.T) {
	c, s := newTestConstructor(t)
	pe := requirePrecondition(t, func() { c.CreateExtendedBoxCorner(1, 2, 1, true, true) })
	assert.Equal(t, "CreateExtendedBoxCorner", pe.Op)
	requirePrecondition(t, func() { c.CreateExtendedBoxCorner(0, 0, 0, true, true) })
	requirePrecondition(t, func() { c.CreateExtendedBoxCorner(1, 1, 1, true, false) })
	assert.Equal(t, 0, s.NumVertices())
}

func TestAddOuterSEdgeCycle(t *testing.T) {
	c, s := newTestConstructor(t)
	dirs := []kernel.SpherePoint{sp(1, 0, 0), sp(0, 1, 0), sp(0, 0, 1)}

	v := s.NewVertex(kernel.Pt(0, 0, 0), false)
	c.AddOuterSEdgeCycle(v, dirs, false)
	m := s.MustVertex(v).SM
	assert.True(t, s.MustVertex(v).Mark)
	assert.Equal(t, 3, m.NumSVertices())
	assert.Equal(t, 3, m.NumSEdges())
	assert.Equal(t, []bool{false, true}, faceMarks(m))

	first := m.SHalfedges()[0]
	assert.Equal(t, m.SFaces()[1], m.SHalfedge(first).Face(), "cycle bounds the true face on its left")
	assert.Len(t, m.FaceCycle(first), 3)
	requireSound(t, m)

	w := s.NewVertex(kernel.Pt(1, 0, 0), false)
	c.AddOuterSEdgeCycle(w, dirs, true)
	mw := s.MustVertex(w).SM
	got := mw.SHalfedge(mw.SHalfedges()[0]).Circle
	assert.True(t, got.Equal(kernel.CircleThrough(dirs[0], dirs[1]).Opposite()))
	requireSound(t, mw)

	requirePrecondition(t, func() { c.AddOuterSEdgeCycle(w, nil, false) })
}

func TestAddInnerSEdgeCycle(t *testing.T) {
	outer := []kernel.SpherePoint{sp(1, 0, 0), sp(0, 1, 0), sp(0, 0, 1)}
	inner := []kernel.SpherePoint{sp(1, 1, 4), sp(4, 1, 1), sp(1, 4, 1)}

	t.Run("camera", func(t *testing.T) {
		c, s := newTestConstructor(t)
		v := s.NewVertex(kernel.Pt(0, 0, 0), false)
		c.AddOuterSEdgeCycle(v, outer, false)
		c.AddInnerSEdgeCycle(v, inner, false, true)
		m := s.MustVertex(v).SM

		assert.Equal(t, 6, m.NumSVertices())
		assert.Equal(t, 3, m.NumSFaces())
		assert.Equal(t, 2, spheremap.Components(m))
		hole := m.SHalfedges()[6]
		assert.Equal(t, m.SFaces()[1], m.SHalfedge(m.SHalfedge(hole).Twin()).Face())
		assert.False(t, m.SFace(m.SHalfedge(hole).Face()).Mark)
		requireSound(t, m)
	})
	t.Run("standalone", func(t *testing.T) {
		c, s := newTestConstructor(t)
		v := s.NewVertex(kernel.Pt(0, 0, 0), false)
		c.AddInnerSEdgeCycle(v, inner, false, false)
		m := s.MustVertex(v).SM
		assert.Equal(t, []bool{true, false}, faceMarks(m))
		requireSound(t, m)
	})
	t.Run("camera needs faces", func(t *testing.T) {
		c, s := newTestConstructor(t)
		v := s.NewVertex(kernel.Pt(0, 0, 0), false)
		requirePrecondition(t, func() { c.AddInnerSEdgeCycle(v, inner, false, true) })
		assert.Equal(t, 0, s.MustVertex(v).SM.NumSVertices())
	})
}

func TestCreateFromPlane(t *testing.T) {
	c, s := newTestConstructor(t)
	v := c.CreateFromPlane(kernel.Pl(0, 0, 1, 0), kernel.Pt(0, 0, 0), true, true, false)
	m := s.MustVertex(v).SM

	assert.True(t, s.MustVertex(v).Mark)
	assert.Equal(t, 0, m.NumSVertices())
	assert.Equal(t, 2, m.NumSHalfloops())
	assert.Equal(t, []bool{false, true}, faceMarks(m))
	l, ok := m.Loop()
	require.True(t, ok)
	assert.True(t, m.SHalfloop(l).Circle.Equal(kernel.NewSphereCircle(0, 0, 1)))
	assert.True(t, m.SHalfloop(l).Mark)
	assert.Equal(t, m.SFaces()[0], m.SHalfloop(l).Face())
	requireSound(t, m)

	requirePrecondition(t, func() { c.CreateFromPlane(kernel.Pl(0, 0, 0, 1), kernel.Pt(0, 0, 0), true, true, false) })
}

func TestCreateFromFacet(t *testing.T) {
	c, s := newTestConstructor(t, WithIndexed(true))
	vin := s.NewVolume(true)
	vout := s.NewVolume(false)
	f, tw := s.NewFacetPair(kernel.Pl(0, 0, 1, 0), true, vin, vout)

	other := c.CreateFromPlane(kernel.Pl(0, 0, -1, 0), kernel.Pt(5, 0, 0), true, false, true)
	om := s.MustVertex(other).SM
	ol, _ := om.Loop()
	om.SHalfloop(ol).Index = 11
	om.SHalfloop(om.SHalfloop(ol).Twin()).Index = 12
	s.AddFacetCycle(tw, snc.FacetCycle{Loop: &snc.SLoopUse{Vertex: other, SL: ol}})

	v := c.CreateFromFacet(f, kernel.Pt(1, 1, 0))
	m := s.MustVertex(v).SM
	assert.True(t, s.MustVertex(v).Mark)
	assert.Equal(t, []bool{true, false}, faceMarks(m), "positive side is the facet's own volume")

	l, _ := m.Loop()
	lt := m.SHalfloop(l).Twin()
	assert.Equal(t, tw, m.SHalfloop(l).IndexFacet)
	assert.Equal(t, f, m.SHalfloop(lt).IndexFacet)
	assert.Equal(t, 11, m.SHalfloop(l).Index)
	assert.Equal(t, 12, m.SHalfloop(lt).Index)
	requireSound(t, m)
}

func TestCreateFromEdge(t *testing.T) {
	t.Run("lunes", func(t *testing.T) {
		c, s := newTestConstructor(t, WithIndexed(true))
		a := tripod(c, kernel.Pt(0, 0, 0))
		am := s.MustVertex(a).SM
		up := am.SVertices()[2]
		am.SVertex(up).Index = 7
		for i, e := range am.SHalfedges() {
			am.SHalfedge(e).Facet = spheremap.FacetID(i + 1)
			am.SHalfedge(e).Index = 100 + i
		}

		v := c.CreateFromEdge(snc.Halfedge{Vertex: a, SV: up}, kernel.Pt(0, 0, 5))
		m := s.MustVertex(v).SM
		assert.Equal(t, []string{sp(0, 0, 1).Key(), sp(0, 0, -1).Key()}, pointKeys(m, m.SVertices()))
		assert.Equal(t, 2, m.NumSEdges())
		assert.ElementsMatch(t, []bool{true, false}, faceMarks(m))
		for _, sv := range m.SVertices() {
			assert.Equal(t, 7, m.SVertex(sv).Index)
		}

		src := am.OutEdges(up)
		dst := m.OutEdges(m.SVertices()[0])
		require.Len(t, dst, len(src))
		for i := range src {
			se, de := am.SHalfedge(src[i]), m.SHalfedge(dst[i])
			assert.True(t, de.Circle.Equal(se.Circle))
			assert.Equal(t, se.Facet, de.IndexFacet)
			assert.Equal(t, se.Index, de.Index)
			assert.Equal(t, am.SFace(se.Face()).Mark, m.SFace(de.Face()).Mark)
		}
		requireSound(t, m)
	})
	t.Run("isolated", func(t *testing.T) {
		c, s := newTestConstructor(t)
		e := lonely(s, kernel.Pt(0, 0, 0), sp(1, 2, 3), true, true)
		v := c.CreateFromEdge(e, kernel.Pt(1, 2, 3))
		m := s.MustVertex(v).SM

		assert.True(t, s.MustVertex(v).Mark)
		assert.Equal(t, 2, m.NumSVertices())
		assert.Equal(t, 0, m.NumSEdges())
		assert.Equal(t, []bool{true}, faceMarks(m))
		assert.Equal(t, 0, m.SVertex(m.SVertices()[0]).Index, "plain variant leaves indices alone")
		requireSound(t, m)
	})
}

func TestCreateFromPointOnInfiboxFacet(t *testing.T) {
	c, s := newTestConstructor(t)
	v := c.CreateFromPointOnInfiboxFacet(kernel.NewPoint(kernel.Int(3), kernel.Int(0), negR))
	m := s.MustVertex(v).SM

	assert.True(t, s.MustVertex(v).Mark)
	l, ok := m.Loop()
	require.True(t, ok)
	assert.True(t, m.SHalfloop(l).Circle.Equal(kernel.NewSphereCircle(0, 0, -1)))
	assert.Equal(t, []bool{false, true}, faceMarks(m), "the box interior is marked")
	requireSound(t, m)

	requirePrecondition(t, func() { c.CreateFromPointOnInfiboxFacet(kernel.Pt(1, 2, 3)) })
	requirePrecondition(t, func() { c.CreateFromPointOnInfiboxFacet(kernel.NewPoint(kernel.Int(0), posR, posR)) })
}

func TestCreateFromPointOnInfiboxEdge(t *testing.T) {
	c, s := newTestConstructor(t)
	v := c.CreateFromPointOnInfiboxEdge(kernel.NewPoint(kernel.Int(5), posR, posR))
	m := s.MustVertex(v).SM

	assert.Equal(t, []string{sp(1, 0, 0).Key(), sp(-1, 0, 0).Key()}, pointKeys(m, m.SVertices()))
	assert.Equal(t, 2, m.NumSEdges())
	assert.Equal(t, []bool{false, true}, faceMarks(m))
	for _, e := range m.SHalfedges() {
		assert.True(t, m.SHalfedge(e).Mark)
	}
	first := m.SHalfedges()[0]
	assert.True(t, m.SHalfedge(first).Circle.Equal(kernel.NewSphereCircle(0, 1, 0)))
	assert.True(t, m.SHalfedge(m.SHalfedge(first).Next()).Circle.Equal(kernel.NewSphereCircle(0, 0, 1)))
	requireSound(t, m)

	requirePrecondition(t, func() { c.CreateFromPointOnInfiboxEdge(kernel.NewPoint(posR, posR, posR)) })
	requirePrecondition(t, func() { c.CreateFromPointOnInfiboxEdge(kernel.NewPoint(kernel.Int(1), kernel.Int(1), posR)) })
}

func TestCreateFromPointOnInfiboxVertex(t *testing.T) {
	c, s := newTestConstructor(t)
	v := c.CreateFromPointOnInfiboxVertex(kernel.NewPoint(negR, posR, negR))
	m := s.MustVertex(v).SM
	assert.Equal(t, []string{sp(1, 0, 0).Key(), sp(0, -1, 0).Key(), sp(0, 0, 1).Key()}, pointKeys(m, m.SVertices()))
	assert.ElementsMatch(t, []bool{true, false}, faceMarks(m))
	requireSound(t, m)

	requirePrecondition(t, func() { c.CreateFromPointOnInfiboxVertex(kernel.NewPoint(kernel.Int(0), posR, negR)) })
}

func TestCreateForInfiboxOverlay(t *testing.T) {
	top := kernel.NewPoint(kernel.Int(0), kernel.Int(0), posR)

	t.Run("lunes", func(t *testing.T) {
		c, s := newTestConstructor(t)
		in := s.NewVertex(top, true)
		c.AddOuterSEdgeCycle(in, []kernel.SpherePoint{sp(0, 0, -1), sp(1, 0, 0), sp(0, 1, 0)}, false)

		v := c.CreateForInfiboxOverlay(in)
		m := s.MustVertex(v).SM
		assert.True(t, s.MustVertex(v).Point.Equal(top))
		assert.Equal(t, []string{sp(0, 0, -1).Key(), sp(0, 0, 1).Key()}, pointKeys(m, m.SVertices()))
		assert.Equal(t, 2, m.NumSEdges())
		assert.ElementsMatch(t, []bool{true, false}, faceMarks(m))
		requireSound(t, m)
	})
	t.Run("isolated", func(t *testing.T) {
		c, s := newTestConstructor(t)
		e := lonely(s, top, sp(0, 0, -1), true, true)
		v := c.CreateForInfiboxOverlay(e.Vertex)
		m := s.MustVertex(v).SM
		assert.Equal(t, 2, m.NumSVertices())
		assert.Equal(t, []bool{true}, faceMarks(m))
		requireSound(t, m)
	})
	t.Run("all along the box", func(t *testing.T) {
		c, s := newTestConstructor(t)
		corner := c.CreateExtendedBoxCorner(1, 1, 1, true, true)
		requirePrecondition(t, func() { c.CreateForInfiboxOverlay(corner) })
		assert.Equal(t, 1, s.NumVertices())
	})
}
