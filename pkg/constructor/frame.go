package constructor

import (
	"math/big"
	"sort"

	"go.uber.org/zap"

	"github.com/chazu/nef3/pkg/infibox"
	"github.com/chazu/nef3/pkg/kernel"
	"github.com/chazu/nef3/pkg/snc"
	"github.com/chazu/nef3/pkg/spheremap"
)

var (
	big1   = big.NewRat(1, 1)
	frameR = kernel.Frame(0, 1)
)

// boxSigns are the sign pairs of the two on-box coordinates of the points
// FindPointsOfBoxWithPlane tries along one axis.
var boxSigns = [4][2]int64{{1, 1}, {-1, 1}, {-1, -1}, {1, -1}}

// FindPointsOfBoxWithPlane returns the points where the standard plane h
// crosses the edges of the infimaximal box, ordered around the circle the
// plane cuts out of the box.
func (c *Constructor) FindPointsOfBoxWithPlane(h kernel.Plane) []kernel.Point {
	const op = "FindPointsOfBoxWithPlane"
	if !h.IsStandard() {
		precondition(op, "plane %s depends on R", h)
	}
	orth := [3]*big.Rat{h.A.Constant(), h.B.Constant(), h.C.Constant()}
	d := h.D.Constant()

	addCorners := 0
	for orth[addCorners].Sign() == 0 {
		if addCorners == 2 {
			precondition(op, "degenerate plane %s", h)
		}
		addCorners++
	}

	var points []kernel.Point
	for dir := 0; dir < 3; dir++ {
		o := orth[dir]
		if o.Sign() == 0 {
			continue
		}
		o1, o2 := orth[(dir+1)%3], orth[(dir+2)%3]
		for _, s := range boxSigns {
			// o*x + o1*s1*R + o2*s2*R + d = 0
			cr := new(big.Rat).Mul(big.NewRat(s[0], 1), o1)
			cr.Add(cr, new(big.Rat).Mul(big.NewRat(s[1], 1), o2))
			cr.Neg(cr)
			x := kernel.NewNumber(new(big.Rat).Neg(d), cr).QuoRat(o)

			cmp := x.Abs().Cmp(frameR)
			if cmp > 0 || (cmp == 0 && dir != addCorners) {
				continue
			}
			var coords [3]kernel.Number
			coords[dir] = x
			coords[(dir+1)%3] = kernel.Frame(0, s[0])
			coords[(dir+2)%3] = kernel.Frame(0, s[1])
			points = append(points, kernel.NewPoint(coords[0], coords[1], coords[2]))
		}
	}

	var abs [3]*big.Rat
	for i, o := range orth {
		abs[i] = new(big.Rat).Abs(o)
	}
	max := 0
	if abs[1].Cmp(abs[0]) > 0 {
		max = 1
	}
	if abs[2].Cmp(abs[max]) > 0 {
		max = 2
	}
	sort.SliceStable(points, func(i, j int) bool { return circleLess(points[i], points[j], max) })

	c.log.Debug("box points of plane",
		zap.Stringer("plane", h),
		zap.Int("points", len(points)),
	)
	return points
}

// circleLess orders points clockwise in the coordinate plane orthogonal to
// axis max, starting with the lower half.
func circleLess(p, q kernel.Point, max int) bool {
	i, j := 0, 1
	switch max {
	case 0:
		i, j = 1, 2
	case 1:
		i, j = 0, 2
	}
	x0, y0 := p.Coord(i), p.Coord(j)
	x1, y1 := q.Coord(i), q.Coord(j)

	upper0 := y0.Sign() != kernel.Negative
	upper1 := y1.Sign() != kernel.Negative
	if upper0 != upper1 {
		return !upper0
	}
	if cmp := x0.Cmp(x1); cmp != 0 {
		if upper0 {
			return cmp < 0
		}
		return cmp > 0
	}
	if x0.Sign() == kernel.Positive {
		return y0.Cmp(y1) > 0
	}
	return y0.Cmp(y1) < 0
}

// FindFacetInfiboxIntersections returns the points that lie within the
// bounding box of some edge of the outer cycle of facet f. Each point is
// returned at most once, in the order the edges are visited.
func (c *Constructor) FindFacetInfiboxIntersections(f spheremap.FacetID, points []kernel.Point) []kernel.Point {
	hf := c.s.Facet(f)
	if len(hf.Cycles) == 0 || len(hf.Cycles[0].Edges) == 0 {
		precondition("FindFacetInfiboxIntersections", "facet %d has no sphere edge cycle", f)
	}
	rest := append([]kernel.Point(nil), points...)
	var res []kernel.Point
	for _, u := range hf.Cycles[0].Edges {
		se := c.s.SEdge(u)
		src := c.s.MustVertex(u.Vertex).Point
		twin, ok := c.s.EdgeTwin(snc.Halfedge{Vertex: u.Vertex, SV: se.Source()})
		if !ok {
			continue
		}
		trg := c.s.MustVertex(twin.Vertex).Point

		kept := rest[:0]
		for _, p := range rest {
			if between(src, p, trg) {
				res = append(res, p)
				continue
			}
			kept = append(kept, p)
		}
		rest = kept
	}
	return res
}

// between reports whether p lies in the axis-parallel box spanned by a and b.
func between(a, p, b kernel.Point) bool {
	for i := 0; i < 3; i++ {
		lo := a.Coord(i).Cmp(p.Coord(i))
		hi := p.Coord(i).Cmp(b.Coord(i))
		if !(lo <= 0 && hi <= 0) && !(lo >= 0 && hi >= 0) {
			return false
		}
	}
	return true
}

// CreateVerticesOnInfibox creates a frame vertex for every point of the
// circle points, which runs along the box where plane h cuts it. The
// neighbours of each point on the circle give the directions of its two
// frame edges inside the plane.
func (c *Constructor) CreateVerticesOnInfibox(h kernel.Plane, points []kernel.Point, bnd, inside, outside bool) []snc.VertexID {
	orth, min, max := infibox.ComputeMinMax(h)
	degenerate := orth[min].Sign() == 0 &&
		orth[(min+1)%3].Cmp(orth[(min+2)%3]) == 0 &&
		h.D.IsZero()

	n := len(points)
	res := make([]snc.VertexID, 0, n)
	for i, p := range points {
		prev := points[(i+n-1)%n]
		next := points[(i+1)%n]
		sp1 := prev.Sub(p).Direction()
		sp2 := next.Sub(p).Direction()

		var v snc.VertexID
		switch {
		case degenerate:
			v = c.createDegenerateCornerFramePoint(p, sp1, sp2, min, max, h, bnd, inside, outside)
		case p.X.Abs().Equal(p.Y.Abs()) && p.Z.Abs().Equal(p.Y.Abs()):
			v = c.createCornerFramePoint(p, sp1, sp2, max, h, bnd, inside, outside)
		default:
			v = c.createFramePoint(p, sp1, sp2, h, bnd, inside, outside)
		}
		res = append(res, v)
	}
	return res
}

// CreateVerticesOfBoxWithPlane creates the frame of the half-space below
// the standard plane h: the frame points of the plane on the box and the
// box corners not on the plane, each corner marked by the side of h it
// lies on.
func (c *Constructor) CreateVerticesOfBoxWithPlane(h kernel.Plane, bnd bool) []snc.VertexID {
	points := c.FindPointsOfBoxWithPlane(h)
	res := c.CreateVerticesOnInfibox(h, points, bnd, true, false)

	for _, z := range []int64{1, -1} {
		for _, y := range []int64{1, -1} {
			for _, x := range []int64{1, -1} {
				sum := h.A.MulRat(big.NewRat(x, 1)).
					Add(h.B.MulRat(big.NewRat(y, 1))).
					Add(h.C.MulRat(big.NewRat(z, 1)))
				if h.D.IsZero() && sum.IsZero() {
					continue
				}
				space := sum.Sign() == kernel.Negative || (sum.IsZero() && h.D.Sign() == kernel.Negative)
				res = append(res, c.CreateExtendedBoxCorner(x, y, z, space, true))
			}
		}
	}
	c.log.Debug("box with plane",
		zap.Stringer("plane", h),
		zap.Int("frame points", len(points)),
		zap.Int("vertices", len(res)),
	)
	return res
}

func (c *Constructor) createFramePoint(p kernel.Point, sp1, sp2 kernel.SpherePoint, h kernel.Plane, bnd, inside, outside bool) snc.VertexID {
	const op = "createFramePoint"
	ax, ay, az := p.X.Abs(), p.Y.Abs(), p.Z.Abs()
	if h.D.IsZero() && ay.Equal(ax) && az.Equal(ax) {
		precondition(op, "%s is a corner of a plane through the origin", p)
	}
	max := 0
	if ax.Cmp(ay) > 0 {
		max = 1
	}
	if ax.Cmp(az) > 0 {
		max = 2
	}

	var sp [4]kernel.SpherePoint
	sp[2] = unitAxis(max)
	sp[1] = sp1
	sp[0] = sp2
	if kernel.SphericalOrientation(sp[0], sp[1], sp[2]) == kernel.Negative {
		sp[3] = sp[2]
		sp[2] = sp[3].Antipode()
	} else {
		sp[3] = sp[2].Antipode()
	}

	swtch := c.planeSide(op, h, sp[2]) == kernel.Negative
	return c.createSMOnInfibox(p, sp[:], bnd, swtch == inside, swtch == outside)
}

func (c *Constructor) createCornerFramePoint(p kernel.Point, sp1, sp2 kernel.SpherePoint, max int, h kernel.Plane, bnd, inside, outside bool) snc.VertexID {
	const op = "createCornerFramePoint"
	if !h.D.IsZero() {
		precondition(op, "plane %s does not pass through the origin", h)
	}
	a, b, cc := h.A, h.B, h.C
	if a.Abs().Equal(b.Abs()) || b.Abs().Equal(cc.Abs()) || a.Abs().Equal(cc.Abs()) {
		precondition(op, "plane %s has equal normal magnitudes", h)
	}
	if !a.Add(b).Equal(cc) && !a.Add(cc).Equal(b) && !b.Add(cc).Equal(a) {
		precondition(op, "plane %s does not pass through a box corner", h)
	}

	vp := framePointAxes(p)
	var sp [5]kernel.SpherePoint
	switch max {
	case 0:
		sp[3], sp[2], sp[4] = vp[1], vp[2], vp[0]
	case 1:
		sp[3], sp[2], sp[4] = vp[0], vp[2], vp[1]
	case 2:
		sp[3], sp[2], sp[4] = vp[0], vp[1], vp[2]
	default:
		precondition(op, "invalid axis %d", max)
	}
	if kernel.SphericalOrientation(sp[3], sp1, sp2) == kernel.Positive {
		sp[0], sp[1] = sp1, sp2
	} else {
		sp[0], sp[1] = sp2, sp1
	}
	if kernel.SphericalOrientation(sp[2], sp[3], sp[0]) == kernel.Negative {
		sp[2], sp[3] = sp[3], sp[2]
	}

	swtch := c.planeSide(op, h, sp[4]) == kernel.Positive
	return c.createSMOnInfibox(p, sp[:], bnd, swtch == inside, swtch == outside)
}

func (c *Constructor) createDegenerateCornerFramePoint(p kernel.Point, sp1, sp2 kernel.SpherePoint, min, max int, h kernel.Plane, bnd, inside, outside bool) snc.VertexID {
	const op = "createDegenerateCornerFramePoint"
	if !h.D.IsZero() {
		precondition(op, "plane %s does not pass through the origin", h)
	}
	a, b, cc := h.A.Abs(), h.B.Abs(), h.C.Abs()
	if !(a.Equal(b) && cc.IsZero()) && !(b.Equal(cc) && a.IsZero()) && !(a.Equal(cc) && b.IsZero()) {
		precondition(op, "plane %s is not diagonal to two axes", h)
	}

	vp := framePointAxes(p)
	var sp [4]kernel.SpherePoint
	switch max {
	case 0:
		sp[2] = vp[0]
	case 1:
		sp[2] = vp[1]
	default:
		precondition(op, "invalid max axis %d", max)
	}
	switch min + max {
	case 1:
		sp[3] = vp[2]
	case 2:
		sp[3] = vp[1]
	default:
		precondition(op, "invalid axes %d, %d", min, max)
	}
	if kernel.SphericalOrientation(sp[2], sp1, sp2) == kernel.Positive {
		sp[0], sp[1] = sp1, sp2
	} else {
		sp[0], sp[1] = sp2, sp1
	}

	swtch := c.planeSide(op, h, sp[2]) == kernel.Negative
	return c.createSMOnInfibox(p, sp[:], bnd, swtch == inside, swtch == outside)
}

// createSMOnInfibox creates a frame vertex at center from the directions sp:
// sp[0] and sp[1] lie in the cutting plane, the others run along the box.
// The first len(sp)-1 directions form a cycle and the last one is joined to
// sp[0] and sp[1], which splits the sphere into three faces.
func (c *Constructor) createSMOnInfibox(center kernel.Point, sp []kernel.SpherePoint, bnd, fmark0, fmark1 bool) snc.VertexID {
	size := len(sp)
	if size < 4 {
		precondition("createSMOnInfibox", "need at least 4 directions, got %d", size)
	}
	v := c.s.NewVertex(center, bnd)
	m := c.sm(v)

	sv := make([]spheremap.SVertexID, size)
	for i := range sv {
		sv[i] = m.NewSVertex(sp[i])
		m.SVertex(sv[i]).Mark = i >= 2 || bnd
	}

	she := make([]spheremap.SHalfedgeID, size+1)
	for si := 0; si < size-1; si++ {
		to := (si + 1) % (size - 1)
		she[si] = m.NewSHalfedgePair(sv[si], sv[to])
		setSEdge(m, she[si], kernel.CircleThrough(sp[si], sp[to]), si != 0 || bnd)
	}
	she[size-1] = m.NewSHalfedgePairFrom(she[0], sv[size-1], spheremap.Before)
	she[size] = m.NewSHalfedgePairAt(
		m.SHalfedge(she[size-1]).Twin(),
		m.SHalfedge(she[0]).Twin(),
		spheremap.After, spheremap.After,
	)
	setSEdge(m, she[size-1], kernel.CircleThrough(sp[0], sp[size-1]), true)
	setSEdge(m, she[size], kernel.CircleThrough(sp[size-1], sp[1]), true)

	var sf [3]spheremap.SFaceID
	for i := range sf {
		sf[i] = m.NewSFace()
	}
	m.SFace(sf[0]).Mark = fmark0
	m.SFace(sf[1]).Mark = fmark1
	m.SFace(sf[2]).Mark = false
	m.LinkAsFaceCycle(she[0], sf[0])
	m.LinkAsFaceCycle(m.SHalfedge(she[0]).Twin(), sf[1])
	m.LinkAsFaceCycle(m.SHalfedge(she[1]).Twin(), sf[2])
	return v
}

// planeSide returns the sign of the normal of h in direction d.
func (c *Constructor) planeSide(op string, h kernel.Plane, d kernel.SpherePoint) kernel.Sign {
	delta := h.Normal().Dot(d.Vector()).Sign()
	if delta == kernel.Zero {
		precondition(op, "direction %s lies in plane %s", d, h)
	}
	return delta
}

func unitAxis(i int) kernel.SpherePoint {
	var u [3]int64
	u[i] = 1
	return kernel.NewSpherePoint(u[0], u[1], u[2])
}

// framePointAxes returns the directions from the frame point p back into
// the box along each axis.
func framePointAxes(p kernel.Point) [3]kernel.SpherePoint {
	var axes [3]kernel.SpherePoint
	for i := range axes {
		var u [3]int64
		u[i] = int64(-p.Coord(i).Coeff(1).Sign())
		axes[i] = kernel.NewSpherePoint(u[0], u[1], u[2])
	}
	return axes
}
