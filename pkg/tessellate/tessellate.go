// Package tessellate walks a structure and produces triangle meshes using a
// preview backend. One mesh is produced per vertex.
package tessellate

import (
	"fmt"
	"math"
	"math/big"

	"github.com/chazu/nef3/pkg/infibox"
	"github.com/chazu/nef3/pkg/kernel"
	"github.com/chazu/nef3/pkg/snc"
	"github.com/chazu/nef3/pkg/spheremap"
)

// DefaultRadius is the distance of direction markers from their vertex.
const DefaultRadius = 1.0

// Marker sizes relative to the radius.
const (
	centerScale  = 0.2
	svertexScale = 0.12
	sedgeScale   = 0.06
	markedScale  = 1.5
)

// Options controls preview layout.
type Options struct {
	// Radius is the distance of direction markers from their vertex.
	// Non-positive values select DefaultRadius.
	Radius float64
	// Eval substitutes R in frame coordinates. Nil selects the
	// evaluation constant of the structure.
	Eval *big.Rat
}

// Tessellate walks the structure and produces one triangle mesh per live
// vertex using the provided previewer. The tessellator is read-only and
// never mutates the structure.
func Tessellate(s *snc.Structure, p kernel.Previewer, opts Options) ([]*kernel.Mesh, error) {
	if s == nil {
		return nil, nil
	}
	radius := opts.Radius
	if radius <= 0 {
		radius = DefaultRadius
	}
	eval := opts.Eval
	if eval == nil {
		points := make([]kernel.Point, 0, s.NumVertices())
		for _, v := range s.Vertices() {
			points = append(points, s.MustVertex(v).Point)
		}
		eval = infibox.EvaluationConstant(points)
	}

	var meshes []*kernel.Mesh
	for _, id := range s.Vertices() {
		v := s.MustVertex(id)
		center := floatPoint(v.Point, eval)
		markers := Markers(v, center, radius)

		mesh, err := p.Preview(label(id, v), center, markers)
		if err != nil {
			return nil, fmt.Errorf("tessellate: preview failed for vertex %s: %w", id, err)
		}
		meshes = append(meshes, mesh)
	}
	return meshes, nil
}

// Markers lays out the local map of v around center: a ball for the vertex,
// one per sphere vertex at center + radius*dir and one per sphere edge at
// the middle of its arc. Marked entities get larger balls.
func Markers(v *snc.Vertex, center [3]float64, radius float64) []kernel.Marker {
	size := func(scale float64, mark bool) float64 {
		if mark {
			scale *= markedScale
		}
		return scale * radius
	}
	at := func(d [3]float64) [3]float64 {
		return [3]float64{
			center[0] + radius*d[0],
			center[1] + radius*d[1],
			center[2] + radius*d[2],
		}
	}

	m := v.SM
	markers := []kernel.Marker{{Center: center, Size: size(centerScale, v.Mark)}}
	for _, sv := range m.SVertices() {
		x := m.SVertex(sv)
		markers = append(markers, kernel.Marker{Center: at(x.Point.Float64()), Size: size(svertexScale, x.Mark)})
	}
	for _, e := range m.SEdges() {
		se := m.SHalfedge(e)
		mid, ok := arcMiddle(m, e)
		if !ok {
			continue
		}
		markers = append(markers, kernel.Marker{Center: at(mid), Size: size(sedgeScale, se.Mark)})
	}
	return markers
}

// arcMiddle returns the unit direction halfway along sphere edge e. Edges
// between antipodal or equal directions have no unique middle.
func arcMiddle(m *spheremap.Map, e spheremap.SHalfedgeID) ([3]float64, bool) {
	a := m.SVertex(m.SHalfedge(e).Source()).Point.Float64()
	b := m.SVertex(m.Target(e)).Point.Float64()
	var mid [3]float64
	var n float64
	for i := range mid {
		mid[i] = a[i] + b[i]
		n += mid[i] * mid[i]
	}
	n = math.Sqrt(n)
	if n < 1e-9 || (a == b) {
		return mid, false
	}
	for i := range mid {
		mid[i] /= n
	}
	return mid, true
}

func floatPoint(p kernel.Point, eval *big.Rat) [3]float64 {
	var c [3]float64
	for i := range c {
		c[i], _ = p.Coord(i).Eval(eval).Float64()
	}
	return c
}

// label prefers the vertex label and falls back to the handle.
func label(id snc.VertexID, v *snc.Vertex) string {
	if v.Label != "" {
		return v.Label
	}
	return id.String()
}
