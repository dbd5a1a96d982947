// Package sdfx implements kernel.Previewer using the
// github.com/deadsy/sdfx SDF-based CAD library.
package sdfx

import (
	"errors"
	"fmt"

	"github.com/chazu/nef3/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ kernel.Previewer = (*Renderer)(nil)

// DefaultMeshCells controls marching cubes tessellation resolution.
const DefaultMeshCells = 64

// ErrNoMarkers is returned when there is nothing to preview.
var ErrNoMarkers = errors.New("sdfx: no markers")

// Renderer implements kernel.Previewer using sdfx.
type Renderer struct {
	cells int
}

// New returns a renderer that meshes with the given marching cubes
// resolution. Non-positive values select DefaultMeshCells.
func New(cells int) *Renderer {
	if cells <= 0 {
		cells = DefaultMeshCells
	}
	return &Renderer{cells: cells}
}

// Cells returns the marching cubes resolution.
func (r *Renderer) Cells() int { return r.cells }

// ball creates a sphere of the given radius centered at c.
func ball(m kernel.Marker) (sdf.SDF3, error) {
	s, err := sdf.Sphere3D(m.Size)
	if err != nil {
		return nil, fmt.Errorf("sdfx.Sphere3D: %w", err)
	}
	t := sdf.Translate3d(v3.Vec{X: m.Center[0], Y: m.Center[1], Z: m.Center[2]})
	return sdf.Transform3D(s, t), nil
}

// Solid unions one ball per marker.
func Solid(markers []kernel.Marker) (sdf.SDF3, error) {
	if len(markers) == 0 {
		return nil, ErrNoMarkers
	}
	parts := make([]sdf.SDF3, 0, len(markers))
	for i, m := range markers {
		b, err := ball(m)
		if err != nil {
			return nil, fmt.Errorf("marker %d: %w", i, err)
		}
		parts = append(parts, b)
	}
	return sdf.Union3D(parts...), nil
}

// Preview converts the union of markers to a triangle mesh using marching
// cubes.
func (r *Renderer) Preview(label string, center [3]float64, markers []kernel.Marker) (*kernel.Mesh, error) {
	s, err := Solid(markers)
	if err != nil {
		return nil, err
	}

	renderer := render.NewMarchingCubesUniform(r.cells)
	triangles := render.ToTriangles(s, renderer)

	numTri := len(triangles)
	numVerts := numTri * 3

	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		// Compute face normal.
		n := tri.Normal()
		nx := float32(n.X)
		ny := float32(n.Y)
		nz := float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
		Label:    label,
		Center:   center,
	}, nil
}
