package kernel

// Mesh is a triangle mesh used to preview local maps.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32  `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32  `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32   `json:"indices"`  // [i0,i1,i2, ...] triangles
	Label    string     `json:"label"`    // vertex the preview was built for
	Center   [3]float64 `json:"center"`   // preview origin
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Bounds returns the axis-aligned bounds of the mesh vertices.
func (m *Mesh) Bounds() (lo, hi [3]float32) {
	for i := 0; i+2 < len(m.Vertices); i += 3 {
		for j := 0; j < 3; j++ {
			v := m.Vertices[i+j]
			if i == 0 || v < lo[j] {
				lo[j] = v
			}
			if i == 0 || v > hi[j] {
				hi[j] = v
			}
		}
	}
	return lo, hi
}

// Marker is a preview primitive: a ball of radius Size around Center.
type Marker struct {
	Center [3]float64
	Size   float64
}

// Previewer turns markers into a triangle mesh. Implementations approximate;
// the exact structures never depend on them.
type Previewer interface {
	Preview(label string, center [3]float64, markers []Marker) (*Mesh, error)
}
