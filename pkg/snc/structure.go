package snc

import (
	"fmt"

	"github.com/chazu/nef3/pkg/kernel"
	"github.com/chazu/nef3/pkg/spheremap"
)

// VertexID is a generation-checked handle to a vertex. Deleting a vertex
// invalidates every handle to it.
type VertexID struct {
	i   int32
	gen uint32
}

// IsNil reports whether id is the zero handle.
func (id VertexID) IsNil() bool { return id.gen == 0 }

// Ordinal returns the creation position of the vertex.
func (id VertexID) Ordinal() int { return int(id.i) }

func (id VertexID) String() string {
	if id.IsNil() {
		return "v(nil)"
	}
	return fmt.Sprintf("v%d", id.i)
}

// Vertex is a point of the polyhedron together with its local map.
type Vertex struct {
	Point kernel.Point
	Mark  bool
	Label string
	SM    *spheremap.Map
}

type vertexSlot struct {
	v   *Vertex
	gen uint32
}

// Halfedge is a 3D halfedge: the sphere vertex SV of the local map of
// Vertex. Its direction is the point of SV.
type Halfedge struct {
	Vertex VertexID
	SV     spheremap.SVertexID
}

func (h Halfedge) String() string { return fmt.Sprintf("%s/%s", h.Vertex, h.SV) }

// SEdgeUse names a sphere half-edge of some vertex's local map. Facet
// cycles are sequences of uses.
type SEdgeUse struct {
	Vertex VertexID
	SE     spheremap.SHalfedgeID
}

// SLoopUse names a sphere half-loop of some vertex's local map.
type SLoopUse struct {
	Vertex VertexID
	SL     spheremap.SHalfloopID
}

// Structure is the object store. It is not safe for concurrent use.
type Structure struct {
	vertices  []vertexSlot
	facets    []*Halffacet
	volumes   []*Volume
	twins     map[Halfedge]Halfedge
	nameIndex map[string]VertexID
	nextIndex int
	gen       uint32

	Version uint64 // set by the evaluator that produced the structure
}

// New returns an empty structure.
func New() *Structure {
	return &Structure{
		twins:     make(map[Halfedge]Halfedge),
		nameIndex: make(map[string]VertexID),
		gen:       1,
	}
}

// ---------------------------------------------------------------------------
// Vertices
// ---------------------------------------------------------------------------

// NewVertex creates a vertex at p with an empty local map.
func (s *Structure) NewVertex(p kernel.Point, mark bool) VertexID {
	s.vertices = append(s.vertices, vertexSlot{
		v:   &Vertex{Point: p, Mark: mark, SM: spheremap.New()},
		gen: s.gen,
	})
	return VertexID{i: int32(len(s.vertices) - 1), gen: s.gen}
}

// Vertex returns the vertex addressed by id, or nil if id is stale.
func (s *Structure) Vertex(id VertexID) *Vertex {
	if !s.Alive(id) {
		return nil
	}
	return s.vertices[id.i].v
}

// MustVertex returns the vertex addressed by id, or panics.
func (s *Structure) MustVertex(id VertexID) *Vertex {
	v := s.Vertex(id)
	if v == nil {
		panic(fmt.Sprintf("snc: stale or invalid vertex handle %s", id))
	}
	return v
}

// Alive reports whether id addresses a live vertex.
func (s *Structure) Alive(id VertexID) bool {
	if id.IsNil() || id.i < 0 || int(id.i) >= len(s.vertices) {
		return false
	}
	slot := s.vertices[id.i]
	return slot.v != nil && slot.gen == id.gen
}

// DeleteVertex removes a vertex. Its local map is cleared first, then every
// edge twin and facet cycle use that refers to it is dropped.
func (s *Structure) DeleteVertex(id VertexID) {
	v := s.MustVertex(id)
	v.SM.Clear()
	for a, b := range s.twins {
		if a.Vertex == id || b.Vertex == id {
			delete(s.twins, a)
		}
	}
	for _, f := range s.facets {
		f.dropVertex(id)
	}
	if v.Label != "" && s.nameIndex[v.Label] == id {
		delete(s.nameIndex, v.Label)
	}
	s.vertices[id.i].v = nil
	s.vertices[id.i].gen++
}

// Vertices returns the live vertices in creation order.
func (s *Structure) Vertices() []VertexID {
	out := make([]VertexID, 0, len(s.vertices))
	for i, slot := range s.vertices {
		if slot.v != nil {
			out = append(out, VertexID{i: int32(i), gen: slot.gen})
		}
	}
	return out
}

// NumVertices returns the number of live vertices.
func (s *Structure) NumVertices() int {
	n := 0
	for _, slot := range s.vertices {
		if slot.v != nil {
			n++
		}
	}
	return n
}

// SetLabel names a vertex so it can be found with Lookup.
func (s *Structure) SetLabel(id VertexID, label string) {
	v := s.MustVertex(id)
	if v.Label != "" {
		delete(s.nameIndex, v.Label)
	}
	v.Label = label
	if label != "" {
		s.nameIndex[label] = id
	}
}

// Lookup returns the vertex with the given label.
func (s *Structure) Lookup(label string) (VertexID, bool) {
	id, ok := s.nameIndex[label]
	return id, ok
}

// ---------------------------------------------------------------------------
// 3D edges
// ---------------------------------------------------------------------------

// SVertex returns the sphere vertex behind h.
func (s *Structure) SVertex(h Halfedge) *spheremap.SVertex {
	return s.MustVertex(h.Vertex).SM.SVertex(h.SV)
}

// Source returns the point h starts at.
func (s *Structure) Source(h Halfedge) kernel.Point {
	return s.MustVertex(h.Vertex).Point
}

// Direction returns the direction of h.
func (s *Structure) Direction(h Halfedge) kernel.SpherePoint {
	return s.SVertex(h).Point
}

// LinkEdge makes a and b twins of each other.
func (s *Structure) LinkEdge(a, b Halfedge) {
	s.twins[a] = b
	s.twins[b] = a
}

// EdgeTwin returns the twin of h, if one was linked.
func (s *Structure) EdgeTwin(h Halfedge) (Halfedge, bool) {
	t, ok := s.twins[h]
	return t, ok
}

// Halfedges returns every 3D halfedge, vertex by vertex.
func (s *Structure) Halfedges() []Halfedge {
	var out []Halfedge
	for _, id := range s.Vertices() {
		for _, sv := range s.vertices[id.i].v.SM.SVertices() {
			out = append(out, Halfedge{Vertex: id, SV: sv})
		}
	}
	return out
}

// Edges returns one halfedge per 3D edge: the first of each linked pair in
// iteration order, and every unlinked halfedge.
func (s *Structure) Edges() []Halfedge {
	var out []Halfedge
	seen := make(map[Halfedge]bool)
	for _, h := range s.Halfedges() {
		if seen[h] {
			continue
		}
		out = append(out, h)
		if t, ok := s.twins[h]; ok {
			seen[t] = true
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Indices
// ---------------------------------------------------------------------------

// NewIndex returns a fresh identity tag. Tags start at 1; zero means none.
func (s *Structure) NewIndex() int {
	s.nextIndex++
	return s.nextIndex
}
