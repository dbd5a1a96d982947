package spheremap

import (
	"fmt"
	"sync/atomic"

	"github.com/chazu/nef3/pkg/kernel"
)

// FacetID identifies the 3D halffacet a sphere half-edge or half-loop lies
// in. The zero value means none.
type FacetID int32

// VolumeID identifies the 3D volume a sphere face represents locally. The
// zero value means none.
type VolumeID int32

// epochs hands out a distinct epoch to every map and every Clear.
var epochs atomic.Uint32

func nextEpoch() uint32 { return epochs.Add(1) }

// SVertexID is a handle to a sphere vertex.
type SVertexID struct {
	i     int32
	epoch uint32
}

// SHalfedgeID is a handle to a sphere half-edge.
type SHalfedgeID struct {
	i     int32
	epoch uint32
}

// SFaceID is a handle to a sphere face.
type SFaceID struct {
	i     int32
	epoch uint32
}

// SHalfloopID is a handle to a sphere half-loop.
type SHalfloopID struct {
	i     int32
	epoch uint32
}

// IsNil reports whether h is the zero handle.
func (h SVertexID) IsNil() bool { return h.epoch == 0 }

// IsNil reports whether h is the zero handle.
func (h SHalfedgeID) IsNil() bool { return h.epoch == 0 }

// IsNil reports whether h is the zero handle.
func (h SFaceID) IsNil() bool { return h.epoch == 0 }

// IsNil reports whether h is the zero handle.
func (h SHalfloopID) IsNil() bool { return h.epoch == 0 }

// Ordinal returns the creation position of h within its map.
func (h SVertexID) Ordinal() int { return int(h.i) }

// Ordinal returns the creation position of h within its map.
func (h SHalfedgeID) Ordinal() int { return int(h.i) }

// Ordinal returns the creation position of h within its map.
func (h SFaceID) Ordinal() int { return int(h.i) }

// Ordinal returns the creation position of h within its map.
func (h SHalfloopID) Ordinal() int { return int(h.i) }

func (h SVertexID) String() string {
	if h.IsNil() {
		return "sv(nil)"
	}
	return fmt.Sprintf("sv%d", h.i)
}

func (h SHalfedgeID) String() string {
	if h.IsNil() {
		return "se(nil)"
	}
	return fmt.Sprintf("se%d", h.i)
}

func (h SFaceID) String() string {
	if h.IsNil() {
		return "sf(nil)"
	}
	return fmt.Sprintf("sf%d", h.i)
}

func (h SHalfloopID) String() string {
	if h.IsNil() {
		return "sl(nil)"
	}
	return fmt.Sprintf("sl%d", h.i)
}

// SVertex is a direction of the local map.
type SVertex struct {
	Point kernel.SpherePoint
	Mark  bool
	Index int

	out  SHalfedgeID
	face SFaceID
}

// OutEdge returns the first out-edge, nil when the vertex is isolated.
func (v *SVertex) OutEdge() SHalfedgeID { return v.out }

// Face returns the face of an isolated vertex.
func (v *SVertex) Face() SFaceID { return v.face }

// SHalfedge is a directed arc of a great circle. Its face lies on the
// positive side of Circle.
type SHalfedge struct {
	Circle     kernel.SphereCircle
	Mark       bool
	Index      int
	Facet      FacetID
	IndexFacet FacetID

	source           SVertexID
	twin, next, prev SHalfedgeID
	face             SFaceID
}

// Source returns the sphere vertex e starts at.
func (e *SHalfedge) Source() SVertexID { return e.source }

// Twin returns the oppositely directed half-edge.
func (e *SHalfedge) Twin() SHalfedgeID { return e.twin }

// Next returns the successor of e in its face cycle.
func (e *SHalfedge) Next() SHalfedgeID { return e.next }

// Prev returns the predecessor of e in its face cycle.
func (e *SHalfedge) Prev() SHalfedgeID { return e.prev }

// Face returns the face on the left of e.
func (e *SHalfedge) Face() SFaceID { return e.face }

// SFace is a region of the sphere.
type SFace struct {
	Mark   bool
	Volume VolumeID

	cycles []Cycle
}

// Cycles returns the boundary objects of f, one per face cycle.
func (f *SFace) Cycles() []Cycle { return append([]Cycle(nil), f.cycles...) }

// SHalfloop is one orientation of a great circle without vertices.
type SHalfloop struct {
	Circle     kernel.SphereCircle
	Mark       bool
	Index      int
	Facet      FacetID
	IndexFacet FacetID

	twin SHalfloopID
	face SFaceID
}

// Twin returns the oppositely oriented half-loop.
func (l *SHalfloop) Twin() SHalfloopID { return l.twin }

// Face returns the face on the left of l.
func (l *SHalfloop) Face() SFaceID { return l.face }

// CycleKind tells which entity a boundary object refers to.
type CycleKind int

const (
	CycleSHalfedge CycleKind = iota // a closed half-edge cycle
	CycleSVertex                    // an isolated vertex
	CycleSHalfloop                  // a half-loop
)

func (k CycleKind) String() string {
	switch k {
	case CycleSHalfedge:
		return "shalfedge"
	case CycleSVertex:
		return "svertex"
	case CycleSHalfloop:
		return "shalfloop"
	default:
		return fmt.Sprintf("CycleKind(%d)", int(k))
	}
}

// Cycle is a boundary object of a face: one representative of a face cycle.
type Cycle struct {
	Kind      CycleKind
	SHalfedge SHalfedgeID
	SVertex   SVertexID
	SHalfloop SHalfloopID
}

// Map is the local map of one vertex.
type Map struct {
	epoch      uint32
	svertices  []*SVertex
	shalfedges []*SHalfedge
	sfaces     []*SFace
	shalfloops []*SHalfloop
}

// New returns an empty local map.
func New() *Map {
	return &Map{epoch: nextEpoch()}
}

// Clear removes every entity. Handles obtained before are invalidated.
func (m *Map) Clear() {
	m.epoch = nextEpoch()
	m.svertices = nil
	m.shalfedges = nil
	m.sfaces = nil
	m.shalfloops = nil
}

func (m *Map) check(kind string, i int32, epoch uint32, n int) {
	if epoch != m.epoch || i < 0 || int(i) >= n {
		panic(fmt.Sprintf("spheremap: invalid %s handle %d (epoch %d, map epoch %d)", kind, i, epoch, m.epoch))
	}
}

// SVertex returns the sphere vertex addressed by h.
func (m *Map) SVertex(h SVertexID) *SVertex {
	m.check("svertex", h.i, h.epoch, len(m.svertices))
	return m.svertices[h.i]
}

// SHalfedge returns the sphere half-edge addressed by h.
func (m *Map) SHalfedge(h SHalfedgeID) *SHalfedge {
	m.check("shalfedge", h.i, h.epoch, len(m.shalfedges))
	return m.shalfedges[h.i]
}

// SFace returns the sphere face addressed by h.
func (m *Map) SFace(h SFaceID) *SFace {
	m.check("sface", h.i, h.epoch, len(m.sfaces))
	return m.sfaces[h.i]
}

// SHalfloop returns the sphere half-loop addressed by h.
func (m *Map) SHalfloop(h SHalfloopID) *SHalfloop {
	m.check("shalfloop", h.i, h.epoch, len(m.shalfloops))
	return m.shalfloops[h.i]
}

// Owns reports whether h is a live handle of m.
func (m *Map) Owns(h SHalfedgeID) bool {
	return h.epoch == m.epoch && h.i >= 0 && int(h.i) < len(m.shalfedges)
}

// ---------------------------------------------------------------------------
// Counting and iteration
// ---------------------------------------------------------------------------

// NumSVertices returns the number of sphere vertices.
func (m *Map) NumSVertices() int { return len(m.svertices) }

// NumSHalfedges returns the number of sphere half-edges (twice the edges).
func (m *Map) NumSHalfedges() int { return len(m.shalfedges) }

// NumSEdges returns the number of sphere half-edge pairs.
func (m *Map) NumSEdges() int { return len(m.shalfedges) / 2 }

// NumSFaces returns the number of sphere faces.
func (m *Map) NumSFaces() int { return len(m.sfaces) }

// NumSHalfloops returns 2 when the map has a half-loop pair, else 0.
func (m *Map) NumSHalfloops() int { return len(m.shalfloops) }

// IsEmpty reports whether the map has no entities at all.
func (m *Map) IsEmpty() bool {
	return len(m.svertices) == 0 && len(m.shalfedges) == 0 && len(m.sfaces) == 0 && len(m.shalfloops) == 0
}

// SVertices returns all sphere vertices in creation order.
func (m *Map) SVertices() []SVertexID {
	out := make([]SVertexID, len(m.svertices))
	for i := range out {
		out[i] = SVertexID{i: int32(i), epoch: m.epoch}
	}
	return out
}

// SHalfedges returns all sphere half-edges in creation order.
func (m *Map) SHalfedges() []SHalfedgeID {
	out := make([]SHalfedgeID, len(m.shalfedges))
	for i := range out {
		out[i] = SHalfedgeID{i: int32(i), epoch: m.epoch}
	}
	return out
}

// SEdges returns one half-edge of every pair, the one created first.
func (m *Map) SEdges() []SHalfedgeID {
	out := make([]SHalfedgeID, 0, len(m.shalfedges)/2)
	for i := 0; i < len(m.shalfedges); i += 2 {
		out = append(out, SHalfedgeID{i: int32(i), epoch: m.epoch})
	}
	return out
}

// SFaces returns all sphere faces in creation order.
func (m *Map) SFaces() []SFaceID {
	out := make([]SFaceID, len(m.sfaces))
	for i := range out {
		out[i] = SFaceID{i: int32(i), epoch: m.epoch}
	}
	return out
}

// SHalfloops returns both half-loops, or nil.
func (m *Map) SHalfloops() []SHalfloopID {
	out := make([]SHalfloopID, len(m.shalfloops))
	for i := range out {
		out[i] = SHalfloopID{i: int32(i), epoch: m.epoch}
	}
	return out
}

// Loop returns the first half-loop of the map.
func (m *Map) Loop() (SHalfloopID, bool) {
	if len(m.shalfloops) == 0 {
		return SHalfloopID{}, false
	}
	return SHalfloopID{i: 0, epoch: m.epoch}, true
}

// HasLoop reports whether the map carries a half-loop pair.
func (m *Map) HasLoop() bool { return len(m.shalfloops) > 0 }

// OutEdges returns the out-edges of v starting at its first out-edge, in
// successor order.
func (m *Map) OutEdges(v SVertexID) []SHalfedgeID {
	first := m.SVertex(v).out
	if first.IsNil() {
		return nil
	}
	var out []SHalfedgeID
	e := first
	for {
		out = append(out, e)
		e = m.CyclicAdjSucc(e)
		if e == first {
			return out
		}
		if len(out) > len(m.shalfedges) {
			panic(fmt.Sprintf("spheremap: out-edge circulation around %s does not close", v))
		}
	}
}

// FaceCycle returns the half-edges of the cycle through e, following next.
func (m *Map) FaceCycle(e SHalfedgeID) []SHalfedgeID {
	var out []SHalfedgeID
	h := e
	for {
		out = append(out, h)
		h = m.SHalfedge(h).next
		if h == e {
			return out
		}
		if h.IsNil() || len(out) > len(m.shalfedges) {
			panic(fmt.Sprintf("spheremap: face cycle through %s does not close", e))
		}
	}
}
