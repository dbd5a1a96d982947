package spheremap

import (
	"fmt"

	"github.com/chazu/nef3/pkg/kernel"
)

// Position selects where a new half-edge enters the adjacency list of an
// existing one.
type Position int

const (
	Before Position = -1
	After  Position = 1
)

// ---------------------------------------------------------------------------
// Entity creation
// ---------------------------------------------------------------------------

// NewSVertex creates an isolated sphere vertex at p.
func (m *Map) NewSVertex(p kernel.SpherePoint) SVertexID {
	m.svertices = append(m.svertices, &SVertex{Point: p})
	return SVertexID{i: int32(len(m.svertices) - 1), epoch: m.epoch}
}

// NewSFace creates a face without boundary.
func (m *Map) NewSFace() SFaceID {
	m.sfaces = append(m.sfaces, &SFace{})
	return SFaceID{i: int32(len(m.sfaces) - 1), epoch: m.epoch}
}

// NewSHalfloopPair creates the half-loop pair of the map and returns the
// first half-loop. A map holds at most one pair.
func (m *Map) NewSHalfloopPair() SHalfloopID {
	if len(m.shalfloops) != 0 {
		panic("spheremap: map already has a half-loop pair")
	}
	l := SHalfloopID{i: 0, epoch: m.epoch}
	lt := SHalfloopID{i: 1, epoch: m.epoch}
	m.shalfloops = append(m.shalfloops, &SHalfloop{twin: lt}, &SHalfloop{twin: l})
	return l
}

// NewSHalfedgePairUnlinked creates a twin pair with no source, face or
// cycle links and returns the first half-edge.
func (m *Map) NewSHalfedgePairUnlinked() SHalfedgeID {
	n := int32(len(m.shalfedges))
	e := SHalfedgeID{i: n, epoch: m.epoch}
	et := SHalfedgeID{i: n + 1, epoch: m.epoch}
	m.shalfedges = append(m.shalfedges, &SHalfedge{twin: et}, &SHalfedge{twin: e})
	return e
}

// NewSHalfedgePair creates the pair (v1,v2), appending the new half-edges
// to the adjacency lists of v1 and v2. It returns the half-edge leaving v1.
func (m *Map) NewSHalfedgePair(v1, v2 SVertexID) SHalfedgeID {
	e1 := m.NewSHalfedgePairUnlinked()
	e2 := m.SHalfedge(e1).twin
	m.appendAtSource(v1, e1)
	m.appendAtSource(v2, e2)
	return e1
}

// NewSHalfedgePairAt creates a pair from source(e1) to source(e2), inserting
// each new half-edge before or after ei in the adjacency list of source(ei).
// It returns the half-edge leaving source(e1).
func (m *Map) NewSHalfedgePairAt(e1, e2 SHalfedgeID, pos1, pos2 Position) SHalfedgeID {
	er := m.NewSHalfedgePairUnlinked()
	ero := m.SHalfedge(er).twin
	m.insertAt(e1, er, pos1)
	m.insertAt(e2, ero, pos2)
	return er
}

// NewSHalfedgePairFrom creates a pair from source(e) to v. The half-edge
// leaving source(e) is inserted before or after e; its twin is appended to
// the adjacency list of v. It returns the half-edge leaving source(e).
func (m *Map) NewSHalfedgePairFrom(e SHalfedgeID, v SVertexID, pos Position) SHalfedgeID {
	en := m.NewSHalfedgePairUnlinked()
	eo := m.SHalfedge(en).twin
	m.insertAt(e, en, pos)
	m.appendAtSource(v, eo)
	return en
}

// NewSHalfedgePairTo creates a pair from v to source(e). The half-edge
// arriving at source(e) leaves it before or after e; the one leaving v is
// appended to the adjacency list of v. It returns the half-edge leaving v.
func (m *Map) NewSHalfedgePairTo(v SVertexID, e SHalfedgeID, pos Position) SHalfedgeID {
	return m.SHalfedge(m.NewSHalfedgePairFrom(e, v, pos)).twin
}

func (m *Map) appendAtSource(v SVertexID, e SHalfedgeID) {
	if m.IsIsolated(v) {
		m.closeTipAtSource(e, v)
		return
	}
	first := m.SVertex(v).out
	m.setAdjacencyAtSourceBetween(m.CyclicAdjPred(first), e, first)
}

func (m *Map) insertAt(e, en SHalfedgeID, pos Position) {
	if pos < 0 {
		src := m.SHalfedge(e).source
		m.setAdjacencyAtSourceBetween(m.CyclicAdjPred(e), en, e)
		if m.SVertex(src).out == e {
			m.SVertex(src).out = en
		}
		return
	}
	m.setAdjacencyAtSourceBetween(e, en, m.CyclicAdjSucc(e))
}

// setAdjacencyAtSourceBetween makes en an out-edge of source(e) placed
// between e and eNext.
func (m *Map) setAdjacencyAtSourceBetween(e, en, eNext SHalfedgeID) {
	m.SHalfedge(en).source = m.SHalfedge(e).source
	m.LinkPrevNext(m.SHalfedge(eNext).twin, en)
	m.LinkPrevNext(m.SHalfedge(en).twin, e)
}

// closeTipAtSource makes e the only out-edge of v.
func (m *Map) closeTipAtSource(e SHalfedgeID, v SVertexID) {
	m.SHalfedge(e).source = v
	m.LinkPrevNext(m.SHalfedge(e).twin, e)
	m.SVertex(v).out = e
}

// ---------------------------------------------------------------------------
// Adjacency
// ---------------------------------------------------------------------------

// IsIsolated reports whether v has no out-edges.
func (m *Map) IsIsolated(v SVertexID) bool { return m.SVertex(v).out.IsNil() }

// CyclicAdjSucc returns the out-edge following e around its source.
func (m *Map) CyclicAdjSucc(e SHalfedgeID) SHalfedgeID {
	return m.SHalfedge(m.SHalfedge(e).prev).twin
}

// CyclicAdjPred returns the out-edge preceding e around its source.
func (m *Map) CyclicAdjPred(e SHalfedgeID) SHalfedgeID {
	return m.SHalfedge(m.SHalfedge(e).twin).next
}

// Target returns the sphere vertex e ends at.
func (m *Map) Target(e SHalfedgeID) SVertexID {
	return m.SHalfedge(m.SHalfedge(e).twin).source
}

// FirstOutEdge returns the first out-edge of v.
func (m *Map) FirstOutEdge(v SVertexID) SHalfedgeID { return m.SVertex(v).out }

// SetFirstOutEdge makes e the first out-edge of v.
func (m *Map) SetFirstOutEdge(v SVertexID, e SHalfedgeID) { m.SVertex(v).out = e }

// LinkPrevNext sets next(p) = n and prev(n) = p.
func (m *Map) LinkPrevNext(p, n SHalfedgeID) {
	m.SHalfedge(p).next = n
	m.SHalfedge(n).prev = p
}

// SetNext sets next(e) = n only.
func (m *Map) SetNext(e, n SHalfedgeID) { m.SHalfedge(e).next = n }

// SetPrev sets prev(e) = p only.
func (m *Map) SetPrev(e, p SHalfedgeID) { m.SHalfedge(e).prev = p }

// SetSource sets the source of e.
func (m *Map) SetSource(e SHalfedgeID, v SVertexID) { m.SHalfedge(e).source = v }

// SetFace sets the face of e without touching boundary objects.
func (m *Map) SetFace(e SHalfedgeID, f SFaceID) { m.SHalfedge(e).face = f }

// SetVertexFace sets the face of an isolated vertex.
func (m *Map) SetVertexFace(v SVertexID, f SFaceID) { m.SVertex(v).face = f }

// SetLoopFace sets the face of a half-loop.
func (m *Map) SetLoopFace(l SHalfloopID, f SFaceID) { m.SHalfloop(l).face = f }

// ---------------------------------------------------------------------------
// Face linking
// ---------------------------------------------------------------------------

// LinkAsFaceCycle assigns f to every half-edge of the cycle through e and
// records e as a boundary object of f.
func (m *Map) LinkAsFaceCycle(e SHalfedgeID, f SFaceID) {
	for _, h := range m.FaceCycle(e) {
		m.SHalfedge(h).face = f
	}
	m.StoreBoundaryObject(f, Cycle{Kind: CycleSHalfedge, SHalfedge: e})
}

// LinkAsLoop assigns f to l and records l as a boundary object of f.
func (m *Map) LinkAsLoop(l SHalfloopID, f SFaceID) {
	m.SHalfloop(l).face = f
	m.StoreBoundaryObject(f, Cycle{Kind: CycleSHalfloop, SHalfloop: l})
}

// LinkAsIsolatedVertex places v in f and records it as a boundary object.
func (m *Map) LinkAsIsolatedVertex(v SVertexID, f SFaceID) {
	if !m.IsIsolated(v) {
		panic(fmt.Sprintf("spheremap: %s is not isolated", v))
	}
	m.SVertex(v).face = f
	m.StoreBoundaryObject(f, Cycle{Kind: CycleSVertex, SVertex: v})
}

// StoreBoundaryObject appends c to the boundary objects of f.
func (m *Map) StoreBoundaryObject(f SFaceID, c Cycle) {
	sf := m.SFace(f)
	sf.cycles = append(sf.cycles, c)
}

// CycleFace returns the face a boundary object is linked to.
func (m *Map) CycleFace(c Cycle) SFaceID {
	switch c.Kind {
	case CycleSHalfedge:
		return m.SHalfedge(c.SHalfedge).face
	case CycleSVertex:
		return m.SVertex(c.SVertex).face
	case CycleSHalfloop:
		return m.SHalfloop(c.SHalfloop).face
	}
	return SFaceID{}
}
