package snc

import (
	"fmt"

	"github.com/chazu/nef3/pkg/kernel"
	"github.com/chazu/nef3/pkg/spheremap"
)

// FacetCycle is one boundary cycle of a halffacet: either a sequence of
// sphere half-edge uses or a single half-loop.
type FacetCycle struct {
	Edges []SEdgeUse
	Loop  *SLoopUse
}

// Halffacet is one oriented side of a facet. Its incident volume lies on
// the positive side of Plane.
type Halffacet struct {
	Plane  kernel.Plane
	Mark   bool
	Twin   spheremap.FacetID
	Volume spheremap.VolumeID
	Cycles []FacetCycle
}

func (f *Halffacet) dropVertex(id VertexID) {
	kept := f.Cycles[:0]
	for _, c := range f.Cycles {
		if c.Loop != nil {
			if c.Loop.Vertex != id {
				kept = append(kept, c)
			}
			continue
		}
		edges := c.Edges[:0]
		for _, u := range c.Edges {
			if u.Vertex != id {
				edges = append(edges, u)
			}
		}
		if len(edges) > 0 {
			kept = append(kept, FacetCycle{Edges: edges})
		}
	}
	f.Cycles = kept
}

// Volume is a 3D cell of the polyhedron.
type Volume struct {
	Mark bool
}

// NewFacetPair creates the halffacets of plane h and its opposite. The
// first one gets volume in and the second volume out.
func (s *Structure) NewFacetPair(h kernel.Plane, mark bool, in, out spheremap.VolumeID) (spheremap.FacetID, spheremap.FacetID) {
	n := spheremap.FacetID(len(s.facets))
	f, t := n+1, n+2
	s.facets = append(s.facets,
		&Halffacet{Plane: h, Mark: mark, Twin: t, Volume: in},
		&Halffacet{Plane: h.Opposite(), Mark: mark, Twin: f, Volume: out},
	)
	return f, t
}

// Facet returns the halffacet addressed by id, or panics.
func (s *Structure) Facet(id spheremap.FacetID) *Halffacet {
	if id <= 0 || int(id) > len(s.facets) {
		panic(fmt.Sprintf("snc: invalid halffacet %d", id))
	}
	return s.facets[id-1]
}

// IsTwinFacet reports whether id is the second halffacet of its pair.
func (s *Structure) IsTwinFacet(id spheremap.FacetID) bool { return id%2 == 0 }

// CanonicalFacet returns the first halffacet of the pair id belongs to.
func (s *Structure) CanonicalFacet(id spheremap.FacetID) spheremap.FacetID {
	if s.IsTwinFacet(id) {
		return id - 1
	}
	return id
}

// Halffacets returns every halffacet id in creation order.
func (s *Structure) Halffacets() []spheremap.FacetID {
	out := make([]spheremap.FacetID, len(s.facets))
	for i := range out {
		out[i] = spheremap.FacetID(i + 1)
	}
	return out
}

// AddFacetCycle appends a boundary cycle to f.
func (s *Structure) AddFacetCycle(f spheremap.FacetID, c FacetCycle) {
	hf := s.Facet(f)
	hf.Cycles = append(hf.Cycles, c)
}

// NewVolume creates a volume.
func (s *Structure) NewVolume(mark bool) spheremap.VolumeID {
	s.volumes = append(s.volumes, &Volume{Mark: mark})
	return spheremap.VolumeID(len(s.volumes))
}

// Volume returns the volume addressed by id, or panics.
func (s *Structure) Volume(id spheremap.VolumeID) *Volume {
	if id <= 0 || int(id) > len(s.volumes) {
		panic(fmt.Sprintf("snc: invalid volume %d", id))
	}
	return s.volumes[id-1]
}

// NumVolumes returns the number of volumes.
func (s *Structure) NumVolumes() int { return len(s.volumes) }

// VolumeMark returns the mark of the volume id.
func (s *Structure) VolumeMark(id spheremap.VolumeID) bool { return s.Volume(id).Mark }

// SEdge returns the sphere half-edge behind u.
func (s *Structure) SEdge(u SEdgeUse) *spheremap.SHalfedge {
	return s.MustVertex(u.Vertex).SM.SHalfedge(u.SE)
}

// SLoop returns the sphere half-loop behind u.
func (s *Structure) SLoop(u SLoopUse) *spheremap.SHalfloop {
	return s.MustVertex(u.Vertex).SM.SHalfloop(u.SL)
}
