package constructor

import (
	"go.uber.org/zap"

	"github.com/chazu/nef3/pkg/snc"
	"github.com/chazu/nef3/pkg/spheremap"
)

// Constructor creates vertices with populated local maps in a structure.
// It is not safe for concurrent use.
type Constructor struct {
	s       *snc.Structure
	log     *zap.Logger
	indexed bool
}

// Option configures a Constructor.
type Option func(*Constructor)

// WithLogger sets the logger used for construction traces.
func WithLogger(l *zap.Logger) Option {
	return func(c *Constructor) {
		if l != nil {
			c.log = l
		}
	}
}

// WithIndexed selects the indexed variant, which propagates identity
// indices to every synthesized sphere vertex, edge and loop.
func WithIndexed(on bool) Option {
	return func(c *Constructor) { c.indexed = on }
}

// New returns a constructor working on s.
func New(s *snc.Structure, opts ...Option) *Constructor {
	c := &Constructor{s: s, log: zap.NewNop()}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Structure returns the structure c works on.
func (c *Constructor) Structure() *snc.Structure { return c.s }

// Indexed reports whether c runs the indexed variant.
func (c *Constructor) Indexed() bool { return c.indexed }

func (c *Constructor) sm(v snc.VertexID) *spheremap.Map { return c.s.MustVertex(v).SM }

func (c *Constructor) volumeMark(id spheremap.VolumeID) bool {
	if id == 0 {
		return false
	}
	return c.s.VolumeMark(id)
}

// firstFacetIndex returns the indices of the first sphere half-edge or
// half-loop of the first cycle of f and of its twin. It reports false when f
// has no cycle.
func (c *Constructor) firstFacetIndex(f spheremap.FacetID) (index, twinIndex int, ok bool) {
	hf := c.s.Facet(f)
	if len(hf.Cycles) == 0 {
		return 0, 0, false
	}
	fc := hf.Cycles[0]
	if fc.Loop != nil {
		m := c.sm(fc.Loop.Vertex)
		l := m.SHalfloop(fc.Loop.SL)
		return l.Index, m.SHalfloop(l.Twin()).Index, true
	}
	if len(fc.Edges) == 0 {
		return 0, 0, false
	}
	u := fc.Edges[0]
	m := c.sm(u.Vertex)
	e := m.SHalfedge(u.SE)
	return e.Index, m.SHalfedge(e.Twin()).Index, true
}
