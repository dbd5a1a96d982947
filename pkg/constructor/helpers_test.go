package constructor

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/chazu/nef3/pkg/kernel"
	"github.com/chazu/nef3/pkg/snc"
	"github.com/chazu/nef3/pkg/spheremap"
)

var (
	posR = kernel.Frame(0, 1)
	negR = kernel.Frame(0, -1)
)

func newTestConstructor(t *testing.T, opts ...Option) (*Constructor, *snc.Structure) {
	t.Helper()
	s := snc.New()
	opts = append([]Option{WithLogger(zaptest.NewLogger(t))}, opts...)
	return New(s, opts...), s
}

// newObservedConstructor returns a constructor whose debug log is recorded.
func newObservedConstructor(t *testing.T, opts ...Option) (*Constructor, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	opts = append([]Option{WithLogger(zap.New(core))}, opts...)
	return New(snc.New(), opts...), logs
}

// requireSound fails unless m passes every structural and geometric check.
func requireSound(t *testing.T, m *spheremap.Map) {
	t.Helper()
	res := spheremap.ValidateAll(m)
	require.Empty(t, res.Errors, "structural errors")
	require.Empty(t, res.Warnings, "geometric warnings")
}

func catch(f func()) (err error) {
	defer Recover(&err)
	f()
	return nil
}

func requirePrecondition(t *testing.T, f func()) *PreconditionError {
	t.Helper()
	err := catch(f)
	require.Error(t, err)
	var pe *PreconditionError
	require.ErrorAs(t, err, &pe)
	return pe
}

func sp(x, y, z int64) kernel.SpherePoint { return kernel.NewSpherePoint(x, y, z) }

func pointKeys(m *spheremap.Map, svs []spheremap.SVertexID) []string {
	keys := make([]string, len(svs))
	for i, v := range svs {
		keys[i] = m.SVertex(v).Point.Key()
	}
	return keys
}

func faceMarks(m *spheremap.Map) []bool {
	var marks []bool
	for _, f := range m.SFaces() {
		marks = append(marks, m.SFace(f).Mark)
	}
	return marks
}

// tripod creates a vertex at p whose local map is the outer cycle through
// +x, +y and +z. The face inside the cycle is marked true.
func tripod(c *Constructor, p kernel.Point) snc.VertexID {
	v := c.s.NewVertex(p, false)
	c.AddOuterSEdgeCycle(v, []kernel.SpherePoint{sp(1, 0, 0), sp(0, 1, 0), sp(0, 0, 1)}, false)
	return v
}

// lonely creates a vertex at p with a single isolated direction d inside a
// face marked faceMark.
func lonely(s *snc.Structure, p kernel.Point, d kernel.SpherePoint, mark, faceMark bool) snc.Halfedge {
	v := s.NewVertex(p, mark)
	m := s.MustVertex(v).SM
	sv := m.NewSVertex(d)
	m.SVertex(sv).Mark = mark
	f := m.NewSFace()
	m.SFace(f).Mark = faceMark
	m.LinkAsIsolatedVertex(sv, f)
	return snc.Halfedge{Vertex: v, SV: sv}
}
