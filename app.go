package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/chazu/nef3/pkg/config"
	"github.com/chazu/nef3/pkg/engine"
	"github.com/chazu/nef3/pkg/kernel"
	"github.com/chazu/nef3/pkg/kernel/sdfx"
	"github.com/chazu/nef3/pkg/snc"
	"github.com/chazu/nef3/pkg/spheremap"
	"github.com/chazu/nef3/pkg/tessellate"
)

// colorPalette is a default palette used to assign distinct colors to
// vertex previews.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App evaluates nef3 scripts into JSON-serializable results.
type App struct {
	engine  *engine.Engine
	preview kernel.Previewer
	radius  float64
	log     *zap.Logger
}

// VertexData summarizes one vertex and its local map.
type VertexData struct {
	Name      string   `json:"name"`
	Point     string   `json:"point"`
	Mark      bool     `json:"mark"`
	SVertices int      `json:"svertices"`
	SEdges    int      `json:"sedges"`
	SFaces    int      `json:"sfaces"`
	Loop      bool     `json:"loop"`
	Valid     bool     `json:"valid"`
	Problems  []string `json:"problems,omitempty"`
}

// PairData is a facet pair recorded by an indexed overlay.
type PairData struct {
	Vertex  string `json:"vertex"`
	SVertex string `json:"svertex"`
	Facet1  int32  `json:"facet1"`
	Facet2  int32  `json:"facet2"`
}

// MeshData is the JSON-serializable mesh format written by previews.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	Label    string    `json:"label"`
	Color    string    `json:"color"`
}

// EvalErrorData is a JSON-serializable eval error.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result of evaluating a script.
type EvalResult struct {
	Vertices []VertexData    `json:"vertices"`
	Pairs    []PairData      `json:"pairs"`
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

// Valid reports whether evaluation succeeded and every local map passed
// validation.
func (r EvalResult) Valid() bool {
	if len(r.Errors) > 0 {
		return false
	}
	for _, v := range r.Vertices {
		if !v.Valid {
			return false
		}
	}
	return true
}

// NewApp creates a new App with default configuration and no logging.
func NewApp() *App {
	return NewAppWithConfig(config.Default(), zap.NewNop())
}

// NewAppWithConfig creates an App whose engine and previewer follow cfg.
func NewAppWithConfig(cfg *config.Config, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}
	return &App{
		engine: engine.NewEngine(
			engine.WithLogger(log),
			engine.WithIndexed(cfg.Constructor.Indexed),
			engine.WithTimeout(cfg.Engine.Timeout),
		),
		preview: sdfx.New(cfg.Preview.Cells),
		radius:  cfg.Preview.Radius,
		log:     log,
	}
}

func newResult() EvalResult {
	return EvalResult{
		Vertices: []VertexData{},
		Pairs:    []PairData{},
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}
}

// Evaluate takes Lisp source and returns vertex summaries + errors.
func (a *App) Evaluate(source string) EvalResult {
	result, _ := a.evaluate(source)
	return result
}

// Preview is Evaluate followed by one preview mesh per vertex.
func (a *App) Preview(source string) EvalResult {
	result, s := a.evaluate(source)
	if s == nil {
		return result
	}

	meshes, err := tessellate.Tessellate(s, a.preview, tessellate.Options{Radius: a.radius})
	if err != nil {
		a.log.Error("tessellate failed", zap.Error(err))
		result.Errors = append(result.Errors, EvalErrorData{
			Message: "tessellation failed: " + err.Error(),
		})
		return result
	}

	for i, m := range meshes {
		result.Meshes = append(result.Meshes, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			Label:    m.Label,
			Color:    colorPalette[i%len(colorPalette)],
		})
	}
	return result
}

func (a *App) evaluate(source string) (EvalResult, *snc.Structure) {
	result := newResult()

	// Step 1: Evaluate the Lisp source into a structure.
	res, evalErrs, err := a.engine.EvaluateResult(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		a.log.Error("evaluate fatal error", zap.Error(err))
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result, nil
	}

	// Step 2: Convert eval errors to the result format.
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result, nil
	}
	if res == nil || res.Structure == nil {
		return result, nil
	}

	// Step 3: Summarize and validate every local map.
	s := res.Structure
	for _, id := range s.Vertices() {
		v := s.MustVertex(id)
		vd, warnings := summarize(id, v)
		result.Vertices = append(result.Vertices, vd)
		for _, w := range warnings {
			result.Warnings = append(result.Warnings, EvalErrorData{Message: w})
		}
	}
	for _, p := range res.Pairs {
		result.Pairs = append(result.Pairs, PairData{
			Vertex:  p.Vertex.String(),
			SVertex: p.SV.String(),
			Facet1:  int32(p.F1),
			Facet2:  int32(p.F2),
		})
	}
	a.log.Info("evaluated",
		zap.Int("vertices", len(result.Vertices)),
		zap.Int("pairs", len(result.Pairs)),
		zap.Int("warnings", len(result.Warnings)),
	)
	return result, s
}

// summarize describes v and returns its geometric warnings.
func summarize(id snc.VertexID, v *snc.Vertex) (VertexData, []string) {
	name := v.Label
	if name == "" {
		name = id.String()
	}
	m := v.SM
	res := spheremap.ValidateAll(m)
	vd := VertexData{
		Name:      name,
		Point:     v.Point.String(),
		Mark:      v.Mark,
		SVertices: m.NumSVertices(),
		SEdges:    m.NumSEdges(),
		SFaces:    m.NumSFaces(),
		Loop:      m.HasLoop(),
		Valid:     len(res.Errors) == 0,
	}
	for _, e := range res.Errors {
		vd.Problems = append(vd.Problems, e.Error())
	}
	var warnings []string
	for _, w := range res.Warnings {
		warnings = append(warnings, fmt.Sprintf("%s: %s", name, w.Error()))
	}
	return vd, warnings
}
