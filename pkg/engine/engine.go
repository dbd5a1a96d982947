// Package engine provides the Lisp evaluation engine for nef3.
// It wraps zygomys in a sandboxed environment whose builtins drive the
// local-map constructor, and produces an snc.Structure from user source.
package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"
	"go.uber.org/zap"

	"github.com/chazu/nef3/pkg/constructor"
	"github.com/chazu/nef3/pkg/snc"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error, a runtime error in user code or a violated
// constructor precondition.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Result bundles the structure an evaluation built with the facet pairs the
// indexed overlay reported.
type Result struct {
	Structure *snc.Structure
	Pairs     []constructor.FacetPair
}

// Engine wraps the zygomys interpreter for nef3 evaluation.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment and structure for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64

	log     *zap.Logger
	indexed bool
	timeout time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger handed to the constructor of every evaluation.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithIndexed selects the indexed constructor variant.
func WithIndexed(indexed bool) Option {
	return func(e *Engine) { e.indexed = indexed }
}

// WithTimeout overrides EvalTimeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// NewEngine creates a new Engine instance.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{log: zap.NewNop(), timeout: EvalTimeout}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Evaluate takes Lisp source code and builds a new structure.
// Each call creates a fresh zygomys sandbox for deterministic evaluation.
//
// Return semantics:
//   - On success: returns structure + nil errors + nil error
//   - On parse/eval failure: returns nil structure + eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*snc.Structure, []EvalError, error) {
	res, evalErrs, err := e.EvaluateResult(source)
	if res == nil {
		return nil, evalErrs, err
	}
	return res.Structure, evalErrs, err
}

// EvaluateResult is Evaluate, also returning the facet pairs recorded by
// indexed overlays.
func (e *Engine) EvaluateResult(source string) (*Result, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		res, evalErrs, err := e.evaluate(source, gen)
		ch <- evalResult{result: res, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, gen, &e.mu, &e.generation, e.timeout)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string, gen uint64) (*Result, []EvalError, error) {
	s := snc.New()
	s.Version = gen
	// Empty source is a valid program that produces an empty structure.
	if strings.TrimSpace(source) == "" {
		return &Result{Structure: s}, nil, nil
	}

	c := constructor.New(s, constructor.WithLogger(e.log), constructor.WithIndexed(e.indexed))
	pairs := &constructor.FacetPairs{}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()
	registerBuiltins(env, c, pairs)

	err := env.LoadString(preprocessSource(source))
	if err != nil {
		return nil, parseZygomysError(err), nil
	}

	_, err = env.Run()
	if err != nil {
		return nil, parseZygomysError(err), nil
	}

	e.log.Debug("evaluation done",
		zap.Int("vertices", s.NumVertices()),
		zap.Int("facet pairs", len(pairs.Pairs)),
	)
	return &Result{Structure: s, Pairs: pairs.Pairs}, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	// zygomys formats parse errors as "Error on line N: <details>\n"
	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{
				Line:    line,
				Message: strings.TrimSpace(m[2]),
			}}
		}
	}

	// Fallback: no line info available.
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
