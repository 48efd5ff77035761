// Package dmnfeel evaluates DMN decision models expressed in FEEL: it
// parses the DMN-subset XML dialect, resolves the decision
// requirements graph, and evaluates expression and table decisions to
// produce output bindings and an execution trace.
package dmnfeel

import (
	"io"
	"os"

	execctx "github.com/ritamzico/dmnfeel/internal/context"
	"github.com/ritamzico/dmnfeel/internal/engine"
	"github.com/ritamzico/dmnfeel/internal/feel"
	"github.com/ritamzico/dmnfeel/internal/jsonmodel"
	"github.com/ritamzico/dmnfeel/internal/model"
	"github.com/ritamzico/dmnfeel/internal/xmlmodel"
)

type (
	Value          = feel.Value
	Definition     = model.Definition
	EvaluationResult = engine.EvaluationResult
	Trace          = execctx.Trace
	Step           = execctx.Step
)

// Decision re-exports the model package's Decision so callers can
// inspect a loaded Definition without importing internal packages.
type Decision = model.Decision

// ConvertInput converts raw text into a Value for the input declared as
// name, using its declared type (boolean/number/string/temporal parse
// in their own FEEL lexical form). handled reports false when name
// isn't a known input or its declared type has no meaningful string
// form (Any, list, context, function) — callers should fall back to
// their own generic conversion in that case.
func (m *Model) ConvertInput(name, raw string) (v Value, handled bool, err error) {
	in, ok := m.Definition.Input(name)
	if !ok {
		return feel.Null, false, nil
	}
	return feel.ValueFromTypedString(raw, in.Type)
}

// Model wraps a parsed Definition with the engine that evaluates it.
type Model struct {
	Definition *Definition
	engine     *engine.Engine
}

// New wraps an already-built Definition, e.g. one assembled
// programmatically via model.NewBuilder rather than read from XML.
func New(def *Definition) *Model {
	return &Model{Definition: def, engine: engine.New(def)}
}

// Load reads a DMN-subset XML document from r and builds a Model.
func Load(r io.Reader) (*Model, error) {
	def, err := xmlmodel.Read(r)
	if err != nil {
		return nil, err
	}
	return New(def), nil
}

// LoadFile reads a DMN-subset XML document from path and builds a
// Model.
func LoadFile(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// LoadJSON reads the compact JSON decision-model format from r and
// builds a Model. It is a lighter-weight alternative to the DMN XML
// dialect Load reads, useful for models assembled or generated outside
// a DMN authoring tool.
func LoadJSON(r io.Reader) (*Model, error) {
	def, err := jsonmodel.ReadJSON(r)
	if err != nil {
		return nil, err
	}
	return New(def), nil
}

// LoadJSONFile reads the compact JSON decision-model format from path
// and builds a Model.
func LoadJSONFile(path string) (*Model, error) {
	def, err := jsonmodel.LoadJSON(path)
	if err != nil {
		return nil, err
	}
	return New(def), nil
}

// Evaluate runs every decision required to produce the named target
// decision, binding inputs as the initial environment.
func (m *Model) Evaluate(target string, inputs map[string]Value) (EvaluationResult, error) {
	return m.engine.Evaluate(target, inputs)
}

// EvaluateAll runs every root decision in one pass, sharing any
// sub-decisions they have in common.
func (m *Model) EvaluateAll(inputs map[string]Value) (EvaluationResult, error) {
	return m.engine.EvaluateAllRoots(inputs)
}

// EvaluateConcurrent runs target once per input batch, concurrently,
// preserving batch order in the returned slice.
func (m *Model) EvaluateConcurrent(target string, batches []map[string]Value) ([]EvaluationResult, error) {
	return m.engine.EvaluateConcurrent(target, batches)
}
