// Package jsonmodel reads a compact JSON decision-model format into a
// model.Definition, as a lighter-weight alternative to the DMN XML
// dialect internal/xmlmodel reads. ReadJSON/LoadJSON mirror the shape
// of a graph-persistence reader: decode a plain-data envelope, then
// feed it through the builder one node (here: input or decision) at a
// time so the same validation the XML reader relies on runs uniformly.
package jsonmodel

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ritamzico/dmnfeel/internal/feel"
	"github.com/ritamzico/dmnfeel/internal/model"
)

type jsonDefinition struct {
	Version   string         `json:"dmnVersion,omitempty"`
	Inputs    []jsonInput    `json:"inputs"`
	Decisions []jsonDecision `json:"decisions"`
}

type jsonInput struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type jsonDecision struct {
	Name       string         `json:"name"`
	Output     string         `json:"output"`
	Type       string         `json:"type"`
	Kind       string         `json:"kind"` // "expression" or "table"
	Required   []string       `json:"required,omitempty"`
	Expression string         `json:"expression,omitempty"`
	Table      *jsonTable     `json:"table,omitempty"`
}

type jsonTable struct {
	HitPolicy   string            `json:"hitPolicy"`
	Aggregation string            `json:"aggregation,omitempty"`
	Inputs      []jsonTableInput  `json:"inputs"`
	Outputs     []jsonTableOutput `json:"outputs"`
	Rules       []jsonRule        `json:"rules"`
}

type jsonTableInput struct {
	Expression string `json:"expression"`
	Type       string `json:"type"`
}

type jsonTableOutput struct {
	Name          string   `json:"name"`
	Type          string   `json:"type"`
	AllowedValues []string `json:"allowedValues,omitempty"`
	Default       string   `json:"default,omitempty"`
}

type jsonRule struct {
	ID      string   `json:"id"`
	Tests   []string `json:"tests"`
	Outputs []string `json:"outputs"`
}

// ReadJSON decodes a jsonDefinition envelope from r and builds a
// model.Definition from it.
func ReadJSON(r io.Reader) (*model.Definition, error) {
	var jd jsonDefinition
	if err := json.NewDecoder(r).Decode(&jd); err != nil {
		return nil, fmt.Errorf("decoding model JSON: %w", err)
	}

	b := model.NewBuilder()
	b.SetVersion(jd.Version)

	for _, in := range jd.Inputs {
		if err := b.AddInput(in.Name, feel.ParseTypeRef(in.Type)); err != nil {
			return nil, err
		}
	}

	for _, dec := range jd.Decisions {
		outType := feel.ParseTypeRef(dec.Type)
		switch dec.Kind {
		case "expression":
			if err := b.AddExpressionDecision(dec.Name, dec.Output, outType, dec.Expression, dec.Required); err != nil {
				return nil, err
			}
		case "table":
			if dec.Table == nil {
				return nil, fmt.Errorf("decision %q: kind \"table\" requires a table object", dec.Name)
			}
			if err := addTableDecision(b, dec, outType); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("decision %q: unknown kind %q", dec.Name, dec.Kind)
		}
	}

	return b.Build()
}

func addTableDecision(b *model.Builder, dec jsonDecision, outType *feel.Type) error {
	policy, agg, err := parseHitPolicy(dec.Table.HitPolicy, dec.Table.Aggregation)
	if err != nil {
		return fmt.Errorf("decision %q: %w", dec.Name, err)
	}

	inputs := make([]model.InputColumn, len(dec.Table.Inputs))
	for i, in := range dec.Table.Inputs {
		inputs[i] = model.InputColumn{ExpressionText: in.Expression, Type: feel.ParseTypeRef(in.Type)}
	}

	outputs := make([]model.OutputColumn, len(dec.Table.Outputs))
	for i, out := range dec.Table.Outputs {
		outputs[i] = model.OutputColumn{
			Name:          out.Name,
			Type:          feel.ParseTypeRef(out.Type),
			AllowedValues: out.AllowedValues,
			DefaultText:   out.Default,
		}
	}

	rules := make([]model.RuleSpec, len(dec.Table.Rules))
	for i, r := range dec.Table.Rules {
		rules[i] = model.RuleSpec{ID: r.ID, Tests: r.Tests, Outputs: r.Outputs}
	}

	return b.AddTableDecision(dec.Name, dec.Output, outType, policy, agg, inputs, outputs, rules, dec.Required)
}

func parseHitPolicy(raw, aggRaw string) (model.HitPolicy, model.Aggregator, error) {
	agg := model.NoAggregator
	if aggRaw != "" {
		switch aggRaw {
		case "SUM":
			agg = model.AggSum
		case "MIN":
			agg = model.AggMin
		case "MAX":
			agg = model.AggMax
		case "COUNT":
			agg = model.AggCount
		default:
			return 0, 0, fmt.Errorf("unknown aggregation %q", aggRaw)
		}
	}
	switch raw {
	case "UNIQUE":
		return model.Unique, agg, nil
	case "FIRST":
		return model.First, agg, nil
	case "PRIORITY":
		return model.Priority, agg, nil
	case "ANY":
		return model.Any, agg, nil
	case "RULE ORDER", "RULEORDER":
		return model.RuleOrder, agg, nil
	case "COLLECT":
		return model.Collect, agg, nil
	default:
		return 0, 0, fmt.Errorf("unknown hit policy %q", raw)
	}
}

// LoadJSON reads a model from the JSON file at path.
func LoadJSON(path string) (*model.Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
