package dmnfeel

import (
	"encoding/json"
	"fmt"

	"github.com/ritamzico/dmnfeel/internal/feel"
)

// jsonValue is the wire shape for a feel.Value: a tagged {kind, data}
// envelope so the JSON encoding preserves which FEEL type produced it.
type jsonValue struct {
	Kind string `json:"kind"`
	Data any    `json:"data,omitempty"`
}

// ValueFromJSON converts a plain decoded JSON value (as produced by
// encoding/json into an `any`) into a FEEL Value: objects become
// Contexts, arrays become Lists, and scalars map directly onto their
// FEEL counterpart. It is the server and CLI's input-binding bridge
// between a JSON request body and the evaluator.
func ValueFromJSON(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return feel.Null, nil
	case bool:
		return feel.Bool(x), nil
	case float64:
		return feel.NumberFromFloat64(x), nil
	case string:
		return feel.String(x), nil
	case []any:
		items := make([]Value, len(x))
		for i, e := range x {
			item, err := ValueFromJSON(e)
			if err != nil {
				return feel.Null, err
			}
			items[i] = item
		}
		return feel.List(items), nil
	case map[string]any:
		c := feel.NewContext()
		for k, e := range x {
			item, err := ValueFromJSON(e)
			if err != nil {
				return feel.Null, err
			}
			c.Set(k, item)
		}
		return feel.ContextVal(c), nil
	default:
		return feel.Null, fmt.Errorf("dmnfeel: cannot convert %T to a FEEL value", v)
	}
}

// MarshalValueJSON renders a FEEL Value as JSON, tagging its variant
// so a decoder can reconstruct the right Go type.
func MarshalValueJSON(v Value) ([]byte, error) {
	jv, err := toJSONValue(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(jv)
}

func toJSONValue(v Value) (jsonValue, error) {
	switch v.Kind() {
	case feel.KindNull:
		return jsonValue{Kind: "null"}, nil
	case feel.KindBoolean:
		b, _ := v.AsBool()
		return jsonValue{Kind: "boolean", Data: b}, nil
	case feel.KindNumber:
		n, _ := v.AsNumber()
		return jsonValue{Kind: "number", Data: n.String()}, nil
	case feel.KindString:
		s, _ := v.AsString()
		return jsonValue{Kind: "string", Data: s}, nil
	case feel.KindDate, feel.KindTime, feel.KindDateTime:
		return jsonValue{Kind: temporalKindName(v.Kind()), Data: v.String()}, nil
	case feel.KindDayTimeDuration, feel.KindYearMonthDuration:
		return jsonValue{Kind: durationKindName(v.Kind()), Data: v.String()}, nil
	case feel.KindList:
		items, _ := v.AsList()
		out := make([]jsonValue, len(items))
		for i, item := range items {
			jv, err := toJSONValue(item)
			if err != nil {
				return jsonValue{}, err
			}
			out[i] = jv
		}
		return jsonValue{Kind: "list", Data: out}, nil
	case feel.KindContext:
		c, _ := v.AsContext()
		out := make(map[string]jsonValue, c.Len())
		for _, k := range c.Keys() {
			val, _ := c.Get(k)
			jv, err := toJSONValue(val)
			if err != nil {
				return jsonValue{}, err
			}
			out[k] = jv
		}
		return jsonValue{Kind: "context", Data: out}, nil
	default:
		return jsonValue{Kind: "unknown", Data: v.String()}, nil
	}
}

func temporalKindName(k feel.Kind) string {
	switch k {
	case feel.KindDate:
		return "date"
	case feel.KindTime:
		return "time"
	default:
		return "date and time"
	}
}

func durationKindName(k feel.Kind) string {
	if k == feel.KindDayTimeDuration {
		return "days and time duration"
	}
	return "years and months duration"
}

// jsonStep is the wire shape of a Step.
type jsonStep struct {
	Decision string               `json:"decision"`
	Outputs  map[string]jsonValue `json:"outputs,omitempty"`
	Error    string               `json:"error,omitempty"`
	Warnings []string             `json:"warnings,omitempty"`
}

// MarshalResultJSON renders an EvaluationResult (outputs plus trace) as
// JSON.
func MarshalResultJSON(res EvaluationResult) ([]byte, error) {
	outputs := make(map[string]jsonValue, len(res.Outputs))
	for name, v := range res.Outputs {
		jv, err := toJSONValue(v)
		if err != nil {
			return nil, fmt.Errorf("dmnfeel: marshaling output %q: %w", name, err)
		}
		outputs[name] = jv
	}

	var steps []jsonStep
	if res.Trace != nil {
		steps = make([]jsonStep, len(res.Trace.Steps))
		for i, step := range res.Trace.Steps {
			js := jsonStep{Decision: step.Decision, Warnings: step.Warnings}
			if step.Err != nil {
				js.Error = step.Err.Error()
			}
			if step.Outputs != nil {
				js.Outputs = make(map[string]jsonValue, len(step.Outputs))
				for name, v := range step.Outputs {
					jv, err := toJSONValue(v)
					if err != nil {
						return nil, fmt.Errorf("dmnfeel: marshaling step %q output %q: %w", step.Decision, name, err)
					}
					js.Outputs[name] = jv
				}
			}
			steps[i] = js
		}
	}

	return json.Marshal(struct {
		Outputs map[string]jsonValue `json:"outputs"`
		Trace   []jsonStep           `json:"trace"`
	}{Outputs: outputs, Trace: steps})
}
