// Package xmlmodel reads the DMN-subset XML dialect into a
// model.Definition via model.Builder. Any mainstream XML reader is
// equally suitable for this well-formed, non-adversarial input, so it
// uses encoding/xml rather than pulling in a third-party parser.
package xmlmodel

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/ritamzico/dmnfeel/internal/feel"
	"github.com/ritamzico/dmnfeel/internal/model"
)

type xmlDefinitions struct {
	XMLName   xml.Name       `xml:"definitions"`
	Version   string         `xml:"dmnVersion,attr"`
	InputData []xmlInputData `xml:"inputData"`
	Decisions []xmlDecision  `xml:"decision"`
}

type xmlInputData struct {
	ID       string      `xml:"id,attr"`
	Name     string      `xml:"name,attr"`
	Variable xmlVariable `xml:"variable"`
}

type xmlVariable struct {
	Name    string `xml:"name,attr"`
	TypeRef string `xml:"typeRef,attr"`
}

type xmlDecision struct {
	ID                       string                      `xml:"id,attr"`
	Name                     string                      `xml:"name,attr"`
	Variable                 xmlVariable                 `xml:"variable"`
	InformationRequirement   []xmlInformationRequirement `xml:"informationRequirement"`
	LiteralExpression        *xmlLiteralExpression       `xml:"literalExpression"`
	DecisionTable            *xmlDecisionTable           `xml:"decisionTable"`
}

type xmlInformationRequirement struct {
	RequiredInput    *xmlHref `xml:"requiredInput"`
	RequiredDecision *xmlHref `xml:"requiredDecision"`
}

type xmlHref struct {
	Href string `xml:"href,attr"`
}

type xmlLiteralExpression struct {
	Text string `xml:"text"`
}

type xmlDecisionTable struct {
	HitPolicy  string       `xml:"hitPolicy,attr"`
	Aggregation string      `xml:"aggregation,attr"`
	Inputs     []xmlInput   `xml:"input"`
	Outputs    []xmlOutput  `xml:"output"`
	Rules      []xmlRule    `xml:"rule"`
}

type xmlInput struct {
	InputExpression xmlLiteralExpression `xml:"inputExpression"`
	TypeRef         string                `xml:"typeRef,attr"`
}

type xmlOutput struct {
	Name          string                `xml:"name,attr"`
	TypeRef       string                `xml:"typeRef,attr"`
	OutputValues  *xmlLiteralExpression `xml:"outputValues"`
	DefaultValue  *xmlLiteralExpression `xml:"defaultOutputEntry"`
}

type xmlRule struct {
	ID           string                  `xml:"id,attr"`
	InputEntry   []xmlLiteralExpression  `xml:"inputEntry"`
	OutputEntry  []xmlLiteralExpression  `xml:"outputEntry"`
}

// Read parses a DMN-subset XML document from r and builds a
// model.Definition from it.
func Read(r io.Reader) (*model.Definition, error) {
	var doc xmlDefinitions
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("xmlmodel: %w", err)
	}

	b := model.NewBuilder()
	b.SetVersion(doc.Version)

	idToName := make(map[string]string)
	for _, in := range doc.InputData {
		idToName[refKey(in.ID)] = in.Variable.Name
	}
	for _, d := range doc.Decisions {
		idToName[refKey(d.ID)] = d.Variable.Name
	}

	for _, in := range doc.InputData {
		if err := b.AddInput(in.Variable.Name, feel.ParseTypeRef(in.Variable.TypeRef)); err != nil {
			return nil, err
		}
	}

	for _, d := range doc.Decisions {
		required := make([]string, 0, len(d.InformationRequirement))
		for _, ir := range d.InformationRequirement {
			switch {
			case ir.RequiredInput != nil:
				if name, ok := idToName[refKey(ir.RequiredInput.Href)]; ok {
					required = append(required, name)
				}
			case ir.RequiredDecision != nil:
				if name, ok := idToName[refKey(ir.RequiredDecision.Href)]; ok {
					required = append(required, name)
				}
			}
		}

		outType := feel.ParseTypeRef(d.Variable.TypeRef)

		switch {
		case d.LiteralExpression != nil:
			err := b.AddExpressionDecision(d.Name, d.Variable.Name, outType, d.LiteralExpression.Text, required)
			if err != nil {
				return nil, err
			}
		case d.DecisionTable != nil:
			if err := addTableDecision(b, d, outType, required); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("xmlmodel: decision %q has neither a literalExpression nor a decisionTable", d.Name)
		}
	}

	return b.Build()
}

func addTableDecision(b *model.Builder, d xmlDecision, outType *feel.Type, required []string) error {
	dt := d.DecisionTable
	policy, agg, err := parseHitPolicy(dt.HitPolicy, dt.Aggregation)
	if err != nil {
		return fmt.Errorf("xmlmodel: decision %q: %w", d.Name, err)
	}

	inputs := make([]model.InputColumn, len(dt.Inputs))
	for i, in := range dt.Inputs {
		inputs[i] = model.InputColumn{
			ExpressionText: in.InputExpression.Text,
			Type:           feel.ParseTypeRef(in.TypeRef),
		}
	}

	outputs := make([]model.OutputColumn, len(dt.Outputs))
	for i, out := range dt.Outputs {
		oc := model.OutputColumn{Name: out.Name, Type: feel.ParseTypeRef(out.TypeRef)}
		if out.OutputValues != nil {
			oc.AllowedValues = splitUnaryTestList(out.OutputValues.Text)
		}
		if out.DefaultValue != nil {
			oc.DefaultText = out.DefaultValue.Text
		}
		outputs[i] = oc
	}

	rules := make([]model.RuleSpec, len(dt.Rules))
	for i, r := range dt.Rules {
		rs := model.RuleSpec{ID: r.ID}
		if rs.ID == "" {
			rs.ID = fmt.Sprintf("row-%d", i+1)
		}
		for _, e := range r.InputEntry {
			rs.Tests = append(rs.Tests, e.Text)
		}
		for _, e := range r.OutputEntry {
			rs.Outputs = append(rs.Outputs, e.Text)
		}
		rules[i] = rs
	}

	outputVar := d.Variable.Name
	if len(outputs) == 1 && outputVar == "" {
		outputVar = outputs[0].Name
	}

	return b.AddTableDecision(d.Name, outputVar, outType, policy, agg, inputs, outputs, rules, required)
}

func parseHitPolicy(raw, aggRaw string) (model.HitPolicy, model.Aggregator, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "", "UNIQUE":
		return model.Unique, model.NoAggregator, nil
	case "FIRST":
		return model.First, model.NoAggregator, nil
	case "PRIORITY":
		return model.Priority, model.NoAggregator, nil
	case "ANY":
		return model.Any, model.NoAggregator, nil
	case "RULE ORDER", "RULEORDER", "R":
		return model.RuleOrder, model.NoAggregator, nil
	case "COLLECT", "C":
		agg, err := parseAggregator(aggRaw)
		return model.Collect, agg, err
	default:
		return 0, 0, fmt.Errorf("unrecognized hit policy %q", raw)
	}
}

func parseAggregator(raw string) (model.Aggregator, error) {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "":
		return model.NoAggregator, nil
	case "SUM":
		return model.AggSum, nil
	case "MIN":
		return model.AggMin, nil
	case "MAX":
		return model.AggMax, nil
	case "COUNT":
		return model.AggCount, nil
	default:
		return 0, fmt.Errorf("unrecognized aggregator %q", raw)
	}
}

// splitUnaryTestList splits a comma-separated outputValues unary test
// list (e.g. `"gold","silver","bronze"`) into its individual FEEL
// literal expressions, respecting quoted commas.
func splitUnaryTestList(text string) []string {
	var out []string
	depth := 0
	inString := false
	start := 0
	for i, r := range text {
		switch r {
		case '"':
			inString = !inString
		case '(', '[':
			if !inString {
				depth++
			}
		case ')', ']':
			if !inString {
				depth--
			}
		case ',':
			if !inString && depth == 0 {
				out = append(out, strings.TrimSpace(text[start:i]))
				start = i + 1
			}
		}
	}
	if tail := strings.TrimSpace(text[start:]); tail != "" {
		out = append(out, tail)
	}
	return out
}

func refKey(href string) string {
	return strings.TrimPrefix(href, "#")
}
