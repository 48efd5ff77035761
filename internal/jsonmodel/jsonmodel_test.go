package jsonmodel

import (
	"strings"
	"testing"

	"github.com/ritamzico/dmnfeel/internal/feel"
)

const sampleJSON = `{
  "inputs": [{"name": "Age", "type": "number"}],
  "decisions": [
    {
      "name": "Is Adult",
      "output": "Is Adult",
      "type": "boolean",
      "kind": "expression",
      "expression": "Age >= 18",
      "required": ["Age"]
    },
    {
      "name": "Tier",
      "output": "Tier",
      "type": "string",
      "kind": "table",
      "required": ["Age"],
      "table": {
        "hitPolicy": "UNIQUE",
        "inputs": [{"expression": "Age", "type": "number"}],
        "outputs": [{"name": "Tier", "type": "string", "allowedValues": ["\"minor\"", "\"adult\""]}],
        "rules": [
          {"id": "1", "tests": ["< 18"], "outputs": ["\"minor\""]},
          {"id": "2", "tests": [">= 18"], "outputs": ["\"adult\""]}
        ]
      }
    }
  ]
}`

func TestReadJSONBuildsDefinition(t *testing.T) {
	def, err := ReadJSON(strings.NewReader(sampleJSON))
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}

	if _, ok := def.Input("Age"); !ok {
		t.Fatal("expected input \"Age\"")
	}

	isAdult, ok := def.Decision("Is Adult")
	if !ok {
		t.Fatal("expected decision \"Is Adult\"")
	}
	if isAdult.Kind != 0 {
		t.Fatalf("expected ExpressionDecision, got %v", isAdult.Kind)
	}

	tier, ok := def.Decision("Tier")
	if !ok {
		t.Fatal("expected decision \"Tier\"")
	}
	if tier.Table == nil || len(tier.Table.Rules) != 2 {
		t.Fatalf("expected a 2-rule table, got %+v", tier.Table)
	}
}

func TestReadJSONRejectsUnknownHitPolicy(t *testing.T) {
	bad := strings.Replace(sampleJSON, `"UNIQUE"`, `"WORST"`, 1)
	if _, err := ReadJSON(strings.NewReader(bad)); err == nil {
		t.Fatal("expected an error for an unknown hit policy")
	}
}

func TestParseTypeRefRecognizesNumber(t *testing.T) {
	if feel.ParseTypeRef("number") != feel.TypeNumber {
		t.Fatal("expected \"number\" to map to feel.TypeNumber")
	}
}
