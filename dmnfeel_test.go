package dmnfeel

import (
	"strings"
	"testing"

	"github.com/ritamzico/dmnfeel/internal/feel"
)

const sampleDMN = `<?xml version="1.0" encoding="UTF-8"?>
<definitions>
  <inputData id="i_age" name="Age">
    <variable name="age" typeRef="number"/>
  </inputData>
  <decision id="d_greeting" name="Greeting">
    <variable name="greeting" typeRef="string"/>
    <informationRequirement>
      <requiredInput href="#i_age"/>
    </informationRequirement>
    <literalExpression>
      <text>if age &gt;= 18 then "welcome" else "sorry"</text>
    </literalExpression>
  </decision>
</definitions>`

func TestLoadAndEvaluate(t *testing.T) {
	m, err := Load(strings.NewReader(sampleDMN))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	res, err := m.Evaluate("Greeting", map[string]Value{"age": feel.NumberFromInt64(20)})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	greeting, ok := res.Outputs["greeting"].AsString()
	if !ok || greeting != "welcome" {
		t.Errorf("got %v, want welcome", res.Outputs["greeting"])
	}
}

func TestMarshalResultJSON(t *testing.T) {
	m, err := Load(strings.NewReader(sampleDMN))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	res, err := m.Evaluate("Greeting", map[string]Value{"age": feel.NumberFromInt64(5)})
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	b, err := MarshalResultJSON(res)
	if err != nil {
		t.Fatalf("MarshalResultJSON: %v", err)
	}
	if !strings.Contains(string(b), `"sorry"`) {
		t.Errorf("expected marshaled output to contain \"sorry\", got %s", b)
	}
}
