package model

import (
	"strings"

	"github.com/ritamzico/dmnfeel/internal/feel"
)

// Variable is an input-data declaration or a decision's output slot:
// name, normalized name, declared type, and whether it is bound from
// the outside (an input) rather than computed.
type Variable struct {
	Name             string
	NormalizedName   string
	Type             *feel.Type
	IsInputParameter bool
}

// Normalize collapses a multi-word FEEL name into a single token; the
// result is stored as NormalizedName on variables and decisions. It is
// never used for FEEL expression name resolution itself — that stays
// word-based — and CSV headers are matched by exact input name.
func Normalize(name string) string {
	return strings.Join(strings.Fields(name), "_")
}

func NewVariable(name string, t *feel.Type, isInput bool) *Variable {
	return &Variable{Name: name, NormalizedName: Normalize(name), Type: t, IsInputParameter: isInput}
}
