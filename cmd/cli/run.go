package main

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	dmnfeel "github.com/ritamzico/dmnfeel"
)

// runConfig holds configuration for the run command.
type runConfig struct {
	decisionName string
	inputFlags   []string
	csvPath      string
	jsonModel    bool
}

// NewRunCmd creates the run subcommand with all flags configured.
func NewRunCmd() *cobra.Command {
	cfg := &runConfig{}

	cmd := &cobra.Command{
		Use:   "run <definition-file>",
		Short: "Evaluate a DMN decision model",
		Long: `Evaluate a DMN decision model against either a single set of
--input bindings or a batch of input rows read from a CSV file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, args[0], cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.decisionName, "decision", "", "target decision name (default: evaluate all root decisions)")
	cmd.Flags().StringArrayVar(&cfg.inputFlags, "input", nil, "an input binding as key=value; may be repeated")
	cmd.Flags().StringVar(&cfg.csvPath, "csv", "", "path to a CSV file of input rows to evaluate in a batch")
	cmd.Flags().BoolVar(&cfg.jsonModel, "json", false, "read the definition file as the compact JSON model format instead of DMN XML")

	return cmd
}

func runRun(cmd *cobra.Command, path string, cfg *runConfig) error {
	if cfg.csvPath != "" && cfg.decisionName == "" {
		return usageError("--csv requires --decision")
	}

	var m *dmnfeel.Model
	var err error
	if cfg.jsonModel {
		m, err = dmnfeel.LoadJSONFile(path)
	} else {
		m, err = dmnfeel.LoadFile(path)
	}
	if err != nil {
		return loadError("loading %q: %w", path, err)
	}

	if cfg.csvPath != "" {
		return runCSVBatch(cmd, m, cfg)
	}
	return runSingle(cmd, m, cfg)
}

func runSingle(cmd *cobra.Command, m *dmnfeel.Model, cfg *runConfig) error {
	inputs, err := parseInputFlags(m, cfg.inputFlags)
	if err != nil {
		return usageError("%w", err)
	}

	var res dmnfeel.EvaluationResult
	var evalErr error
	if cfg.decisionName == "" {
		res, evalErr = m.EvaluateAll(inputs)
	} else {
		res, evalErr = m.Evaluate(cfg.decisionName, inputs)
	}
	if evalErr != nil {
		return evalError("%w", evalErr)
	}
	return printResult(cmd, res)
}

func runCSVBatch(cmd *cobra.Command, m *dmnfeel.Model, cfg *runConfig) error {
	f, err := os.Open(cfg.csvPath)
	if err != nil {
		return loadError("opening %q: %w", cfg.csvPath, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return loadError("reading CSV header from %q: %w", cfg.csvPath, err)
	}

	for {
		row, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return loadError("reading CSV row from %q: %w", cfg.csvPath, err)
		}

		inputs, err := csvRowToInputs(m, header, row)
		if err != nil {
			return usageError("%w", err)
		}

		res, err := m.Evaluate(cfg.decisionName, inputs)
		if err != nil {
			return evalError("%w", err)
		}
		if err := printResult(cmd, res); err != nil {
			return err
		}
	}
	return nil
}

func csvRowToInputs(m *dmnfeel.Model, header, row []string) (map[string]dmnfeel.Value, error) {
	if len(header) != len(row) {
		return nil, fmt.Errorf("CSV row has %d fields, header has %d", len(row), len(header))
	}
	inputs := make(map[string]dmnfeel.Value, len(row))
	for i, name := range header {
		v, err := convertInput(m, name, row[i])
		if err != nil {
			return nil, err
		}
		inputs[name] = v
	}
	return inputs, nil
}

// convertInput converts raw using name's declared input type when the
// model declares one concretely (boolean/number/string/temporal all
// parse in their own FEEL lexical form); otherwise it falls back to
// best-effort JSON-scalar guessing so numeric and boolean columns still
// don't need quoting even for untyped or unrecognized inputs.
func convertInput(m *dmnfeel.Model, name, raw string) (dmnfeel.Value, error) {
	if v, handled, err := m.ConvertInput(name, raw); handled {
		return v, err
	}
	return dmnfeel.ValueFromJSON(guessJSONScalar(raw))
}

// guessJSONScalar best-effort-decodes a bare string as a JSON scalar
// (number, boolean) before falling back to a plain string, so untyped
// numeric/boolean inputs don't need quoting.
func guessJSONScalar(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		return v
	}
	return raw
}

func parseInputFlags(m *dmnfeel.Model, flags []string) (map[string]dmnfeel.Value, error) {
	inputs := make(map[string]dmnfeel.Value, len(flags))
	for _, f := range flags {
		key, value, ok := strings.Cut(f, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --input %q, expected key=value", f)
		}
		v, err := convertInput(m, key, value)
		if err != nil {
			return nil, err
		}
		inputs[key] = v
	}
	return inputs, nil
}

func printResult(cmd *cobra.Command, res dmnfeel.EvaluationResult) error {
	b, err := dmnfeel.MarshalResultJSON(res)
	if err != nil {
		return evalError("marshaling result: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}
