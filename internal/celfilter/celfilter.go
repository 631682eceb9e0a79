// Package celfilter evaluates CEL boolean expressions against records encoded
// as JSON objects. Each top-level field is visible both as a bare identifier
// and through the "record" variable:
//
//	status == "open" && record.priority == "high"
package celfilter

import (
	"encoding/json"
	"fmt"
	"regexp"

	"github.com/google/cel-go/cel"
)

// RecordVar is the variable bound to the whole record.
const RecordVar = "record"

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var reserved = map[string]bool{
	"true": true, "false": true, "null": true, "in": true, "as": true,
	"break": true, "const": true, "continue": true, "else": true, "for": true,
	"function": true, "if": true, "import": true, "let": true, "loop": true,
	"package": true, "namespace": true, "return": true, "var": true,
	"void": true, "while": true, RecordVar: true,
}

// Filter is a compiled expression. It is safe for concurrent use.
type Filter struct {
	expr   string
	fields []string
	prg    cel.Program
}

// Compile parses expr with the given top-level field names declared as
// variables. Fields that are not valid CEL identifiers are only reachable
// through record["name"].
func Compile(expr string, fields []string) (*Filter, error) {
	opts := []cel.EnvOption{
		cel.Variable(RecordVar, cel.MapType(cel.StringType, cel.DynType)),
		cel.CrossTypeNumericComparisons(true),
	}
	var declared []string
	seen := map[string]bool{}
	for _, f := range fields {
		if seen[f] || reserved[f] || !identRe.MatchString(f) {
			continue
		}
		seen[f] = true
		declared = append(declared, f)
		opts = append(opts, cel.Variable(f, cel.DynType))
	}

	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("celfilter: build environment: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("celfilter: compile %q: %w", expr, issues.Err())
	}
	if out := ast.OutputType(); !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("celfilter: %q yields %s, want bool", expr, ast.OutputType())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("celfilter: program %q: %w", expr, err)
	}
	return &Filter{expr: expr, fields: declared, prg: prg}, nil
}

// String returns the source expression.
func (f *Filter) String() string { return f.expr }

// Match evaluates the filter against one record. Declared fields missing from
// rec evaluate as null.
func (f *Filter) Match(rec map[string]any) (bool, error) {
	vars := make(map[string]any, len(f.fields)+1)
	vars[RecordVar] = rec
	for _, name := range f.fields {
		vars[name] = rec[name]
	}
	out, _, err := f.prg.Eval(vars)
	if err != nil {
		return false, fmt.Errorf("celfilter: evaluate %q: %w", f.expr, err)
	}
	ok, isBool := out.Value().(bool)
	if !isBool {
		return false, fmt.Errorf("celfilter: %q did not return a boolean", f.expr)
	}
	return ok, nil
}

// ToMap converts a record to its JSON object form.
func ToMap(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// Apply keeps the records matching f, preserving order.
func Apply(f *Filter, recs []any) ([]any, error) {
	out := make([]any, 0, len(recs))
	for _, rec := range recs {
		m, err := ToMap(rec)
		if err != nil {
			return nil, err
		}
		ok, err := f.Match(m)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, rec)
		}
	}
	return out, nil
}
