package gate

import (
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"

	"github.com/scan-io-git/magelint/internal/findings"
)

// Summary is the view of a report exposed to gate expressions.
type Summary struct {
	Errors   int
	Warnings int
	Notes    int
	Rules    []string
}

// Total is the number of occurrences in the summary.
func (s Summary) Total() int {
	return s.Errors + s.Warnings + s.Notes
}

// Summarize counts occurrences by severity. Occurrences without a severity count as warnings,
// and only rules with at least one occurrence are listed.
func Summarize(r *findings.Report) Summary {
	counts := r.Counts(findings.SeverityWarning)
	summary := Summary{
		Errors:   counts.Errors,
		Warnings: counts.Warnings,
		Notes:    counts.Notes,
		Rules:    []string{},
	}
	for _, f := range r.Rules() {
		if len(f.Occurrences) > 0 {
			summary.Rules = append(summary.Rules, f.RuleID)
		}
	}
	return summary
}

func newEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("errors", cel.IntType),
		cel.Variable("warnings", cel.IntType),
		cel.Variable("notes", cel.IntType),
		cel.Variable("total", cel.IntType),
		cel.Variable("rules", cel.ListType(cel.StringType)),
	)
}

// Evaluate runs expr against summary and reports whether the gate failed.
// An empty expression never fails.
func Evaluate(expr string, summary Summary) (bool, error) {
	if strings.TrimSpace(expr) == "" {
		return false, nil
	}

	env, err := newEnv()
	if err != nil {
		return false, fmt.Errorf("failed to create gate environment: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return false, fmt.Errorf("invalid gate expression %q: %w", expr, issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return false, fmt.Errorf("program construction error: %w", err)
	}

	rules := summary.Rules
	if rules == nil {
		rules = []string{}
	}
	out, _, err := prg.Eval(map[string]interface{}{
		"errors":   int64(summary.Errors),
		"warnings": int64(summary.Warnings),
		"notes":    int64(summary.Notes),
		"total":    int64(summary.Total()),
		"rules":    rules,
	})
	if err != nil {
		return false, fmt.Errorf("failed to evaluate gate expression %q: %w", expr, err)
	}

	failed, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("gate expression %q must evaluate to a bool, got %T", expr, out.Value())
	}
	return failed, nil
}
