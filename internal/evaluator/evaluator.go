// Package evaluator turns review reports into a gate verdict by evaluating
// a Rego policy.
package evaluator

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/open-policy-agent/opa/v1/rego"

	"github.com/chris-regnier/quill/internal/report"
	"github.com/chris-regnier/quill/internal/store"
)

//go:embed default.rego
var defaultPolicy string

const query = "data.quill.gate.decision"

// Gate decisions of the default policy.
const (
	DecisionPass   = "pass"
	DecisionReview = "review"
	DecisionFail   = "fail"
)

type Evaluator struct {
	query rego.PreparedEvalQuery
}

// Input is the document a policy sees as input.
type Input struct {
	Summary report.Summary   `json:"summary"`
	Issues  []report.Issue   `json:"issues"`
	Reports []*report.Report `json:"reports"`
}

// NewEvaluator creates an evaluator. If policyDir is empty, uses the default policy.
// If policyDir holds .rego files, they replace the default policy.
func NewEvaluator(policyDir string) (*Evaluator, error) {
	ctx := context.Background()

	modules, err := loadModules(policyDir)
	if err != nil {
		return nil, err
	}
	opts := []func(*rego.Rego){rego.Query(query)}
	if len(modules) == 0 {
		opts = append(opts, rego.Module("default.rego", defaultPolicy))
	}
	for name, src := range modules {
		opts = append(opts, rego.Module(name, src))
	}

	prepared, err := rego.New(opts...).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("preparing rego query: %w", err)
	}
	return &Evaluator{query: prepared}, nil
}

func loadModules(policyDir string) (map[string]string, error) {
	if policyDir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(policyDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading policy dir: %w", err)
	}

	modules := make(map[string]string)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".rego") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(policyDir, e.Name()))
		if err != nil {
			return nil, err
		}
		modules[e.Name()] = string(data)
	}
	return modules, nil
}

// NewInput combines reports into one policy input.
func NewInput(reports ...*report.Report) Input {
	in := Input{Issues: []report.Issue{}, Reports: []*report.Report{}}
	for _, r := range reports {
		if r == nil {
			continue
		}
		in.Reports = append(in.Reports, r)
		in.Issues = append(in.Issues, r.Issues...)
		in.Summary.Errors += r.Summary.Errors
		in.Summary.Warnings += r.Summary.Warnings
		in.Summary.Infos += r.Summary.Infos
		in.Summary.Hints += r.Summary.Hints
		in.Summary.Total += r.Summary.Total
	}
	return in
}

// Evaluate decides the gate for the given reports. The decision defaults to
// review when the policy yields nothing.
func (e *Evaluator) Evaluate(ctx context.Context, reports ...*report.Report) (*store.Verdict, error) {
	in := NewInput(reports...)

	data, err := json.Marshal(in)
	if err != nil {
		return nil, err
	}
	var input any
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, err
	}

	results, err := e.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return nil, fmt.Errorf("evaluating rego: %w", err)
	}

	decision := DecisionReview
	if len(results) > 0 && len(results[0].Expressions) > 0 {
		if d, ok := results[0].Expressions[0].Value.(string); ok {
			decision = d
		}
	}

	var relevant []report.Issue
	for _, issue := range in.Issues {
		switch {
		case decision == DecisionFail && issue.Severity == report.SeverityError:
			relevant = append(relevant, issue)
		case decision == DecisionReview && (issue.Severity == report.SeverityError || issue.Severity == report.SeverityWarning):
			relevant = append(relevant, issue)
		}
	}

	return &store.Verdict{
		Decision:       decision,
		Reason:         fmt.Sprintf("Decision: %s based on %d issues (%d errors, %d warnings)", decision, in.Summary.Total, in.Summary.Errors, in.Summary.Warnings),
		RelevantIssues: relevant,
	}, nil
}
