package pipeline

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/askiada/featbench/pkg/method"
	"github.com/askiada/featbench/pkg/paths"
)

// Tolerances is the fixed list of distance thresholds, in scene units, passed to
// every evaluation.
const Tolerances = "0.01,0.02,0.05,0.1,0.2,0.5"

// FailurePolicy decides what happens after a stage exits with a non-zero status.
type FailurePolicy string

const (
	// PolicyContinue records the failure and runs the next stage.
	PolicyContinue FailurePolicy = "continue"
	// PolicyAbort stops the run at the first failing stage.
	PolicyAbort FailurePolicy = "abort"
)

// ParseFailurePolicy parses a policy name. An empty name means PolicyContinue.
func ParseFailurePolicy(name string) (FailurePolicy, error) {
	switch FailurePolicy(strings.ToLower(strings.TrimSpace(name))) {
	case "", PolicyContinue:
		return PolicyContinue, nil
	case PolicyAbort:
		return PolicyAbort, nil
	default:
		return "", errors.Wrapf(ErrUnknownPolicy, "%q", name)
	}
}

// Tools holds the locations of the external programs.
type Tools struct {
	// Python runs the match graph and reconstruction scripts.
	Python               string
	MatchGraphScript     string
	Solver               string
	ReconstructionScript string
	// ColmapPath is the COLMAP executable folder handed to the reconstruction script.
	ColmapPath string
	// EvaluationPath is the folder holding EvaluationBinary.
	EvaluationPath   string
	EvaluationBinary string
}

// DefaultTools returns the tool layout of a benchmark checkout. The COLMAP and
// evaluation folders have no default.
func DefaultTools() Tools {
	return Tools{
		Python:               "python",
		MatchGraphScript:     "two-view-refinement/compute_match_graph.py",
		Solver:               "multi-view-refinement/build/solve",
		ReconstructionScript: "reconstruction-scripts/triangulation_pipeline.py",
		EvaluationBinary:     "ETH3DMultiViewEvaluation",
	}
}

func (t Tools) validate() error {
	required := []struct {
		name, value string
	}{
		{"python", t.Python},
		{"match graph script", t.MatchGraphScript},
		{"solver", t.Solver},
		{"reconstruction script", t.ReconstructionScript},
		{"colmap path", t.ColmapPath},
		{"evaluation path", t.EvaluationPath},
		{"evaluation binary", t.EvaluationBinary},
	}
	for _, r := range required {
		if r.value == "" {
			return errors.Wrap(ErrToolMustBeSet, r.name)
		}
	}

	return nil
}

// Config is everything a run needs. It is resolved once by the caller; the
// pipeline never reads the environment.
type Config struct {
	Method  method.Config
	Dataset string
	Paths   paths.Set
	Tools   Tools

	// SkipRefinement disables the refinement solve, the refined reconstruction
	// and the refined evaluation.
	SkipRefinement bool
	FailurePolicy  FailurePolicy
}

func (c Config) validate() error {
	if c.Method.Name == "" {
		return ErrMethodMustBeSet
	}
	if c.Dataset == "" {
		return ErrDatasetMustBeSet
	}
	if _, err := ParseFailurePolicy(string(c.FailurePolicy)); err != nil {
		return err
	}

	return c.Tools.validate()
}
