package pipeline

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"

	"github.com/askiada/featbench/pkg/pipeline/model"
	"github.com/askiada/featbench/pkg/stage"
)

// Stage names, also used as graph vertices.
const (
	StageMatchGraph            = "match-graph"
	StageRefinementSolve       = "refinement-solve"
	StageRefinedReconstruction = "refined-reconstruction"
	StageRawReconstruction     = "raw-reconstruction"
	StageRefinedEvaluation     = "refined-evaluation"
	StageRawEvaluation         = "raw-evaluation"
)

type definition struct {
	name    string
	gated   bool
	parents []string
	build   func(cfg Config) *stage.Invocation
}

// definitions lists the stages in their declared order.
var definitions = []definition{
	{
		name:  StageMatchGraph,
		build: matchGraphInvocation,
	},
	{
		name:    StageRefinementSolve,
		gated:   true,
		parents: []string{StageMatchGraph},
		build:   refinementSolveInvocation,
	},
	{
		name:    StageRefinedReconstruction,
		gated:   true,
		parents: []string{StageRefinementSolve},
		build: func(cfg Config) *stage.Invocation {
			return reconstructionInvocation(StageRefinedReconstruction, cfg, true)
		},
	},
	{
		name:    StageRawReconstruction,
		parents: []string{StageMatchGraph},
		build: func(cfg Config) *stage.Invocation {
			return reconstructionInvocation(StageRawReconstruction, cfg, false)
		},
	},
	{
		name:    StageRefinedEvaluation,
		gated:   true,
		parents: []string{StageRefinedReconstruction},
		build: func(cfg Config) *stage.Invocation {
			return evaluationInvocation(StageRefinedEvaluation, cfg, cfg.Paths.RefPointCloud, cfg.Paths.RefReport)
		},
	},
	{
		name:    StageRawEvaluation,
		parents: []string{StageRawReconstruction},
		build: func(cfg Config) *stage.Invocation {
			return evaluationInvocation(StageRawEvaluation, cfg, cfg.Paths.RawPointCloud, cfg.Paths.RawReport)
		},
	},
}

func matchGraphInvocation(cfg Config) *stage.Invocation {
	return &stage.Invocation{
		Name:    StageMatchGraph,
		Command: cfg.Tools.Python,
		Args: []string{
			cfg.Tools.MatchGraphScript,
			"--method_name", cfg.Method.Name,
			"--max_edge", strconv.Itoa(cfg.Method.MaxEdge),
			"--max_sum_edges", strconv.Itoa(cfg.Method.MaxSumEdges),
			"--image_path", cfg.Paths.Images,
			"--match_list_file", cfg.Paths.MatchList,
			"--matcher", string(cfg.Method.Kind),
			"--threshold", strconv.FormatFloat(cfg.Method.Threshold, 'f', -1, 64),
			"--output_file", cfg.Paths.Matches,
		},
		SkipIfExists: cfg.Paths.Matches,
	}
}

func refinementSolveInvocation(cfg Config) *stage.Invocation {
	return &stage.Invocation{
		Name:    StageRefinementSolve,
		Command: cfg.Tools.Solver,
		Args: []string{
			"--matches_file", cfg.Paths.Matches,
			"--output_file", cfg.Paths.Solution,
		},
	}
}

// reconstructionInvocation selects the refined mode by passing the solution file.
func reconstructionInvocation(name string, cfg Config, refined bool) *stage.Invocation {
	args := []string{
		cfg.Tools.ReconstructionScript,
		"--colmap_path", cfg.Tools.ColmapPath,
		"--dataset_path", cfg.Paths.Dataset,
		"--method_name", cfg.Method.Name,
		"--matches_file", cfg.Paths.Matches,
	}
	if refined {
		args = append(args, "--solution_file", cfg.Paths.Solution)
	}

	return &stage.Invocation{
		Name:    name,
		Command: cfg.Tools.Python,
		Args:    args,
	}
}

func evaluationInvocation(name string, cfg Config, pointCloud, report string) *stage.Invocation {
	return &stage.Invocation{
		Name:    name,
		Command: toolPath(cfg.Tools.EvaluationPath, cfg.Tools.EvaluationBinary),
		Args: []string{
			"--reconstruction_ply_path", pointCloud,
			"--ground_truth_mlp_path", cfg.Paths.Scan,
			"--tolerances", Tolerances,
		},
		Capture: report,
	}
}

// toolPath joins dir and name. A result without separator is made explicitly
// relative so the process is not looked up on PATH.
func toolPath(dir, name string) string {
	joined := filepath.Join(dir, name)
	if dir == "" || strings.ContainsRune(joined, filepath.Separator) {
		return joined
	}

	return "." + string(filepath.Separator) + joined
}

// stageGraph builds the dependency graph of all stages and returns the stages
// in topological order, ties broken by declared order.
func stageGraph() (graph.Graph[string, string], []definition, error) {
	gra := graph.New(graph.StringHash, graph.Directed(), graph.Acyclic(), graph.PreventCycles())
	index := make(map[string]int, len(definitions))

	for i, def := range definitions {
		err := gra.AddVertex(def.name)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "unable to add stage %s", def.name)
		}
		index[def.name] = i
	}

	for _, def := range definitions {
		for _, parent := range def.parents {
			err := gra.AddEdge(parent, def.name)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "unable to link %s to %s", parent, def.name)
			}
		}
	}

	order, err := orderStages(gra, index)
	if err != nil {
		return nil, nil, err
	}

	ordered := make([]definition, len(order))
	for i, name := range order {
		ordered[i] = definitions[index[name]]
	}

	return gra, ordered, nil
}

// orderStages repeatedly emits the lowest indexed stage whose parents were all
// emitted, so independent branches interleave by declared order.
func orderStages(gra graph.Graph[string, string], index map[string]int) ([]string, error) {
	predecessors, err := gra.PredecessorMap()
	if err != nil {
		return nil, errors.Wrap(err, "unable to get predecessor map")
	}

	emitted := make(map[string]bool, len(predecessors))
	order := make([]string, 0, len(predecessors))
	for len(order) < len(predecessors) {
		next := ""
		for name, parents := range predecessors {
			if emitted[name] || !allEmitted(parents, emitted) {
				continue
			}
			if next == "" || index[name] < index[next] {
				next = name
			}
		}
		if next == "" {
			return nil, errors.New("unable to order stages: dependency cycle")
		}
		emitted[next] = true
		order = append(order, next)
	}

	return order, nil
}

func allEmitted(parents map[string]graph.Edge[string], emitted map[string]bool) bool {
	for parent := range parents {
		if !emitted[parent] {
			return false
		}
	}

	return true
}

func newStageInfo(def definition, cfg Config) *model.StageInfo {
	info := &model.StageInfo{
		Name:   def.name,
		Gated:  def.gated,
		Status: model.StatusPending,
	}
	if def.gated && cfg.SkipRefinement {
		info.Status = model.StatusDisabled
	}

	return info
}
