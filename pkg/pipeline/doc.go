// Package pipeline drives the fixed sequence of external stages of one benchmark run.
//
// A run computes the tentative match graph of a (method, dataset) pair, optionally
// refines it with the multi-view solver, reconstructs the scene from the refined and
// from the raw matches, and evaluates both reconstructions against the ground truth
// scan. Each stage is an external process started through a StageRunner; stages run
// one after the other and each one blocks until its process exits.
//
// The stages and their dependencies form a small directed acyclic graph. The
// execution order is the stable topological order of that graph, so the refined
// branch always runs before the raw branch at the same depth:
//
//	match-graph -> refinement-solve -> refined-reconstruction -> raw-reconstruction
//	            -> refined-evaluation -> raw-evaluation
//
// Stages that depend on refinement are disabled when Config.SkipRefinement is set.
// The match graph stage is skipped when its artifact already exists, which is the
// only caching mechanism of a run.
//
// A stage exiting with a non-zero status is recorded in the Report. Whether the run
// continues with the next stage or stops is decided by the FailurePolicy.
package pipeline
