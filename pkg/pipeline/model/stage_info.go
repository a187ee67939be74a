package model

import "time"

// StageStatus is the outcome of a stage.
type StageStatus string

const (
	StatusPending  StageStatus = "pending"
	StatusRan      StageStatus = "ran"
	StatusSkipped  StageStatus = "skipped"
	StatusDisabled StageStatus = "disabled"
	StatusFailed   StageStatus = "failed"
	// StatusError marks a stage whose process could not be run or captured.
	StatusError StageStatus = "error"
)

// StageInfo describes one stage of a pipeline run and, once it has run, its outcome.
type StageInfo struct {
	Index int
	Name  string
	// Gated stages depend on refinement and are disabled when refinement is skipped.
	Gated bool
	// Artifact is the skip-if-exists path of the stage, if any.
	Artifact string

	Status   StageStatus
	ExitCode int
	Duration time.Duration
}

var (
	StartStage = &StageInfo{Index: -1, Name: "start"}
	EndStage   = &StageInfo{Index: -1, Name: "end"}
)
