package model

import "time"

// PipelineOption defines the interface for pipeline options.
type PipelineOption interface {
	// New initialises the pipeline option.
	New() error
	// PrepareStage runs once per stage, in execution order, before the pipeline runs.
	// Stages without dependencies receive StartStage as their only parent.
	PrepareStage(parents []*StageInfo, stage *StageInfo) error
	// OnStageDone runs after each stage reached a final status, disabled ones included.
	OnStageDone(stage *StageInfo) error
	// Finish runs after the pipeline is finished.
	Finish(totalDuration time.Duration) error
}
