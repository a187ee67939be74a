package pipeline

import (
	"time"

	"github.com/askiada/featbench/pkg/pipeline/model"
)

// Report summarises a pipeline run.
type Report struct {
	RunID    string
	Method   string
	Dataset  string
	Duration time.Duration
	// Stages holds every stage in execution order, including disabled ones and,
	// when the run stopped early, the pending ones.
	Stages []model.StageInfo
	// ReportFiles are the evaluation reports written by the run. Stages in
	// StatusError are left out: their process never ran.
	ReportFiles []string
}

func (p *Pipeline) report(total time.Duration) *Report {
	report := &Report{
		RunID:    p.runID,
		Method:   p.cfg.Method.Name,
		Dataset:  p.cfg.Dataset,
		Duration: total,
		Stages:   make([]model.StageInfo, 0, len(p.stages)),
	}
	for _, info := range p.stages {
		report.Stages = append(report.Stages, *info)
		capture := p.invocations[info.Name].Capture
		if capture != "" && (info.Status == model.StatusRan || info.Status == model.StatusFailed) {
			report.ReportFiles = append(report.ReportFiles, capture)
		}
	}

	return report
}

// Failures returns the stages that exited with a non-zero status.
func (r *Report) Failures() []model.StageInfo {
	var failed []model.StageInfo
	for _, info := range r.Stages {
		if info.Status == model.StatusFailed {
			failed = append(failed, info)
		}
	}

	return failed
}

// Executed returns the names of the stages whose process ran to completion.
func (r *Report) Executed() []string {
	var names []string
	for _, info := range r.Stages {
		if info.Status == model.StatusRan || info.Status == model.StatusFailed {
			names = append(names, info.Name)
		}
	}

	return names
}

// Stage returns the named stage, if present.
func (r *Report) Stage(name string) (model.StageInfo, bool) {
	for _, info := range r.Stages {
		if info.Name == name {
			return info, true
		}
	}

	return model.StageInfo{}, false
}
