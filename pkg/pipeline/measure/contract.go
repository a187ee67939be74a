package measure

import (
	"time"

	"github.com/askiada/featbench/pkg/pipeline/model"
)

// Measure collects one metric per stage.
type Measure interface {
	AddMetric(name string) Metric
	GetMetric(name string) Metric
	AllMetrics() map[string]Metric
	// Names returns the metric names in insertion order.
	Names() []string
	SetTotalDuration(total time.Duration)
	GetTotalDuration() time.Duration
}

// Metric holds the timing and outcome of one stage.
type Metric interface {
	AddDuration(elapsed time.Duration)
	GetDuration() time.Duration
	SetOutcome(status model.StageStatus, exitCode int)
	Status() model.StageStatus
	ExitCode() int
}
