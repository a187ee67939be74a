package measure

import (
	"sync"
	"time"

	"github.com/askiada/featbench/pkg/pipeline/model"
)

type DefaultMetric struct {
	mu       *sync.Mutex
	elapsed  time.Duration
	status   model.StageStatus
	exitCode int
}

func (mt *DefaultMetric) AddDuration(elapsed time.Duration) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.elapsed += elapsed
}

func (mt *DefaultMetric) GetDuration() time.Duration {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return round(mt.elapsed)
}

func (mt *DefaultMetric) SetOutcome(status model.StageStatus, exitCode int) {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	mt.status = status
	mt.exitCode = exitCode
}

func (mt *DefaultMetric) Status() model.StageStatus {
	mt.mu.Lock()
	defer mt.mu.Unlock()
	if mt.status == "" {
		return model.StatusPending
	}

	return mt.status
}

func (mt *DefaultMetric) ExitCode() int {
	mt.mu.Lock()
	defer mt.mu.Unlock()

	return mt.exitCode
}

func round(d time.Duration) time.Duration {
	switch {
	case d > time.Hour:
		d = d.Round(time.Minute)
	case d > time.Second:
		d = d.Round(time.Second)
	case d > time.Millisecond:
		d = d.Round(time.Millisecond)
	case d > time.Microsecond:
		d = d.Round(time.Microsecond)
	}

	return d
}

var _ Metric = (*DefaultMetric)(nil)
