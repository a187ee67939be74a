// Package measure records how long each stage of a pipeline run took.
package measure

import (
	"sync"
	"time"
)

type DefaultMeasure struct {
	mu    *sync.Mutex
	Steps map[string]Metric
	order []string
	total time.Duration
}

func NewDefaultMeasure() *DefaultMeasure {
	return &DefaultMeasure{
		mu:    &sync.Mutex{},
		Steps: make(map[string]Metric),
	}
}

func (m *DefaultMeasure) AddMetric(name string) Metric {
	m.mu.Lock()
	defer m.mu.Unlock()
	if mt, ok := m.Steps[name]; ok {
		return mt
	}
	mt := &DefaultMetric{
		mu: &sync.Mutex{},
	}
	m.Steps[name] = mt
	m.order = append(m.order, name)

	return mt
}

func (m *DefaultMeasure) GetMetric(name string) Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.Steps[name]
}

func (m *DefaultMeasure) AllMetrics() map[string]Metric {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.Steps
}

func (m *DefaultMeasure) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]string(nil), m.order...)
}

func (m *DefaultMeasure) SetTotalDuration(total time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.total = total
}

func (m *DefaultMeasure) GetTotalDuration() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.total
}

var _ Measure = (*DefaultMeasure)(nil)
