package measure_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/featbench/pkg/pipeline/measure"
	"github.com/askiada/featbench/pkg/pipeline/model"
)

func TestPipelineMeasure(t *testing.T) {
	t.Parallel()

	msr := measure.NewDefaultMeasure()
	opt := measure.PipelineMeasure(msr)
	require.NoError(t, opt.New())

	first := &model.StageInfo{Name: "match-graph"}
	second := &model.StageInfo{Name: "refinement-solve", Gated: true}
	require.NoError(t, opt.PrepareStage([]*model.StageInfo{model.StartStage}, first))
	require.NoError(t, opt.PrepareStage([]*model.StageInfo{first}, second))

	first.Status = model.StatusRan
	first.Duration = 1500 * time.Millisecond
	require.NoError(t, opt.OnStageDone(first))
	second.Status = model.StatusFailed
	second.ExitCode = 1
	second.Duration = 20 * time.Millisecond
	require.NoError(t, opt.OnStageDone(second))
	require.NoError(t, opt.Finish(2*time.Second))

	assert.Equal(t, []string{"match-graph", "refinement-solve"}, msr.Names())
	assert.Equal(t, 2*time.Second, msr.GetMetric("match-graph").GetDuration())
	assert.Equal(t, model.StatusRan, msr.GetMetric("match-graph").Status())
	assert.Equal(t, model.StatusFailed, msr.GetMetric("refinement-solve").Status())
	assert.Equal(t, 1, msr.GetMetric("refinement-solve").ExitCode())
	assert.Equal(t, 2*time.Second, msr.GetTotalDuration())
}

func TestAddMetricIsIdempotent(t *testing.T) {
	t.Parallel()

	msr := measure.NewDefaultMeasure()
	first := msr.AddMetric("raw-evaluation")
	second := msr.AddMetric("raw-evaluation")
	assert.Same(t, first, second)
	assert.Len(t, msr.AllMetrics(), 1)
	assert.Equal(t, model.StatusPending, first.Status())
}
