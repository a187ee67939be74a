package measure

import (
	"time"

	"github.com/askiada/featbench/pkg/pipeline/model"
)

type pipelineMeasure struct {
	Measure
}

func (pm *pipelineMeasure) New() error {
	return nil
}

func (pm *pipelineMeasure) PrepareStage(_ []*model.StageInfo, stage *model.StageInfo) error {
	pm.AddMetric(stage.Name)

	return nil
}

func (pm *pipelineMeasure) OnStageDone(stage *model.StageInfo) error {
	mt := pm.GetMetric(stage.Name)
	if mt == nil {
		mt = pm.AddMetric(stage.Name)
	}
	mt.AddDuration(stage.Duration)
	mt.SetOutcome(stage.Status, stage.ExitCode)

	return nil
}

func (pm *pipelineMeasure) Finish(totalDuration time.Duration) error {
	pm.SetTotalDuration(totalDuration)

	return nil
}

// PipelineMeasure returns a pipeline option feeding measure with every stage outcome.
func PipelineMeasure(measure Measure) model.PipelineOption {
	return &pipelineMeasure{measure}
}
