package drawer

import (
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/featbench/pkg/pipeline/measure"
	"github.com/askiada/featbench/pkg/pipeline/model"
)

type pipelineDrawer struct {
	Drawer
	m measure.Measure
}

func (pd *pipelineDrawer) New() error {
	err := pd.AddStage(model.StartStage.Name)
	if err != nil {
		return errors.Wrap(err, "unable to add start stage to drawer")
	}
	err = pd.AddStage(model.EndStage.Name)
	if err != nil {
		return errors.Wrap(err, "unable to add end stage to drawer")
	}

	return nil
}

func (pd *pipelineDrawer) PrepareStage(parents []*model.StageInfo, stage *model.StageInfo) error {
	err := pd.AddStage(stage.Name)
	if err != nil {
		return err
	}

	for _, parent := range parents {
		err := pd.AddLink(parent.Name, stage.Name)
		if err != nil {
			return err
		}
	}

	return nil
}

func (pd *pipelineDrawer) OnStageDone(stage *model.StageInfo) error {
	return pd.SetStatus(stage.Name, stage.Status)
}

// Finish links the leaves to the end stage and draws the graph.
func (pd *pipelineDrawer) Finish(totalDuration time.Duration) error {
	leaves, err := pd.leaves()
	if err != nil {
		return err
	}
	for _, leaf := range leaves {
		err := pd.AddLink(leaf, model.EndStage.Name)
		if err != nil {
			return err
		}
	}

	err = pd.SetTotalTime(model.EndStage.Name, totalDuration)
	if err != nil {
		return errors.Wrap(err, "unable to set total time")
	}

	if pd.m != nil {
		err = pd.AddMeasure(pd.m)
		if err != nil {
			return errors.Wrap(err, "unable to add measure")
		}
	}

	err = pd.Draw()
	if err != nil {
		return errors.Wrap(err, "unable to draw pipeline")
	}

	return nil
}

func (pd *pipelineDrawer) leaves() ([]string, error) {
	leafer, ok := pd.Drawer.(interface{ Leaves() ([]string, error) })
	if !ok {
		return nil, nil
	}

	return leafer.Leaves()
}

// PipelineDrawer returns a pipeline option drawing the stage graph once the run finishes.
// The measure is optional and colours stages by duration.
func PipelineDrawer(drawer Drawer, measure measure.Measure) model.PipelineOption {
	return &pipelineDrawer{drawer, measure}
}
