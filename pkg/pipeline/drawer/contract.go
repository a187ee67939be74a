package drawer

import (
	"time"

	"github.com/askiada/featbench/pkg/pipeline/measure"
	"github.com/askiada/featbench/pkg/pipeline/model"
)

// Drawer is an interface that defines the methods for drawing a pipeline.
type Drawer interface {
	// AddStage adds a stage to the pipeline drawer.
	AddStage(stageName string) error
	// AddLink adds a link between parent and children stages.
	AddLink(parentStageName, childStageName string) error
	// SetStatus records the outcome of a stage.
	SetStatus(stageName string, status model.StageStatus) error
	// SetTotalTime sets the total time for the stage.
	SetTotalTime(stageName string, totalTime time.Duration) error
	// AddMeasure adds a measure to the pipeline drawer.
	AddMeasure(measure measure.Measure) error
	// Draw creates a file with the pipeline graph.
	Draw() error
}
