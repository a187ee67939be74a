package pipeline

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrRunnerMustBeSet  = errors.New("runner must be set")
	ErrMethodMustBeSet  = errors.New("method must be set")
	ErrDatasetMustBeSet = errors.New("dataset must be set")
	ErrToolMustBeSet    = errors.New("tool location must be set")
	ErrUnknownPolicy    = errors.New("unknown failure policy")
	ErrAlreadyRun       = errors.New("pipeline already ran")
	ErrStageFailed      = errors.New("stage failed")
)

// StageError reports a stage whose process exited with a non-zero status.
type StageError struct {
	Stage    string
	ExitCode int
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s exited with status %d", e.Stage, e.ExitCode)
}

// Is lets errors.Is match ErrStageFailed.
func (e *StageError) Is(target error) bool {
	return target == ErrStageFailed
}
