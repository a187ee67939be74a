package stage

import (
	"context"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

var (
	ErrStart   = errors.New("unable to start stage process")
	ErrCapture = errors.New("unable to create stage output file")
	ErrNoStage = errors.New("invocation must be set")
)

// Result is the outcome of one stage run.
type Result struct {
	Skipped  bool
	ExitCode int
	Duration time.Duration
}

// Failed reports whether the stage ran and exited with a non-zero status.
func (r Result) Failed() bool {
	return !r.Skipped && r.ExitCode != 0
}

// Runner applies the skip and capture policies around an Executor.
type Runner struct {
	fs       afero.Fs
	executor Executor
	log      zerolog.Logger
}

// NewRunner creates a runner checking artifacts and writing captures on fs.
func NewRunner(fs afero.Fs, executor Executor, log zerolog.Logger) *Runner {
	return &Runner{
		fs:       fs,
		executor: executor,
		log:      log,
	}
}

// Run executes the invocation unless its artifact already exists.
// A non-zero exit status is reported in the result, not as an error.
func (r *Runner) Run(ctx context.Context, inv *Invocation) (Result, error) {
	if inv == nil {
		return Result{}, ErrNoStage
	}
	log := r.log.With().Str("stage", inv.Name).Logger()

	if inv.SkipIfExists != "" {
		exists, err := afero.Exists(r.fs, inv.SkipIfExists)
		if err != nil {
			return Result{}, errors.Wrapf(err, "unable to check %s", inv.SkipIfExists)
		}
		if exists {
			log.Info().Str("artifact", inv.SkipIfExists).Msg("artifact exists, skipping stage")

			return Result{Skipped: true}, nil
		}
	}

	var capture afero.File
	if inv.Capture != "" {
		file, err := r.fs.OpenFile(inv.Capture, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
		if err != nil {
			return Result{}, errors.Wrapf(ErrCapture, "%s: %v", inv.Capture, err)
		}
		capture = file
	}

	log.Debug().Str("command", inv.CommandLine()).Msg("starting stage")

	start := time.Now()
	var (
		code int
		err  error
	)
	if capture != nil {
		code, err = r.executor.Execute(ctx, inv, capture)
		if closeErr := capture.Close(); closeErr != nil && err == nil {
			err = errors.Wrapf(closeErr, "unable to close %s", inv.Capture)
		}
	} else {
		code, err = r.executor.Execute(ctx, inv, nil)
	}
	res := Result{ExitCode: code, Duration: time.Since(start)}
	if err != nil {
		return res, err
	}

	log.Info().Int("exit_code", code).Dur("duration", res.Duration).Msg("stage finished")

	return res, nil
}
