package stage

import (
	"bufio"
	"context"
	"io"
	"os/exec"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const maxLineSize = 1024 * 1024

// Executor spawns the process described by an invocation and blocks until it exits.
type Executor interface {
	// Execute runs the invocation. When stdout is not nil it receives the
	// process standard output verbatim. The returned code is the process exit status.
	Execute(ctx context.Context, inv *Invocation, stdout io.Writer) (int, error)
}

// ProcessExecutor runs invocations as operating system processes.
// Lines written by the process on stderr, and on stdout when it is not
// captured, are forwarded to the logger.
type ProcessExecutor struct {
	log zerolog.Logger
	dir string
}

// NewProcessExecutor creates an executor running commands from dir. An empty
// dir means the current working directory.
func NewProcessExecutor(log zerolog.Logger, dir string) *ProcessExecutor {
	return &ProcessExecutor{log: log, dir: dir}
}

// Execute implements Executor.
func (e *ProcessExecutor) Execute(ctx context.Context, inv *Invocation, stdout io.Writer) (int, error) {
	//nolint:gosec // commands come from the fixed stage table
	cmd := exec.CommandContext(ctx, inv.Command, inv.Args...)
	cmd.Dir = e.dir

	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		return -1, errors.Wrap(err, "unable to open stderr pipe")
	}

	var stdoutPipe io.ReadCloser
	if stdout != nil {
		cmd.Stdout = stdout
	} else {
		stdoutPipe, err = cmd.StdoutPipe()
		if err != nil {
			return -1, errors.Wrap(err, "unable to open stdout pipe")
		}
	}

	if err := cmd.Start(); err != nil {
		return -1, errors.Wrapf(ErrStart, "%s: %v", inv.Command, err)
	}

	log := e.log.With().Str("stage", inv.Name).Int("pid", cmd.Process.Pid).Logger()

	// Both pipes must be drained before Wait.
	var grp errgroup.Group
	grp.Go(func() error {
		return forwardLines(stderrPipe, log, "stderr")
	})
	if stdoutPipe != nil {
		grp.Go(func() error {
			return forwardLines(stdoutPipe, log, "stdout")
		})
	}
	drainErr := grp.Wait()

	waitErr := cmd.Wait()
	if ctx.Err() != nil {
		return -1, errors.Wrapf(ctx.Err(), "stage %s interrupted", inv.Name)
	}

	var exitErr *exec.ExitError
	switch {
	case waitErr == nil:
	case errors.As(waitErr, &exitErr):
		return exitErr.ExitCode(), nil
	default:
		return -1, errors.Wrapf(waitErr, "unable to wait for %s", inv.Command)
	}

	if drainErr != nil {
		log.Warn().Err(drainErr).Msg("process output was truncated in the log")
	}

	return 0, nil
}

func forwardLines(r io.Reader, log zerolog.Logger, stream string) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		log.Info().Str("stream", stream).Msg(scanner.Text())
	}

	err := scanner.Err()
	if err != nil {
		// keep reading so the process never blocks on a full pipe
		_, _ = io.Copy(io.Discard, r)

		return errors.Wrapf(err, "unable to read %s", stream)
	}

	return nil
}

var _ Executor = (*ProcessExecutor)(nil)
