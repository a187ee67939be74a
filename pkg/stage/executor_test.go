package stage_test

import (
	"bytes"
	"context"
	"os/exec"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/featbench/pkg/stage"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh is not available")
	}
}

func TestProcessExecutorCapturesStdout(t *testing.T) {
	t.Parallel()
	requireShell(t)

	executor := stage.NewProcessExecutor(zerolog.Nop(), "")
	var out bytes.Buffer
	code, err := executor.Execute(context.Background(), &stage.Invocation{
		Name:    "raw-evaluation",
		Command: "sh",
		Args:    []string{"-c", "echo completeness 0.42"},
	}, &out)
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "completeness 0.42\n", out.String())
}

func TestProcessExecutorExitCode(t *testing.T) {
	t.Parallel()
	requireShell(t)

	executor := stage.NewProcessExecutor(zerolog.Nop(), "")
	code, err := executor.Execute(context.Background(), &stage.Invocation{
		Name:    "refinement-solve",
		Command: "sh",
		Args:    []string{"-c", "exit 3"},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, code)
}

func TestProcessExecutorForwardsOutputToLog(t *testing.T) {
	t.Parallel()
	requireShell(t)

	var logs bytes.Buffer
	executor := stage.NewProcessExecutor(zerolog.New(&logs), "")
	code, err := executor.Execute(context.Background(), &stage.Invocation{
		Name:    "raw-reconstruction",
		Command: "sh",
		Args:    []string{"-c", "echo progress; echo warning 1>&2"},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Contains(t, logs.String(), `"message":"progress"`)
	assert.Contains(t, logs.String(), `"message":"warning"`)
	assert.Contains(t, logs.String(), `"stream":"stderr"`)
	assert.Contains(t, logs.String(), `"stage":"raw-reconstruction"`)
}

func TestProcessExecutorWorkingDirectory(t *testing.T) {
	t.Parallel()
	requireShell(t)

	dir := t.TempDir()
	executor := stage.NewProcessExecutor(zerolog.Nop(), dir)
	var out bytes.Buffer
	_, err := executor.Execute(context.Background(), &stage.Invocation{
		Name:    "pwd",
		Command: "sh",
		Args:    []string{"-c", "pwd -P"},
	}, &out)
	require.NoError(t, err)
	assert.NotEmpty(t, out.String())
}

func TestProcessExecutorStartError(t *testing.T) {
	t.Parallel()

	executor := stage.NewProcessExecutor(zerolog.Nop(), "")
	_, err := executor.Execute(context.Background(), &stage.Invocation{
		Name:    "refinement-solve",
		Command: "/nonexistent/multi-view-refinement/solve",
	}, nil)
	assert.ErrorIs(t, err, stage.ErrStart)
}

func TestProcessExecutorCancelled(t *testing.T) {
	t.Parallel()
	requireShell(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	executor := stage.NewProcessExecutor(zerolog.Nop(), "")
	_, err := executor.Execute(ctx, &stage.Invocation{
		Name:    "match-graph",
		Command: "sh",
		Args:    []string{"-c", "sleep 5"},
	}, nil)
	assert.Error(t, err)
}
