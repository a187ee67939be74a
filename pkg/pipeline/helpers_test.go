package pipeline_test

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/spf13/afero"

	"github.com/askiada/featbench/pkg/method"
	"github.com/askiada/featbench/pkg/paths"
	"github.com/askiada/featbench/pkg/pipeline"
	"github.com/askiada/featbench/pkg/stage"
)

func testConfig(t *testing.T, skipRefinement bool) pipeline.Config {
	t.Helper()

	cfg, err := method.NewDefaultRegistry().Lookup("sift")
	if err != nil {
		t.Fatal(err)
	}
	tools := pipeline.DefaultTools()
	tools.ColmapPath = "/opt/colmap/bin"
	tools.EvaluationPath = "/opt/eth3d/build"

	return pipeline.Config{
		Method:         cfg,
		Dataset:        "office",
		Paths:          paths.Resolve(paths.DefaultLayout(), "office", "sift"),
		Tools:          tools,
		SkipRefinement: skipRefinement,
	}
}

// recordingRunner records the invocations it receives and never spawns anything.
type recordingRunner struct {
	mu    sync.Mutex
	calls []*stage.Invocation
	codes map[string]int
	errs  map[string]error
}

func (r *recordingRunner) Run(_ context.Context, inv *stage.Invocation) (stage.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, inv)

	return stage.Result{ExitCode: r.codes[inv.Name]}, r.errs[inv.Name]
}

func (r *recordingRunner) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.calls))
	for i, inv := range r.calls {
		names[i] = inv.Name
	}

	return names
}

// toolExecutor simulates the external tools on an in-memory filesystem: it
// writes the file named by --output_file and prints a report on stdout.
type toolExecutor struct {
	fs    afero.Fs
	mu    sync.Mutex
	calls []string
}

func (e *toolExecutor) Execute(_ context.Context, inv *stage.Invocation, stdout io.Writer) (int, error) {
	e.mu.Lock()
	e.calls = append(e.calls, inv.Name)
	e.mu.Unlock()

	if out, ok := inv.Arg("--output_file"); ok {
		if err := afero.WriteFile(e.fs, out, []byte(inv.Name), 0o644); err != nil {
			return -1, err
		}
	}
	if stdout != nil {
		ply, _ := inv.Arg("--reconstruction_ply_path")
		if _, err := io.WriteString(stdout, "evaluated "+ply+"\n"); err != nil {
			return -1, err
		}
	}

	return 0, nil
}

func (e *toolExecutor) names() []string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return append([]string(nil), e.calls...)
}
