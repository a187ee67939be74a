package drawer_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/featbench/pkg/pipeline/drawer"
	"github.com/askiada/featbench/pkg/pipeline/measure"
	"github.com/askiada/featbench/pkg/pipeline/model"
)

func TestPipelineDrawer(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	msr := measure.NewDefaultMeasure()
	opts := []model.PipelineOption{
		measure.PipelineMeasure(msr),
		drawer.PipelineDrawer(drawer.NewDOTDrawer(fs, "output/plan.dot"), msr),
	}

	match := &model.StageInfo{Name: "match-graph"}
	solve := &model.StageInfo{Name: "refinement-solve", Gated: true}
	raw := &model.StageInfo{Name: "raw-reconstruction"}

	for _, opt := range opts {
		require.NoError(t, opt.New())
		require.NoError(t, opt.PrepareStage([]*model.StageInfo{model.StartStage}, match))
		require.NoError(t, opt.PrepareStage([]*model.StageInfo{match}, solve))
		require.NoError(t, opt.PrepareStage([]*model.StageInfo{match}, raw))
	}

	match.Status, match.Duration = model.StatusRan, 3*time.Second
	solve.Status = model.StatusDisabled
	raw.Status, raw.Duration = model.StatusFailed, time.Second
	for _, opt := range opts {
		for _, stage := range []*model.StageInfo{match, solve, raw} {
			require.NoError(t, opt.OnStageDone(stage))
		}
	}
	for _, opt := range opts {
		require.NoError(t, opt.Finish(4*time.Second))
	}

	got, err := afero.ReadFile(fs, "output/plan.dot")
	require.NoError(t, err)
	content := strings.ToLower(string(got))

	assert.Contains(t, content, "strict digraph")
	assert.Contains(t, content, `"start" -> "match-graph"`)
	assert.Contains(t, content, `"match-graph" -> "refinement-solve"`)
	assert.Contains(t, content, `"raw-reconstruction" -> "end"`)
	assert.Contains(t, content, `"refinement-solve" -> "end"`)
	assert.Contains(t, content, `style="dashed"`)
	assert.Contains(t, content, `color="red"`)
	// slowest stage is red, fastest blue
	assert.Contains(t, content, `fillcolor="#f00000"`)
	assert.Contains(t, content, `fillcolor="#0000f0"`)
}

func TestDOTDrawerLeaves(t *testing.T) {
	t.Parallel()

	d := drawer.NewDOTDrawer(afero.NewMemMapFs(), "plan.dot")
	for _, name := range []string{"start", "end", "a", "b", "c"} {
		require.NoError(t, d.AddStage(name))
	}
	require.NoError(t, d.AddLink("start", "a"))
	require.NoError(t, d.AddLink("a", "b"))
	require.NoError(t, d.AddLink("a", "c"))

	leaves, err := d.Leaves()
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, leaves)
}

func TestDOTDrawerUnknownStage(t *testing.T) {
	t.Parallel()

	d := drawer.NewDOTDrawer(afero.NewMemMapFs(), "plan.dot")
	assert.Error(t, d.SetStatus("missing", model.StatusRan))
	assert.Error(t, d.AddLink("missing", "other"))
}

var errDiskFull = errors.New("disk full")

// closeFailFs returns files whose Close reports errDiskFull.
type closeFailFs struct {
	afero.Fs
}

func (fs closeFailFs) Create(name string) (afero.File, error) {
	file, err := fs.Fs.Create(name)
	if err != nil {
		return nil, err
	}

	return closeFailFile{File: file}, nil
}

type closeFailFile struct {
	afero.File
}

func (f closeFailFile) Close() error {
	_ = f.File.Close()

	return errDiskFull
}

func TestDOTDrawerDrawCloseError(t *testing.T) {
	t.Parallel()

	d := drawer.NewDOTDrawer(closeFailFs{Fs: afero.NewMemMapFs()}, "plan.dot")
	require.NoError(t, d.AddStage("match-graph"))

	err := d.Draw()
	require.ErrorIs(t, err, errDiskFull)
	assert.Contains(t, err.Error(), "plan.dot")
}

func TestDOTDrawerErrorStatus(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	d := drawer.NewDOTDrawer(fs, "plan.dot")
	require.NoError(t, d.AddStage("raw-evaluation"))
	require.NoError(t, d.SetStatus("raw-evaluation", model.StatusError))
	require.NoError(t, d.Draw())

	got, err := afero.ReadFile(fs, "plan.dot")
	require.NoError(t, err)
	assert.Contains(t, string(got), `color="red"`)
	assert.Contains(t, string(got), `tooltip="error"`)
}
