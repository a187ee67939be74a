package config_test

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/featbench/internal/config"
	"github.com/askiada/featbench/pkg/method"
	"github.com/askiada/featbench/pkg/paths"
	"github.com/askiada/featbench/pkg/pipeline"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load(afero.NewMemMapFs(), "")
	require.NoError(t, err)
	assert.Equal(t, config.Defaults().Tools, cfg.Tools)
	assert.Equal(t, paths.DefaultLayout(), cfg.PathLayout())
	assert.Equal(t, "continue", cfg.FailurePolicy)
	assert.Empty(t, cfg.Methods)
}

func TestLoadDefaultFile(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, config.DefaultConfigFile, []byte(`
tools:
  python: python3
layout:
  datasets_root: /data/ETH3D
failure_policy: abort
methods:
  orb:
    max_edge: 1200
    max_sum_edges: 2400
    matcher: ratio
    threshold: 0.75
  sift:
    matcher: similarity
    threshold: 0.9
`), 0o644))

	cfg, err := config.Load(fs, "")
	require.NoError(t, err)
	assert.Equal(t, "python3", cfg.Tools.Python)
	assert.Equal(t, "multi-view-refinement/build/solve", cfg.Tools.Solver)
	assert.Equal(t, "/data/ETH3D", cfg.Layout.DatasetsRoot)
	assert.Equal(t, "output", cfg.Layout.OutputDir)
	assert.Equal(t, "abort", cfg.FailurePolicy)

	reg, err := cfg.Registry()
	require.NoError(t, err)

	orb, err := reg.Lookup("orb")
	require.NoError(t, err)
	assert.Equal(t, 1200, orb.MaxEdge)
	assert.InDelta(t, 0.75, orb.Threshold, 1e-9)

	sift, err := reg.Lookup("sift")
	require.NoError(t, err)
	assert.Equal(t, method.MatcherSimilarity, sift.Kind)
	assert.Equal(t, 3200, sift.MaxSumEdges)
}

func TestLoadExplicitFileMissing(t *testing.T) {
	t.Parallel()

	_, err := config.Load(afero.NewMemMapFs(), "missing.yaml")
	assert.Error(t, err)
}

func TestRegistryPartialMethodIsUnknown(t *testing.T) {
	t.Parallel()

	cfg := config.Defaults()
	cfg.Methods = map[string]config.MethodConfig{
		"akaze": {MaxEdge: 1000, MaxSumEdges: 2000},
	}
	reg, err := cfg.Registry()
	require.NoError(t, err)

	_, err = reg.Lookup("akaze")
	assert.ErrorIs(t, err, method.ErrUnknownMethod)
}

func TestRegistryPartialOverrideMerges(t *testing.T) {
	t.Parallel()

	cfg := config.Defaults()
	cfg.Methods = map[string]config.MethodConfig{
		"sift":       {Threshold: 0.6},
		"superpoint": {MaxEdge: 1200},
		"r2d2":       {MaxSumEdges: 4000, Matcher: "ratio"},
	}
	reg, err := cfg.Registry()
	require.NoError(t, err)

	sift, err := reg.Lookup("sift")
	require.NoError(t, err)
	assert.Equal(t, method.MatcherRatio, sift.Kind)
	assert.InDelta(t, 0.6, sift.Threshold, 1e-9)
	assert.Equal(t, method.Size{MaxEdge: 1600, MaxSumEdges: 3200}, sift.Size)

	superpoint, err := reg.Lookup("superpoint")
	require.NoError(t, err)
	assert.Equal(t, method.Size{MaxEdge: 1200, MaxSumEdges: 2800}, superpoint.Size)
	assert.InDelta(t, 0.755, superpoint.Threshold, 1e-9)

	r2d2, err := reg.Lookup("r2d2")
	require.NoError(t, err)
	assert.Equal(t, method.Size{MaxEdge: 1600, MaxSumEdges: 4000}, r2d2.Size)
	assert.Equal(t, method.Matcher{Kind: method.MatcherRatio, Threshold: 0.9}, r2d2.Matcher)
}

func TestLoadThresholdOnlyOverride(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, config.DefaultConfigFile, []byte(`
methods:
  sift:
    threshold: 0.6
`), 0o644))

	cfg, err := config.Load(fs, "")
	require.NoError(t, err)
	reg, err := cfg.Registry()
	require.NoError(t, err)

	sift, err := reg.Lookup("sift")
	require.NoError(t, err)
	assert.InDelta(t, 0.6, sift.Threshold, 1e-9)
}

func TestRegistryInvalidOverride(t *testing.T) {
	t.Parallel()

	cfg := config.Defaults()
	cfg.Methods = map[string]config.MethodConfig{
		"sift": {Matcher: "ratio", Threshold: 1.5},
	}
	_, err := cfg.Registry()
	assert.ErrorIs(t, err, method.ErrInvalidConfig)
}

func TestPipelineTools(t *testing.T) {
	t.Parallel()

	tools := config.Defaults().PipelineTools("/opt/colmap", "/opt/eval")
	expected := pipeline.DefaultTools()
	expected.ColmapPath = "/opt/colmap"
	expected.EvaluationPath = "/opt/eval"
	assert.Equal(t, expected, tools)
}

func TestSkipRefinement(t *testing.T) {
	t.Parallel()

	env := func(values map[string]string) func(string) (string, bool) {
		return func(key string) (string, bool) {
			v, ok := values[key]
			return v, ok
		}
	}

	assert.False(t, config.SkipRefinement(env(nil)))
	assert.True(t, config.SkipRefinement(env(map[string]string{"SKIP_REFINEMENT": ""})))
	assert.True(t, config.SkipRefinement(env(map[string]string{"SKIP_REFINEMENT": "0"})))
}
