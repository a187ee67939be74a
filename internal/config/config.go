// Package config loads the featbench configuration: tool locations, the dataset
// and output layout, method table overrides and the failure policy.
package config

import (
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/askiada/featbench/pkg/method"
	"github.com/askiada/featbench/pkg/paths"
	"github.com/askiada/featbench/pkg/pipeline"
)

const (
	// DefaultConfigFile is read from the working directory when no --config is given.
	DefaultConfigFile = "featbench.yaml"
	// SkipRefinementEnv disables the refinement stages when defined, whatever its value.
	SkipRefinementEnv = "SKIP_REFINEMENT"
	envPrefix         = "FEATBENCH"
)

// ToolsConfig holds the locations of the benchmark programs.
type ToolsConfig struct {
	Python               string `mapstructure:"python"`
	MatchGraphScript     string `mapstructure:"match_graph_script"`
	Solver               string `mapstructure:"solver"`
	ReconstructionScript string `mapstructure:"reconstruction_script"`
	EvaluationBinary     string `mapstructure:"evaluation_binary"`
}

// LayoutConfig holds the dataset and output roots.
type LayoutConfig struct {
	DatasetsRoot string `mapstructure:"datasets_root"`
	OutputDir    string `mapstructure:"output_dir"`
}

// MethodConfig adds or overrides one method. Non-zero fields are merged onto
// the existing entry. Size fields and matcher fields land in separate tables;
// a new method needs both to be usable.
type MethodConfig struct {
	MaxEdge     int     `mapstructure:"max_edge"`
	MaxSumEdges int     `mapstructure:"max_sum_edges"`
	Matcher     string  `mapstructure:"matcher"`
	Threshold   float64 `mapstructure:"threshold"`
}

// Config holds all configuration options for featbench.
type Config struct {
	Tools         ToolsConfig             `mapstructure:"tools"`
	Layout        LayoutConfig            `mapstructure:"layout"`
	Methods       map[string]MethodConfig `mapstructure:"methods"`
	FailurePolicy string                  `mapstructure:"failure_policy"`
	LogLevel      string                  `mapstructure:"log_level"`
}

// Defaults returns the configuration reproducing the stock benchmark layout.
func Defaults() Config {
	tools := pipeline.DefaultTools()
	layout := paths.DefaultLayout()

	return Config{
		Tools: ToolsConfig{
			Python:               tools.Python,
			MatchGraphScript:     tools.MatchGraphScript,
			Solver:               tools.Solver,
			ReconstructionScript: tools.ReconstructionScript,
			EvaluationBinary:     tools.EvaluationBinary,
		},
		Layout: LayoutConfig{
			DatasetsRoot: layout.DatasetsRoot,
			OutputDir:    layout.OutputDir,
		},
		FailurePolicy: string(pipeline.PolicyContinue),
		LogLevel:      "info",
	}
}

// Load reads the configuration file, if any, on top of the defaults.
// An explicit cfgFile must exist; the default file is optional.
func Load(fs afero.Fs, cfgFile string) (Config, error) {
	v := viper.New()
	v.SetFs(fs)

	defaults := Defaults()
	v.SetDefault("tools.python", defaults.Tools.Python)
	v.SetDefault("tools.match_graph_script", defaults.Tools.MatchGraphScript)
	v.SetDefault("tools.solver", defaults.Tools.Solver)
	v.SetDefault("tools.reconstruction_script", defaults.Tools.ReconstructionScript)
	v.SetDefault("tools.evaluation_binary", defaults.Tools.EvaluationBinary)
	v.SetDefault("layout.datasets_root", defaults.Layout.DatasetsRoot)
	v.SetDefault("layout.output_dir", defaults.Layout.OutputDir)
	v.SetDefault("failure_policy", defaults.FailurePolicy)
	v.SetDefault("log_level", defaults.LogLevel)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	switch {
	case cfgFile != "":
		v.SetConfigFile(cfgFile)
	default:
		exists, err := afero.Exists(fs, DefaultConfigFile)
		if err != nil {
			return Config{}, errors.Wrapf(err, "unable to check %s", DefaultConfigFile)
		}
		if exists {
			v.SetConfigFile(DefaultConfigFile)
		}
	}

	if v.ConfigFileUsed() != "" {
		err := v.ReadInConfig()
		if err != nil {
			return Config{}, errors.Wrapf(err, "unable to read config file %s", v.ConfigFileUsed())
		}
	}

	var cfg Config
	err := v.Unmarshal(&cfg)
	if err != nil {
		return Config{}, errors.Wrap(err, "unable to decode config")
	}

	return cfg, nil
}

// Registry merges the method overrides onto the default tables and validates the result.
func (c Config) Registry() (*method.Registry, error) {
	sizes := method.DefaultSizes()
	matchers := method.DefaultMatchers()

	names := make([]string, 0, len(c.Methods))
	for name := range c.Methods {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		mc := c.Methods[name]
		if mc.MaxEdge != 0 || mc.MaxSumEdges != 0 {
			size := sizes[name]
			if mc.MaxEdge != 0 {
				size.MaxEdge = mc.MaxEdge
			}
			if mc.MaxSumEdges != 0 {
				size.MaxSumEdges = mc.MaxSumEdges
			}
			sizes[name] = size
		}

		matcher, known := matchers[name]
		if mc.Matcher == "" && (!known || mc.Threshold == 0) {
			continue
		}
		if mc.Matcher != "" {
			matcher.Kind = method.MatcherKind(mc.Matcher)
		}
		if mc.Threshold != 0 {
			matcher.Threshold = mc.Threshold
		}
		matchers[name] = matcher
	}

	reg, err := method.NewRegistry(sizes, matchers)
	if err != nil {
		return nil, errors.Wrap(err, "invalid methods section")
	}

	return reg, nil
}

// PathLayout returns the layout handed to the path resolver.
func (c Config) PathLayout() paths.Layout {
	return paths.Layout{
		DatasetsRoot: c.Layout.DatasetsRoot,
		OutputDir:    c.Layout.OutputDir,
	}
}

// PipelineTools returns the tool locations completed with the COLMAP and
// evaluation folders given on the command line.
func (c Config) PipelineTools(colmapPath, evaluationPath string) pipeline.Tools {
	return pipeline.Tools{
		Python:               c.Tools.Python,
		MatchGraphScript:     c.Tools.MatchGraphScript,
		Solver:               c.Tools.Solver,
		ReconstructionScript: c.Tools.ReconstructionScript,
		ColmapPath:           colmapPath,
		EvaluationPath:       evaluationPath,
		EvaluationBinary:     c.Tools.EvaluationBinary,
	}
}

// SkipRefinement reports whether the refinement toggle is defined in the environment.
// An empty value counts as defined.
func SkipRefinement(lookupEnv func(string) (string, bool)) bool {
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}
	_, ok := lookupEnv(SkipRefinementEnv)

	return ok
}
