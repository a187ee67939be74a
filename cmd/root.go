// Package cmd implements the featbench command line.
package cmd

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/askiada/featbench/internal/config"
	"github.com/askiada/featbench/internal/logger"
	"github.com/askiada/featbench/pkg/stage"
)

var version = "dev"

// app carries what the commands need from the outside world.
type app struct {
	fs          afero.Fs
	lookupEnv   func(string) (string, bool)
	logOut      io.Writer
	newExecutor func(log zerolog.Logger) stage.Executor

	cfgFile  string
	logLevel string
}

func defaultApp() *app {
	return &app{
		fs:        afero.NewOsFs(),
		lookupEnv: os.LookupEnv,
		logOut:    os.Stderr,
		newExecutor: func(log zerolog.Logger) stage.Executor {
			return stage.NewProcessExecutor(log, "")
		},
	}
}

func (a *app) loadConfig() (config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(a.fs, a.cfgFile)
	if err != nil {
		return config.Config{}, zerolog.Nop(), err
	}

	level := cfg.LogLevel
	if a.logLevel != "" {
		level = a.logLevel
	}
	log, err := logger.NewConsole(a.logOut, level)
	if err != nil {
		return config.Config{}, zerolog.Nop(), err
	}

	return cfg, log, nil
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "featbench",
		Short: "Benchmark sparse feature methods on multi-view reconstruction",
		Long: `featbench computes the tentative match graph of a feature method on a dataset,
optionally refines it, reconstructs the scene with and without refinement and
evaluates both reconstructions against the ground truth scan.

Set SKIP_REFINEMENT (any value) to run the raw branch only.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "",
		"config file (default: ./"+config.DefaultConfigFile+" when present)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "",
		"log level: debug, info, warn, error (default from config, info)")

	run := newRunCmd(a)
	root.AddCommand(run, newMethodsCmd(a), newPathsCmd(a))

	// featbench --method_name ... behaves like featbench run --method_name ...
	root.Flags().AddFlagSet(run.Flags())
	root.RunE = run.RunE

	return root
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	root := newRootCmd(defaultApp())
	err := root.ExecuteContext(ctx)
	if err != nil {
		root.PrintErrln("Error:", err)
	}

	return err
}

// SetVersion sets the version string (called from main with ldflags)
func SetVersion(v string) {
	version = v
}
