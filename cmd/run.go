package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/askiada/featbench/internal/config"
	"github.com/askiada/featbench/internal/logger"
	"github.com/askiada/featbench/pkg/paths"
	"github.com/askiada/featbench/pkg/pipeline"
	"github.com/askiada/featbench/pkg/pipeline/drawer"
	"github.com/askiada/featbench/pkg/pipeline/measure"
	"github.com/askiada/featbench/pkg/pipeline/model"
	"github.com/askiada/featbench/pkg/stage"
)

// ErrMissingFlag is returned when a required run flag is empty.
var ErrMissingFlag = errors.New("required flag is empty")

var errDryRun = errors.New("dry run does not start stages")

type runFlags struct {
	colmapPath     string
	datasetName    string
	methodName     string
	evaluationPath string

	failurePolicy string
	dryRun        bool
	graphFile     string
	measure       bool
}

func (f *runFlags) validate() error {
	required := []struct {
		name, value string
	}{
		{"colmap_path", f.colmapPath},
		{"dataset_name", f.datasetName},
		{"method_name", f.methodName},
		{"evaluation_path", f.evaluationPath},
	}
	for _, r := range required {
		if r.value == "" {
			return errors.Wrapf(ErrMissingFlag, "--%s", r.name)
		}
	}

	return nil
}

func newRunCmd(a *app) *cobra.Command {
	flags := &runFlags{}

	run := &cobra.Command{
		Use:   "run",
		Short: "Run the benchmark pipeline for one method on one dataset",
		Example: `  featbench run --colmap_path /opt/colmap/bin --evaluation_path /opt/eth3d/build \
    --dataset_name office --method_name sift`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, flags)
		},
	}

	run.Flags().StringVar(&flags.colmapPath, "colmap_path", "", "path to the COLMAP executable folder")
	run.Flags().StringVar(&flags.datasetName, "dataset_name", "", "name of the dataset")
	run.Flags().StringVar(&flags.methodName, "method_name", "", "name of the feature method")
	run.Flags().StringVar(&flags.evaluationPath, "evaluation_path", "",
		"path to the folder holding the ETH3D multi-view evaluation binary")
	for _, name := range []string{"colmap_path", "dataset_name", "method_name", "evaluation_path"} {
		_ = run.MarkFlagRequired(name)
	}

	run.Flags().StringVar(&flags.failurePolicy, "failure-policy", "",
		"what to do when a stage fails: continue or abort (default from config, continue)")
	run.Flags().BoolVar(&flags.dryRun, "dry-run", false, "print the stage commands without running them")
	run.Flags().StringVar(&flags.graphFile, "graph-file", "",
		"write a Graphviz DOT file of the stage graph coloured by outcome")
	run.Flags().BoolVar(&flags.measure, "measure", true, "print a per-stage summary after the run")

	return run
}

func (a *app) run(cmd *cobra.Command, flags *runFlags) error {
	err := flags.validate()
	if err != nil {
		return err
	}

	cfg, log, err := a.loadConfig()
	if err != nil {
		return err
	}
	log = logger.Component(log, "cli")

	reg, err := cfg.Registry()
	if err != nil {
		return err
	}
	methodCfg, err := reg.Lookup(flags.methodName)
	if err != nil {
		return err
	}

	policyName := cfg.FailurePolicy
	if flags.failurePolicy != "" {
		policyName = flags.failurePolicy
	}
	policy, err := pipeline.ParseFailurePolicy(policyName)
	if err != nil {
		return err
	}

	layout := cfg.PathLayout()
	pipeCfg := pipeline.Config{
		Method:         methodCfg,
		Dataset:        flags.datasetName,
		Paths:          paths.Resolve(layout, flags.datasetName, methodCfg.Name),
		Tools:          cfg.PipelineTools(flags.colmapPath, flags.evaluationPath),
		SkipRefinement: config.SkipRefinement(a.lookupEnv),
		FailurePolicy:  policy,
	}

	if flags.dryRun {
		pipe, err := pipeline.New(pipeCfg, dryRunner{})
		if err != nil {
			return err
		}
		for _, inv := range pipe.Plan() {
			fmt.Fprintln(cmd.OutOrStdout(), inv.CommandLine())
		}

		return nil
	}

	err = a.fs.MkdirAll(layout.OutputDir, 0o755)
	if err != nil {
		return errors.Wrapf(err, "unable to create output folder %s", layout.OutputDir)
	}

	stageLog := logger.Component(log, "stage")
	runner := stage.NewRunner(a.fs, a.newExecutor(stageLog), stageLog)

	m := measure.NewDefaultMeasure()
	hooks := []model.PipelineOption{measure.PipelineMeasure(m)}
	if flags.graphFile != "" {
		hooks = append(hooks, drawer.PipelineDrawer(drawer.NewDOTDrawer(a.fs, flags.graphFile), m))
	}

	pipe, err := pipeline.New(pipeCfg, runner,
		pipeline.WithLogger(logger.Component(log, "pipeline")),
		pipeline.WithOptions(hooks...),
	)
	if err != nil {
		return err
	}

	report, runErr := pipe.Run(cmd.Context())
	if flags.measure && report != nil {
		err = printSummary(cmd.OutOrStdout(), report, m)
		if err != nil && runErr == nil {
			runErr = err
		}
	}

	return runErr
}

func printSummary(w io.Writer, report *pipeline.Report, m measure.Measure) error {
	fmt.Fprintf(w, "run %s: %s on %s\n", report.RunID, report.Method, report.Dataset)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STAGE\tSTATUS\tEXIT\tDURATION")
	for _, info := range report.Stages {
		duration := info.Duration
		if metric := m.GetMetric(info.Name); metric != nil {
			duration = metric.GetDuration()
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", info.Name, info.Status, info.ExitCode, duration)
	}
	fmt.Fprintf(tw, "total\t\t\t%s\n", m.GetTotalDuration())

	return errors.Wrap(tw.Flush(), "unable to print summary")
}

// dryRunner satisfies the pipeline for --dry-run, where only the plan is read.
type dryRunner struct{}

func (dryRunner) Run(_ context.Context, inv *stage.Invocation) (stage.Result, error) {
	return stage.Result{}, errors.Wrapf(errDryRun, "stage %s", inv.Name)
}
