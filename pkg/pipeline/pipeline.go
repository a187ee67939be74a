package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/askiada/featbench/pkg/pipeline/model"
	"github.com/askiada/featbench/pkg/stage"
)

// StageRunner runs one stage invocation. *stage.Runner is the production implementation.
type StageRunner interface {
	Run(ctx context.Context, inv *stage.Invocation) (stage.Result, error)
}

// Pipeline is the fixed stage sequence of one (method, dataset) run.
type Pipeline struct {
	cfg    Config
	runner StageRunner
	opts   []model.PipelineOption
	log    zerolog.Logger
	runID  string

	stages      []*model.StageInfo
	invocations map[string]*stage.Invocation
	ran         bool
}

// New creates the pipeline of one run. It validates the configuration and
// prepares every stage but starts nothing.
func New(cfg Config, runner StageRunner, opts ...Option) (*Pipeline, error) {
	if runner == nil {
		return nil, ErrRunnerMustBeSet
	}
	if err := cfg.validate(); err != nil {
		return nil, errors.Wrap(err, "invalid pipeline configuration")
	}
	cfg.FailurePolicy, _ = ParseFailurePolicy(string(cfg.FailurePolicy))

	pipe := &Pipeline{
		cfg:         cfg,
		runner:      runner,
		log:         zerolog.Nop(),
		invocations: make(map[string]*stage.Invocation, len(definitions)),
	}
	for _, opt := range opts {
		opt(pipe)
	}
	if pipe.runID == "" {
		pipe.runID = uuid.NewString()
	}
	pipe.log = pipe.log.With().
		Str("run_id", pipe.runID).
		Str("method", cfg.Method.Name).
		Str("dataset", cfg.Dataset).
		Logger()

	for _, opt := range pipe.opts {
		err := opt.New()
		if err != nil {
			return nil, errors.Wrap(err, "unable to apply pipeline option")
		}
	}

	err := pipe.prepareStages()
	if err != nil {
		return nil, err
	}

	return pipe, nil
}

func (p *Pipeline) prepareStages() error {
	_, ordered, err := stageGraph()
	if err != nil {
		return err
	}

	byName := make(map[string]*model.StageInfo, len(ordered))
	for i, def := range ordered {
		info := newStageInfo(def, p.cfg)
		info.Index = i
		inv := def.build(p.cfg)
		info.Artifact = inv.SkipIfExists
		p.invocations[def.name] = inv
		p.stages = append(p.stages, info)
		byName[def.name] = info

		parents := make([]*model.StageInfo, 0, len(def.parents))
		for _, parent := range def.parents {
			parents = append(parents, byName[parent])
		}
		if len(parents) == 0 {
			parents = append(parents, model.StartStage)
		}

		for _, opt := range p.opts {
			err := opt.PrepareStage(parents, info)
			if err != nil {
				return errors.Wrapf(err, "unable to prepare stage %s", def.name)
			}
		}
	}

	return nil
}

// RunID returns the identifier attached to every log line of the run.
func (p *Pipeline) RunID() string {
	return p.runID
}

// Plan returns the invocations that Run starts, in order. Disabled stages are
// left out; stages that may be skipped because their artifact exists are kept.
func (p *Pipeline) Plan() []*stage.Invocation {
	plan := make([]*stage.Invocation, 0, len(p.stages))
	for _, info := range p.stages {
		if info.Status == model.StatusDisabled {
			continue
		}
		inv := *p.invocations[info.Name]
		inv.Args = append([]string(nil), inv.Args...)
		plan = append(plan, &inv)
	}

	return plan
}

// Run executes the stages in order and blocks until the last one finishes.
// The report is returned even when an error stops the run.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	if p.ran {
		return nil, ErrAlreadyRun
	}
	p.ran = true

	start := time.Now()
	p.log.Info().
		Bool("skip_refinement", p.cfg.SkipRefinement).
		Str("failure_policy", string(p.cfg.FailurePolicy)).
		Msg("starting pipeline")

	runErr := p.runStages(ctx)

	total := time.Since(start)
	for _, opt := range p.opts {
		err := opt.Finish(total)
		if err != nil && runErr == nil {
			runErr = errors.Wrap(err, "unable to finish pipeline option")
		}
	}

	report := p.report(total)
	if runErr != nil {
		p.log.Error().Err(runErr).Dur("duration", total).Msg("pipeline stopped")
	} else {
		p.log.Info().Int("failed_stages", len(report.Failures())).Dur("duration", total).Msg("pipeline finished")
	}

	return report, runErr
}

func (p *Pipeline) runStages(ctx context.Context) error {
	for _, info := range p.stages {
		log := p.log.With().Str("stage", info.Name).Logger()

		if info.Status == model.StatusDisabled {
			log.Info().Msg("refinement skipped, stage disabled")
			if err := p.stageDone(info); err != nil {
				return err
			}

			continue
		}

		res, err := p.runner.Run(ctx, p.invocations[info.Name])
		info.Duration = res.Duration
		info.ExitCode = res.ExitCode
		if err != nil {
			info.Status = model.StatusError
			_ = p.stageDone(info)

			return errors.Wrapf(err, "stage %s", info.Name)
		}

		switch {
		case res.Skipped:
			info.Status = model.StatusSkipped
		case res.Failed():
			info.Status = model.StatusFailed
		default:
			info.Status = model.StatusRan
		}

		if err := p.stageDone(info); err != nil {
			return err
		}

		if info.Status != model.StatusFailed {
			continue
		}
		if p.cfg.FailurePolicy == PolicyAbort {
			return &StageError{Stage: info.Name, ExitCode: info.ExitCode}
		}
		log.Warn().Int("exit_code", info.ExitCode).Msg("stage failed, continuing")
	}

	return nil
}

func (p *Pipeline) stageDone(info *model.StageInfo) error {
	for _, opt := range p.opts {
		err := opt.OnStageDone(info)
		if err != nil {
			return errors.Wrapf(err, "unable to record stage %s", info.Name)
		}
	}

	return nil
}
