package pipeline

import (
	"github.com/rs/zerolog"

	"github.com/askiada/featbench/pkg/pipeline/model"
)

type Option func(p *Pipeline)

// WithLogger sets the logger of the pipeline. Defaults to a no-op logger.
func WithLogger(log zerolog.Logger) Option {
	return func(p *Pipeline) {
		p.log = log
	}
}

// WithRunID overrides the generated run identifier.
func WithRunID(runID string) Option {
	return func(p *Pipeline) {
		p.runID = runID
	}
}

// WithOptions registers pipeline options such as measure or drawer.
func WithOptions(opts ...model.PipelineOption) Option {
	return func(p *Pipeline) {
		p.opts = append(p.opts, opts...)
	}
}
