// Package pipeline runs the outlier-aware imputation as a chain of named
// steps over a shared run state.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Step is one stage of a Pipeline.
type Step interface {
	Name() string
	Apply(ctx context.Context, s *State) error
}

type stepFunc struct {
	name string
	fn   func(ctx context.Context, s *State) error
}

func (f stepFunc) Name() string                              { return f.name }
func (f stepFunc) Apply(ctx context.Context, s *State) error { return f.fn(ctx, s) }

// NewStep wraps fn as a Step.
func NewStep(name string, fn func(ctx context.Context, s *State) error) Step {
	return stepFunc{name: name, fn: fn}
}

// Pipeline chains multiple steps. Each step consumes the full output of
// the previous one; the first failure stops the run.
type Pipeline struct {
	steps []Step
	log   zerolog.Logger
}

func NewPipeline(log zerolog.Logger, steps ...Step) *Pipeline {
	return &Pipeline{steps: steps, log: log}
}

// Steps returns the step names in order.
func (p *Pipeline) Steps() []string {
	out := make([]string, len(p.steps))
	for i, s := range p.steps {
		out[i] = s.Name()
	}
	return out
}

func (p *Pipeline) Run(ctx context.Context, s *State) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		if err := step.Apply(ctx, s); err != nil {
			return fmt.Errorf("pipeline: %s: %w", step.Name(), err)
		}
		p.log.Debug().
			Str("step", step.Name()).
			Dur("elapsed", time.Since(start)).
			Msg("step done")
	}
	return nil
}
