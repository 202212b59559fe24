package pipeline

import (
	"context"
	"log/slog"
)

// Step is one stage of a Pipeline.
type Step[S any] interface {
	// Do runs the stage against the shared state. done=true stops the
	// pipeline: the stage produced the answer. A non-nil error is a
	// failed stage; whether the pipeline continues depends on
	// WithContinueOnError.
	Do(ctx context.Context, state *S) (done bool, err error)

	// Name returns the step's name for logging purposes.
	Name() string
}

// StepFunc adapts a function to the Step interface.
type StepFunc[S any] struct {
	StepName string
	Fn       func(ctx context.Context, state *S) (bool, error)
}

// Do calls Fn.
func (f StepFunc[S]) Do(ctx context.Context, state *S) (bool, error) {
	return f.Fn(ctx, state)
}

// Name returns StepName.
func (f StepFunc[S]) Name() string {
	return f.StepName
}

type settings struct {
	logger          *slog.Logger
	continueOnError bool
	label           string
}

// Option configures a Pipeline.
type Option func(*settings)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithContinueOnError makes a failed step count as a miss: it is logged
// and the next step runs.
func WithContinueOnError(continueOnError bool) Option {
	return func(s *settings) {
		s.continueOnError = continueOnError
	}
}

// WithLabel attaches a label (typically a URL) to every log line.
func WithLabel(label string) Option {
	return func(s *settings) {
		s.label = label
	}
}

// Pipeline executes steps in order over a state of type S.
type Pipeline[S any] struct {
	steps []Step[S]
	settings
}

// New creates an empty Pipeline.
func New[S any](opts ...Option) *Pipeline[S] {
	p := &Pipeline[S]{
		steps: make([]Step[S], 0),
	}
	for _, opt := range opts {
		opt(&p.settings)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline[S]) AddStep(step Step[S]) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline[S]) AddSteps(steps ...Step[S]) {
	p.steps = append(p.steps, steps...)
}

// Execute runs the steps in order and returns the name of the step that
// finished the pipeline, or "" when every step ran without finishing it.
//
// Cancellation is checked before each step; a cancelled context returns
// ctx.Err(). Without WithContinueOnError the first failed step stops the
// pipeline and its error is returned.
func (p *Pipeline[S]) Execute(ctx context.Context, state *S) (string, error) {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Debug("pipeline cancelled",
				"step", step.Name(),
				"label", p.label,
				"reason", ctx.Err(),
			)
			return "", ctx.Err()
		default:
		}

		done, err := step.Do(ctx, state)
		if err != nil {
			p.logger.Debug("step failed",
				"step", step.Name(),
				"label", p.label,
				"error", err,
			)
			if !p.continueOnError {
				return step.Name(), err
			}
			continue
		}

		if done {
			p.logger.Debug("step finished pipeline",
				"step", step.Name(),
				"label", p.label,
			)
			return step.Name(), nil
		}
	}
	return "", nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline[S]) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline[S]) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
