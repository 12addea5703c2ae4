package operations

import (
	"context"
	"log/slog"
	"time"
)

// Observer is notified as steps progress. The console report implements it.
type Observer interface {
	StepStarted(ctx context.Context, step Step, state *RunState)
	StepCompleted(ctx context.Context, step Step, state *RunState)
	StepFailed(ctx context.Context, step Step, state *RunState, err error)
}

// Runner executes the registered steps in order and stops at the first failure
type Runner struct {
	registry  *Registry
	telemetry *Telemetry
	observers []Observer
	logger    *slog.Logger
}

// NewRunner creates a runner. A nil telemetry records nothing.
func NewRunner(logger *slog.Logger, telemetry *Telemetry) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if telemetry == nil {
		telemetry = NoopTelemetry()
	}
	return &Runner{
		registry:  NewRegistry(),
		telemetry: telemetry,
		logger:    logger,
	}
}

// Register adds steps in execution order
func (r *Runner) Register(steps ...Step) error {
	for _, step := range steps {
		if err := r.registry.Register(step); err != nil {
			return err
		}
	}
	return nil
}

// AddObserver subscribes o to step progress
func (r *Runner) AddObserver(o Observer) {
	r.observers = append(r.observers, o)
}

// Steps returns the registered steps in execution order
func (r *Runner) Steps() []Step {
	return r.registry.List()
}

// Run executes every step against state. The first failing step stops the
// run; later steps are marked skipped and the returned error is a *StepError.
func (r *Runner) Run(ctx context.Context, state *RunState) error {
	ctx, runSpan := r.telemetry.TraceRun(ctx, state)
	defer runSpan.End()

	state.Start()
	r.logger.InfoContext(ctx, "Pipeline started",
		slog.String("input", state.InputPath),
		slog.Int("steps", r.registry.Count()))

	var failure *StepError
	for _, step := range r.registry.List() {
		stepState := NewStepState(step.ID(), step.Name())
		state.addStep(stepState)

		if failure != nil {
			stepState.Skip("previous step failed")
			continue
		}

		if err := r.runStep(ctx, step, stepState, state); err != nil {
			failure = NewStepError(step, err)
		}
	}

	if failure != nil {
		state.Fail(failure)
		runSpan.RecordError(failure)
		r.logger.ErrorContext(ctx, "Pipeline failed",
			slog.String("step", failure.Step),
			slog.String("error", failure.Cause.Error()),
			slog.Duration("duration", state.Duration()))
		return failure
	}

	state.Complete()
	r.logger.InfoContext(ctx, "Pipeline completed", slog.Duration("duration", state.Duration()))
	return nil
}

func (r *Runner) runStep(ctx context.Context, step Step, stepState *StepState, state *RunState) error {
	ctx, span := r.telemetry.TraceStep(ctx, state, step)
	start := time.Now()

	stepState.Start()
	r.logger.DebugContext(ctx, "Step started", slog.String("step", step.ID()))
	for _, o := range r.observers {
		o.StepStarted(ctx, step, state)
	}

	err := step.Validate(state)
	if err == nil {
		err = step.Execute(ctx, state)
	}
	duration := time.Since(start)

	r.telemetry.RecordOutputs(ctx, step.ID(), state)
	r.telemetry.EndStep(ctx, span, step, duration, err)

	if err != nil {
		stepState.Fail(err)
		r.logger.ErrorContext(ctx, "Step failed",
			slog.String("step", step.ID()),
			slog.String("error", err.Error()),
			slog.Duration("duration", duration))
		for _, o := range r.observers {
			o.StepFailed(ctx, step, state, err)
		}
		return err
	}

	stepState.Complete()
	r.logger.InfoContext(ctx, "Step completed",
		slog.String("step", step.ID()),
		slog.Duration("duration", duration))
	for _, o := range r.observers {
		o.StepCompleted(ctx, step, state)
	}
	return nil
}
