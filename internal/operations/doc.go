// Package operations runs the sales pipeline as an ordered list of steps.
//
// Core Components:
//
// Step: one unit of work. The five steps are ingest, validate, clean,
// aggregate and export; each reads the outputs of earlier steps from the
// RunState and stores its own there.
//
// Registry: keeps steps in registration order and rejects duplicate IDs.
//
// Runner: executes the steps, tracks a StepState per step, stops at the
// first failure and wraps it in a StepError naming the step. Observers are
// told when steps start, complete or fail.
//
// Telemetry: wraps every step in an OpenTelemetry span and records step
// durations, outcomes and data-quality counts as metrics.
//
// Example usage:
//
//	telemetry, _ := operations.NewTelemetry(providers.Tracer, providers.Meter)
//	runner := operations.NewRunner(logger, telemetry)
//	runner.Register(operations.StepFactory(cfg, paths, logger)...)
//	runner.AddObserver(consoleReport)
//
//	state := operations.NewRunState(runID, paths.InputFile)
//	if err := runner.Run(ctx, state); err != nil {
//	    var stepErr *operations.StepError
//	    errors.As(err, &stepErr)
//	}
package operations
