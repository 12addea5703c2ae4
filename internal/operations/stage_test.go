package operations

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/internal/config"
)

func TestStepState_Transitions(t *testing.T) {
	tests := []struct {
		name       string
		transition func(s *StepState)
		want       StepStatus
		hasEnd     bool
	}{
		{"new", func(s *StepState) {}, StepStatusPending, false},
		{"started", func(s *StepState) { s.Start() }, StepStatusActive, false},
		{"completed", func(s *StepState) { s.Start(); s.Complete() }, StepStatusCompleted, true},
		{"failed", func(s *StepState) { s.Start(); s.Fail(errors.New("boom")) }, StepStatusFailed, true},
		{"skipped", func(s *StepState) { s.Skip("previous step failed") }, StepStatusSkipped, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStepState("clean", StepNameClean)
			tt.transition(s)

			assert.Equal(t, tt.want, s.GetStatus())
			assert.Equal(t, tt.hasEnd, s.EndTime != nil)
			assert.GreaterOrEqual(t, s.Duration().Nanoseconds(), int64(0))
		})
	}
}

func TestStepState_FailKeepsError(t *testing.T) {
	s := NewStepState("ingest", StepNameIngest)
	err := errors.New("boom")
	s.Fail(err)
	s.SetMetadata("rows", 3)

	assert.Equal(t, err, s.Error)
	assert.Equal(t, 3, s.Metadata["rows"])
	assert.Zero(t, s.Duration())
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(newFakeStep("b", nil)))
	require.NoError(t, r.Register(newFakeStep("a", nil)))

	t.Run("rejects invalid steps", func(t *testing.T) {
		assert.EqualError(t, r.Register(nil), "cannot register nil Step")
		assert.EqualError(t, r.Register(newFakeStep("", nil)), "Step ID cannot be empty")
		assert.EqualError(t, r.Register(newFakeStep("a", nil)), "Step with ID a already registered")
	})

	t.Run("keeps registration order", func(t *testing.T) {
		assert.Equal(t, []string{"b", "a"}, r.ListIDs())
		assert.Equal(t, 2, r.Count())
		steps := r.List()
		require.Len(t, steps, 2)
		assert.Equal(t, "b", steps[0].ID())
	})

	t.Run("get", func(t *testing.T) {
		step, err := r.Get("a")
		require.NoError(t, err)
		assert.Equal(t, "Fake a", step.Name())

		_, err = r.Get("missing")
		assert.Error(t, err)
	})
}

func TestStepFactory_Order(t *testing.T) {
	cfg := config.Default()
	cfg.Input.Path = "sales_data.csv"
	cfg.Output.Dir = t.TempDir()
	paths, err := config.ResolvePaths(cfg)
	require.NoError(t, err)

	steps := StepFactory(cfg, paths, nil)

	ids := make([]string, len(steps))
	for i, s := range steps {
		ids[i] = s.ID()
	}
	assert.Equal(t, []string{StepIDIngest, StepIDValidate, StepIDClean, StepIDAggregate, StepIDExport}, ids)
}

func TestNoopTelemetry(t *testing.T) {
	telemetry := NoopTelemetry()
	require.NotNil(t, telemetry)

	state := NewRunState("run-1", "sales.csv")
	ctx, span := telemetry.TraceRun(context.Background(), state)
	assert.False(t, span.SpanContext().IsValid(), "no-op spans carry no trace id")
	telemetry.RecordOutputs(ctx, StepIDExport, state)
	span.End()

	runner := NewRunner(nil, nil)
	assert.NotNil(t, runner.telemetry)
}

func TestNewTelemetry_NilFallsBackToNoop(t *testing.T) {
	telemetry, err := NewTelemetry(nil, nil)
	require.NoError(t, err)

	state := NewRunState("run-1", "sales.csv")
	ctx, span := telemetry.TraceRun(context.Background(), state)
	telemetry.RecordOutputs(ctx, StepIDIngest, state)
	span.End()
}
