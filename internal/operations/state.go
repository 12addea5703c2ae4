package operations

import (
	"sync"
	"time"

	"salespulse/internal/dataprocessing"
	"salespulse/internal/exporter"
	"salespulse/pkg/contracts/domain"
)

// RunStatus represents the overall status of a pipeline run
type RunStatus string

const (
	RunStatusPending   RunStatus = "pending"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// RunState carries the data of one pipeline run between steps.
// Each step reads the outputs of the steps before it and sets its own.
type RunState struct {
	mu sync.RWMutex

	ID        string     `json:"id"`
	InputPath string     `json:"input_path"`
	Status    RunStatus  `json:"status"`
	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	Raw          *domain.Dataset              `json:"-"`
	Profile      *dataprocessing.Profile      `json:"profile,omitempty"`
	Quality      *domain.QualityReport        `json:"quality,omitempty"`
	Cleaned      *domain.Dataset              `json:"-"`
	CleanSummary *dataprocessing.CleanSummary `json:"clean_summary,omitempty"`
	KPIs         *domain.KPIResults           `json:"kpis,omitempty"`
	Export       *exporter.ExportResult       `json:"export,omitempty"`

	// Steps lists step states in execution order
	Steps []*StepState `json:"steps"`

	Error error `json:"-"`
}

// NewRunState creates the state of a run reading inputPath
func NewRunState(id, inputPath string) *RunState {
	return &RunState{
		ID:        id,
		InputPath: inputPath,
		Status:    RunStatusPending,
		StartTime: time.Now(),
	}
}

// Start marks the run as running
func (s *RunState) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Status = RunStatusRunning
	s.StartTime = time.Now()
}

// Complete marks the run as completed
func (s *RunState) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.Status = RunStatusCompleted
	s.EndTime = &now
}

// Fail marks the run as failed with err
func (s *RunState) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.Status = RunStatusFailed
	s.EndTime = &now
	s.Error = err
}

// GetStatus returns the current run status
func (s *RunState) GetStatus() RunStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.Status
}

// Duration returns the elapsed run time
func (s *RunState) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.EndTime != nil {
		return s.EndTime.Sub(s.StartTime)
	}
	return time.Since(s.StartTime)
}

// Step returns the state of the step with the given ID, or nil
func (s *RunState) Step(id string) *StepState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, st := range s.Steps {
		if st.ID == id {
			return st
		}
	}
	return nil
}

func (s *RunState) addStep(st *StepState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Steps = append(s.Steps, st)
}
