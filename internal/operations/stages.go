package operations

import (
	"context"
	"log/slog"

	"salespulse/internal/config"
	"salespulse/internal/dataprocessing"
	"salespulse/internal/exporter"
	"salespulse/internal/files"
	"salespulse/internal/validation"
)

// Step IDs and names, in execution order
const (
	StepIDIngest    = "ingest"
	StepIDValidate  = "validate"
	StepIDClean     = "clean"
	StepIDAggregate = "aggregate"
	StepIDExport    = "export"

	StepNameIngest    = "Data Import"
	StepNameValidate  = "Data Quality Checks"
	StepNameClean     = "Data Cleaning"
	StepNameAggregate = "KPI Analysis"
	StepNameExport    = "Export Results"
)

// IngestStep reads the input file and profiles the raw dataset.
// An input folder is resolved to its newest sales file first.
type IngestStep struct {
	BaseStep
	discovery   *files.Discovery
	parser      *dataprocessing.Parser
	previewRows int
	logger      *slog.Logger
}

// NewIngestStep creates the ingestion step
func NewIngestStep(logger *slog.Logger, previewRows int) *IngestStep {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("step", StepIDIngest))
	return &IngestStep{
		BaseStep:    NewBaseStep(StepIDIngest, StepNameIngest),
		discovery:   files.NewDiscovery(validation.SupportedInputExtensions, logger),
		parser:      dataprocessing.NewParser(logger),
		previewRows: previewRows,
		logger:      logger,
	}
}

// Validate requires an input path
func (s *IngestStep) Validate(state *RunState) error {
	if state.InputPath == "" {
		return errMissingInput(s.ID(), "an input path")
	}
	return nil
}

// Execute loads state.InputPath into state.Raw and builds state.Profile
func (s *IngestStep) Execute(ctx context.Context, state *RunState) error {
	path, err := s.discovery.ResolveInput(state.InputPath)
	if err != nil {
		return err
	}
	state.InputPath = path

	ds, err := s.parser.Ingest(ctx, path)
	if err != nil {
		return err
	}
	state.Raw = ds
	state.Profile = dataprocessing.BuildProfile(ds, s.previewRows)
	return nil
}

// ValidateStep runs the read-only data quality checks
type ValidateStep struct {
	BaseStep
	checker *dataprocessing.QualityChecker
}

// NewValidateStep creates the quality check step
func NewValidateStep(logger *slog.Logger) *ValidateStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ValidateStep{
		BaseStep: NewBaseStep(StepIDValidate, StepNameValidate),
		checker:  dataprocessing.NewQualityChecker(logger.With(slog.String("step", StepIDValidate))),
	}
}

// Validate requires the raw dataset
func (s *ValidateStep) Validate(state *RunState) error {
	if state.Raw == nil {
		return errMissingInput(s.ID(), "the raw dataset")
	}
	return nil
}

// Execute sets state.Quality. Findings never fail the step.
func (s *ValidateStep) Execute(ctx context.Context, state *RunState) error {
	state.Quality = s.checker.Validate(ctx, state.Raw)
	return nil
}

// CleanStep produces the cleaned dataset
type CleanStep struct {
	BaseStep
	cleaner *dataprocessing.Cleaner
}

// NewCleanStep creates the cleaning step
func NewCleanStep(logger *slog.Logger, opts dataprocessing.CleanOptions) *CleanStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &CleanStep{
		BaseStep: NewBaseStep(StepIDClean, StepNameClean),
		cleaner:  dataprocessing.NewCleaner(logger.With(slog.String("step", StepIDClean)), opts),
	}
}

// Validate requires the raw dataset
func (s *CleanStep) Validate(state *RunState) error {
	if state.Raw == nil {
		return errMissingInput(s.ID(), "the raw dataset")
	}
	return nil
}

// Execute sets state.Cleaned and state.CleanSummary
func (s *CleanStep) Execute(ctx context.Context, state *RunState) error {
	cleaned, summary, err := s.cleaner.Clean(ctx, state.Raw)
	if err != nil {
		return err
	}
	state.Cleaned = cleaned
	state.CleanSummary = &summary
	return nil
}

// AggregateStep computes KPIs from the cleaned dataset
type AggregateStep struct {
	BaseStep
	analyzer *dataprocessing.Analyzer
}

// NewAggregateStep creates the KPI step
func NewAggregateStep(logger *slog.Logger, opts dataprocessing.AnalyzerOptions) *AggregateStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &AggregateStep{
		BaseStep: NewBaseStep(StepIDAggregate, StepNameAggregate),
		analyzer: dataprocessing.NewAnalyzer(logger.With(slog.String("step", StepIDAggregate)), opts),
	}
}

// Validate requires the cleaned dataset
func (s *AggregateStep) Validate(state *RunState) error {
	if state.Cleaned == nil {
		return errMissingInput(s.ID(), "the cleaned dataset")
	}
	return nil
}

// Execute sets state.KPIs
func (s *AggregateStep) Execute(ctx context.Context, state *RunState) error {
	state.KPIs = s.analyzer.Aggregate(ctx, state.Cleaned)
	return nil
}

// ExportStep writes the KPI files
type ExportStep struct {
	BaseStep
	exporter *exporter.Exporter
}

// NewExportStep creates the export step writing into paths.OutputDir
func NewExportStep(logger *slog.Logger, paths *config.Paths, opts exporter.Options) *ExportStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportStep{
		BaseStep: NewBaseStep(StepIDExport, StepNameExport),
		exporter: exporter.NewExporter(paths, opts, logger.With(slog.String("step", StepIDExport))),
	}
}

// Validate requires the KPIs
func (s *ExportStep) Validate(state *RunState) error {
	if state.KPIs == nil {
		return errMissingInput(s.ID(), "KPI results")
	}
	return nil
}

// Execute sets state.Export and fails when any file could not be written
func (s *ExportStep) Execute(ctx context.Context, state *RunState) error {
	state.Export = s.exporter.Export(ctx, state.KPIs)
	return state.Export.Err()
}

// StepFactory builds the five pipeline steps from the configuration, in execution order
func StepFactory(cfg *config.Config, paths *config.Paths, logger *slog.Logger) []Step {
	return []Step{
		NewIngestStep(logger, cfg.Report.PreviewRows),
		NewValidateStep(logger),
		NewCleanStep(logger, dataprocessing.CleanOptionsFromConfig(cfg.Quality)),
		NewAggregateStep(logger, dataprocessing.AnalyzerOptions{
			TopReps:     cfg.Report.TopReps,
			TopProducts: cfg.Report.TopProducts,
		}),
		NewExportStep(logger, paths, exporter.Options{
			Formats:  cfg.Report.Formats,
			Currency: cfg.Report.Currency,
		}),
	}
}
