package exporter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"salespulse/internal/config"
	apperrors "salespulse/internal/errors"
	"salespulse/internal/validation"
	"salespulse/pkg/contracts/domain"
)

// FailedFile is an output that could not be written
type FailedFile struct {
	Name string `json:"name"`
	Err  error  `json:"-"`
}

// ExportResult lists the files an export wrote and the ones it could not
type ExportResult struct {
	Dir     string       `json:"dir"`
	Written []string     `json:"written"`
	Failed  []FailedFile `json:"failed,omitempty"`
}

// Err joins every write failure, or returns nil when all files were written
func (r *ExportResult) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	errs := make([]error, len(r.Failed))
	for i, f := range r.Failed {
		errs[i] = f.Err
	}
	return errors.Join(errs...)
}

// Options selects the formats and presentation of an export
type Options struct {
	Formats  []string
	Currency string
}

// Exporter writes KPI results to the output directory
type Exporter struct {
	paths     *config.Paths
	csv       *CSVWriter
	validator *validation.FileValidator
	opts      Options
	logger    *slog.Logger
}

// NewExporter creates an exporter writing into paths.OutputDir
func NewExporter(paths *config.Paths, opts Options, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	if len(opts.Formats) == 0 {
		opts.Formats = []string{config.FormatCSV}
	}
	return &Exporter{
		paths:     paths,
		csv:       NewCSVWriter(paths, logger),
		validator: validation.NewFileValidator(logger),
		opts:      opts,
		logger:    logger,
	}
}

// Export writes every configured output. Each file is attempted even when
// an earlier one failed; failures are WRITE errors collected in the result.
func (e *Exporter) Export(ctx context.Context, kpis *domain.KPIResults) *ExportResult {
	result := &ExportResult{Dir: e.paths.OutputDir}

	if err := e.validator.ValidateOutputDirectory(e.paths.OutputDir); err != nil {
		for _, name := range e.outputs() {
			result.Failed = append(result.Failed, FailedFile{Name: name, Err: err})
		}
		e.logger.ErrorContext(ctx, "Output directory unavailable",
			slog.String("directory", e.paths.OutputDir),
			slog.String("error", err.Error()))
		return result
	}

	record := func(name string, err error) {
		if err != nil {
			werr := apperrors.NewWriteError(fmt.Sprintf("failed to write %s", name), err).
				WithContext("file", e.paths.GetReportPath(name))
			result.Failed = append(result.Failed, FailedFile{Name: name, Err: werr})
			e.logger.ErrorContext(ctx, "Failed to write output file",
				slog.String("file", name),
				slog.String("error", err.Error()))
			return
		}
		result.Written = append(result.Written, name)
		e.logger.InfoContext(ctx, "Output file written", slog.String("file", e.paths.GetReportPath(name)))
	}

	for _, format := range e.opts.Formats {
		switch format {
		case config.FormatCSV:
			record(config.KPISummaryFile, e.csv.WriteSimpleCSV(config.KPISummaryFile,
				[]string{"KPI", "Value"}, SummaryRows(kpis, e.opts.Currency)))
			record(config.RevenueByRegionFile, e.csv.WriteSimpleCSV(config.RevenueByRegionFile,
				[]string{"Region", "Revenue"}, RegionRows(kpis)))
			record(config.UnitsByProductFile, e.csv.WriteSimpleCSV(config.UnitsByProductFile,
				[]string{"Product", "Units_Sold"}, ProductRows(kpis)))
		case config.FormatXLSX:
			record(config.WorkbookFile, WriteWorkbook(e.paths.GetReportPath(config.WorkbookFile), kpis, e.opts.Currency))
		case config.FormatPDF:
			record(config.PDFReportFile, WritePDF(e.paths.GetReportPath(config.PDFReportFile), kpis, e.opts.Currency))
		default:
			record(format, fmt.Errorf("unsupported export format %q", format))
		}
	}

	e.logger.InfoContext(ctx, "Export finished",
		slog.String("directory", e.paths.OutputDir),
		slog.Int("written", len(result.Written)),
		slog.Int("failed", len(result.Failed)))
	return result
}

// outputs lists the file names the configured formats produce
func (e *Exporter) outputs() []string {
	var names []string
	for _, format := range e.opts.Formats {
		switch format {
		case config.FormatCSV:
			names = append(names, config.KPISummaryFile, config.RevenueByRegionFile, config.UnitsByProductFile)
		case config.FormatXLSX:
			names = append(names, config.WorkbookFile)
		case config.FormatPDF:
			names = append(names, config.PDFReportFile)
		default:
			names = append(names, format)
		}
	}
	return names
}

// SummaryRows returns the KPI,Value rows of the summary table
func SummaryRows(kpis *domain.KPIResults, currency string) [][]string {
	topRep := NotAvailable
	if best, ok := kpis.BestPerformer(); ok {
		topRep = DisplayKey(best.Key)
	}
	topProduct := NotAvailable
	if top, ok := kpis.TopProduct(); ok {
		topProduct = fmt.Sprintf("%s (%s units)", DisplayKey(top.Key), FormatUnits(top.Units))
	}

	return [][]string{
		{"Total Revenue", FormatMoney(currency, kpis.TotalRevenue)},
		{"Avg Units per Order", FormatAverage(kpis.AverageUnits)},
		{"Top Sales Rep", topRep},
		{"Top Product (units)", topProduct},
	}
}

// RegionRows returns the full revenue-by-region ranking
func RegionRows(kpis *domain.KPIResults) [][]string {
	rows := make([][]string, len(kpis.RevenueByRegion))
	for i, r := range kpis.RevenueByRegion {
		rows[i] = []string{r.Key, formatDecimal(r.Revenue)}
	}
	return rows
}

// ProductRows returns the full units-by-product ranking
func ProductRows(kpis *domain.KPIResults) [][]string {
	rows := make([][]string, len(kpis.UnitsByProduct))
	for i, p := range kpis.UnitsByProduct {
		rows[i] = []string{p.Key, formatInt(p.Units)}
	}
	return rows
}

// RepRows returns the full revenue-by-rep ranking
func RepRows(kpis *domain.KPIResults) [][]string {
	rows := make([][]string, len(kpis.RevenueByRep))
	for i, r := range kpis.RevenueByRep {
		rows[i] = []string{r.Key, formatDecimal(r.Revenue)}
	}
	return rows
}

// MonthRows returns revenue per month in chronological order
func MonthRows(kpis *domain.KPIResults) [][]string {
	rows := make([][]string, len(kpis.RevenueByMonth))
	for i, m := range kpis.RevenueByMonth {
		rows[i] = []string{m.Period(), m.MonthName, formatDecimal(m.Revenue)}
	}
	return rows
}
