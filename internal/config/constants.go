package config

import "salespulse/pkg/contracts"

// Application constants
const (
	AppName    = "Sales Pulse"
	AppVersion = contracts.Version

	// EnvPrefix namespaces environment variables, e.g. SALES_INPUT_PATH
	EnvPrefix = "SALES"

	DefaultOutputDir = "results"
	DefaultLogFile   = "logs/salesreport.log"
	DefaultCurrency  = "R"

	// Console report sizes
	DefaultPreviewRows = 5
	CleanPreviewRows   = 3
	DefaultTopReps     = 5
	DefaultTopProducts = 3

	// ScratchRevenueColumn is the temporary computed-revenue column that
	// cleaning discards when an input carries it
	ScratchRevenueColumn = "Calc_Revenue"
)

// Output file names
const (
	KPISummaryFile      = "kpi_summary.csv"
	RevenueByRegionFile = "revenue_by_region.csv"
	UnitsByProductFile  = "units_by_product.csv"
	WorkbookFile        = "kpi_report.xlsx"
	PDFReportFile       = "kpi_report.pdf"
)

// Export formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

// Missing-value policies applied during cleaning
const (
	MissingPolicyDrop = "drop"
	MissingPolicyKeep = "keep"
	MissingPolicyFail = "fail"
)

// Revenue-mismatch policies applied during cleaning
const (
	MismatchPolicyAnnotate = "annotate"
	MismatchPolicyExclude  = "exclude"
	MismatchPolicyCorrect  = "correct"
)
