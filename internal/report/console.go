package report

import (
	"context"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"salespulse/internal/config"
	"salespulse/internal/dataprocessing"
	"salespulse/internal/exporter"
	"salespulse/internal/operations"
	"salespulse/pkg/contracts/domain"
)

const (
	bannerWidth  = 70
	sectionWidth = 60
	title        = "SALES DATA ANALYSIS PROJECT"
)

// Options controls the console report
type Options struct {
	Currency       string
	CleanedPreview int
	Quiet          bool
	Now            func() time.Time
}

// Console renders a human-readable run report. It observes the pipeline runner,
// printing each section as the step that produces it completes.
type Console struct {
	w    io.Writer
	opts Options
	err  error
}

// NewConsole creates a report writing to w
func NewConsole(w io.Writer, opts Options) *Console {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.CleanedPreview <= 0 {
		opts.CleanedPreview = config.CleanPreviewRows
	}
	if opts.Quiet {
		w = io.Discard
	}
	return &Console{w: w, opts: opts}
}

// Err returns the first write error, if any
func (c *Console) Err() error {
	return c.err
}

func (c *Console) printf(format string, args ...interface{}) {
	if c.err != nil {
		return
	}
	_, c.err = fmt.Fprintf(c.w, format, args...)
}

func (c *Console) println(args ...interface{}) {
	if c.err != nil {
		return
	}
	_, c.err = fmt.Fprintln(c.w, args...)
}

func (c *Console) banner(lines ...string) {
	c.println(strings.Repeat("=", bannerWidth))
	for _, l := range lines {
		c.println(l)
	}
	c.println(strings.Repeat("=", bannerWidth))
}

func (c *Console) section(heading string) {
	c.println()
	c.println(heading)
	c.println(strings.Repeat("-", sectionWidth))
}

// table writes aligned rows; the first row is the header
func (c *Console) table(indent string, rows [][]string) {
	if c.err != nil || len(rows) == 0 {
		return
	}
	tw := tabwriter.NewWriter(c.w, 0, 0, 2, ' ', 0)
	for _, row := range rows {
		if _, c.err = fmt.Fprintln(tw, indent+strings.Join(row, "\t")); c.err != nil {
			return
		}
	}
	c.err = tw.Flush()
}

// Start prints the opening banner
func (c *Console) Start(state *operations.RunState) {
	c.banner(
		"   "+title,
		"   Started: "+c.opts.Now().Format("2006-01-02 15:04:05"),
		"   Input:   "+state.InputPath,
	)
}

// StepStarted prints the heading of the section a step produces
func (c *Console) StepStarted(ctx context.Context, step operations.Step, state *operations.RunState) {
	switch step.ID() {
	case operations.StepIDIngest:
		c.section("1. IMPORT DATASET")
	case operations.StepIDValidate:
		c.section("3. DATA QUALITY CHECKS")
	case operations.StepIDClean:
		c.section("4. DATA CLEANING")
	case operations.StepIDAggregate:
		c.println()
		c.banner("KPI CALCULATIONS")
	case operations.StepIDExport:
		c.section("EXPORTING RESULTS")
	}
}

// StepCompleted prints the body of the section a step produced
func (c *Console) StepCompleted(ctx context.Context, step operations.Step, state *operations.RunState) {
	switch step.ID() {
	case operations.StepIDIngest:
		c.writeImport(state.Raw, state.Profile)
		c.writeExploration(state.Profile)
	case operations.StepIDValidate:
		c.writeQuality(state.Quality)
	case operations.StepIDClean:
		c.writeCleaning(state.Cleaned, state.CleanSummary)
	case operations.StepIDAggregate:
		c.writeKPIs(state.KPIs)
	case operations.StepIDExport:
		c.writeExport(state.Export)
	}
}

// StepFailed prints the failure of a step
func (c *Console) StepFailed(ctx context.Context, step operations.Step, state *operations.RunState, err error) {
	c.printf("ERROR: %s failed: %v\n", step.Name(), err)
	if step.ID() == operations.StepIDExport && state.Export != nil {
		c.writeExport(state.Export)
	}
}

// Finish prints the closing banner for a run that ended with err
func (c *Console) Finish(state *operations.RunState, err error) {
	c.println()
	if err != nil {
		c.banner("ANALYSIS FAILED", "   "+err.Error())
		return
	}
	c.banner(
		"ANALYSIS COMPLETED SUCCESSFULLY",
		fmt.Sprintf("   Duration: %s", state.Duration().Round(time.Millisecond)),
	)
}

func (c *Console) writeImport(ds *domain.Dataset, p *dataprocessing.Profile) {
	if ds == nil || p == nil {
		return
	}
	c.println("Dataset imported successfully!")
	c.printf("Rows: %s   Columns: %d\n", exporter.FormatUnits(int64(p.Rows)), p.Columns)
	if len(p.Preview) > 0 {
		c.printf("\nFirst %d rows:\n", len(p.Preview))
		c.writeRecords(ds.Columns, p.Preview)
	}
}

func (c *Console) writeExploration(p *dataprocessing.Profile) {
	if p == nil {
		return
	}
	c.section("2. INITIAL DATA EXPLORATION")

	c.println("Column information:")
	rows := [][]string{{"#", "Column", "Non-Null", "Dtype"}}
	for i, col := range p.ColumnTypes {
		rows = append(rows, []string{strconv.Itoa(i), col.Name, strconv.Itoa(col.NonNull), col.Type})
	}
	c.table("  ", rows)

	if len(p.Numeric) > 0 {
		c.println()
		c.println("Statistical summary (numeric columns):")
		header := []string{""}
		for _, s := range p.Numeric {
			header = append(header, s.Column)
		}
		stats := []struct {
			label string
			value func(dataprocessing.NumericSummary) float64
		}{
			{"count", func(s dataprocessing.NumericSummary) float64 { return float64(s.Count) }},
			{"mean", func(s dataprocessing.NumericSummary) float64 { return s.Mean }},
			{"std", func(s dataprocessing.NumericSummary) float64 { return s.Std }},
			{"min", func(s dataprocessing.NumericSummary) float64 { return s.Min }},
			{"25%", func(s dataprocessing.NumericSummary) float64 { return s.Q25 }},
			{"50%", func(s dataprocessing.NumericSummary) float64 { return s.Median }},
			{"75%", func(s dataprocessing.NumericSummary) float64 { return s.Q75 }},
			{"max", func(s dataprocessing.NumericSummary) float64 { return s.Max }},
		}
		table := [][]string{header}
		for _, st := range stats {
			row := []string{st.label}
			for _, s := range p.Numeric {
				row = append(row, formatStat(st.value(s)))
			}
			table = append(table, row)
		}
		c.table("  ", table)
	}

	c.println()
	c.println("Unique values - key categorical columns:")
	c.printf("Products: %s\n", listText(p.Products))
	c.printf("Regions: %s\n", listText(p.Regions))
	c.printf("Sales Reps: %s\n", listText(p.SalesReps))
	c.printf("Unique Order IDs: %s\n", exporter.FormatUnits(int64(p.UniqueOrderIDs)))
}

func (c *Console) writeQuality(q *domain.QualityReport) {
	if q == nil {
		return
	}
	c.println("3.1 Missing values:")
	if !q.HasMissing() {
		c.println("No missing values found")
	} else {
		rows := [][]string{{"Column", "Missing", "Percent"}}
		for _, m := range q.Missing {
			rows = append(rows, []string{m.Column, strconv.Itoa(m.Count), fmt.Sprintf("%.2f%%", m.Percent)})
		}
		c.table("  ", rows)
	}

	c.println()
	c.println("3.2 Duplicates:")
	c.printf("Duplicate rows: %d\n", q.Duplicates.Rows)
	c.printf("Duplicate Order_IDs: %d\n", q.Duplicates.OrderIDs)
	if q.Duplicates.Rows == 0 {
		c.println("No duplicates")
	} else {
		c.println("Duplicates found!")
	}

	c.println()
	c.println("3.3 Revenue consistency check:")
	c.printf("Revenue mismatches found: %d\n", len(q.Mismatches))
	if q.Consistent() {
		c.println("All revenue values are consistent")
	} else {
		rows := [][]string{{"Line", "Order_ID", "Units_Sold", "Unit_Price", "Revenue", "Computed"}}
		for _, m := range q.Mismatches {
			rows = append(rows, []string{
				strconv.Itoa(m.Line),
				m.OrderID,
				strconv.FormatInt(m.UnitsSold, 10),
				m.UnitPrice.StringFixed(2),
				m.Stored.StringFixed(2),
				m.Computed.StringFixed(2),
			})
		}
		c.table("  ", rows)
	}
	if q.Uncomparable > 0 {
		c.printf("Rows not checked (missing units, price or revenue): %d\n", q.Uncomparable)
	}

	if len(q.Violations) > 0 {
		c.println()
		c.println("3.4 Value constraints:")
		rows := [][]string{{"Line", "Order_ID", "Column", "Rule", "Value"}}
		for _, v := range q.Violations {
			rows = append(rows, []string{strconv.Itoa(v.Line), v.OrderID, v.Field, v.Rule, v.Value})
		}
		c.table("  ", rows)
	}
}

func (c *Console) writeCleaning(ds *domain.Dataset, s *dataprocessing.CleanSummary) {
	if ds == nil || s == nil {
		return
	}
	if len(s.DroppedColumns) > 0 {
		c.printf("Dropped columns: %s\n", strings.Join(s.DroppedColumns, ", "))
	}

	c.println("Converting Order_Date to datetime...")
	if s.HasDateRange() {
		c.printf("Date range: %s → %s\n", s.DateMin.Format("2006-01-02"), s.DateMax.Format("2006-01-02"))
	} else {
		c.println("Date range: no dates")
	}

	c.println()
	c.println("Missing value handling check:")
	switch {
	case s.RowsWithMissing == 0:
		c.println("No missing values to handle")
	case s.MissingRemoved > 0:
		c.printf("Removed %d rows with missing values\n", s.MissingRemoved)
	default:
		c.printf("Kept %d rows with missing values\n", s.RowsWithMissing)
	}

	c.println()
	c.println("Revenue mismatch handling:")
	switch {
	case s.MismatchesFound == 0:
		c.println("No revenue mismatches")
	case s.MismatchesExcluded > 0:
		c.printf("Excluded %d rows with mismatched revenue\n", s.MismatchesExcluded)
	case s.RevenueCorrected > 0:
		c.printf("Corrected revenue on %d rows\n", s.RevenueCorrected)
	default:
		c.printf("Flagged %d rows with mismatched revenue\n", s.MismatchesFound)
	}

	c.println()
	c.println("Duplicate removal check:")
	if s.DuplicatesRemoved > 0 {
		c.printf("Removed %d duplicate rows\n", s.DuplicatesRemoved)
	} else {
		c.println("No duplicates removed")
	}

	c.println()
	c.printf("Final cleaned dataset shape: (%d, %d)\n", s.Rows, s.Columns)
	n := c.opts.CleanedPreview
	if n > ds.Len() {
		n = ds.Len()
	}
	if n > 0 {
		c.printf("First %d rows of cleaned data:\n", n)
		c.writeRecords(ds.Columns, ds.Records[:n])
	}
}

func (c *Console) writeKPIs(k *domain.KPIResults) {
	if k == nil {
		return
	}
	cur := c.opts.Currency

	c.println()
	c.println("KPI 1: TOTAL REVENUE")
	c.printf("→ %s\n", exporter.FormatMoney(cur, k.TotalRevenue))

	c.println()
	c.println("KPI 2: AVERAGE UNITS SOLD PER ORDER")
	c.printf("→ %s units\n", exporter.FormatAverage(k.AverageUnits))

	c.println()
	c.println("KPI 3: REVENUE BY REGION")
	rows := make([][]string, 0, len(k.RevenueByRegion))
	for _, r := range k.RevenueByRegion {
		rows = append(rows, []string{exporter.DisplayKey(r.Key), ": " + exporter.FormatMoney(cur, r.Revenue)})
	}
	c.table("  ", rows)

	c.println()
	c.println("KPI 4: HIGHEST REVENUE SALES REPRESENTATIVE")
	c.printf("Top %d Sales Reps:\n", len(k.TopReps))
	rows = rows[:0]
	for i, r := range k.TopReps {
		rows = append(rows, []string{fmt.Sprintf("%d.", i+1), exporter.DisplayKey(r.Key), ": " + exporter.FormatMoney(cur, r.Revenue)})
	}
	c.table("  ", rows)
	if best, ok := k.BestPerformer(); ok {
		c.printf("\nBest performer: %s → %s\n", exporter.DisplayKey(best.Key), exporter.FormatMoney(cur, best.Revenue))
	} else {
		c.printf("\nBest performer: %s\n", exporter.NotAvailable)
	}

	c.println()
	c.printf("KPI 5: TOP %d PRODUCTS BY UNITS SOLD\n", len(k.TopProducts))
	rows = rows[:0]
	for i, p := range k.TopProducts {
		rows = append(rows, []string{fmt.Sprintf("%d.", i+1), exporter.DisplayKey(p.Key), ": " + exporter.FormatUnits(p.Units) + " units"})
	}
	c.table("  ", rows)

	if len(k.RevenueByMonth) > 0 {
		c.println()
		c.println("Revenue by month:")
		rows = rows[:0]
		for _, m := range k.RevenueByMonth {
			rows = append(rows, []string{m.Period(), m.MonthName, ": " + exporter.FormatMoney(cur, m.Revenue)})
		}
		c.table("  ", rows)
	}
}

func (c *Console) writeExport(r *exporter.ExportResult) {
	if r == nil {
		return
	}
	for _, name := range r.Written {
		c.printf("→ Saved: %s\n", joinPath(r.Dir, name))
	}
	for _, f := range r.Failed {
		c.printf("✗ Not saved: %s (%v)\n", joinPath(r.Dir, f.Name), f.Err)
	}
}

// writeRecords prints records in dataset column order
func (c *Console) writeRecords(columns []string, records []domain.Record) {
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, append([]string{""}, columns...))
	for i := range records {
		rec := &records[i]
		row := []string{strconv.Itoa(i)}
		for _, name := range columns {
			row = append(row, cellText(rec, name))
		}
		rows = append(rows, row)
	}
	c.table("", rows)
}

// cellText returns the display value of a schema or extra column; missing values read NaN
func cellText(rec *domain.Record, name string) string {
	col := domain.Column(name)
	for _, sc := range domain.Schema {
		if sc != col {
			continue
		}
		if v, ok := rec.Value(col); ok {
			return v
		}
		return "NaN"
	}
	if v := rec.Extra[name]; v != "" {
		return v
	}
	return "NaN"
}

func formatStat(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}

func listText(values []string) string {
	return "[" + strings.Join(values, ", ") + "]"
}

func joinPath(dir, name string) string {
	if dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}
