package report

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/internal/config"
	"salespulse/internal/operations"
)

const salesCSV = "Order_ID,Order_Date,Region,Sales_Rep,Product,Units_Sold,Unit_Price,Revenue\n" +
	"O1,2024-01-01,East,Alice,Pen,10,2.00,20.00\n" +
	"O2,2024-01-02,West,Bob,Pen,5,2.00,10.00\n" +
	"O3,2024-01-02,East,Alice,Book,3,5.00,14.00\n"

func fixedNow() time.Time {
	return time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
}

// runPipeline runs all steps on content with the console observing and returns the printed report
func runPipeline(t *testing.T, content string, mutate func(*config.Config), opts Options) (string, error) {
	t.Helper()

	dir := t.TempDir()
	input := filepath.Join(dir, "sales_data.csv")
	if content != "" {
		require.NoError(t, os.WriteFile(input, []byte(content), 0644))
	}

	cfg := config.Default()
	cfg.Input.Path = input
	cfg.Output.Dir = filepath.Join(dir, "results")
	if mutate != nil {
		mutate(cfg)
	}
	paths, err := config.ResolvePaths(cfg)
	require.NoError(t, err)

	var buf bytes.Buffer
	opts.Now = fixedNow
	console := NewConsole(&buf, opts)

	runner := operations.NewRunner(nil, nil)
	require.NoError(t, runner.Register(operations.StepFactory(cfg, paths, nil)...))
	runner.AddObserver(console)

	state := operations.NewRunState("run-1", paths.InputFile)
	console.Start(state)
	runErr := runner.Run(context.Background(), state)
	console.Finish(state, runErr)
	require.NoError(t, console.Err())

	return buf.String(), runErr
}

func TestConsole_FullRun(t *testing.T) {
	out, err := runPipeline(t, salesCSV, nil, Options{Currency: "R"})
	require.NoError(t, err)

	sections := []string{
		"SALES DATA ANALYSIS PROJECT",
		"Started: 2024-03-01 09:30:00",
		"1. IMPORT DATASET",
		"2. INITIAL DATA EXPLORATION",
		"3. DATA QUALITY CHECKS",
		"4. DATA CLEANING",
		"KPI CALCULATIONS",
		"EXPORTING RESULTS",
		"ANALYSIS COMPLETED SUCCESSFULLY",
	}
	last := -1
	for _, s := range sections {
		idx := strings.Index(out, s)
		require.GreaterOrEqual(t, idx, 0, "missing section %q", s)
		assert.Greater(t, idx, last, "section %q out of order", s)
		last = idx
	}

	expected := []string{
		"Rows: 3   Columns: 8",
		"Regions: [East, West]",
		"Sales Reps: [Alice, Bob]",
		"Unique Order IDs: 3",
		"No missing values found",
		"Duplicate rows: 0",
		"Revenue mismatches found: 1",
		"Date range: 2024-01-01 → 2024-01-02",
		"No duplicates removed",
		"Final cleaned dataset shape: (3, 8)",
		"→ R 44.00",
		"→ 6.00 units",
		"Best performer: Alice → R 34.00",
		"KPI 5: TOP 2 PRODUCTS BY UNITS SOLD",
		"2024-01",
		"→ Saved: ",
		config.KPISummaryFile,
	}
	for _, s := range expected {
		assert.Contains(t, out, s)
	}
}

func TestConsole_MissingKeyDisplay(t *testing.T) {
	content := salesCSV + "O4,2024-01-03,,Carol,Pen,1,2.00,2.00\n"
	out, err := runPipeline(t, content, func(cfg *config.Config) {
		cfg.Quality.MissingPolicy = config.MissingPolicyKeep
	}, Options{Currency: "R"})
	require.NoError(t, err)

	assert.Contains(t, out, "25.00%")
	assert.Contains(t, out, "Kept 1 rows with missing values")
	assert.Contains(t, out, "(missing)")
}

func TestConsole_Failure(t *testing.T) {
	out, err := runPipeline(t, "", nil, Options{})
	require.Error(t, err)

	assert.Contains(t, out, "ERROR: "+operations.StepNameIngest+" failed")
	assert.Contains(t, out, "ANALYSIS FAILED")
	assert.NotContains(t, out, "KPI CALCULATIONS")
}

func TestConsole_Quiet(t *testing.T) {
	out, err := runPipeline(t, salesCSV, nil, Options{Quiet: true})
	require.NoError(t, err)
	assert.Empty(t, out)
}
