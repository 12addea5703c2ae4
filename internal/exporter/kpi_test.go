package exporter

import (
	"context"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"salespulse/internal/config"
	apperrors "salespulse/internal/errors"
	"salespulse/internal/shared/testutil"
	"salespulse/pkg/contracts/domain"
)

func exampleKPIs() *domain.KPIResults {
	return &domain.KPIResults{
		Orders:       3,
		TotalRevenue: decimal.RequireFromString("44.00"),
		AverageUnits: 6,
		RevenueByRegion: []domain.RankedRevenue{
			{Key: "East", Revenue: decimal.RequireFromString("34.00")},
			{Key: "West", Revenue: decimal.RequireFromString("10.00")},
		},
		RevenueByRep: []domain.RankedRevenue{
			{Key: "Alice", Revenue: decimal.RequireFromString("34.00")},
			{Key: "Bob", Revenue: decimal.RequireFromString("10.00")},
		},
		TopReps: []domain.RankedRevenue{
			{Key: "Alice", Revenue: decimal.RequireFromString("34.00")},
			{Key: "Bob", Revenue: decimal.RequireFromString("10.00")},
		},
		UnitsByProduct: []domain.RankedUnits{{Key: "Pen", Units: 15}, {Key: "Book", Units: 3}},
		TopProducts:    []domain.RankedUnits{{Key: "Pen", Units: 15}, {Key: "Book", Units: 3}},
		RevenueByMonth: []domain.MonthlyRevenue{
			{Year: 2024, Month: time.January, MonthName: "January", Revenue: decimal.RequireFromString("44.00")},
		},
	}
}

func emptyKPIs() *domain.KPIResults {
	return &domain.KPIResults{TotalRevenue: decimal.Zero, AverageUnits: math.NaN()}
}

func TestSummaryRows(t *testing.T) {
	tests := []struct {
		name     string
		kpis     *domain.KPIResults
		expected [][]string
	}{
		{
			name: "three row example",
			kpis: exampleKPIs(),
			expected: [][]string{
				{"Total Revenue", "R 44.00"},
				{"Avg Units per Order", "6.00"},
				{"Top Sales Rep", "Alice"},
				{"Top Product (units)", "Pen (15 units)"},
			},
		},
		{
			name: "thousands separator in units",
			kpis: &domain.KPIResults{
				TotalRevenue:   decimal.RequireFromString("3000"),
				AverageUnits:   1500,
				RevenueByRep:   []domain.RankedRevenue{{Key: "Alice", Revenue: decimal.RequireFromString("3000")}},
				UnitsByProduct: []domain.RankedUnits{{Key: "Pen", Units: 1500}},
				TopProducts:    []domain.RankedUnits{{Key: "Pen", Units: 1500}},
			},
			expected: [][]string{
				{"Total Revenue", "R 3,000.00"},
				{"Avg Units per Order", "1500.00"},
				{"Top Sales Rep", "Alice"},
				{"Top Product (units)", "Pen (1,500 units)"},
			},
		},
		{
			name: "no data",
			kpis: emptyKPIs(),
			expected: [][]string{
				{"Total Revenue", "R 0.00"},
				{"Avg Units per Order", "NaN"},
				{"Top Sales Rep", "N/A"},
				{"Top Product (units)", "N/A"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SummaryRows(tt.kpis, "R"))
		})
	}
}

func TestExporter_Export_CSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "results")
	exp := NewExporter(&config.Paths{OutputDir: dir}, Options{Currency: "R"}, nil)

	result := exp.Export(context.Background(), exampleKPIs())

	require.NoError(t, result.Err())
	assert.Equal(t, []string{config.KPISummaryFile, config.RevenueByRegionFile, config.UnitsByProductFile}, result.Written)
	assert.Empty(t, result.Failed)

	assert.Equal(t, [][]string{
		{"KPI", "Value"},
		{"Total Revenue", "R 44.00"},
		{"Avg Units per Order", "6.00"},
		{"Top Sales Rep", "Alice"},
		{"Top Product (units)", "Pen (15 units)"},
	}, readCSV(t, filepath.Join(dir, config.KPISummaryFile)))
	assert.Equal(t, [][]string{{"Region", "Revenue"}, {"East", "34.00"}, {"West", "10.00"}},
		readCSV(t, filepath.Join(dir, config.RevenueByRegionFile)))
	assert.Equal(t, [][]string{{"Product", "Units_Sold"}, {"Pen", "15"}, {"Book", "3"}},
		readCSV(t, filepath.Join(dir, config.UnitsByProductFile)))
}

func TestExporter_Export_Empty(t *testing.T) {
	dir := t.TempDir()
	result := NewExporter(&config.Paths{OutputDir: dir}, Options{Currency: "R"}, nil).
		Export(context.Background(), emptyKPIs())

	require.NoError(t, result.Err())
	assert.Equal(t, [][]string{{"Region", "Revenue"}}, readCSV(t, filepath.Join(dir, config.RevenueByRegionFile)))
	assert.Equal(t, [][]string{{"Product", "Units_Sold"}}, readCSV(t, filepath.Join(dir, config.UnitsByProductFile)))
}

func TestExporter_Export_AllFormats(t *testing.T) {
	dir := t.TempDir()
	exp := NewExporter(&config.Paths{OutputDir: dir}, Options{
		Formats:  []string{config.FormatCSV, config.FormatXLSX, config.FormatPDF},
		Currency: "R",
	}, nil)

	result := exp.Export(context.Background(), exampleKPIs())
	require.NoError(t, result.Err())
	assert.Len(t, result.Written, 5)

	f, err := excelize.OpenFile(filepath.Join(dir, config.WorkbookFile))
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{SheetSummary, SheetRegions, SheetSalesReps, SheetProducts, SheetMonths}, f.GetSheetList())

	rows, err := f.GetRows(SheetRegions)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Region", "Revenue"}, rows[0])
	assert.Equal(t, "East", rows[1][0])

	summary, err := f.GetRows(SheetSummary)
	require.NoError(t, err)
	assert.Equal(t, []string{"Top Product (units)", "Pen (15 units)"}, summary[4])

	pdf, err := os.ReadFile(filepath.Join(dir, config.PDFReportFile))
	require.NoError(t, err)
	assert.True(t, len(pdf) > 4 && string(pdf[:4]) == "%PDF")
}

func TestExporter_Export_Failures(t *testing.T) {
	t.Run("one blocked file does not stop the others", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(dir, config.RevenueByRegionFile), 0755))

		logger, logs := testutil.NewTestLogger()
		result := NewExporter(&config.Paths{OutputDir: dir}, Options{Currency: "R"}, logger).
			Export(context.Background(), exampleKPIs())

		failure := testutil.RequireLog(t, logs, slog.LevelError, "Failed to write output file")
		file, _ := failure.Attr("file")
		assert.Equal(t, config.RevenueByRegionFile, file)

		assert.Equal(t, []string{config.KPISummaryFile, config.UnitsByProductFile}, result.Written)
		require.Len(t, result.Failed, 1)
		assert.Equal(t, config.RevenueByRegionFile, result.Failed[0].Name)
		assert.True(t, apperrors.IsType(result.Err(), apperrors.ErrTypeWrite))
	})

	t.Run("output directory cannot be created", func(t *testing.T) {
		blocker := filepath.Join(t.TempDir(), "results")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

		result := NewExporter(&config.Paths{OutputDir: blocker}, Options{}, nil).
			Export(context.Background(), exampleKPIs())

		assert.Empty(t, result.Written)
		assert.Len(t, result.Failed, 3)
		assert.True(t, apperrors.IsType(result.Err(), apperrors.ErrTypeWrite))
	})

	t.Run("unsupported format", func(t *testing.T) {
		result := NewExporter(&config.Paths{OutputDir: t.TempDir()}, Options{Formats: []string{"html"}}, nil).
			Export(context.Background(), exampleKPIs())

		require.Len(t, result.Failed, 1)
		assert.Contains(t, result.Err().Error(), "unsupported export format")
	})
}
