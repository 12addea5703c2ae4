package exporter

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"salespulse/pkg/contracts/domain"
)

// Workbook sheet names
const (
	SheetSummary   = "Summary"
	SheetRegions   = "Regions"
	SheetSalesReps = "Sales Reps"
	SheetProducts  = "Products"
	SheetMonths    = "Months"
)

// WriteWorkbook writes the KPI report as an Excel workbook with one sheet per table
func WriteWorkbook(path string, kpis *domain.KPIResults, currency string) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"DDEBF7"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return fmt.Errorf("failed to create number style: %w", err)
	}

	if err := f.SetSheetName(f.GetSheetName(0), SheetSummary); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	summary := make([][]interface{}, 0, 4)
	for _, row := range SummaryRows(kpis, currency) {
		summary = append(summary, []interface{}{row[0], row[1]})
	}
	if err := writeSheet(f, SheetSummary, []string{"KPI", "Value"}, summary, headerStyle, -1, 0); err != nil {
		return err
	}

	regions := make([][]interface{}, len(kpis.RevenueByRegion))
	for i, r := range kpis.RevenueByRegion {
		regions[i] = []interface{}{r.Key, r.Revenue.Round(2).InexactFloat64()}
	}
	if err := writeSheet(f, SheetRegions, []string{"Region", "Revenue"}, regions, headerStyle, 2, moneyStyle); err != nil {
		return err
	}

	reps := make([][]interface{}, len(kpis.RevenueByRep))
	for i, r := range kpis.RevenueByRep {
		reps[i] = []interface{}{i + 1, r.Key, r.Revenue.Round(2).InexactFloat64()}
	}
	if err := writeSheet(f, SheetSalesReps, []string{"Rank", "Sales_Rep", "Revenue"}, reps, headerStyle, 3, moneyStyle); err != nil {
		return err
	}

	products := make([][]interface{}, len(kpis.UnitsByProduct))
	for i, p := range kpis.UnitsByProduct {
		products[i] = []interface{}{i + 1, p.Key, p.Units}
	}
	if err := writeSheet(f, SheetProducts, []string{"Rank", "Product", "Units_Sold"}, products, headerStyle, -1, 0); err != nil {
		return err
	}

	months := make([][]interface{}, len(kpis.RevenueByMonth))
	for i, m := range kpis.RevenueByMonth {
		months[i] = []interface{}{m.Period(), m.MonthName, m.Revenue.Round(2).InexactFloat64()}
	}
	if err := writeSheet(f, SheetMonths, []string{"Month", "Month_Name", "Revenue"}, months, headerStyle, 3, moneyStyle); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	return f.SaveAs(path)
}

// writeSheet writes a header and rows to sheet, creating it if needed.
// moneyCol is the 1-based column that gets moneyStyle, or -1 for none.
func writeSheet(f *excelize.File, sheet string, header []string, rows [][]interface{}, headerStyle, moneyCol, moneyStyle int) error {
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
		}
	}

	headerRow := make([]interface{}, len(header))
	for i, h := range header {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", lastCol+"1", headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}
	if err := f.SetColWidth(sheet, "A", lastCol, 18); err != nil {
		return fmt.Errorf("failed to size %s columns: %w", sheet, err)
	}

	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}

	if moneyCol > 0 && len(rows) > 0 {
		col, err := excelize.ColumnNumberToName(moneyCol)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, col+"2", fmt.Sprintf("%s%d", col, len(rows)+1), moneyStyle); err != nil {
			return fmt.Errorf("failed to style %s values: %w", sheet, err)
		}
	}
	return nil
}
