package exporter

import (
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"salespulse/internal/config"
	"salespulse/pkg/contracts/domain"
)

// WritePDF renders the KPI report as a one-document PDF with a section per table
func WritePDF(path string, kpis *domain.KPIResults, currency string) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(config.AppName+" KPI Report", true)
	pdf.SetCreator(config.AppName+" "+config.AppVersion, true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, tr(config.AppName+" KPI Report"), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 6, "Generated "+time.Now().Format("2006-01-02 15:04:05"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdfTable(pdf, tr, "Summary", []string{"KPI", "Value"}, []float64{70, 100}, SummaryRows(kpis, currency))

	regions := make([][]string, len(kpis.RevenueByRegion))
	for i, r := range kpis.RevenueByRegion {
		regions[i] = []string{DisplayKey(r.Key), FormatMoney(currency, r.Revenue)}
	}
	pdfTable(pdf, tr, "Revenue by Region", []string{"Region", "Revenue"}, []float64{70, 60}, regions)

	reps := make([][]string, len(kpis.TopReps))
	for i, r := range kpis.TopReps {
		reps[i] = []string{fmt.Sprintf("%d", i+1), DisplayKey(r.Key), FormatMoney(currency, r.Revenue)}
	}
	pdfTable(pdf, tr, "Top Sales Reps", []string{"Rank", "Sales Rep", "Revenue"}, []float64{20, 70, 60}, reps)

	products := make([][]string, len(kpis.TopProducts))
	for i, p := range kpis.TopProducts {
		products[i] = []string{fmt.Sprintf("%d", i+1), DisplayKey(p.Key), FormatUnits(p.Units)}
	}
	pdfTable(pdf, tr, "Top Products by Units", []string{"Rank", "Product", "Units Sold"}, []float64{20, 70, 40}, products)

	months := make([][]string, len(kpis.RevenueByMonth))
	for i, m := range kpis.RevenueByMonth {
		months[i] = []string{m.Period(), m.MonthName, FormatMoney(currency, m.Revenue)}
	}
	pdfTable(pdf, tr, "Revenue by Month", []string{"Month", "Name", "Revenue"}, []float64{30, 40, 60}, months)

	return pdf.OutputFileAndClose(path)
}

// pdfTable writes a titled table; an empty table prints a no-data line
func pdfTable(pdf *gofpdf.Fpdf, tr func(string) string, title string, header []string, widths []float64, rows [][]string) {
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, tr(title), "", 1, "L", false, 0, "")

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(221, 235, 247)
	for i, h := range header {
		pdf.CellFormat(widths[i], 7, tr(h), "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	if len(rows) == 0 {
		pdf.CellFormat(0, 7, NotAvailable, "", 1, "L", false, 0, "")
	}
	for _, row := range rows {
		for i, v := range row {
			align := "L"
			if i == len(row)-1 {
				align = "R"
			}
			pdf.CellFormat(widths[i], 7, tr(v), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(4)
}
