package dataprocessing

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	apperrors "salespulse/internal/errors"
	"salespulse/internal/validation"
	"salespulse/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parser loads a sales dataset from a CSV or Excel file
type Parser struct {
	logger    *slog.Logger
	validator *validation.FileValidator
}

// NewParser creates a parser; a nil logger uses slog.Default()
func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{
		logger:    logger,
		validator: validation.NewFileValidator(logger),
	}
}

// Ingest reads every row of the file at path into a Dataset.
// A missing file is a NOT_FOUND error, an unreadable one a READ error and
// a header without the expected columns a SCHEMA error.
func (p *Parser) Ingest(ctx context.Context, path string) (*domain.Dataset, error) {
	if err := p.validator.ValidateInputFile(path); err != nil {
		return nil, err
	}

	var rows [][]string
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		rows, err = readExcelRows(path)
	default:
		rows, err = readCSVRows(path)
	}
	if err != nil {
		p.logger.ErrorContext(ctx, "Failed to read input file",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return nil, err
	}

	ds, err := buildDataset(rows, path)
	if err != nil {
		p.logger.ErrorContext(ctx, "Input does not match the sales schema",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return nil, err
	}

	rowCount, colCount := ds.Shape()
	p.logger.InfoContext(ctx, "Dataset imported",
		slog.String("path", path),
		slog.Int("rows", rowCount),
		slog.Int("columns", colCount))
	return ds, nil
}

// readCSVRows reads a comma separated file, tolerating a UTF-8 byte order mark
func readCSVRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewReadError("failed to open input file", err).WithContext("path", path)
	}
	defer f.Close()

	return ParseCSV(f)
}

// ParseCSV reads CSV rows from r. Every row must have as many fields as the header.
func ParseCSV(r io.Reader) ([][]string, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = 0

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.NewReadError("malformed CSV input", err)
	}

	for i, row := range rows {
		for j, cell := range row {
			if !utf8.ValidString(cell) {
				return nil, apperrors.NewReadError("input is not valid UTF-8", nil).
					WithContext("line", i+1).
					WithContext("column", j+1)
			}
		}
	}
	return rows, nil
}

// readExcelRows reads the first worksheet that has any rows
func readExcelRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperrors.NewReadError("failed to open workbook", err).WithContext("path", path)
	}
	defer f.Close()

	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, apperrors.NewReadError(fmt.Sprintf("failed to read sheet %s", sheet), err)
		}
		if len(rows) == 0 {
			continue
		}
		return normalizeExcelRows(rows), nil
	}
	return nil, nil
}

// normalizeExcelRows pads rows to the header width, since excelize omits
// trailing empty cells, and converts serial dates in Order_Date to ISO dates
func normalizeExcelRows(rows [][]string) [][]string {
	width := len(rows[0])
	dateCol := -1
	for i, h := range rows[0] {
		if strings.TrimSpace(h) == string(domain.ColOrderDate) {
			dateCol = i
		}
	}

	out := make([][]string, 0, len(rows))
	out = append(out, rows[0])
	for _, row := range rows[1:] {
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			row = padded
		}
		if dateCol >= 0 && dateCol < len(row) {
			if serial, err := strconv.ParseFloat(strings.TrimSpace(row[dateCol]), 64); err == nil {
				if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
					row[dateCol] = t.Format("2006-01-02")
				}
			}
		}
		out = append(out, row)
	}
	return out
}

// buildDataset binds rows to the schema and converts typed fields
func buildDataset(rows [][]string, source string) (*domain.Dataset, error) {
	if len(rows) == 0 {
		return nil, apperrors.NewReadError("input is empty, expected a header row", nil).WithContext("path", source)
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(h)
	}

	binding, missing := domain.ResolveSchema(header)
	if len(missing) > 0 {
		names := make([]string, len(missing))
		for i, c := range missing {
			names[i] = string(c)
		}
		return nil, apperrors.NewSchemaError(fmt.Sprintf("missing expected columns: %s", strings.Join(names, ", "))).
			WithContext("path", source).
			WithContext("columns", names)
	}

	ds := &domain.Dataset{
		Source:  source,
		Columns: header,
		Records: make([]domain.Record, 0, len(rows)-1),
	}

	for i, row := range rows[1:] {
		line := i + 2
		if len(row) != len(header) {
			return nil, apperrors.NewReadError(
				fmt.Sprintf("line %d has %d fields, expected %d", line, len(row), len(header)), nil).
				WithContext("line", line)
		}
		rec, err := parseRecord(row, binding, line)
		if err != nil {
			return nil, err
		}
		ds.Records = append(ds.Records, rec)
	}
	return ds, nil
}

// parseRecord converts one row into a typed Record
func parseRecord(row []string, binding domain.SchemaBinding, line int) (domain.Record, error) {
	cell := func(col domain.Column) string {
		return strings.TrimSpace(row[binding.Positions[col]])
	}

	rec := domain.Record{
		Line:         line,
		OrderID:      cell(domain.ColOrderID),
		OrderDateRaw: cell(domain.ColOrderDate),
		Region:       cell(domain.ColRegion),
		SalesRep:     cell(domain.ColSalesRep),
		Product:      cell(domain.ColProduct),
	}

	var err error
	if rec.UnitsSold, err = parseNullInt(cell(domain.ColUnitsSold)); err != nil {
		return rec, fieldReadError(domain.ColUnitsSold, cell(domain.ColUnitsSold), line, err)
	}
	if rec.UnitPrice, err = parseNullDecimal(cell(domain.ColUnitPrice)); err != nil {
		return rec, fieldReadError(domain.ColUnitPrice, cell(domain.ColUnitPrice), line, err)
	}
	if rec.Revenue, err = parseNullDecimal(cell(domain.ColRevenue)); err != nil {
		return rec, fieldReadError(domain.ColRevenue, cell(domain.ColRevenue), line, err)
	}

	if len(binding.Extras) > 0 {
		rec.Extra = make(map[string]string, len(binding.Extras))
		for _, extra := range binding.Extras {
			rec.Extra[extra.Name] = strings.TrimSpace(row[extra.Index])
		}
	}
	return rec, nil
}

func fieldReadError(col domain.Column, value string, line int, cause error) error {
	return apperrors.NewReadError(fmt.Sprintf("invalid %s value %q on line %d", col, value, line), cause).
		WithContext("line", line).
		WithContext("column", string(col))
}

// parseNullInt accepts integers written as "10" or "10.0"; empty means missing
func parseNullInt(s string) (domain.NullInt, error) {
	if s == "" {
		return domain.NullInt{}, nil
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return domain.NewNullInt(v), nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return domain.NullInt{}, err
	}
	if !d.IsInteger() {
		return domain.NullInt{}, fmt.Errorf("not an integer")
	}
	return domain.NewNullInt(d.IntPart()), nil
}

// parseNullDecimal parses a decimal; empty means missing
func parseNullDecimal(s string) (decimal.NullDecimal, error) {
	if s == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}
