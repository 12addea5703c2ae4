package dataprocessing

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"salespulse/pkg/contracts/domain"
)

const header = "Order_ID,Order_Date,Region,Sales_Rep,Product,Units_Sold,Unit_Price,Revenue\n"

// threeRowCSV has one deliberate revenue mismatch on O3 (3 x 5.00 stored as 14.00)
const threeRowCSV = header +
	"O1,2024-01-01,East,Alice,Pen,10,2.00,20.00\n" +
	"O2,2024-01-02,West,Bob,Pen,5,2.00,10.00\n" +
	"O3,2024-01-02,East,Alice,Book,3,5.00,14.00\n"

func writeInput(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func loadCSV(t *testing.T, content string) *domain.Dataset {
	t.Helper()
	ds, err := NewParser(nil).Ingest(context.Background(), writeInput(t, "sales.csv", content))
	require.NoError(t, err)
	return ds
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
