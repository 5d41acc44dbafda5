package reports

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildCustomerSaleReceiptsSummary(t *testing.T) {
	sales := []*CustomerMonthAmount{
		{Customer: "beta", Month: "2025-08", Amount: dec("100")},
		{Customer: "Alpha", Month: "2024-12", Amount: dec("50")},
		{Customer: "Alpha", Month: "2025-08", Amount: dec("25")},
	}
	receipts := []*CustomerMonthAmount{
		{Customer: "Alpha", Month: "2025-01", Amount: dec("30")},
	}
	openings := []*CustomerAmount{
		{Customer: "Gamma", Amount: dec("10")},
		{Customer: "Alpha", Amount: dec("5")},
	}

	columns, rows := buildCustomerSaleReceiptsSummary(sales, receipts, openings)

	fields := make([]string, 0, len(columns))
	for _, c := range columns {
		fields = append(fields, c.FieldName)
	}
	assert.Equal(t, []string{
		"customer", "opening",
		"dec_2024_sales", "dec_2024_receipts",
		"jan_2025_sales", "jan_2025_receipts",
		"aug_2025_sales", "aug_2025_receipts",
		"customer_ledger",
	}, fields)
	assert.Equal(t, "Dec 2024 Sales", columns[2].Label)
	assert.Equal(t, "Customer", columns[0].Options)

	require.Len(t, rows, 4)
	assert.Equal(t, "Alpha", rows[0]["customer"])
	assert.Equal(t, "beta", rows[1]["customer"])
	assert.Equal(t, "Gamma", rows[2]["customer"])

	alpha := rows[0]
	assert.Equal(t, "5", cell(alpha, "opening"))
	assert.Equal(t, "50", cell(alpha, "dec_2024_sales"))
	assert.Equal(t, "30", cell(alpha, "jan_2025_receipts"))
	assert.Equal(t, "0", cell(alpha, "jan_2025_sales"))
	assert.Equal(t, "50", cell(alpha, "customer_ledger"))

	assert.Equal(t, "100", cell(rows[1], "customer_ledger"))
	assert.Equal(t, "10", cell(rows[2], "customer_ledger"))

	total := rows[3]
	assert.Equal(t, "Total", total["customer"])
	assert.Equal(t, "15", cell(total, "opening"))
	assert.Equal(t, "125", cell(total, "aug_2025_sales"))
	assert.Equal(t, "160", cell(total, "customer_ledger"))
}

func TestBuildCustomerSaleReceiptsSummaryEmpty(t *testing.T) {
	columns, rows := buildCustomerSaleReceiptsSummary(nil, nil, nil)
	assert.Len(t, columns, 3)
	require.Len(t, rows, 1)
	assert.Equal(t, "Total", rows[0]["customer"])
	assert.Equal(t, "0", cell(rows[0], "customer_ledger"))
}

func TestGetCustomerSaleReceiptsSummaryReport(t *testing.T) {
	mock := newMockDB(t)
	fixToday(t, 2025, 8, 20)

	mock.ExpectQuery(regexp.QuoteMeta("SUM(si.grand_total) AS amount")).
		WillReturnRows(sqlmock.NewRows([]string{"customer", "month", "amount"}).
			AddRow("Alpha", "2025-08", "200"))
	mock.ExpectQuery(regexp.QuoteMeta("SUM(pe.paid_amount), 0) AS amount")).
		WillReturnRows(sqlmock.NewRows([]string{"customer", "month", "amount"}).
			AddRow("Alpha", "2025-08", "150"))
	mock.ExpectQuery(regexp.QuoteMeta("AND si.status IN (?,?)")).
		WillReturnRows(sqlmock.NewRows([]string{"customer", "amount"}))

	result, err := GetCustomerSaleReceiptsSummaryReport(context.Background(), Filters{})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	require.Len(t, result.Result, 2)
	assert.Equal(t, "50", cell(result.Result[0], "customer_ledger"))
	assert.Equal(t, "aug_2025_sales", result.Columns[2].FieldName)
}
