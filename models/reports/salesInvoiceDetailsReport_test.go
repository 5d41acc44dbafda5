package reports

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSalesInvoiceDetailRows(t *testing.T) {
	lines := []*SalesInvoiceDetailLine{
		{Customer: "Alpha", Date: date(t, "2025-01-05"), InvoiceNo: "SINV-001", BillNo: strPtr("B-1"), Garment: "Shirt", Qty: dec("10"), Rate: dec("10"), Amount: dec("100")},
		{Customer: "Alpha", Date: date(t, "2025-01-06"), InvoiceNo: "SINV-002", Garment: "Jeans", Qty: dec("5"), Rate: dec("40"), Amount: dec("200")},
		{Customer: "Beta", Date: date(t, "2025-01-07"), InvoiceNo: "SINV-003", Garment: "Shirt", Qty: dec("1"), Rate: dec("50"), Amount: dec("50")},
	}

	rows := buildSalesInvoiceDetailRows(lines, dec("0.18"))
	require.Len(t, rows, 8)

	header := rows[0]
	assert.Equal(t, "Alpha", header["invoice_no"])
	assert.Equal(t, "Customer", header["link_doctype"])
	assert.Equal(t, 1, header["bold"])
	assert.Equal(t, "", header["amount"])

	first := rows[1]
	assert.Equal(t, "SINV-001", first["invoice_no"])
	assert.Equal(t, "Sales Invoice", first["link_doctype"])
	assert.Equal(t, "B-1", first["bill_no"])
	assert.Equal(t, "18", cell(first, "sales_tax"))
	assert.Equal(t, "118", cell(first, "total"))
	assert.NotContains(t, first, "customer")

	assert.Equal(t, "", rows[2]["bill_no"])

	partyAlpha := rows[3]
	assert.Equal(t, "Party Total", partyAlpha["garment"])
	assert.Equal(t, "15", cell(partyAlpha, "qty"))
	assert.Equal(t, "300", cell(partyAlpha, "amount"))
	assert.Equal(t, "54", cell(partyAlpha, "sales_tax"))
	assert.Equal(t, "354", cell(partyAlpha, "total"))

	assert.Equal(t, "Beta", rows[4]["invoice_no"])
	assert.Equal(t, "Party Total", rows[6]["garment"])

	grand := rows[7]
	assert.Equal(t, "Grand Total", grand["garment"])
	assert.Equal(t, "16", cell(grand, "qty"))
	assert.Equal(t, "350", cell(grand, "amount"))
	assert.Equal(t, "63", cell(grand, "sales_tax"))
	assert.Equal(t, "413", cell(grand, "total"))
}

func TestBuildSalesInvoiceDetailRowsEmpty(t *testing.T) {
	rows := buildSalesInvoiceDetailRows(nil, dec("0.18"))
	require.Len(t, rows, 1)
	assert.Equal(t, "Grand Total", rows[0]["garment"])
	assert.Equal(t, "0", cell(rows[0], "total"))
}

func TestGetSalesInvoiceDetailsReport(t *testing.T) {
	mock := newMockDB(t)
	t.Setenv("SALES_TAX_RATE", "0.1")
	fixToday(t, 2025, 2, 15)

	mock.ExpectQuery(`(?s)` + regexp.QuoteMeta("INNER JOIN `tabSales Invoice Item` sii ON si.name = sii.parent") + `.*AND si.customer = \?`).
		WillReturnRows(sqlmock.NewRows([]string{"customer", "date", "invoice_no", "bill_no", "garment", "qty", "rate", "amount"}).
			AddRow("Alpha", "2025-02-01", "SINV-010", nil, "Shirt", "2", "25", "50"))

	filters, err := ParseFilters(map[string]string{"customer": "Alpha"})
	require.NoError(t, err)

	result, err := GetSalesInvoiceDetailsReport(context.Background(), filters)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Len(t, result.Columns, 9)
	assert.Equal(t, "invoice_no", result.Columns[1].FieldName)
	assert.Equal(t, FieldTypeDynamicLink, result.Columns[1].FieldType)
	require.Len(t, result.Result, 4)
	assert.Equal(t, "5", cell(result.Result[1], "sales_tax"))
	assert.Equal(t, "55", cell(result.Result[3], "total"))
}
