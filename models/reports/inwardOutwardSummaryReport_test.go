package reports

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func descriptions(rows []Row) []any {
	out := make([]any, 0, len(rows))
	for _, r := range rows {
		out = append(out, r["description"])
	}
	return out
}

func TestBuildInwardOutwardRows(t *testing.T) {
	lines := []*InwardOutwardLine{
		{Process: "Denim", CustNo: "C-1", DocNo: "STE-1", PostingDate: date(t, "2025-01-02"), Style: strPtr("ST1"), Description: strPtr("Denim jacket"), InQty: dec("10.125")},
		{Process: "Denim", CustNo: "C-1", DocNo: "STE-2", PostingDate: date(t, "2025-01-03"), OutQty: dec("4")},
		{Process: "Denim", CustNo: "C-2", DocNo: "STE-3", PostingDate: date(t, "2025-01-03"), InQty: dec("2")},
		// Same customer under a new process still closes its own subtotal.
		{Process: "Wash", CustNo: "C-2", DocNo: "STE-4", PostingDate: date(t, "2025-01-04"), InQty: dec("5"), OutQty: dec("1")},
	}

	rows := buildInwardOutwardRows(lines)
	assert.Equal(t, []any{
		"Denim jacket", "", "C-1 Total",
		"", "C-2 Total", "Denim Total",
		"", "C-2 Total", "Wash Total",
		"Grand Total",
	}, descriptions(rows))

	c1 := rows[2]
	assert.Equal(t, "C-1", c1["cust_no"])
	assert.Equal(t, "", c1["process"])
	assert.Equal(t, "10.13", cell(c1, "in_qty"))
	assert.Equal(t, "4", cell(c1, "out_qty"))

	denim := rows[5]
	assert.Equal(t, "Denim", denim["process"])
	assert.Equal(t, "", denim["cust_no"])
	assert.Equal(t, "12.13", cell(denim, "in_qty"))

	wash := rows[8]
	assert.Equal(t, "5", cell(wash, "in_qty"))
	assert.Equal(t, "1", cell(wash, "out_qty"))

	grand := rows[9]
	assert.Equal(t, "", grand["process"])
	assert.Equal(t, "17.13", cell(grand, "in_qty"))
	assert.Equal(t, "5", cell(grand, "out_qty"))

	assert.Equal(t, "ST1", rows[0]["style"])
	assert.Equal(t, "", rows[1]["style"])
}

func TestBuildInwardOutwardRowsEmpty(t *testing.T) {
	rows := buildInwardOutwardRows(nil)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestGetInwardOutwardSummaryReport(t *testing.T) {
	mock := newMockDB(t)

	mock.ExpectQuery(`(?s)` + regexp.QuoteMeta("FROM\n    `tabStock Entry` se") +
		`.*se.docstatus = \? AND se.posting_date >= \? AND se.process = \? AND sed.style = \?` +
		`.*` + regexp.QuoteMeta("AND (((sed.s_warehouse IS NULL OR sed.s_warehouse = '') AND sed.t_warehouse LIKE ?) OR (sed.s_warehouse LIKE ? AND se.stock_entry_type = ?))")).
		WillReturnRows(sqlmock.NewRows([]string{"process", "cust_no", "doc_no", "posting_date", "style", "description", "in_qty", "out_qty"}).
			AddRow("Wash", "C-9", "STE-9", "2025-03-01", "ST9", "Polo", "3", "0"))

	filters, err := ParseFilters(map[string]string{"from_date": "2025-03-01", "process": "Wash", "style": "ST9"})
	require.NoError(t, err)

	result, err := GetInwardOutwardSummaryReport(context.Background(), filters)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	require.Len(t, result.Columns, 8)
	assert.Equal(t, "cust_no", result.Columns[1].FieldName)
	assert.Equal(t, FieldTypeFloat, result.Columns[6].FieldType)
	assert.Equal(t, []any{"Polo", "C-9 Total", "Wash Total", "Grand Total"}, descriptions(result.Result))
}

func TestBuildInwardOutwardRowsBlankKeys(t *testing.T) {
	lines := []*InwardOutwardLine{
		{Process: "", CustNo: "", DocNo: "STE-1", Description: strPtr("Loose"), InQty: dec("2")},
		{Process: "", CustNo: "C-1", DocNo: "STE-2", Description: strPtr("Cap"), InQty: dec("3")},
		{Process: "Wash", CustNo: "", DocNo: "STE-3", Description: strPtr("Polo"), OutQty: dec("4")},
	}
	rows := buildInwardOutwardRows(lines)
	assert.Equal(t, []any{"Loose", "Cap", "C-1 Total", "Polo", "Wash Total", "Grand Total"}, descriptions(rows))
	assert.Equal(t, "5", cell(rows[5], "in_qty"))
	assert.Equal(t, "4", cell(rows[5], "out_qty"))
}

func TestGetInwardOutwardSummaryReportBindsArgs(t *testing.T) {
	mock := newMockDB(t)

	mock.ExpectQuery(`(?s)` + regexp.QuoteMeta("ORDER BY\n    COALESCE(se.process, ''), COALESCE(se.cust_no, ''), se.posting_date, se.name")).
		WithArgs("%Finished%", "%Finished%", "Material Issue", int64(1), "C-1", "%Finished%", "%Finished%", "Material Issue").
		WillReturnRows(sqlmock.NewRows([]string{"process", "cust_no", "doc_no", "posting_date", "style", "description", "in_qty", "out_qty"}))

	result, err := GetInwardOutwardSummaryReport(context.Background(), Filters{Customer: "C-1"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
	assert.Empty(t, result.Result)
}

func TestGetInwardOutwardSummaryReportRejectsUnknownProcess(t *testing.T) {
	_, err := ParseFilters(map[string]string{"process": "Wash'; DROP TABLE x; --"})
	assert.ErrorIs(t, err, ErrInvalidFilter)
}
