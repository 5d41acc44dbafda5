package reports

import (
	"context"
	"sort"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/fama_reports/config"
	"bitbucket.org/mmdatafocus/fama_reports/models"
	"bitbucket.org/mmdatafocus/fama_reports/utils"
	"github.com/shopspring/decimal"
)

const CustomerSaleReceiptsSummaryTitle = "Customers Month Wise Sale & Receipts Summary"

func init() {
	register(CustomerSaleReceiptsSummaryTitle, GetCustomerSaleReceiptsSummaryReport,
		dateFilter("From Date", FilterFromDate, false),
		dateFilter("To Date", FilterToDate, false),
	)
}

// CustomerMonthAmount is one customer's total for a "YYYY-MM" month.
type CustomerMonthAmount struct {
	Customer string          `json:"customer"`
	Month    string          `json:"month"`
	Amount   decimal.Decimal `json:"amount"`
}

type CustomerAmount struct {
	Customer string          `json:"customer"`
	Amount   decimal.Decimal `json:"amount"`
}

func GetCustomerSaleReceiptsSummaryReport(ctx context.Context, filters Filters) (*ReportResult, error) {
	from, to, err := filters.dateRange(sinceEpoch)
	if err != nil {
		return nil, err
	}
	fromDate := models.NewMyDateString(from)
	toDate := models.NewMyDateString(to)

	sales, err := getMonthlyCustomerSales(ctx, fromDate, toDate)
	if err != nil {
		return nil, err
	}
	receipts, err := getMonthlyCustomerReceipts(ctx, fromDate, toDate, "")
	if err != nil {
		return nil, err
	}
	openings, err := getCustomerOpeningBalances(ctx, fromDate)
	if err != nil {
		return nil, err
	}

	columns, rows := buildCustomerSaleReceiptsSummary(sales, receipts, openings)
	return &ReportResult{Columns: columns, Result: rows}, nil
}

func getMonthlyCustomerSales(ctx context.Context, fromDate models.MyDateString, toDate models.MyDateString) ([]*CustomerMonthAmount, error) {
	sql := `
SELECT
    si.customer AS customer,
    DATE_FORMAT(si.posting_date, '%Y-%m') AS month,
    SUM(si.grand_total) AS amount
FROM
    ` + "`tabSales Invoice`" + ` si
WHERE
    si.docstatus = @docStatus
    AND si.posting_date BETWEEN @fromDate AND @toDate
GROUP BY
    si.customer, DATE_FORMAT(si.posting_date, '%Y-%m')
`
	var results []*CustomerMonthAmount
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql, map[string]interface{}{
		"docStatus": models.DocStatusSubmitted,
		"fromDate":  fromDate,
		"toDate":    toDate,
	}).Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// getCustomerOpeningBalances sums what is still outstanding on invoices posted before fromDate.
func getCustomerOpeningBalances(ctx context.Context, fromDate models.MyDateString) ([]*CustomerAmount, error) {
	sql := `
SELECT
    si.customer AS customer,
    SUM(si.outstanding_amount) AS amount
FROM
    ` + "`tabSales Invoice`" + ` si
WHERE
    si.docstatus = @docStatus
    AND si.posting_date < @fromDate
    AND si.status IN @statuses
GROUP BY
    si.customer
`
	var results []*CustomerAmount
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql, map[string]interface{}{
		"docStatus": models.DocStatusSubmitted,
		"fromDate":  fromDate,
		"statuses": []string{models.SalesInvoiceStatusUnpaid, models.SalesInvoiceStatusOverdue},
	}).Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

type saleReceiptMonth struct {
	key   string
	label string
	field string
}

func (m saleReceiptMonth) salesField() string    { return m.field + "_sales" }
func (m saleReceiptMonth) receiptsField() string { return m.field + "_receipts" }

func newSaleReceiptMonth(key string) saleReceiptMonth {
	label := key
	if t, err := time.Parse("2006-01", key); err == nil {
		label = t.Format("Jan 2006")
	}
	return saleReceiptMonth{key: key, label: label, field: utils.FieldName(label)}
}

func buildCustomerSaleReceiptsSummary(sales []*CustomerMonthAmount, receipts []*CustomerMonthAmount, openings []*CustomerAmount) ([]Column, []Row) {
	// "YYYY-MM" keys sort chronologically as strings.
	monthKeys := map[string]struct{}{}
	for _, s := range sales {
		monthKeys[s.Month] = struct{}{}
	}
	for _, r := range receipts {
		monthKeys[r.Month] = struct{}{}
	}
	keys := make([]string, 0, len(monthKeys))
	for k := range monthKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	months := make([]saleReceiptMonth, 0, len(keys))
	for _, k := range keys {
		months = append(months, newSaleReceiptMonth(k))
	}

	type cell struct{ customer, month string }
	salesBy := map[cell]decimal.Decimal{}
	receiptsBy := map[cell]decimal.Decimal{}
	openingBy := map[string]decimal.Decimal{}
	customerSet := map[string]struct{}{}

	for _, s := range sales {
		c := cell{s.Customer, s.Month}
		salesBy[c] = salesBy[c].Add(s.Amount)
		customerSet[s.Customer] = struct{}{}
	}
	for _, r := range receipts {
		c := cell{r.Customer, r.Month}
		receiptsBy[c] = receiptsBy[c].Add(r.Amount)
		customerSet[r.Customer] = struct{}{}
	}
	for _, o := range openings {
		openingBy[o.Customer] = openingBy[o.Customer].Add(o.Amount)
		customerSet[o.Customer] = struct{}{}
	}

	customers := make([]string, 0, len(customerSet))
	for c := range customerSet {
		customers = append(customers, c)
	}
	sort.Slice(customers, func(i, j int) bool {
		li, lj := strings.ToLower(customers[i]), strings.ToLower(customers[j])
		if li != lj {
			return li < lj
		}
		return customers[i] < customers[j]
	})

	numericFields := []string{"opening", "customer_ledger"}
	for _, m := range months {
		numericFields = append(numericFields, m.salesField(), m.receiptsField())
	}

	rows := make([]Row, 0, len(customers)+1)
	for _, customer := range customers {
		opening := openingBy[customer]
		row := Row{
			"customer": customer,
			"opening":  opening,
		}
		totalSales := decimal.Zero
		totalReceipts := decimal.Zero
		for _, m := range months {
			s := salesBy[cell{customer, m.key}]
			r := receiptsBy[cell{customer, m.key}]
			row[m.salesField()] = s
			row[m.receiptsField()] = r
			totalSales = totalSales.Add(s)
			totalReceipts = totalReceipts.Add(r)
		}
		row["customer_ledger"] = opening.Add(totalSales).Sub(totalReceipts)
		rows = append(rows, row)
	}

	totalRow := Row{"customer": "Total", "bold": 1}
	for field, v := range sumDecimals(rows, numericFields...) {
		totalRow[field] = v
	}
	rows = append(rows, totalRow)

	return customerSaleReceiptsColumns(months), rows
}

func customerSaleReceiptsColumns(months []saleReceiptMonth) []Column {
	columns := []Column{
		{Label: "Customer", FieldName: "customer", FieldType: FieldTypeLink, Options: "Customer", Width: 200},
		currencyColumn("Opening Balance", "opening", 150),
	}
	for _, m := range months {
		columns = append(columns,
			currencyColumn(m.label+" Sales", m.salesField(), 150),
			currencyColumn(m.label+" Receipts", m.receiptsField(), 150),
		)
	}
	return append(columns, currencyColumn("Customer Ledger", "customer_ledger", 150))
}
