package reports

import (
	"context"

	"bitbucket.org/mmdatafocus/fama_reports/config"
	"bitbucket.org/mmdatafocus/fama_reports/models"
	"bitbucket.org/mmdatafocus/fama_reports/utils"
	"github.com/shopspring/decimal"
)

const SalesInvoiceDetailsTitle = "Sales Invoice Details"

func init() {
	register(SalesInvoiceDetailsTitle, GetSalesInvoiceDetailsReport,
		dateFilter("From Date", FilterFromDate, false),
		dateFilter("To Date", FilterToDate, false),
		linkFilter("Customer", FilterCustomer, "Customer"),
	)
}

type SalesInvoiceDetailLine struct {
	Customer  string              `json:"customer"`
	Date      models.MyDateString `json:"date"`
	InvoiceNo string              `json:"invoiceNo"`
	BillNo    *string             `json:"billNo"`
	Garment   string              `json:"garment"`
	Qty       decimal.Decimal     `json:"qty"`
	Rate      decimal.Decimal     `json:"rate"`
	Amount    decimal.Decimal     `json:"amount"`
}

func salesInvoiceDetailsColumns() []Column {
	return []Column{
		{Label: "Date", FieldName: "date", FieldType: FieldTypeDate, Width: 100},
		{Label: "Invoice # / Customer", FieldName: "invoice_no", FieldType: FieldTypeDynamicLink, Options: "link_doctype", Width: 180},
		dataColumn("Bill #", "bill_no", 100),
		dataColumn("Garment", "garment", 150),
		{Label: "Qty", FieldName: "qty", FieldType: FieldTypeFloat, Width: 80},
		currencyColumn("Rate", "rate", 100),
		currencyColumn("Amount", "amount", 120),
		currencyColumn("Sales Tax", "sales_tax", 100),
		currencyColumn("Total", "total", 100),
	}
}

func GetSalesInvoiceDetailsReport(ctx context.Context, filters Filters) (*ReportResult, error) {
	from, to, err := filters.dateRange(sinceEpoch)
	if err != nil {
		return nil, err
	}

	lines, err := getSalesInvoiceDetailLines(ctx, models.NewMyDateString(from), models.NewMyDateString(to), filters.Customer)
	if err != nil {
		return nil, err
	}

	return &ReportResult{
		Columns: salesInvoiceDetailsColumns(),
		Result:  buildSalesInvoiceDetailRows(lines, config.SalesTaxRate()),
	}, nil
}

func getSalesInvoiceDetailLines(ctx context.Context, fromDate models.MyDateString, toDate models.MyDateString, customer string) ([]*SalesInvoiceDetailLine, error) {

	sqlT := `
SELECT
    si.customer AS customer,
    si.posting_date AS date,
    si.name AS invoice_no,
    si.po_no AS bill_no,
    sii.item_name AS garment,
    sii.qty AS qty,
    sii.rate AS rate,
    sii.amount AS amount
FROM
    ` + "`tabSales Invoice`" + ` si
    INNER JOIN ` + "`tabSales Invoice Item`" + ` sii ON si.name = sii.parent
WHERE
    si.docstatus = @docStatus
    AND si.is_return = 0
    AND si.posting_date BETWEEN @fromDate AND @toDate
    {{- if .customer }} AND si.customer = @customer {{- end }}
ORDER BY
    si.customer, si.posting_date, si.name, sii.idx
`

	sql, err := utils.ExecTemplate(sqlT, map[string]interface{}{
		"customer": customer,
	})
	if err != nil {
		return nil, err
	}

	args := map[string]interface{}{
		"docStatus": models.DocStatusSubmitted,
		"fromDate":  fromDate,
		"toDate":    toDate,
	}
	if customer != "" {
		args["customer"] = customer
	}

	var lines []*SalesInvoiceDetailLine
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql, args).Scan(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

type invoiceTotals struct {
	qty      decimal.Decimal
	amount   decimal.Decimal
	salesTax decimal.Decimal
	total    decimal.Decimal
}

func (t *invoiceTotals) add(o invoiceTotals) {
	t.qty = t.qty.Add(o.qty)
	t.amount = t.amount.Add(o.amount)
	t.salesTax = t.salesTax.Add(o.salesTax)
	t.total = t.total.Add(o.total)
}

func (t invoiceTotals) row(label string) Row {
	return Row{
		"date":         "",
		"invoice_no":   "",
		"link_doctype": "",
		"bill_no":      "",
		"garment":      label,
		"qty":          t.qty,
		"rate":         "",
		"amount":       t.amount,
		"sales_tax":    t.salesTax,
		"total":        t.total,
		"bold":         1,
	}
}

// buildSalesInvoiceDetailRows expects lines ordered by customer. Each customer gets a
// header row, its invoice lines and a "Party Total"; a "Grand Total" row always closes the result.
func buildSalesInvoiceDetailRows(lines []*SalesInvoiceDetailLine, taxRate decimal.Decimal) []Row {
	var (
		rows            []Row
		currentCustomer string
		started         bool
		party           invoiceTotals
		grand           invoiceTotals
	)

	closeParty := func() {
		rows = append(rows, party.row("Party Total"))
		grand.add(party)
		party = invoiceTotals{}
	}

	for _, line := range lines {
		if !started || line.Customer != currentCustomer {
			if started {
				closeParty()
			}
			rows = append(rows, Row{
				"date":         "",
				"invoice_no":   line.Customer,
				"link_doctype": models.PartyTypeCustomer,
				"bill_no":      "",
				"garment":      "",
				"qty":          "",
				"rate":         "",
				"amount":       "",
				"sales_tax":    "",
				"total":        "",
				"bold":         1,
			})
			currentCustomer = line.Customer
			started = true
		}

		salesTax := line.Amount.Mul(taxRate)
		total := line.Amount.Add(salesTax)
		rows = append(rows, Row{
			"date":         line.Date,
			"invoice_no":   line.InvoiceNo,
			"link_doctype": "Sales Invoice",
			"bill_no":      utils.DereferencePtr(line.BillNo, ""),
			"garment":      line.Garment,
			"qty":          line.Qty,
			"rate":         line.Rate,
			"amount":       line.Amount,
			"sales_tax":    salesTax,
			"total":        total,
		})
		party.add(invoiceTotals{qty: line.Qty, amount: line.Amount, salesTax: salesTax, total: total})
	}

	if started {
		closeParty()
	}
	rows = append(rows, grand.row("Grand Total"))
	return rows
}
