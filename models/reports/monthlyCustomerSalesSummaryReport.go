package reports

import (
	"context"
	"time"

	"bitbucket.org/mmdatafocus/fama_reports/config"
	"bitbucket.org/mmdatafocus/fama_reports/models"
	"bitbucket.org/mmdatafocus/fama_reports/utils"
	"github.com/shopspring/decimal"
)

const MonthlyCustomerSalesSummaryTitle = "Month Wise Customer Sales Summary"

const (
	detailBilling   = "Billing"
	detailTaxDed    = "Tax Ded."
	detailOtherDed  = "Other Ded."
	detailReceived  = "Received"
	detailTotal     = "Total"
	detailBalance   = "Balance"
	grandTotalLabel = "G. Total"
)

var detailTypes = []string{detailBilling, detailTaxDed, detailOtherDed, detailReceived, detailTotal, detailBalance}

func init() {
	register(MonthlyCustomerSalesSummaryTitle, GetMonthlyCustomerSalesSummaryReport,
		dateFilter("From Date", FilterFromDate, true),
		dateFilter("To Date", FilterToDate, true),
		linkFilter("Customer", FilterCustomer, "Customer"),
	)
}

// CustomerMonthBilling is one customer's invoiced net and tax for a "YYYY-MM" month.
type CustomerMonthBilling struct {
	Customer string          `json:"customer"`
	Month    string          `json:"month"`
	Billing  decimal.Decimal `json:"billing"`
	Tax      decimal.Decimal `json:"tax"`
}

func oneMonthBefore(to time.Time) time.Time { return utils.AddMonths(to, -1) }

func GetMonthlyCustomerSalesSummaryReport(ctx context.Context, filters Filters) (*ReportResult, error) {
	from, to, err := filters.dateRange(oneMonthBefore)
	if err != nil {
		return nil, err
	}
	// Month columns always cover whole calendar months.
	fromDate := models.NewMyDateString(utils.StartOfMonth(from))
	toDate := models.NewMyDateString(utils.EndOfMonth(to))

	customers, err := models.GetCustomers(ctx, filters.Customer)
	if err != nil {
		return nil, err
	}
	billings, err := getMonthlyCustomerBillings(ctx, fromDate, toDate, filters.Customer)
	if err != nil {
		return nil, err
	}
	receipts, err := getMonthlyCustomerReceipts(ctx, fromDate, toDate, filters.Customer)
	if err != nil {
		return nil, err
	}

	months := utils.MonthsBetween(from, to)
	return &ReportResult{
		Columns: monthlyCustomerSalesColumns(months),
		Result:  buildMonthlyCustomerSalesRows(months, customers, billings, receipts),
	}, nil
}

func getMonthlyCustomerBillings(ctx context.Context, fromDate models.MyDateString, toDate models.MyDateString, customer string) ([]*CustomerMonthBilling, error) {

	sqlT := `
SELECT
    si.customer AS customer,
    DATE_FORMAT(si.posting_date, '%Y-%m') AS month,
    COALESCE(SUM(si.base_total), 0) AS billing,
    COALESCE(SUM(si.total_taxes_and_charges), 0) AS tax
FROM
    ` + "`tabSales Invoice`" + ` si
WHERE
    si.docstatus = @docStatus
    AND si.posting_date BETWEEN @fromDate AND @toDate
    {{- if .customer }} AND si.customer = @customer {{- end }}
GROUP BY
    si.customer, DATE_FORMAT(si.posting_date, '%Y-%m')
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

	var results []*CustomerMonthBilling
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql, args).Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func getMonthlyCustomerReceipts(ctx context.Context, fromDate models.MyDateString, toDate models.MyDateString, customer string) ([]*CustomerMonthAmount, error) {

	sqlT := `
SELECT
    pe.party AS customer,
    DATE_FORMAT(pe.posting_date, '%Y-%m') AS month,
    COALESCE(SUM(pe.paid_amount), 0) AS amount
FROM
    ` + "`tabPayment Entry`" + ` pe
WHERE
    pe.docstatus = @docStatus
    AND pe.party_type = @partyType
    AND pe.payment_type = @paymentType
    AND pe.posting_date BETWEEN @fromDate AND @toDate
    {{- if .customer }} AND pe.party = @customer {{- end }}
GROUP BY
    pe.party, DATE_FORMAT(pe.posting_date, '%Y-%m')
`
	sql, err := utils.ExecTemplate(sqlT, map[string]interface{}{
		"customer": customer,
	})
	if err != nil {
		return nil, err
	}

	args := map[string]interface{}{
		"docStatus":   models.DocStatusSubmitted,
		"partyType":   models.PartyTypeCustomer,
		"paymentType": models.PaymentTypeReceive,
		"fromDate":    fromDate,
		"toDate":      toDate,
	}
	if customer != "" {
		args["customer"] = customer
	}

	var results []*CustomerMonthAmount
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql, args).Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// monthField is "jan_25" for January 2025.
func monthField(month time.Time) string {
	return utils.FieldName(month.Format("Jan-06"))
}

func monthlyCustomerSalesColumns(months []time.Time) []Column {
	columns := []Column{
		dataColumn("S. No", "sr_no", 60),
		dataColumn("Customer Name", "customer_name", 220),
		dataColumn("Detail Type", "detail_type", 150),
	}
	for _, m := range months {
		columns = append(columns, currencyColumn(m.Format("Jan-06"), monthField(m), 120))
	}
	return append(columns, currencyColumn("Total", "total", 120))
}

// monthlyDetail holds one customer's six detail lines keyed by "YYYY-MM".
type monthlyDetail map[string]map[string]decimal.Decimal

func newMonthlyDetail() monthlyDetail {
	d := monthlyDetail{}
	for _, label := range detailTypes {
		d[label] = map[string]decimal.Decimal{}
	}
	return d
}

func (d monthlyDetail) addTo(o monthlyDetail) {
	for label, byMonth := range d {
		for month, v := range byMonth {
			o[label][month] = o[label][month].Add(v)
		}
	}
}

func (d monthlyDetail) row(label string, months []time.Time) Row {
	row := Row{"detail_type": label}
	total := decimal.Zero
	for _, m := range months {
		v := d[label][m.Format("2006-01")]
		row[monthField(m)] = v
		total = total.Add(v)
	}
	row["total"] = total
	return row
}

func buildMonthlyCustomerSalesRows(months []time.Time, customers []*models.Customer, billings []*CustomerMonthBilling, receipts []*CustomerMonthAmount) []Row {
	type cell struct{ customer, month string }
	billingBy := map[cell]*CustomerMonthBilling{}
	for _, b := range billings {
		billingBy[cell{b.Customer, b.Month}] = b
	}
	receivedBy := map[cell]decimal.Decimal{}
	for _, r := range receipts {
		c := cell{r.Customer, r.Month}
		receivedBy[c] = receivedBy[c].Add(r.Amount)
	}

	var rows []Row
	grand := newMonthlyDetail()
	srNo := 0

	for _, customer := range customers {
		detail := newMonthlyDetail()
		activity := decimal.Zero
		for _, m := range months {
			key := m.Format("2006-01")
			billing, tax := decimal.Zero, decimal.Zero
			if b, ok := billingBy[cell{customer.Name, key}]; ok {
				billing, tax = b.Billing, b.Tax
			}
			received := receivedBy[cell{customer.Name, key}]
			otherDed := decimal.Zero
			total := billing.Add(tax).Add(otherDed)

			detail[detailBilling][key] = billing
			detail[detailTaxDed][key] = tax
			detail[detailOtherDed][key] = otherDed
			detail[detailReceived][key] = received
			detail[detailTotal][key] = total
			detail[detailBalance][key] = total.Sub(received)

			activity = activity.Add(billing).Add(tax).Add(received)
		}
		detail.addTo(grand)

		if activity.IsZero() {
			continue
		}
		srNo++
		for _, label := range detailTypes {
			row := detail.row(label, months)
			if label == detailBilling {
				row["sr_no"] = srNo
				row["customer_name"] = customer.Name
				row["bold"] = 1
			} else {
				row["sr_no"] = ""
				row["customer_name"] = ""
			}
			rows = append(rows, row)
		}
	}

	for _, label := range detailTypes {
		row := grand.row(label, months)
		row["sr_no"] = ""
		row["customer_name"] = grandTotalLabel
		row["bold"] = 1
		rows = append(rows, row)
	}
	return rows
}
