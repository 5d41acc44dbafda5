package reports

import (
	"context"

	"bitbucket.org/mmdatafocus/fama_reports/config"
	"bitbucket.org/mmdatafocus/fama_reports/models"
	"bitbucket.org/mmdatafocus/fama_reports/utils"
	"github.com/shopspring/decimal"
)

const InwardOutwardSummaryTitle = "Daily Inward & Outward Summary"

func init() {
	processes := make([]string, 0, len(models.AllProcesses))
	for _, p := range models.AllProcesses {
		processes = append(processes, string(p))
	}
	register(InwardOutwardSummaryTitle, GetInwardOutwardSummaryReport,
		dateFilter("From Date", FilterFromDate, false),
		dateFilter("To Date", FilterToDate, false),
		FilterField{FieldName: FilterProcess, Label: "Process", FieldType: FieldTypeSelect, Options: processes},
		linkFilter("Customer", FilterCustomer, "Customer"),
		FilterField{FieldName: FilterStyle, Label: "Style", FieldType: FieldTypeData},
		linkFilter("Sales Order", FilterSalesOrder, "Sales Order"),
		linkFilter("Delivery Note", FilterDeliveryNote, "Delivery Note"),
	)
}

type InwardOutwardLine struct {
	Process     string              `json:"process"`
	CustNo      string              `json:"custNo"`
	DocNo       string              `json:"docNo"`
	PostingDate models.MyDateString `json:"postingDate"`
	Style       *string             `json:"style"`
	Description *string             `json:"description"`
	InQty       decimal.Decimal     `json:"inQty"`
	OutQty      decimal.Decimal     `json:"outQty"`
}

func inwardOutwardColumns() []Column {
	return []Column{
		dataColumn("Process", "process", 140),
		dataColumn("Customer", "cust_no", 180),
		dataColumn("Doc No", "doc_no", 160),
		{Label: "Entry Date", FieldName: "posting_date", FieldType: FieldTypeDate, Width: 100},
		dataColumn("Style No", "style", 120),
		dataColumn("Style Description", "description", 300),
		{Label: "In Qty", FieldName: "in_qty", FieldType: FieldTypeFloat, Width: 100},
		{Label: "Out Qty", FieldName: "out_qty", FieldType: FieldTypeFloat, Width: 100},
	}
}

func GetInwardOutwardSummaryReport(ctx context.Context, filters Filters) (*ReportResult, error) {
	lines, err := getInwardOutwardLines(ctx, filters)
	if err != nil {
		return nil, err
	}
	return &ReportResult{
		Columns: inwardOutwardColumns(),
		Result:  buildInwardOutwardRows(lines),
	}, nil
}

func getInwardOutwardLines(ctx context.Context, filters Filters) ([]*InwardOutwardLine, error) {

	sqlT := `
SELECT
    COALESCE(se.process, '') AS process,
    COALESCE(se.cust_no, '') AS cust_no,
    se.name AS doc_no,
    se.posting_date AS posting_date,
    sed.style AS style,
    sed.description AS description,
    CASE WHEN ` + inwardCondition + ` THEN sed.qty ELSE 0 END AS in_qty,
    CASE WHEN ` + outwardCondition + ` THEN sed.qty ELSE 0 END AS out_qty
FROM
    ` + "`tabStock Entry`" + ` se
    INNER JOIN ` + "`tabStock Entry Detail`" + ` sed ON sed.parent = se.name
WHERE
    se.docstatus = @docStatus
    {{- if .fromDate }} AND se.posting_date >= @fromDate {{- end }}
    {{- if .toDate }} AND se.posting_date <= @toDate {{- end }}
    {{- if .process }} AND se.process = @process {{- end }}
    {{- if .customer }} AND se.cust_no = @customer {{- end }}
    {{- if .style }} AND sed.style = @style {{- end }}
    {{- if .salesOrder }} AND se.sales_order = @salesOrder {{- end }}
    {{- if .deliveryNote }} AND se.delivery_note = @deliveryNote {{- end }}
    AND ((` + inwardCondition + `) OR (` + outwardCondition + `))
ORDER BY
    COALESCE(se.process, ''), COALESCE(se.cust_no, ''), se.posting_date, se.name
`

	optional := map[string]interface{}{
		"process":      filters.Process,
		"customer":     filters.Customer,
		"style":        filters.Style,
		"salesOrder":   filters.SalesOrder,
		"deliveryNote": filters.DeliveryNote,
	}
	if filters.FromDate != nil {
		optional["fromDate"] = *filters.FromDate
	}
	if filters.ToDate != nil {
		optional["toDate"] = *filters.ToDate
	}

	sql, err := utils.ExecTemplate(sqlT, optional)
	if err != nil {
		return nil, err
	}

	args := map[string]interface{}{
		"docStatus":     models.DocStatusSubmitted,
		"finished":      "%" + models.FinishedWarehouseMarker + "%",
		"materialIssue": models.StockEntryTypeMaterialIssue,
	}
	for k, v := range optional {
		if s, ok := v.(string); ok && s == "" {
			continue
		}
		args[k] = v
	}

	var lines []*InwardOutwardLine
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql, args).Scan(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}

const (
	inwardCondition  = `(sed.s_warehouse IS NULL OR sed.s_warehouse = '') AND sed.t_warehouse LIKE @finished`
	outwardCondition = `sed.s_warehouse LIKE @finished AND se.stock_entry_type = @materialIssue`
)

type qtyTotals struct {
	in  decimal.Decimal
	out decimal.Decimal
}

func (q *qtyTotals) add(line *InwardOutwardLine) {
	q.in = q.in.Add(line.InQty)
	q.out = q.out.Add(line.OutQty)
}

func (q qtyTotals) row(process string, custNo string, description string) Row {
	return Row{
		"process":      process,
		"cust_no":      custNo,
		"doc_no":       "",
		"posting_date": "",
		"style":        "",
		"description":  description,
		"in_qty":       round2(q.in),
		"out_qty":      round2(q.out),
		"bold":         1,
	}
}

// buildInwardOutwardRows expects lines ordered by process then customer.
// Lines without a process or customer get no subtotal for that key.
func buildInwardOutwardRows(lines []*InwardOutwardLine) []Row {
	if len(lines) == 0 {
		return []Row{}
	}

	var (
		rows                  []Row
		customer, process     qtyTotals
		grand                 qtyTotals
		curProcess, curCustNo string
	)

	closeCustomer := func() {
		if curCustNo != "" {
			rows = append(rows, customer.row("", curCustNo, curCustNo+" Total"))
		}
		customer = qtyTotals{}
	}
	closeProcess := func() {
		if curProcess != "" {
			rows = append(rows, process.row(curProcess, "", curProcess+" Total"))
		}
		process = qtyTotals{}
	}

	for i, line := range lines {
		if i > 0 {
			processChanged := line.Process != curProcess
			if processChanged || line.CustNo != curCustNo {
				closeCustomer()
			}
			if processChanged {
				closeProcess()
			}
		}

		rows = append(rows, Row{
			"process":      line.Process,
			"cust_no":      line.CustNo,
			"doc_no":       line.DocNo,
			"posting_date": line.PostingDate,
			"style":        utils.DereferencePtr(line.Style, ""),
			"description":  utils.DereferencePtr(line.Description, ""),
			"in_qty":       line.InQty,
			"out_qty":      line.OutQty,
		})
		customer.add(line)
		process.add(line)
		grand.add(line)
		curProcess, curCustNo = line.Process, line.CustNo
	}

	closeCustomer()
	closeProcess()
	rows = append(rows, grand.row("", "", "Grand Total"))
	return rows
}
