package reports

import (
	"context"
	"sort"
	"strconv"
	"time"

	"bitbucket.org/mmdatafocus/fama_reports/config"
	"bitbucket.org/mmdatafocus/fama_reports/models"
	"bitbucket.org/mmdatafocus/fama_reports/utils"
	"github.com/shopspring/decimal"
)

const BankCashFlowSummaryTitle = "Bank Cash Flow Summary"

const (
	headOpeningBalance = "Opening Balance"
	headSalesRecovery  = "Sales Recovery"
	headTransferIn     = "Transfer-In"
	headOtherReceipts  = "Other Receipts"
	headTransferOut    = "Transfer-Out"
	headSectionTotal   = "Total:"
	headClosingBalance = "Closing Balance"
)

func init() {
	register(BankCashFlowSummaryTitle, GetBankCashFlowSummaryReport,
		dateFilter("From Date", FilterFromDate, false),
		dateFilter("To Date", FilterToDate, false),
		linkFilter("Company", FilterCompany, "Company"),
	)
}

type BankOpening struct {
	Account string          `json:"account"`
	Amount  decimal.Decimal `json:"amount"`
}

// BankMovement is the amount a bank account moved against one counter-account over the period.
// Inflow is set when the bank was debited, Outflow when it was credited.
type BankMovement struct {
	BankAccount    string                 `json:"bankAccount"`
	CounterAccount string                 `json:"counterAccount"`
	CounterName    string                 `json:"counterName"`
	PartyType      string                 `json:"partyType"`
	RootType       models.AccountRootType `json:"rootType"`
	Inflow         decimal.Decimal        `json:"inflow"`
	Outflow        decimal.Decimal        `json:"outflow"`
}

type bankColumn struct {
	account string
	label   string
	field   string
}

// firstOfMonth defaults from_date to the start of the to_date month.
func firstOfMonth(to time.Time) time.Time { return utils.StartOfMonth(to) }

func GetBankCashFlowSummaryReport(ctx context.Context, filters Filters) (*ReportResult, error) {
	from, to, err := filters.dateRange(firstOfMonth)
	if err != nil {
		return nil, err
	}

	accounts, err := models.GetBankAccounts(ctx, filters.Company)
	if err != nil {
		return nil, err
	}
	banks := newBankColumns(accounts)

	var (
		openings  []*BankOpening
		movements []*BankMovement
	)
	if len(banks) > 0 {
		names := make([]string, 0, len(banks))
		for _, b := range banks {
			names = append(names, b.account)
		}
		fromDate := models.NewMyDateString(from)
		toDate := models.NewMyDateString(to)

		if openings, err = getBankOpenings(ctx, names, fromDate); err != nil {
			return nil, err
		}
		if movements, err = getBankMovements(ctx, names, fromDate, toDate); err != nil {
			return nil, err
		}
	}

	return &ReportResult{
		Columns: bankCashFlowColumns(banks),
		Result:  buildBankCashFlowRows(banks, openings, movements),
	}, nil
}

// newBankColumns keeps account order and suffixes repeated fieldnames: "mbl", "mbl_2".
func newBankColumns(accounts []*models.Account) []bankColumn {
	seen := map[string]int{}
	banks := make([]bankColumn, 0, len(accounts))
	for _, a := range accounts {
		label := a.Label()
		field := utils.FieldName(label)
		if field == "" || field == "head_of_account" || field == "total" {
			field = "bank_" + field
		}
		seen[field]++
		if n := seen[field]; n > 1 {
			field = field + "_" + strconv.Itoa(n)
		}
		banks = append(banks, bankColumn{account: a.Name, label: label, field: field})
	}
	return banks
}

func bankCashFlowColumns(banks []bankColumn) []Column {
	columns := []Column{dataColumn("Head of Account", "head_of_account", 250)}
	for _, b := range banks {
		columns = append(columns, currencyColumn(b.label, b.field, 120))
	}
	return append(columns, currencyColumn("Total", "total", 130))
}

func getBankOpenings(ctx context.Context, banks []string, fromDate models.MyDateString) ([]*BankOpening, error) {
	sql := `
SELECT
    gle.account AS account,
    COALESCE(SUM(gle.debit), 0) - COALESCE(SUM(gle.credit), 0) AS amount
FROM
    ` + "`tabGL Entry`" + ` gle
WHERE
    gle.is_cancelled = 0
    AND gle.posting_date < @fromDate
    AND gle.account IN @banks
GROUP BY
    gle.account
`
	var results []*BankOpening
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql, map[string]interface{}{
		"fromDate": fromDate,
		"banks":    banks,
	}).Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// BankVoucherLine is one counter-account of a voucher that touched a bank account.
// BankDebit and BankCredit are the bank's own totals on that voucher.
type BankVoucherLine struct {
	BankAccount    string                 `json:"bankAccount"`
	VoucherType    string                 `json:"voucherType"`
	VoucherNo      string                 `json:"voucherNo"`
	BankDebit      decimal.Decimal        `json:"bankDebit"`
	BankCredit     decimal.Decimal        `json:"bankCredit"`
	CounterAccount string                 `json:"counterAccount"`
	CounterName    string                 `json:"counterName"`
	PartyType      string                 `json:"partyType"`
	RootType       models.AccountRootType `json:"rootType"`
	CounterDebit   decimal.Decimal        `json:"counterDebit"`
	CounterCredit  decimal.Decimal        `json:"counterCredit"`
}

func getBankMovements(ctx context.Context, banks []string, fromDate models.MyDateString, toDate models.MyDateString) ([]*BankMovement, error) {
	lines, err := getBankVoucherLines(ctx, banks, fromDate, toDate)
	if err != nil {
		return nil, err
	}
	return allocateBankMovements(lines), nil
}

// getBankVoucherLines lists, per voucher and bank account, the other accounts of the voucher.
func getBankVoucherLines(ctx context.Context, banks []string, fromDate models.MyDateString, toDate models.MyDateString) ([]*BankVoucherLine, error) {
	sql := `
SELECT
    bank.account AS bank_account,
    bank.voucher_type AS voucher_type,
    bank.voucher_no AS voucher_no,
    bank.debit AS bank_debit,
    bank.credit AS bank_credit,
    cp.account AS counter_account,
    COALESCE(acc.account_name, cp.account) AS counter_name,
    COALESCE(cp.party_type, '') AS party_type,
    COALESCE(acc.root_type, '') AS root_type,
    COALESCE(SUM(cp.debit), 0) AS counter_debit,
    COALESCE(SUM(cp.credit), 0) AS counter_credit
FROM
    (
        SELECT
            gle.account, gle.voucher_type, gle.voucher_no,
            COALESCE(SUM(gle.debit), 0) AS debit,
            COALESCE(SUM(gle.credit), 0) AS credit
        FROM
            ` + "`tabGL Entry`" + ` gle
        WHERE
            gle.is_cancelled = 0
            AND gle.account IN @banks
            AND gle.posting_date BETWEEN @fromDate AND @toDate
        GROUP BY
            gle.account, gle.voucher_type, gle.voucher_no
    ) bank
    INNER JOIN ` + "`tabGL Entry`" + ` cp ON cp.voucher_type = bank.voucher_type
        AND cp.voucher_no = bank.voucher_no
        AND cp.account <> bank.account
        AND cp.is_cancelled = 0
    LEFT JOIN ` + "`tabAccount`" + ` acc ON acc.name = cp.account
GROUP BY
    bank.account, bank.voucher_type, bank.voucher_no, bank.debit, bank.credit,
    cp.account, acc.account_name, cp.party_type, acc.root_type
ORDER BY
    bank.account, bank.voucher_type, bank.voucher_no, cp.account, party_type
`
	var results []*BankVoucherLine
	db := config.GetDB()
	if err := db.WithContext(ctx).Raw(sql, map[string]interface{}{
		"fromDate": fromDate,
		"toDate":   toDate,
		"banks":    banks,
	}).Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// allocateBankMovements splits each voucher's bank debit over its counter credits and its bank
// credit over its counter debits, pro rata. Shares are rounded to cents and the last counter line
// takes the remainder, so a voucher never moves more than the bank line itself.
// Lines must arrive grouped by bank account and voucher.
func allocateBankMovements(lines []*BankVoucherLine) []*BankMovement {
	type movementKey struct {
		bank, account, name, partyType string
		rootType                       models.AccountRootType
	}
	var movements []*BankMovement
	byKey := map[movementKey]*BankMovement{}
	movementOf := func(l *BankVoucherLine) *BankMovement {
		k := movementKey{l.BankAccount, l.CounterAccount, l.CounterName, l.PartyType, l.RootType}
		m, ok := byKey[k]
		if !ok {
			m = &BankMovement{
				BankAccount:    l.BankAccount,
				CounterAccount: l.CounterAccount,
				CounterName:    l.CounterName,
				PartyType:      l.PartyType,
				RootType:       l.RootType,
			}
			byKey[k] = m
			movements = append(movements, m)
		}
		return m
	}

	for start := 0; start < len(lines); {
		end := start + 1
		for end < len(lines) && sameBankVoucher(lines[start], lines[end]) {
			end++
		}
		voucher := lines[start:end]
		start = end

		inflows := prorate(voucher[0].BankDebit, voucher, func(l *BankVoucherLine) decimal.Decimal { return l.CounterCredit })
		outflows := prorate(voucher[0].BankCredit, voucher, func(l *BankVoucherLine) decimal.Decimal { return l.CounterDebit })
		for i, l := range voucher {
			if inflows[i].IsZero() && outflows[i].IsZero() {
				continue
			}
			m := movementOf(l)
			m.Inflow = m.Inflow.Add(inflows[i])
			m.Outflow = m.Outflow.Add(outflows[i])
		}
	}
	return movements
}

func sameBankVoucher(a *BankVoucherLine, b *BankVoucherLine) bool {
	return a.BankAccount == b.BankAccount && a.VoucherType == b.VoucherType && a.VoucherNo == b.VoucherNo
}

// prorate shares amount across lines in proportion to weight.
func prorate(amount decimal.Decimal, lines []*BankVoucherLine, weight func(*BankVoucherLine) decimal.Decimal) []decimal.Decimal {
	shares := make([]decimal.Decimal, len(lines))
	total := decimal.Zero
	last := -1
	for i, l := range lines {
		if w := weight(l); w.IsPositive() {
			total = total.Add(w)
			last = i
		}
	}
	if !amount.IsPositive() || last < 0 {
		return shares
	}
	remaining := amount
	for i, l := range lines {
		w := weight(l)
		if !w.IsPositive() {
			continue
		}
		if i == last {
			shares[i] = remaining
			break
		}
		shares[i] = amount.Mul(w).Div(total).Round(2)
		remaining = remaining.Sub(shares[i])
	}
	return shares
}

// bankAmounts is one report line keyed by bank account name.
type bankAmounts map[string]decimal.Decimal

func (a bankAmounts) add(account string, v decimal.Decimal) {
	a[account] = a[account].Add(v)
}

func (a bankAmounts) addAll(o bankAmounts) {
	for k, v := range o {
		a.add(k, v)
	}
}

func (a bankAmounts) isZero() bool {
	for _, v := range a {
		if !v.IsZero() {
			return false
		}
	}
	return true
}

func (a bankAmounts) row(head string, banks []bankColumn) Row {
	row := Row{"head_of_account": head}
	total := decimal.Zero
	for _, b := range banks {
		v := a[b.account]
		row[b.field] = v
		total = total.Add(v)
	}
	row["total"] = total
	return row
}

type bankHead struct {
	name    string
	amounts bankAmounts
}

func buildBankCashFlowRows(banks []bankColumn, openings []*BankOpening, movements []*BankMovement) []Row {
	isBank := make(map[string]bool, len(banks))
	for _, b := range banks {
		isBank[b.account] = true
	}

	opening := bankAmounts{}
	for _, o := range openings {
		opening.add(o.Account, o.Amount)
	}

	salesRecovery, transferIn, otherReceipts, transferOut := bankAmounts{}, bankAmounts{}, bankAmounts{}, bankAmounts{}
	payments := map[models.AccountRootType]map[string]*bankHead{}

	for _, m := range movements {
		if !m.Inflow.IsZero() {
			switch {
			case m.PartyType == models.PartyTypeCustomer:
				salesRecovery.add(m.BankAccount, m.Inflow)
			case isBank[m.CounterAccount]:
				transferIn.add(m.BankAccount, m.Inflow)
			default:
				otherReceipts.add(m.BankAccount, m.Inflow)
			}
		}
		if !m.Outflow.IsZero() {
			if isBank[m.CounterAccount] {
				transferOut.add(m.BankAccount, m.Outflow)
				continue
			}
			heads, ok := payments[m.RootType]
			if !ok {
				heads = map[string]*bankHead{}
				payments[m.RootType] = heads
			}
			head, ok := heads[m.CounterName]
			if !ok {
				head = &bankHead{name: m.CounterName, amounts: bankAmounts{}}
				heads[m.CounterName] = head
			}
			head.amounts.add(m.BankAccount, m.Outflow)
		}
	}

	var rows []Row

	receipts := bankAmounts{}
	receipts.addAll(opening)
	receipts.addAll(salesRecovery)
	receipts.addAll(transferIn)
	receipts.addAll(otherReceipts)
	rows = append(rows,
		opening.row(headOpeningBalance, banks),
		salesRecovery.row(headSalesRecovery, banks),
		transferIn.row(headTransferIn, banks),
	)
	if !otherReceipts.isZero() {
		rows = append(rows, otherReceipts.row(headOtherReceipts, banks))
	}
	rows = append(rows, sectionTotal(receipts, banks))

	spent := bankAmounts{}
	spent.addAll(transferOut)
	rows = append(rows, transferOut.row(headTransferOut, banks), sectionTotal(transferOut, banks))

	for _, rootType := range paymentSectionOrder(payments) {
		heads := make([]*bankHead, 0, len(payments[rootType]))
		for _, h := range payments[rootType] {
			heads = append(heads, h)
		}
		sort.Slice(heads, func(i, j int) bool { return heads[i].name < heads[j].name })

		section := bankAmounts{}
		for _, h := range heads {
			rows = append(rows, h.amounts.row(h.name, banks))
			section.addAll(h.amounts)
		}
		rows = append(rows, sectionTotal(section, banks))
		spent.addAll(section)
	}

	closing := bankAmounts{}
	closing.addAll(receipts)
	for k, v := range spent {
		closing.add(k, v.Neg())
	}
	closingRow := closing.row(headClosingBalance, banks)
	closingRow["bold"] = 1
	return append(rows, closingRow)
}

func sectionTotal(a bankAmounts, banks []bankColumn) Row {
	row := a.row(headSectionTotal, banks)
	row["bold"] = 1
	return row
}

// paymentSectionOrder lists the known root types first, then any other root type by name.
func paymentSectionOrder(payments map[models.AccountRootType]map[string]*bankHead) []models.AccountRootType {
	order := make([]models.AccountRootType, 0, len(payments))
	known := map[models.AccountRootType]bool{}
	for _, rt := range models.AccountRootTypes {
		known[rt] = true
		if len(payments[rt]) > 0 {
			order = append(order, rt)
		}
	}
	var other []models.AccountRootType
	for rt, heads := range payments {
		if !known[rt] && len(heads) > 0 {
			other = append(other, rt)
		}
	}
	sort.Slice(other, func(i, j int) bool { return other[i] < other[j] })
	return append(order, other...)
}
