package models

import (
	"context"

	"bitbucket.org/mmdatafocus/fama_reports/config"
)

type tabler interface {
	TableName() string
}

// reportTables are the ERP tables the reports read. They are never migrated from here.
var reportTables = []tabler{
	&Account{}, &GLEntry{}, &Customer{},
	&SalesInvoice{}, &SalesInvoiceItem{}, &PaymentEntry{},
	&StockEntry{}, &StockEntryDetail{},
}

// MissingReportTables lists the report tables the connected database does not have.
func MissingReportTables(ctx context.Context) []string {
	db := config.GetDB().WithContext(ctx)
	var missing []string
	for _, t := range reportTables {
		if !db.Migrator().HasTable(t) {
			missing = append(missing, t.TableName())
		}
	}
	return missing
}
