package models

import "github.com/shopspring/decimal"

type SalesInvoice struct {
	Name                 string          `gorm:"column:name;primaryKey" json:"name"`
	Customer             string          `gorm:"column:customer" json:"customer"`
	Company              string          `gorm:"column:company" json:"company"`
	PostingDate          MyDateString    `gorm:"column:posting_date" json:"postingDate"`
	PoNo                 string          `gorm:"column:po_no" json:"poNo"`
	Status               string          `gorm:"column:status" json:"status"`
	DocStatus            DocStatus       `gorm:"column:docstatus" json:"docStatus"`
	IsReturn             int             `gorm:"column:is_return" json:"isReturn"`
	BaseTotal            decimal.Decimal `gorm:"column:base_total" json:"baseTotal"`
	TotalTaxesAndCharges decimal.Decimal `gorm:"column:total_taxes_and_charges" json:"totalTaxesAndCharges"`
	GrandTotal           decimal.Decimal `gorm:"column:grand_total" json:"grandTotal"`
	OutstandingAmount    decimal.Decimal `gorm:"column:outstanding_amount" json:"outstandingAmount"`
}

func (SalesInvoice) TableName() string {
	return "tabSales Invoice"
}

type SalesInvoiceItem struct {
	Name     string          `gorm:"column:name;primaryKey" json:"name"`
	Parent   string          `gorm:"column:parent" json:"parent"`
	ItemCode string          `gorm:"column:item_code" json:"itemCode"`
	ItemName string          `gorm:"column:item_name" json:"itemName"`
	Qty      decimal.Decimal `gorm:"column:qty" json:"qty"`
	Rate     decimal.Decimal `gorm:"column:rate" json:"rate"`
	Amount   decimal.Decimal `gorm:"column:amount" json:"amount"`
}

func (SalesInvoiceItem) TableName() string {
	return "tabSales Invoice Item"
}
