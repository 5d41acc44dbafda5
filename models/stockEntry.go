package models

import "github.com/shopspring/decimal"

// StockEntry carries the site's custom fields process, cust_no, sales_order and delivery_note.
type StockEntry struct {
	Name           string       `gorm:"column:name;primaryKey" json:"name"`
	StockEntryType string       `gorm:"column:stock_entry_type" json:"stockEntryType"`
	PostingDate    MyDateString `gorm:"column:posting_date" json:"postingDate"`
	DocStatus      DocStatus    `gorm:"column:docstatus" json:"docStatus"`
	Process        string       `gorm:"column:process" json:"process"`
	CustNo         string       `gorm:"column:cust_no" json:"custNo"`
	SalesOrder     string       `gorm:"column:sales_order" json:"salesOrder"`
	DeliveryNote   string       `gorm:"column:delivery_note" json:"deliveryNote"`
}

func (StockEntry) TableName() string {
	return "tabStock Entry"
}

type StockEntryDetail struct {
	Name        string          `gorm:"column:name;primaryKey" json:"name"`
	Parent      string          `gorm:"column:parent" json:"parent"`
	SWarehouse  *string         `gorm:"column:s_warehouse" json:"sWarehouse"`
	TWarehouse  *string         `gorm:"column:t_warehouse" json:"tWarehouse"`
	Style       string          `gorm:"column:style" json:"style"`
	Description string          `gorm:"column:description" json:"description"`
	Qty         decimal.Decimal `gorm:"column:qty" json:"qty"`
}

func (StockEntryDetail) TableName() string {
	return "tabStock Entry Detail"
}
