package models

import "github.com/shopspring/decimal"

type PaymentEntry struct {
	Name        string          `gorm:"column:name;primaryKey" json:"name"`
	PaymentType string          `gorm:"column:payment_type" json:"paymentType"`
	PartyType   string          `gorm:"column:party_type" json:"partyType"`
	Party       string          `gorm:"column:party" json:"party"`
	Company     string          `gorm:"column:company" json:"company"`
	PostingDate MyDateString    `gorm:"column:posting_date" json:"postingDate"`
	PaidFrom    string          `gorm:"column:paid_from" json:"paidFrom"`
	PaidTo      string          `gorm:"column:paid_to" json:"paidTo"`
	PaidAmount  decimal.Decimal `gorm:"column:paid_amount" json:"paidAmount"`
	DocStatus   DocStatus       `gorm:"column:docstatus" json:"docStatus"`
}

func (PaymentEntry) TableName() string {
	return "tabPayment Entry"
}
