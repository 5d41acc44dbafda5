package models

import (
	"context"
	"strings"

	"bitbucket.org/mmdatafocus/fama_reports/config"
	"github.com/shopspring/decimal"
)

type Account struct {
	Name          string          `gorm:"column:name;primaryKey" json:"name"`
	AccountName   string          `gorm:"column:account_name" json:"accountName"`
	AccountNumber string          `gorm:"column:account_number" json:"accountNumber"`
	AccountType   string          `gorm:"column:account_type" json:"accountType"`
	RootType      AccountRootType `gorm:"column:root_type" json:"rootType"`
	ParentAccount string          `gorm:"column:parent_account" json:"parentAccount"`
	Company       string          `gorm:"column:company" json:"company"`
	IsGroup       int             `gorm:"column:is_group" json:"isGroup"`
	Disabled      int             `gorm:"column:disabled" json:"disabled"`
}

func (Account) TableName() string {
	return "tabAccount"
}

type GLEntry struct {
	Name        string          `gorm:"column:name;primaryKey" json:"name"`
	PostingDate MyDateString    `gorm:"column:posting_date" json:"postingDate"`
	Account     string          `gorm:"column:account" json:"account"`
	Company     string          `gorm:"column:company" json:"company"`
	Debit       decimal.Decimal `gorm:"column:debit" json:"debit"`
	Credit      decimal.Decimal `gorm:"column:credit" json:"credit"`
	PartyType   string          `gorm:"column:party_type" json:"partyType"`
	Party       string          `gorm:"column:party" json:"party"`
	VoucherType string          `gorm:"column:voucher_type" json:"voucherType"`
	VoucherNo   string          `gorm:"column:voucher_no" json:"voucherNo"`
	IsCancelled int             `gorm:"column:is_cancelled" json:"isCancelled"`
}

func (GLEntry) TableName() string {
	return "tabGL Entry"
}

// GetBankAccounts lists enabled ledger (non-group) bank accounts ordered by account name.
func GetBankAccounts(ctx context.Context, company string) ([]*Account, error) {
	db := config.GetDB()
	var accounts []*Account
	query := db.WithContext(ctx).Model(&Account{}).
		Where("account_type = ? AND is_group = 0 AND disabled = 0", AccountTypeBank)
	if company = strings.TrimSpace(company); company != "" {
		query = query.Where("company = ?", company)
	}
	if err := query.Order("account_name").Find(&accounts).Error; err != nil {
		return nil, err
	}
	return accounts, nil
}

// Label is the short display name used for report columns.
func (a *Account) Label() string {
	if strings.TrimSpace(a.AccountName) != "" {
		return a.AccountName
	}
	return a.Name
}
