package models

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DocStatus is the Frappe document state; reports read submitted documents only.
type DocStatus int

const DocStatusSubmitted DocStatus = 1

const PartyTypeCustomer = "Customer"

const PaymentTypeReceive = "Receive"

const (
	SalesInvoiceStatusUnpaid  = "Unpaid"
	SalesInvoiceStatusOverdue = "Overdue"
)

const StockEntryTypeMaterialIssue = "Material Issue"

// Warehouse names containing this marker hold finished goods.
const FinishedWarehouseMarker = "Finished"

const AccountTypeBank = "Bank"

type AccountRootType string

const (
	AccountRootTypeAsset     AccountRootType = "Asset"
	AccountRootTypeLiability AccountRootType = "Liability"
	AccountRootTypeEquity    AccountRootType = "Equity"
	AccountRootTypeIncome    AccountRootType = "Income"
	AccountRootTypeExpense   AccountRootType = "Expense"
)

// AccountRootTypes in balance-sheet then P&L order.
var AccountRootTypes = []AccountRootType{
	AccountRootTypeAsset,
	AccountRootTypeLiability,
	AccountRootTypeEquity,
	AccountRootTypeIncome,
	AccountRootTypeExpense,
}

// Process is the custom Stock Entry field naming the finishing process.
type Process string

const (
	ProcessWash          Process = "Wash"
	ProcessGarmentDyeing Process = "Garment Dyeing"
	ProcessDenim         Process = "Denim"
)

var AllProcesses = []Process{ProcessWash, ProcessGarmentDyeing, ProcessDenim}

func (p Process) IsValid() bool {
	for _, v := range AllProcesses {
		if v == p {
			return true
		}
	}
	return false
}

const DateLayout = "2006-01-02"

// MyDateString is a calendar date as stored in DATE columns (posting_date).
type MyDateString time.Time

func ParseMyDateString(s string) (MyDateString, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return MyDateString{}, errors.New("date is empty")
	}
	// Accept a datetime as sent by date pickers, keep the date part.
	if len(s) > len(DateLayout) && (s[len(DateLayout)] == 'T' || s[len(DateLayout)] == ' ') {
		s = s[:len(DateLayout)]
	}
	t, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		return MyDateString{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return MyDateString(t), nil
}

func NewMyDateString(t time.Time) MyDateString {
	return MyDateString(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local))
}

func (t MyDateString) Time() time.Time {
	return time.Time(t)
}

func (t MyDateString) IsZero() bool {
	return time.Time(t).IsZero()
}

func (t MyDateString) String() string {
	if t.IsZero() {
		return ""
	}
	return time.Time(t).Format(DateLayout)
}

func (t MyDateString) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(strconv.Quote(t.String())), nil
}

func (t *MyDateString) UnmarshalJSON(data []byte) error {
	str, err := strconv.Unquote(string(data))
	if err != nil {
		return errors.New("MyDateString must be string")
	}
	if str == "" {
		*t = MyDateString{}
		return nil
	}
	parsed, err := ParseMyDateString(str)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Value implements the driver.Valuer interface
func (t MyDateString) Value() (driver.Value, error) {
	return t.String(), nil
}

// Scan implements the sql.Scanner interface
func (t *MyDateString) Scan(value interface{}) error {
	if value == nil {
		*t = MyDateString(time.Time{})
		return nil
	}
	switch v := value.(type) {
	case time.Time:
		*t = NewMyDateString(v)
	case []byte:
		parsed, err := ParseMyDateString(string(v))
		if err != nil {
			return err
		}
		*t = parsed
	case string:
		parsed, err := ParseMyDateString(v)
		if err != nil {
			return err
		}
		*t = parsed
	default:
		return fmt.Errorf("cannot convert %T to MyDateString", value)
	}
	return nil
}
