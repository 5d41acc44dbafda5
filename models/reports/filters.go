package reports

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/fama_reports/models"
	"github.com/go-playground/validator/v10"
)

var ErrInvalidFilter = errors.New("invalid filter")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("erp_process", func(fl validator.FieldLevel) bool {
		return models.Process(fl.Field().String()).IsValid()
	})
	return v
}

// Filters is the optional filter mapping shared by every report.
// A report reads only the keys it knows and substitutes its own defaults.
type Filters struct {
	FromDate     *models.MyDateString
	ToDate       *models.MyDateString
	Customer     string `validate:"max=140"`
	SalesOrder   string `validate:"max=140"`
	DeliveryNote string `validate:"max=140"`
	Process      string `validate:"omitempty,erp_process"`
	Style        string `validate:"max=140"`
	Company      string `validate:"max=140"`
}

const (
	FilterFromDate     = "from_date"
	FilterToDate       = "to_date"
	FilterCustomer     = "customer"
	FilterSalesOrder   = "sales_order"
	FilterDeliveryNote = "delivery_note"
	FilterProcess      = "process"
	FilterStyle        = "style"
	FilterCompany      = "company"
)

// ParseFilters reads the recognized keys of raw. Unknown keys are ignored.
func ParseFilters(raw map[string]string) (Filters, error) {
	var f Filters
	get := func(key string) string { return strings.TrimSpace(raw[key]) }

	if v := get(FilterFromDate); v != "" {
		d, err := models.ParseMyDateString(v)
		if err != nil {
			return f, fmt.Errorf("%w: from_date: %v", ErrInvalidFilter, err)
		}
		f.FromDate = &d
	}
	if v := get(FilterToDate); v != "" {
		d, err := models.ParseMyDateString(v)
		if err != nil {
			return f, fmt.Errorf("%w: to_date: %v", ErrInvalidFilter, err)
		}
		f.ToDate = &d
	}
	f.Customer = get(FilterCustomer)
	f.SalesOrder = get(FilterSalesOrder)
	f.DeliveryNote = get(FilterDeliveryNote)
	f.Process = get(FilterProcess)
	f.Style = get(FilterStyle)
	f.Company = get(FilterCompany)

	if err := f.Validate(); err != nil {
		return f, err
	}
	return f, nil
}

func (f Filters) Validate() error {
	if err := validate.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s failed on %s", ErrInvalidFilter, fe.Field(), fe.Tag())
		}
		return fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}
	if f.FromDate != nil && f.ToDate != nil && f.FromDate.Time().After(f.ToDate.Time()) {
		return fmt.Errorf("%w: from_date %s is after to_date %s", ErrInvalidFilter, f.FromDate, f.ToDate)
	}
	return nil
}

// Map is the canonical form of the set filters, used for cache keys and exports.
func (f Filters) Map() map[string]string {
	m := map[string]string{}
	set := func(key string, value string) {
		if value != "" {
			m[key] = value
		}
	}
	if f.FromDate != nil {
		set(FilterFromDate, f.FromDate.String())
	}
	if f.ToDate != nil {
		set(FilterToDate, f.ToDate.String())
	}
	set(FilterCustomer, f.Customer)
	set(FilterSalesOrder, f.SalesOrder)
	set(FilterDeliveryNote, f.DeliveryNote)
	set(FilterProcess, f.Process)
	set(FilterStyle, f.Style)
	set(FilterCompany, f.Company)
	return m
}

func dateOr(d *models.MyDateString, def time.Time) time.Time {
	if d == nil || d.IsZero() {
		return def
	}
	return d.Time()
}

// dateRange resolves from/to with the given defaults and rejects an inverted range.
func (f Filters) dateRange(defFrom func(to time.Time) time.Time) (time.Time, time.Time, error) {
	to := dateOr(f.ToDate, today())
	from := dateOr(f.FromDate, defFrom(to))
	if from.After(to) {
		return from, to, fmt.Errorf("%w: from_date %s is after to_date %s", ErrInvalidFilter,
			from.Format(models.DateLayout), to.Format(models.DateLayout))
	}
	return from, to, nil
}

var defaultEpoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.Local)

func sinceEpoch(time.Time) time.Time { return defaultEpoch }

func dateFilter(label string, fieldName string, required bool) FilterField {
	return FilterField{FieldName: fieldName, Label: label, FieldType: FieldTypeDate, Required: required}
}

func linkFilter(label string, fieldName string, doctype string) FilterField {
	return FilterField{FieldName: fieldName, Label: label, FieldType: FieldTypeLink, Options: []string{doctype}}
}
