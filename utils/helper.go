package utils

import (
	"bytes"
	"errors"
	"strings"
	"text/template"
	"time"
	"unicode"
)

func ExecTemplate(tString string, data map[string]interface{}) (string, error) {
	t, err := template.New("sql").Parse(tString)
	if err != nil {
		return "", errors.New("error parsing sql template: " + err.Error())
	}
	var b bytes.Buffer
	if err := t.Execute(&b, data); err != nil {
		return "", errors.New("failed to execute sql template: " + err.Error())
	}
	return b.String(), nil
}

// safely dereference pointer of type T, nil pointer return zero value or optional default
func DereferencePtr[T any](ptr *T, defaults ...T) T {
	var defaultValue T
	if len(defaults) > 0 {
		defaultValue = defaults[0]
	}
	if ptr == nil {
		return defaultValue
	}
	return *ptr
}

// FieldName turns a display label into a report fieldname:
// "MBL Gulberg" -> "mbl_gulberg", "Jan-25" -> "jan_25".
func FieldName(label string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(strings.TrimSpace(label)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return b.String()
}

func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// EndOfMonth is the last day of t's month.
func EndOfMonth(t time.Time) time.Time {
	return StartOfMonth(t).AddDate(0, 1, -1)
}

// AddMonths moves t by n calendar months, clamping the day to the target month's length:
// 2025-03-31 minus one month is 2025-02-28.
func AddMonths(t time.Time, n int) time.Time {
	first := StartOfMonth(t).AddDate(0, n, 0)
	day := min(t.Day(), EndOfMonth(first).Day())
	return time.Date(first.Year(), first.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// MonthsBetween lists the first day of every month from the month of from through the month of to.
func MonthsBetween(from time.Time, to time.Time) []time.Time {
	var months []time.Time
	for current := StartOfMonth(from); !current.After(to); current = current.AddDate(0, 1, 0) {
		months = append(months, current)
	}
	return months
}

// Today returns today's date at midnight, local time.
func Today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
