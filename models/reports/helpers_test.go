package reports

import (
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/fama_reports/config"
	"bitbucket.org/mmdatafocus/fama_reports/models"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// newMockDB points the global DB at a sqlmock connection for the duration of the test.
func newMockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	t.Setenv("ENABLE_REPORT_CACHE", "")

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	prev := config.GetDB()
	config.UseDB(gormDB)
	t.Cleanup(func() {
		config.UseDB(prev)
		_ = sqlDB.Close()
	})
	return mock
}

func fixToday(t *testing.T, y int, m time.Month, d int) {
	t.Helper()
	prev := today
	today = func() time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.Local) }
	t.Cleanup(func() { today = prev })
}

func date(t *testing.T, s string) models.MyDateString {
	t.Helper()
	d, err := models.ParseMyDateString(s)
	require.NoError(t, err)
	return d
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// cell renders a decimal cell as its canonical string, anything else as-is.
func cell(row Row, field string) any {
	if d, ok := row[field].(decimal.Decimal); ok {
		return d.String()
	}
	return row[field]
}

func strPtr(s string) *string { return &s }
