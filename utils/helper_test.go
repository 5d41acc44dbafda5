package utils

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldName(t *testing.T) {
	cases := []struct {
		in       string
		expected string
	}{
		{"BAHL-CP", "bahl_cp"},
		{"MBL Gulberg", "mbl_gulberg"},
		{"Jan-25", "jan_25"},
		{"Aug 2025", "aug_2025"},
		{"  HMBL  ", "hmbl"},
		{"Cash -- Main / Branch", "cash_main_branch"},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.expected, FieldName(tc.in), "FieldName(%q)", tc.in)
	}
}

func TestMonthsBetween(t *testing.T) {
	from := time.Date(2024, 11, 15, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)

	months := MonthsBetween(from, to)
	require.Len(t, months, 4)
	assert.Equal(t, time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC), months[0])
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), months[3])

	assert.Empty(t, MonthsBetween(to, from))
}

func TestAddMonths(t *testing.T) {
	cases := []struct {
		in       string
		n        int
		expected string
	}{
		{"2025-03-31", -1, "2025-02-28"},
		{"2024-03-31", -1, "2024-02-29"},
		{"2025-05-31", -1, "2025-04-30"},
		{"2025-03-15", -1, "2025-02-15"},
		{"2025-01-31", 1, "2025-02-28"},
		{"2025-01-10", -1, "2024-12-10"},
	}
	for _, tc := range cases {
		in, err := time.Parse("2006-01-02", tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.expected, AddMonths(in, tc.n).Format("2006-01-02"), tc.in)
	}
}

func TestEndOfMonth(t *testing.T) {
	assert.Equal(t, "2025-02-28", EndOfMonth(time.Date(2025, 2, 10, 0, 0, 0, 0, time.UTC)).Format("2006-01-02"))
	assert.Equal(t, "2024-12-31", EndOfMonth(time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)).Format("2006-01-02"))
}

func TestExecTemplate(t *testing.T) {
	sql, err := ExecTemplate(`SELECT 1 WHERE a = @a{{- if .b }} AND b = @b{{- end }}`, map[string]interface{}{"b": ""})
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1 WHERE a = @a", sql)

	sql, err = ExecTemplate(`SELECT 1 WHERE a = @a{{- if .b }} AND b = @b{{- end }}`, map[string]interface{}{"b": "x"})
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1 WHERE a = @a AND b = @b", sql)

	_, err = ExecTemplate(`{{ if }}`, nil)
	assert.Error(t, err)
}

func TestBuildObjectAccessURL(t *testing.T) {
	t.Setenv("STORAGE_ACCESS_BASE_URL", "")
	t.Setenv("GCS_URL", "")
	t.Setenv("GCS_BUCKET", "")
	assert.Equal(t, "reports/a.xlsx", BuildObjectAccessURL("reports/a.xlsx"))

	t.Setenv("GCS_BUCKET", "fama")
	assert.Equal(t, "https://storage.googleapis.com/fama/reports/a.xlsx", BuildObjectAccessURL("reports/a.xlsx"))

	t.Setenv("STORAGE_ACCESS_BASE_URL", "https://cdn.example.com/files/")
	assert.Equal(t, "https://cdn.example.com/files/reports/a.xlsx", BuildObjectAccessURL("reports/a.xlsx"))

	t.Setenv("STORAGE_ACCESS_BASE_URL", "https://cdn.example.com/get?key={objectKey}")
	assert.Equal(t, "https://cdn.example.com/get?key=reports%2Fa.xlsx", BuildObjectAccessURL("reports/a.xlsx"))
}

func TestExportObjectKey(t *testing.T) {
	at := time.Date(2025, 3, 7, 9, 5, 1, 0, time.UTC)
	assert.Equal(t, "reports/sales-invoice-details/2025/03/sales-invoice-details_20250307_090501.xlsx",
		ExportObjectKey("sales-invoice-details", at, "xlsx"))
}

func TestRequestContext(t *testing.T) {
	ctx := context.Background()
	_, ok := GetCorrelationIdFromContext(ctx)
	assert.False(t, ok)

	ctx = SetCorrelationIdInContext(ctx, "cid-1")
	ctx = SetUserIdInContext(ctx, 3)
	ctx = SetUserNameInContext(ctx, "thida")
	ctx = SetRoleInContext(ctx, "accounts")

	cid, _ := GetCorrelationIdFromContext(ctx)
	id, _ := GetUserIdFromContext(ctx)
	name, _ := GetUserNameFromContext(ctx)
	role, _ := GetRoleFromContext(ctx)
	assert.Equal(t, "cid-1", cid)
	assert.Equal(t, 3, id)
	assert.Equal(t, "thida", name)
	assert.Equal(t, "accounts", role)
}
