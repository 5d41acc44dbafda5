package graph

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"bitbucket.org/mmdatafocus/fama_reports/config"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

type gqlResponse struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []struct {
		Message    string         `json:"message"`
		Path       []any          `json:"path"`
		Extensions map[string]any `json:"extensions"`
	} `json:"errors"`
}

func newMockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
	t.Setenv("ENABLE_REPORT_CACHE", "")
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	gormDB, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	prev := config.GetDB()
	config.UseDB(gormDB)
	t.Cleanup(func() {
		config.UseDB(prev)
		_ = sqlDB.Close()
	})
	return mock
}

func post(t *testing.T, h http.Handler, body string) gqlResponse {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var resp gqlResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func queryBody(t *testing.T, query string, variables map[string]any) string {
	t.Helper()
	b, err := json.Marshal(map[string]any{"query": query, "variables": variables})
	require.NoError(t, err)
	return string(b)
}

func TestReportsQuery(t *testing.T) {
	h := NewHandler()
	resp := post(t, h, queryBody(t, `
		query {
			__typename
			all: reports { key ...def }
		}
		fragment def on ReportDefinition { title __typename filters { fieldname reqd options default } }
	`, nil))
	require.Empty(t, resp.Errors)

	assert.JSONEq(t, `"Query"`, string(resp.Data["__typename"]))

	var defs []struct {
		Key      string `json:"key"`
		Title    string `json:"title"`
		TypeName string `json:"__typename"`
		Filters  []struct {
			FieldName string   `json:"fieldname"`
			Required  bool     `json:"reqd"`
			Options   []string `json:"options"`
			Default   *string  `json:"default"`
		} `json:"filters"`
	}
	require.NoError(t, json.Unmarshal(resp.Data["all"], &defs))
	require.Len(t, defs, 5)
	assert.Equal(t, "bank-cash-flow-summary", defs[0].Key)
	assert.Equal(t, "Bank Cash Flow Summary", defs[0].Title)
	assert.Equal(t, "ReportDefinition", defs[0].TypeName)

	// Selection order is kept.
	assert.True(t, strings.HasPrefix(string(resp.Data["all"]), `[{"key":`))

	inward := defs[2]
	assert.Equal(t, "daily-inward-outward-summary", inward.Key)
	var process []string
	for _, f := range inward.Filters {
		if f.FieldName == "process" {
			process = f.Options
		}
		assert.Nil(t, f.Default)
	}
	assert.Equal(t, []string{"Wash", "Garment Dyeing", "Denim"}, process)
}

func TestReportQuery(t *testing.T) {
	mock := newMockDB(t)
	mock.ExpectQuery("tabStock Entry Detail").
		WithArgs("%Finished%", "%Finished%", "Material Issue", int64(1), "Wash", "%Finished%", "%Finished%", "Material Issue").
		WillReturnRows(sqlmock.NewRows([]string{"process", "cust_no", "doc_no", "posting_date", "style", "description", "in_qty", "out_qty"}).
			AddRow("Wash", "C-1", "STE-1", "2025-03-01", "ST1", "Polo", "10.5", "0"))

	resp := post(t, NewHandler(), queryBody(t,
		`query Run($name: String!, $f: ReportFilters) { report(name: $name, filters: $f) { columns { fieldname width options } result } }`,
		map[string]any{"name": "Daily Inward & Outward Summary", "f": map[string]any{"process": "Wash"}}))
	require.Empty(t, resp.Errors)
	require.NoError(t, mock.ExpectationsWereMet())

	var report struct {
		Columns []map[string]any `json:"columns"`
		Result  []map[string]any `json:"result"`
	}
	require.NoError(t, json.Unmarshal(resp.Data["report"], &report))
	require.Len(t, report.Columns, 8)
	assert.Equal(t, map[string]any{"fieldname": "process", "width": float64(140), "options": nil}, report.Columns[0])

	require.Len(t, report.Result, 4)
	assert.Equal(t, "STE-1", report.Result[0]["doc_no"])
	assert.Equal(t, "2025-03-01", report.Result[0]["posting_date"])
	assert.Equal(t, 10.5, report.Result[0]["in_qty"])
	assert.Equal(t, "Grand Total", report.Result[3]["description"])
}

func TestReportQueryErrors(t *testing.T) {
	h := NewHandler()

	resp := post(t, h, queryBody(t, `{ report(name: "daily-inward-outward-summary", filters: {process: "Bleach"}) { result } }`, nil))
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, CodeBadUserInput, resp.Errors[0].Extensions["code"])
	assert.Equal(t, []any{"report"}, resp.Errors[0].Path)
	assert.Contains(t, resp.Errors[0].Message, "invalid filter")
	assert.JSONEq(t, `null`, string(resp.Data["report"]))

	resp = post(t, h, queryBody(t, `{ r: report(name: "stock-ledger") { result } reports { key } }`, nil))
	require.Len(t, resp.Errors, 1)
	assert.Equal(t, CodeNotFound, resp.Errors[0].Extensions["code"])
	assert.Equal(t, []any{"r"}, resp.Errors[0].Path)
	assert.JSONEq(t, `null`, string(resp.Data["r"]))
	assert.NotEmpty(t, resp.Data["reports"])

	resp = post(t, h, queryBody(t, `{ __schema { queryType { name } } }`, nil))
	require.NotEmpty(t, resp.Errors)
	assert.Contains(t, resp.Errors[0].Message, "introspection")
}

func TestReportQueryOverGET(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/query?query="+url.QueryEscape(`{ reports { title } }`), nil)
	w := httptest.NewRecorder()
	NewHandler().ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp gqlResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Empty(t, resp.Errors)
	assert.Contains(t, string(resp.Data["reports"]), `"title":"Sales Invoice Details"`)
}

func TestCache(t *testing.T) {
	srv := miniredis.RunT(t)
	cache := NewCache(redis.NewClient(&redis.Options{Addr: srv.Addr()}), time.Hour)
	ctx := context.Background()

	_, ok := cache.Get(ctx, "abc")
	assert.False(t, ok)

	cache.Add(ctx, "abc", "{ reports { key } }")
	v, ok := cache.Get(ctx, "abc")
	require.True(t, ok)
	assert.Equal(t, "{ reports { key } }", v)
	assert.True(t, srv.Exists("apq:abc"))
	assert.Equal(t, time.Hour, srv.TTL("apq:abc"))
}
