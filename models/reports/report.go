package reports

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/fama_reports/config"
	"bitbucket.org/mmdatafocus/fama_reports/utils"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("fama-reports")

var ErrReportNotFound = errors.New("report not found")

// today is the reference date for filter defaults.
var today = utils.Today

type FieldType string

const (
	FieldTypeData        FieldType = "Data"
	FieldTypeLink        FieldType = "Link"
	FieldTypeDynamicLink FieldType = "Dynamic Link"
	FieldTypeCurrency    FieldType = "Currency"
	FieldTypeFloat       FieldType = "Float"
	FieldTypeDate        FieldType = "Date"
	FieldTypeSelect      FieldType = "Select"
)

type Column struct {
	Label     string    `json:"label"`
	FieldName string    `json:"fieldname"`
	FieldType FieldType `json:"fieldtype"`
	Options   string    `json:"options,omitempty"`
	Width     int       `json:"width"`
}

// Row maps a column fieldname to its cell value. Blank cells hold "".
type Row map[string]any

type ReportResult struct {
	Columns []Column `json:"columns"`
	Result  []Row    `json:"result"`
}

// FilterField describes one filter a report accepts, as the report viewer renders it.
type FilterField struct {
	FieldName string    `json:"fieldname"`
	Label     string    `json:"label"`
	FieldType FieldType `json:"fieldtype"`
	Options   []string  `json:"options,omitempty"`
	Required  bool      `json:"reqd"`
	Default   string    `json:"default,omitempty"`
}

type ReportFunc func(ctx context.Context, filters Filters) (*ReportResult, error)

type Definition struct {
	Key     string        `json:"key"`
	Title   string        `json:"title"`
	Filters []FilterField `json:"filters"`
	run     ReportFunc
}

var registry = map[string]*Definition{}

func register(title string, run ReportFunc, filters ...FilterField) {
	key := ReportKey(title)
	if _, exists := registry[key]; exists {
		panic("duplicate report " + key)
	}
	registry[key] = &Definition{
		Key:     key,
		Title:   title,
		Filters: filters,
		run:     run,
	}
}

// ReportKey normalizes a report title or key: "Daily Inward & Outward Summary" -> "daily-inward-outward-summary".
func ReportKey(name string) string {
	return strings.ReplaceAll(utils.FieldName(name), "_", "-")
}

func List() []*Definition {
	defs := make([]*Definition, 0, len(registry))
	for _, def := range registry {
		defs = append(defs, def)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].Title < defs[j].Title })
	return defs
}

func Lookup(name string) (*Definition, error) {
	def, ok := registry[ReportKey(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrReportNotFound, name)
	}
	return def, nil
}

// Execute runs the named report, through the redis cache when enabled.
func Execute(ctx context.Context, name string, filters Filters) (*ReportResult, error) {
	def, err := Lookup(name)
	if err != nil {
		return nil, err
	}

	ctx, span := tracer.Start(ctx, "report."+def.Key, trace.WithAttributes(attribute.String("report.key", def.Key)))
	defer span.End()

	started := time.Now()
	defer logSlowReport(ctx, def.Key, started, filters.Map())

	var result *ReportResult
	if config.ReportCacheEnabled() {
		result, err = cachedRun(ctx, def, filters)
	} else {
		result, err = def.run(ctx, filters)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		config.LogError(config.GetLogger(), "reports", "Execute", def.Key, filters.Map(), err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("report.rows", len(result.Result)))
	return result, nil
}

func currencyColumn(label string, fieldName string, width int) Column {
	return Column{Label: label, FieldName: fieldName, FieldType: FieldTypeCurrency, Width: width}
}

func dataColumn(label string, fieldName string, width int) Column {
	return Column{Label: label, FieldName: fieldName, FieldType: FieldTypeData, Width: width}
}

func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// sumDecimals adds the decimal cells of rows for each field.
func sumDecimals(rows []Row, fields ...string) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal, len(fields))
	for _, f := range fields {
		totals[f] = decimal.Zero
	}
	for _, row := range rows {
		for _, f := range fields {
			if v, ok := row[f].(decimal.Decimal); ok {
				totals[f] = totals[f].Add(v)
			}
		}
	}
	return totals
}
