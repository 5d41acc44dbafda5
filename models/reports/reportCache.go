package reports

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/fama_reports/config"
	"bitbucket.org/mmdatafocus/fama_reports/models"
	"bitbucket.org/mmdatafocus/fama_reports/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const reportLockTTL = 30 * time.Second

// reportCacheKey is stable for equal filter sets regardless of map order.
func reportCacheKey(key string, filters map[string]string) string {
	names := make([]string, 0, len(filters))
	for k := range filters {
		names = append(names, k)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, k := range names {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(filters[k])
		b.WriteByte('&')
	}
	sum := sha1.Sum([]byte(b.String()))
	return "Report:" + key + ":" + hex.EncodeToString(sum[:])
}

func cachedRun(ctx context.Context, def *Definition, filters Filters) (*ReportResult, error) {
	logger := config.GetLogger()
	key := reportCacheKey(def.Key, filters.Map())

	var cached cachedReport
	if ok, err := cacheGet(ctx, key, &cached); err != nil {
		config.LogError(logger, "reportCache.go", "cachedRun", "cacheGet", key, err)
	} else if ok {
		result, err := cached.result()
		if err == nil {
			return result, nil
		}
		config.LogError(logger, "reportCache.go", "cachedRun", "cached.result", key, err)
	}

	// Best effort: a lock held elsewhere means another request is filling this key,
	// but computing here too is still correct.
	lock, err := config.ObtainRedisLock(ctx, "Lock:"+key, reportLockTTL)
	if err != nil {
		config.LogError(logger, "reportCache.go", "cachedRun", "ObtainRedisLock", key, err)
	}
	if lock != nil {
		defer func() {
			if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
				config.LogError(logger, "reportCache.go", "cachedRun", "lock.Release", key, err)
			}
		}()
	}

	result, err := def.run(ctx, filters)
	if err != nil {
		return nil, err
	}
	if err := cacheSet(ctx, key, newCachedReport(result), config.ReportCacheTTL()); err != nil {
		config.LogError(logger, "reportCache.go", "cachedRun", "cacheSet", key, err)
	}
	return result, nil
}

// Cached cells carry their Go type so a hit returns the same values a fresh run does.
const (
	cellDecimal = "d"
	cellDate    = "t"
	cellInt     = "i"
	cellString  = "s"
	cellBool    = "b"
	cellNull    = "n"
	cellJSON    = "j"
)

type cachedCell struct {
	Kind  string `json:"k"`
	Value string `json:"v,omitempty"`
}

type cachedReport struct {
	Columns []Column                `json:"columns"`
	Result  []map[string]cachedCell `json:"result"`
}

func newCachedReport(r *ReportResult) cachedReport {
	rows := make([]map[string]cachedCell, 0, len(r.Result))
	for _, row := range r.Result {
		cells := make(map[string]cachedCell, len(row))
		for k, v := range row {
			cells[k] = encodeCell(v)
		}
		rows = append(rows, cells)
	}
	return cachedReport{Columns: r.Columns, Result: rows}
}

func (c cachedReport) result() (*ReportResult, error) {
	rows := make([]Row, 0, len(c.Result))
	for _, cells := range c.Result {
		row := make(Row, len(cells))
		for k, cell := range cells {
			v, err := cell.decode()
			if err != nil {
				return nil, fmt.Errorf("cell %s: %w", k, err)
			}
			row[k] = v
		}
		rows = append(rows, row)
	}
	return &ReportResult{Columns: c.Columns, Result: rows}, nil
}

func encodeCell(v any) cachedCell {
	switch v := v.(type) {
	case nil:
		return cachedCell{Kind: cellNull}
	case decimal.Decimal:
		return cachedCell{Kind: cellDecimal, Value: v.String()}
	case models.MyDateString:
		return cachedCell{Kind: cellDate, Value: v.String()}
	case int:
		return cachedCell{Kind: cellInt, Value: strconv.Itoa(v)}
	case string:
		return cachedCell{Kind: cellString, Value: v}
	case bool:
		return cachedCell{Kind: cellBool, Value: strconv.FormatBool(v)}
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return cachedCell{Kind: cellString, Value: fmt.Sprint(v)}
		}
		return cachedCell{Kind: cellJSON, Value: string(b)}
	}
}

func (c cachedCell) decode() (any, error) {
	switch c.Kind {
	case cellNull:
		return nil, nil
	case cellDecimal:
		return decimal.NewFromString(c.Value)
	case cellDate:
		if c.Value == "" {
			return models.MyDateString{}, nil
		}
		return models.ParseMyDateString(c.Value)
	case cellInt:
		return strconv.Atoi(c.Value)
	case cellString:
		return c.Value, nil
	case cellBool:
		return strconv.ParseBool(c.Value)
	case cellJSON:
		var v any
		dec := json.NewDecoder(strings.NewReader(c.Value))
		dec.UseNumber()
		if err := dec.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	}
	return nil, fmt.Errorf("unknown cell kind %q", c.Kind)
}

func logSlowReport(ctx context.Context, name string, started time.Time, extra map[string]string) {
	d := time.Since(started)
	if d < config.ReportSlowThreshold() {
		return
	}
	cid, _ := utils.GetCorrelationIdFromContext(ctx)
	config.GetLogger().WithFields(logrus.Fields{
		"module":         "reports",
		"report":         name,
		"ms":             d.Milliseconds(),
		"correlation_id": cid,
		"filters":        extra,
	}).Warn("slow_report")
}

func cacheGet[T any](ctx context.Context, key string, dest *T) (bool, error) {
	return config.GetRedisObject(ctx, key, dest)
}

func cacheSet(ctx context.Context, key string, obj any, ttl time.Duration) error {
	return config.SetRedisObject(ctx, key, obj, ttl)
}
