package config

import (
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var defaultSalesTaxRate = decimal.RequireFromString("0.18")

// SalesTaxRate is applied to invoice item amounts in the sales invoice details report.
//
// Set via env:
// - SALES_TAX_RATE=0.18
func SalesTaxRate() decimal.Decimal {
	v := strings.TrimSpace(os.Getenv("SALES_TAX_RATE"))
	if v == "" {
		return defaultSalesTaxRate
	}
	rate, err := decimal.NewFromString(v)
	if err != nil || rate.IsNegative() {
		return defaultSalesTaxRate
	}
	return rate
}

// ReportCacheEnabled gates the redis report cache.
//
// Set via env:
// - ENABLE_REPORT_CACHE=true
func ReportCacheEnabled() bool {
	return boolFromEnv("ENABLE_REPORT_CACHE")
}

// REPORT_CACHE_TTL_SECONDS (default 120s)
func ReportCacheTTL() time.Duration {
	ttl := intFromEnv("REPORT_CACHE_TTL_SECONDS", 120)
	if ttl <= 0 {
		ttl = 120
	}
	return time.Duration(ttl) * time.Second
}

// REPORT_SLOW_MS (default 500ms)
func ReportSlowThreshold() time.Duration {
	ms := intFromEnv("REPORT_SLOW_MS", 500)
	if ms <= 0 {
		ms = 500
	}
	return time.Duration(ms) * time.Millisecond
}

func HTTPPort() string {
	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		return "8080"
	}
	return port
}

// AllowedOrigins for CORS, comma separated. Empty allows all origins.
func AllowedOrigins() []string {
	raw := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if raw == "" {
		return nil
	}
	var origins []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}
