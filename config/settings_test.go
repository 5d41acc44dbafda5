package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSalesTaxRate(t *testing.T) {
	t.Setenv("SALES_TAX_RATE", "")
	assert.Equal(t, "0.18", SalesTaxRate().String())

	t.Setenv("SALES_TAX_RATE", "0.17")
	assert.Equal(t, "0.17", SalesTaxRate().String())

	for _, bad := range []string{"abc", "-0.1"} {
		t.Setenv("SALES_TAX_RATE", bad)
		assert.Equal(t, "0.18", SalesTaxRate().String(), bad)
	}
}

func TestReportCacheSettings(t *testing.T) {
	t.Setenv("ENABLE_REPORT_CACHE", "Yes")
	assert.True(t, ReportCacheEnabled())
	t.Setenv("ENABLE_REPORT_CACHE", "0")
	assert.False(t, ReportCacheEnabled())

	t.Setenv("REPORT_CACHE_TTL_SECONDS", "")
	assert.Equal(t, 120*time.Second, ReportCacheTTL())
	t.Setenv("REPORT_CACHE_TTL_SECONDS", "30")
	assert.Equal(t, 30*time.Second, ReportCacheTTL())
	t.Setenv("REPORT_CACHE_TTL_SECONDS", "-5")
	assert.Equal(t, 120*time.Second, ReportCacheTTL())

	t.Setenv("REPORT_SLOW_MS", "x")
	assert.Equal(t, 500*time.Millisecond, ReportSlowThreshold())
}

func TestHTTPSettings(t *testing.T) {
	t.Setenv("PORT", "")
	assert.Equal(t, "8080", HTTPPort())
	t.Setenv("PORT", "9000")
	assert.Equal(t, "9000", HTTPPort())

	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	assert.Nil(t, AllowedOrigins())
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://erp.example.com, ,https://app.example.com ")
	assert.Equal(t, []string{"https://erp.example.com", "https://app.example.com"}, AllowedOrigins())
}
