package main

import (
	"errors"
	"fmt"
	"net/http"

	"bitbucket.org/mmdatafocus/fama_reports/models/reports"
	"bitbucket.org/mmdatafocus/fama_reports/utils"
	"github.com/gin-gonic/gin"
)

func listReportsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, reports.List())
	}
}

func runReportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		filters, err := reports.ParseFilters(queryFilters(c))
		if err != nil {
			abortWithReportError(c, err)
			return
		}
		result, err := reports.Execute(c.Request.Context(), c.Param("name"), filters)
		if err != nil {
			abortWithReportError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func downloadReportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		def, err := reports.Lookup(c.Param("name"))
		if err != nil {
			abortWithReportError(c, err)
			return
		}
		filters, err := reports.ParseFilters(queryFilters(c))
		if err != nil {
			abortWithReportError(c, err)
			return
		}
		result, err := reports.Execute(c.Request.Context(), def.Key, filters)
		if err != nil {
			abortWithReportError(c, err)
			return
		}
		data, err := reports.ExportExcel(result, def.Title)
		if err != nil {
			abortWithReportError(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.xlsx", def.Key))
		c.Data(http.StatusOK, reports.ExcelContentType, data)
	}
}

// publishReportHandler takes filters as a JSON object body, falling back to the query string.
func publishReportHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := queryFilters(c)
		if c.Request.ContentLength > 0 {
			var body map[string]string
			if err := c.ShouldBindJSON(&body); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
				return
			}
			for k, v := range body {
				raw[k] = v
			}
		}
		filters, err := reports.ParseFilters(raw)
		if err != nil {
			abortWithReportError(c, err)
			return
		}
		receipt, err := reports.ExportToStorage(c.Request.Context(), c.Param("name"), filters)
		if err != nil && receipt == nil {
			abortWithReportError(c, err)
			return
		}
		if err != nil {
			// Stored but not announced.
			_ = c.Error(err)
			c.JSON(http.StatusAccepted, receipt)
			return
		}
		c.JSON(http.StatusOK, receipt)
	}
}

// queryFilters keeps the first value of every query parameter.
func queryFilters(c *gin.Context) map[string]string {
	raw := map[string]string{}
	for k, v := range c.Request.URL.Query() {
		if len(v) > 0 {
			raw[k] = v[0]
		}
	}
	return raw
}

func abortWithReportError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, reports.ErrInvalidFilter):
		status = http.StatusBadRequest
	case errors.Is(err, reports.ErrReportNotFound):
		status = http.StatusNotFound
	case errors.Is(err, utils.ErrStorageDisabled):
		status = http.StatusServiceUnavailable
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
