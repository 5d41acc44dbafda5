package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bitbucket.org/mmdatafocus/fama_reports/config"
	"bitbucket.org/mmdatafocus/fama_reports/graph"
	"bitbucket.org/mmdatafocus/fama_reports/middlewares"
	"bitbucket.org/mmdatafocus/fama_reports/models"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

func init() {
	// Report amounts serialize as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

func newRouter(logger *logrus.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middlewares.CorrelationMiddleware())
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	corsConfig := cors.DefaultConfig()
	if origins := config.AllowedOrigins(); len(origins) > 0 {
		corsConfig.AllowOrigins = origins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "OPTIONS")
	corsConfig.AddAllowHeaders("Origin", "Content-Type", "Authorization", middlewares.CorrelationIdHeader)
	corsConfig.AddExposeHeaders("Content-Length", "Content-Disposition", middlewares.CorrelationIdHeader)

	r.Use(cors.New(corsConfig))
	r.Use(middlewares.ErrorLogger(logger))
	r.Use(gin.Recovery())

	api := r.Group("/reports", middlewares.AuthMiddleware())
	api.GET("", listReportsHandler())
	api.GET("/:name", runReportHandler())
	api.GET("/:name/export", downloadReportHandler())
	api.POST("/:name/export", publishReportHandler())

	gql := gin.WrapH(graph.NewHandler())
	r.GET("/query", middlewares.AuthMiddleware(), gql)
	r.POST("/query", middlewares.AuthMiddleware(), gql)

	r.NoRoute(customNotFoundHandler)
	return r
}

func customNotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
}

func main() {
	logger := config.GetLogger()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry(sigCtx)

	db := config.GetDB()
	sqlDB, _ := db.DB()
	defer func() {
		if sqlDB != nil {
			_ = sqlDB.Close()
		}
	}()

	if missing := models.MissingReportTables(sigCtx); len(missing) > 0 {
		logger.WithFields(logrus.Fields{"field": "schema", "missing": missing}).Warn("report tables not found; affected reports will fail")
	}

	srv := &http.Server{
		Addr:    ":" + config.HTTPPort(),
		Handler: newRouter(logger),
	}
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()
	log.Printf("report server listening on :%s", config.HTTPPort())

	select {
	case <-sigCtx.Done():
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}

	if rdb := config.GetRedisDB(); rdb != nil {
		_ = rdb.Close()
	}
}
