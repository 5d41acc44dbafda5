package models

import (
	"testing"

	"bitbucket.org/mmdatafocus/fama_reports/config"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) sqlmock.Sqlmock {
	t.Helper()
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
