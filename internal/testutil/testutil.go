// Package testutil wires throwaway databases and fixtures for package tests.
package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go-flowershop-admin/internal/model"
	"go-flowershop-admin/pkg/config"
	"go-flowershop-admin/pkg/database"
	"go-flowershop-admin/pkg/logger"
	"go-flowershop-admin/pkg/migrate"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Now is the instant every fixed test clock starts at: 2026-10-17 09:30 in
// Manila.
var Now = time.Date(2026, 10, 17, 1, 30, 0, 0, time.UTC)

func Manila(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Manila")
	require.NoError(t, err)
	return loc
}

// NewDB opens a private in-memory SQLite database with the full schema.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(config.DBConfig{
		Driver: config.DriverSQLite,
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.NewString()),
	}, logger.Nop())
	require.NoError(t, err)
	require.NoError(t, migrate.Up(context.Background(), db, config.DriverSQLite))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// SeedProduct inserts an active product straight through GORM.
func SeedProduct(t *testing.T, db *gorm.DB, sku, name string, price string, stock, threshold int) *model.Product {
	t.Helper()
	p := &model.Product{
		SKU:               sku,
		Name:              name,
		Category:          "Flowers",
		Price:             decimal.RequireFromString(price),
		StockQuantity:     stock,
		LowStockThreshold: threshold,
		Unit:              model.DefaultUnit,
		IsActive:          true,
	}
	p.CreatedAt, p.UpdatedAt = Now, Now
	require.NoError(t, db.Create(p).Error)
	return p
}

func Dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// DecEqual asserts two decimals are numerically equal.
func DecEqual(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got.String())
}
