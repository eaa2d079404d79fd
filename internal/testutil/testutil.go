// Package testutil wires an in-memory store for package tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/ManishSRawat/e-sell/internal/domain"
	"github.com/ManishSRawat/e-sell/internal/infra/database"
	"github.com/ManishSRawat/e-sell/internal/repository"
	"github.com/ManishSRawat/e-sell/internal/repository/gormrepo"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq atomic.Int64

// NewDB opens a private shared-cache in-memory SQLite database with every
// table migrated. It is closed when the test ends.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:esell_test_%d?mode=memory&cache=shared&_foreign_keys=1&_busy_timeout=5000", dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func NewStore(t testing.TB) repository.Store {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return gormrepo.NewStore(NewDB(t), node)
}

func Money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func SeedUser(t testing.TB, s repository.Store, email string, role domain.Role) *domain.User {
	t.Helper()
	u := &domain.User{
		Email:        email,
		PasswordHash: "x",
		FirstName:    "Test",
		LastName:     "User",
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, s.Users().Create(t.Context(), u))
	return u
}

func SeedCategory(t testing.TB, s repository.Store, name string) *domain.Category {
	t.Helper()
	c := &domain.Category{Name: name, Description: name + " things"}
	require.NoError(t, s.Categories().Create(t.Context(), c))
	return c
}

func SeedProduct(t testing.TB, s repository.Store, name, price string, stock int64, categoryID, sellerID int64) *domain.Product {
	t.Helper()
	p := &domain.Product{
		Name:        name,
		Description: name + " description",
		Price:       Money(price),
		CategoryID:  categoryID,
		Stock:       stock,
		SellerID:    sellerID,
	}
	require.NoError(t, s.Products().Create(t.Context(), p))
	return p
}
