package persistence

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/propledger/backend/internal/domain/property"
	"github.com/propledger/backend/internal/domain/shared"
	"github.com/propledger/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupLedgerTestDB opens a migrated in-memory SQLite database.
// A single connection keeps every query on the same in-memory schema.
func setupLedgerTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(AllModels()...))
	return db
}

// newMockGormDB opens GORM over sqlmock with the postgres dialector
func newMockGormDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return gormDB, mock
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimalEqual(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(expected).Equal(actual), "expected %s, got %s", expected, actual.String())
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// seedProperty inserts an active property for ownerID
func seedProperty(t *testing.T, db *gorm.DB, ownerID uuid.UUID, price string, purchased time.Time) *property.Property {
	t.Helper()
	p := &property.Property{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(ownerID),
		Address:            "12 Example St, Brunswick VIC",
		PurchasePrice:      dec(price),
		PurchaseDate:       purchased,
		Status:             property.StatusActive,
	}
	require.NoError(t, db.Create(models.PropertyModelFromDomain(p)).Error)
	return p
}

// seedTransaction inserts a ledger transaction
func seedTransaction(t *testing.T, db *gorm.DB, p *property.Property, category property.TransactionCategory, amount string) {
	t.Helper()
	tx := &property.Transaction{
		ID:         uuid.New(),
		OwnerID:    p.OwnerID,
		PropertyID: p.ID,
		Category:   category,
		Amount:     dec(amount),
		Date:       p.PurchaseDate,
	}
	require.NoError(t, db.Create(models.TransactionModelFromDomain(tx)).Error)
}
