package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"coursepay/internal/domain/enrollment"
	vo "coursepay/internal/domain/enrollment/valueobjects"
	"coursepay/internal/infrastructure/persistence/models"
	apperrors "coursepay/internal/shared/errors"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, gdb.AutoMigrate(
		&models.PaymentAttemptModel{},
		&models.LedgerEntryModel{},
		&models.OfferModel{},
		&models.UserModel{},
		&models.CourseModel{},
		&models.EnrolmentModel{},
	))

	return gdb
}

func testLedgerEntry(t *testing.T, reference string) *enrollment.LedgerEntry {
	t.Helper()

	entry, err := enrollment.NewLedgerEntry(
		reference,
		enrollment.AccessToken{UserID: 7, CourseID: 42, OfferID: 3},
		vo.NewMoney(500000, "NGN"),
		"success",
		"Successful",
		[]byte(`{"status":true}`),
	)
	require.NoError(t, err)
	return entry
}

func TestLedgerRepository_RecordAndHasProcessed(t *testing.T) {
	repo := NewLedgerRepository(setupTestDB(t))
	ctx := context.Background()

	processed, err := repo.HasProcessed(ctx, "abc123")
	require.NoError(t, err)
	assert.False(t, processed)

	require.NoError(t, repo.Record(ctx, testLedgerEntry(t, "abc123")))

	processed, err = repo.HasProcessed(ctx, "abc123")
	require.NoError(t, err)
	assert.True(t, processed)

	got, err := repo.GetByReference(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, uint(7), got.UserID)
	assert.Equal(t, int64(500000), got.Amount.AmountMinor())
	assert.JSONEq(t, `{"status":true}`, string(got.Raw))
}

func TestLedgerRepository_DuplicateReferenceLosesRace(t *testing.T) {
	repo := NewLedgerRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Record(ctx, testLedgerEntry(t, "abc123")))

	err := repo.Record(ctx, testLedgerEntry(t, "abc123"))
	require.Error(t, err)
	assert.True(t, apperrors.IsConflictError(err), "second writer must lose on the unique index")
}
