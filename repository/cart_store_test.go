package repository_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)
	return gormDB, mock
}

func TestCartStore_Upsert(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	store := repository.NewGormCartStore(gormDB)
	productID := uuid.NewString()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "cart_items" .* ON CONFLICT \("user_id","product_id"\) DO UPDATE SET "quantity"="excluded"."quantity"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.NewString()))
	mock.ExpectCommit()

	err := store.Upsert(context.Background(), "user-1", productID, 2)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartStore_Increment(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	store := repository.NewGormCartStore(gormDB)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "cart_items" .* ON CONFLICT \("user_id","product_id"\) DO UPDATE SET "quantity"=cart_items.quantity \+ EXCLUDED.quantity`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(uuid.NewString()))
	mock.ExpectCommit()

	err := store.Increment(context.Background(), "user-1", uuid.NewString(), 3)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartStore_WriteRejectsNonPositive(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	store := repository.NewGormCartStore(gormDB)

	assert.Error(t, store.Upsert(context.Background(), "user-1", uuid.NewString(), 0))
	assert.Error(t, store.UpdateQuantity(context.Background(), "user-1", uuid.NewString(), -1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartStore_UpsertFailure(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	store := repository.NewGormCartStore(gormDB)
	dbErr := errors.New("connection reset")

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO "cart_items"`)).WillReturnError(dbErr)
	mock.ExpectRollback()

	err := store.Upsert(context.Background(), "user-1", uuid.NewString(), 1)
	assert.ErrorIs(t, err, dbErr)
	assert.Contains(t, err.Error(), "upsert cart line")
}

func TestCartStore_FetchByOwner(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	store := repository.NewGormCartStore(gormDB)

	productID := uuid.NewString()
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "cart_items" WHERE user_id = $1 ORDER BY created_at ASC`)).
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "product_id", "quantity", "created_at", "updated_at"}).
			AddRow(uuid.NewString(), "user-1", productID, 2, now, now))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "products"`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price", "category", "stock_quantity", "is_active"}).
			AddRow(productID, "RTX 4070", 599.0, "pc_parts", 4, true))

	lines, err := store.FetchByOwner(context.Background(), "user-1")

	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
	require.NotNil(t, lines[0].Product)
	assert.Equal(t, "RTX 4070", lines[0].Product.Name)
	assert.Equal(t, 599.0, lines[0].Product.EffectivePrice())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartStore_FetchByOwnerEmpty(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	store := repository.NewGormCartStore(gormDB)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "cart_items"`)).
		WithArgs("user-2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "product_id", "quantity"}))

	lines, err := store.FetchByOwner(context.Background(), "user-2")
	assert.NoError(t, err)
	assert.Empty(t, lines)
}

func TestCartStore_UpdateQuantity(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	store := repository.NewGormCartStore(gormDB)
	productID := uuid.NewString()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "cart_items" SET "quantity"=$1,"updated_at"=$2`)).
		WithArgs(4, sqlmock.AnyArg(), "user-1", productID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assert.NoError(t, store.UpdateQuantity(context.Background(), "user-1", productID, 4))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartStore_DeleteLine(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	store := repository.NewGormCartStore(gormDB)
	productID := uuid.NewString()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "cart_items" WHERE user_id = $1`)).
		WithArgs("user-1", productID).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	assert.NoError(t, store.DeleteLine(context.Background(), "user-1", productID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartStore_DeleteAllByOwner(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	store := repository.NewGormCartStore(gormDB)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "cart_items" WHERE user_id = $1`)).
		WithArgs("user-1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	assert.NoError(t, store.DeleteAllByOwner(context.Background(), "user-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCartStore_MalformedProductIDIsNoop(t *testing.T) {
	gormDB, mock := setupMockDB(t)
	store := repository.NewGormCartStore(gormDB)
	ctx := context.Background()

	t.Run("DeleteLine", func(t *testing.T) {
		assert.NoError(t, store.DeleteLine(ctx, "user-1", "not-a-uuid"))
	})

	t.Run("UpdateQuantity", func(t *testing.T) {
		assert.NoError(t, store.UpdateQuantity(ctx, "user-1", "../etc", 3))
	})

	assert.NoError(t, mock.ExpectationsWereMet(), "no query may reach the uuid column")
}
