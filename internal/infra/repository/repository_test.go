package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/BruksfildServices01/studio-scheduler/internal/domain/checkout"
	"github.com/BruksfildServices01/studio-scheduler/internal/httperr"
	"github.com/BruksfildServices01/studio-scheduler/internal/models"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

func TestAssertNoTimeConflict(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentGormRepository(db)

	start := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "appointments" WHERE .*status NOT IN`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	err := repo.AssertNoTimeConflict(context.Background(), 7, start, end, 0)
	assert.True(t, httperr.IsBusiness(err, "time_conflict"))

	mock.ExpectQuery(`SELECT count\(\*\) FROM "appointments" WHERE .*id <> `).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	assert.NoError(t, repo.AssertNoTimeConflict(context.Background(), 7, start, end, 42))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteAppointmentNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentGormRepository(db)

	mock.ExpectExec(`DELETE FROM "appointments"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteAppointment(context.Background(), 1, 99)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListServicesByIDsKeepsRequestOrder(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAppointmentGormRepository(db)

	rows := sqlmock.NewRows([]string{"id", "studio_id", "name", "duration_min", "price", "active"}).
		AddRow(1, 3, "Corte", 30, "60.00", true).
		AddRow(2, 3, "Barba", 20, "40.00", true)
	mock.ExpectQuery(`SELECT \* FROM "services"`).WillReturnRows(rows)

	got, err := repo.ListServicesByIDs(context.Background(), 3, []uint{2, 1})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Barba", got[0].Name)
	assert.Equal(t, "Corte", got[1].Name)

	mock.ExpectQuery(`SELECT \* FROM "services"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "Corte"))

	_, err = repo.ListServicesByIDs(context.Background(), 3, []uint{1, 5})
	assert.True(t, httperr.IsBusiness(err, "service_not_found"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettleRejectsClosedCommand(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCheckoutGormRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "commands" .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "studio_id", "status"}).AddRow(5, 1, "paid"))
	mock.ExpectRollback()

	err := repo.Settle(context.Background(), checkout.Settlement{
		StudioID:  1,
		CommandID: 5,
		PaidAt:    time.Now(),
	})
	assert.ErrorIs(t, err, checkout.ErrCommandClosed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelStaleCommands(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCheckoutGormRepository(db)

	mock.ExpectExec(`UPDATE "commands" SET .*NOT EXISTS`).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.CancelStaleCommands(context.Background(), time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindEntriesByKeysSkipsEmpty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCheckoutGormRepository(db)

	got, err := repo.FindEntriesByKeys(context.Background(), 1, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func commandRow(status, total string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "studio_id", "status", "total"}).AddRow(5, 1, status, total)
}

func TestSettleRejectsUncoveredTotal(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCheckoutGormRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "commands" .*FOR UPDATE`).
		WillReturnRows(commandRow("open", "225.00"))
	mock.ExpectRollback()

	err := repo.Settle(context.Background(), checkout.Settlement{
		StudioID:  1,
		CommandID: 5,
		Entries:   []checkout.Entry{{Amount: decimal.RequireFromString("200.00"), IdempotencyKey: "k1"}},
		PaidAt:    time.Now(),
	})
	assert.ErrorIs(t, err, checkout.ErrBalanceRemaining)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddItemLocksOpenCommandAndSumsInSQL(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCheckoutGormRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "commands" .*FOR UPDATE`).
		WillReturnRows(commandRow("open", "150.00"))
	mock.ExpectQuery(`INSERT INTO "command_items"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(77))
	mock.ExpectExec(`UPDATE "commands" SET "total"=\(SELECT COALESCE\(SUM\(subtotal\), 0\) FROM command_items`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	item := models.CommandItem{Kind: models.ItemProduct, Name: "Máscara", UnitPrice: decimal.NewFromInt(25), Quantity: 2, Subtotal: decimal.NewFromInt(50)}
	err := repo.AddItem(context.Background(), &models.Command{ID: 5, StudioID: 1}, &item)
	require.NoError(t, err)
	assert.Equal(t, uint(77), item.ID)
	assert.Equal(t, uint(5), item.CommandID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItemWritesRejectClosedCommand(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCheckoutGormRepository(db)
	cmd := &models.Command{ID: 5, StudioID: 1}

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "commands" .*FOR UPDATE`).
		WillReturnRows(commandRow("paid", "200.00"))
	mock.ExpectRollback()

	item := models.CommandItem{Kind: models.ItemService, Name: "Corte", Quantity: 1}
	assert.ErrorIs(t, repo.AddItem(context.Background(), cmd, &item), checkout.ErrCommandClosed)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "commands" .*FOR UPDATE`).
		WillReturnRows(commandRow("canceled", "200.00"))
	mock.ExpectRollback()

	assert.ErrorIs(t, repo.RemoveItem(context.Background(), cmd, 3), checkout.ErrCommandClosed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveItemMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCheckoutGormRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "commands" .*FOR UPDATE`).
		WillReturnRows(commandRow("open", "200.00"))
	mock.ExpectExec(`DELETE FROM "command_items"`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.RemoveItem(context.Background(), &models.Command{ID: 5, StudioID: 1}, 99)
	assert.ErrorIs(t, err, checkout.ErrItemNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelCommandOnlyWhenOpen(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCheckoutGormRepository(db)

	mock.ExpectExec(`UPDATE "commands" SET .*WHERE .*status = `).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.CancelCommand(context.Background(), 1, 5, time.Now())
	assert.ErrorIs(t, err, checkout.ErrCommandClosed)

	mock.ExpectExec(`UPDATE "commands" SET .*WHERE .*status = `).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.CancelCommand(context.Background(), 1, 5, time.Now()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
