package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnavarro-dev/pedidos-service/internal/model"
)

func newMockRepo(t *testing.T) (*MySQLRepository, sqlmock.Sqlmock, *sqlx.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sqlxDB := sqlx.NewDb(db, "mysql")
	return NewMySQLRepository(sqlxDB), mock, sqlxDB
}

func TestTotalQuantitySumsAcrossLocations(t *testing.T) {
	repo, mock, _ := newMockRepo(t)

	mock.ExpectQuery(`SELECT SUM\(quantity\) FROM stock_records WHERE product_id = \?`).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"SUM(quantity)"}).AddRow(13))

	total, err := repo.TotalQuantity(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, int64(13), total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTotalQuantityNoRecordsIsZero(t *testing.T) {
	repo, mock, _ := newMockRepo(t)

	// SUM over zero rows yields NULL.
	mock.ExpectQuery(`SELECT SUM\(quantity\) FROM stock_records`).
		WithArgs(int64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"SUM(quantity)"}).AddRow(nil))

	total, err := repo.TotalQuantity(context.Background(), 99)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestRecordsForAllocationLocksInDescendingOrder(t *testing.T) {
	repo, mock, sqlxDB := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, product_id, location_id, quantity\s+FROM stock_records\s+WHERE product_id = \? AND quantity > 0\s+ORDER BY quantity DESC\s+FOR UPDATE`).
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "product_id", "location_id", "quantity"}).
			AddRow(2, 4, 200, 10).
			AddRow(3, 4, 300, 5).
			AddRow(1, 4, 100, 3))

	tx, err := sqlxDB.Beginx()
	require.NoError(t, err)

	records, err := repo.RecordsForAllocation(context.Background(), tx, 4)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, int64(10), records[0].Quantity)
	assert.Equal(t, int64(3), records[2].Quantity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeductQuantityAndMovement(t *testing.T) {
	repo, mock, sqlxDB := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE stock_records SET quantity = quantity - \? WHERE id = \?`).
		WithArgs(int64(7), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO stock_movements`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	tx, err := sqlxDB.Beginx()
	require.NoError(t, err)

	require.NoError(t, repo.DeductQuantity(context.Background(), tx, 2, 7))
	require.NoError(t, repo.InsertMovement(context.Background(), tx, &model.StockMovement{
		Kind:       model.MovementOut,
		ProductID:  4,
		LocationID: 200,
		Quantity:   7,
		Reference:  "PED-250901-0001",
	}))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}
