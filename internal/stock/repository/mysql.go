package repository

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/mnavarro-dev/pedidos-service/internal/model"
)

type MySQLRepository struct {
	DB *sqlx.DB
}

func NewMySQLRepository(db *sqlx.DB) *MySQLRepository {
	return &MySQLRepository{DB: db}
}

func (r *MySQLRepository) TotalQuantity(ctx context.Context, productID int64) (int64, error) {
	var total sql.NullInt64
	query := `SELECT SUM(quantity) FROM stock_records WHERE product_id = ?`

	if err := r.DB.GetContext(ctx, &total, query, productID); err != nil {
		return 0, errors.Wrapf(err, "total quantity for product %d", productID)
	}
	// NULL when the product has no stock records at all.
	return total.Int64, nil
}

func (r *MySQLRepository) TotalQuantities(ctx context.Context, productIDs []int64) (map[int64]int64, error) {
	totals := make(map[int64]int64, len(productIDs))
	if len(productIDs) == 0 {
		return totals, nil
	}

	query, args, err := sqlx.In(`
        SELECT product_id, SUM(quantity) AS total
        FROM stock_records
        WHERE product_id IN (?)
        GROUP BY product_id
    `, productIDs)
	if err != nil {
		return nil, errors.Wrap(err, "build stock totals query")
	}
	query = r.DB.Rebind(query)

	var rows []struct {
		ProductID int64 `db:"product_id"`
		Total     int64 `db:"total"`
	}
	if err := r.DB.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "select stock totals")
	}

	for _, row := range rows {
		totals[row.ProductID] = row.Total
	}
	return totals, nil
}

func (r *MySQLRepository) RecordsForAllocation(ctx context.Context, tx *sqlx.Tx, productID int64) ([]model.StockRecord, error) {
	var records []model.StockRecord
	query := `
        SELECT id, product_id, location_id, quantity
        FROM stock_records
        WHERE product_id = ? AND quantity > 0
        ORDER BY quantity DESC
        FOR UPDATE
    `

	if err := tx.SelectContext(ctx, &records, query, productID); err != nil {
		return nil, errors.Wrapf(err, "lock stock records for product %d", productID)
	}
	return records, nil
}

func (r *MySQLRepository) DeductQuantity(ctx context.Context, tx *sqlx.Tx, recordID, qty int64) error {
	query := `UPDATE stock_records SET quantity = quantity - ? WHERE id = ?`

	if _, err := tx.ExecContext(ctx, query, qty, recordID); err != nil {
		return errors.Wrapf(err, "deduct %d from stock record %d", qty, recordID)
	}
	return nil
}

func (r *MySQLRepository) InsertMovement(ctx context.Context, tx *sqlx.Tx, m *model.StockMovement) error {
	query := `
        INSERT INTO stock_movements (kind, product_id, location_id, quantity, reference, note, created_at)
        VALUES (:kind, :product_id, :location_id, :quantity, :reference, :note, :created_at)
    `

	if _, err := tx.NamedExecContext(ctx, query, m); err != nil {
		return errors.Wrapf(err, "insert movement for product %d", m.ProductID)
	}
	return nil
}
