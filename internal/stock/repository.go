package stock

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/mnavarro-dev/pedidos-service/internal/model"
)

type Repository interface {
	// TotalQuantity sums a product's quantity across every location.
	TotalQuantity(ctx context.Context, productID int64) (int64, error)

	// TotalQuantities batches TotalQuantity over several products.
	// Products with no stock records are absent from the result map.
	TotalQuantities(ctx context.Context, productIDs []int64) (map[int64]int64, error)

	// RecordsForAllocation returns the product's records with quantity > 0
	// ordered by quantity descending, locked FOR UPDATE within tx.
	RecordsForAllocation(ctx context.Context, tx *sqlx.Tx, productID int64) ([]model.StockRecord, error)

	// DeductQuantity subtracts qty from one stock record within tx.
	DeductQuantity(ctx context.Context, tx *sqlx.Tx, recordID, qty int64) error

	// InsertMovement appends one movement audit row within tx.
	InsertMovement(ctx context.Context, tx *sqlx.Tx, m *model.StockMovement) error
}
