package stock

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/mnavarro-dev/pedidos-service/internal/stock/dto"
)

type UseCase interface {
	// ProductStock returns the aggregate quantity available for a product.
	ProductStock(ctx context.Context, productID int64) (int64, error)

	// Verify checks whether aggregate stock covers every demand. Advisory
	// only: it takes no locks and guarantees nothing about a later
	// allocation.
	Verify(ctx context.Context, demands []dto.Demand) (*dto.Verification, error)

	// AllocateTx greedily decrements stock for one product inside the
	// caller's transaction, emitting one OUT movement per location
	// consumed. Returns false when aggregate stock is insufficient; the
	// caller must then roll the transaction back.
	AllocateTx(ctx context.Context, tx *sqlx.Tx, productID, qty int64, reference string) (bool, error)

	// Allocate runs AllocateTx in its own transaction. Insufficient stock
	// rolls everything back and returns false without error.
	Allocate(ctx context.Context, productID, qty int64, reference string) (bool, error)
}
