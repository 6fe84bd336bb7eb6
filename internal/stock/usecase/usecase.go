package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/mnavarro-dev/pedidos-service/internal/apperr"
	"github.com/mnavarro-dev/pedidos-service/internal/model"
	"github.com/mnavarro-dev/pedidos-service/internal/platform/database"
	"github.com/mnavarro-dev/pedidos-service/internal/stock"
	"github.com/mnavarro-dev/pedidos-service/internal/stock/dto"
)

type stockUseCase struct {
	repo   stock.Repository
	db     database.TxRunner
	logger *zap.Logger
}

func NewStockUseCase(repo stock.Repository, db database.TxRunner, log *zap.Logger) stock.UseCase {
	return &stockUseCase{
		repo:   repo,
		db:     db,
		logger: log,
	}
}

func (uc *stockUseCase) ProductStock(ctx context.Context, productID int64) (int64, error) {
	total, err := uc.repo.TotalQuantity(ctx, productID)
	if err != nil {
		return 0, apperr.Storage("stock.ProductStock", err)
	}
	return total, nil
}

func (uc *stockUseCase) Verify(ctx context.Context, demands []dto.Demand) (*dto.Verification, error) {
	const op = "stock.Verify"

	ids := make([]int64, 0, len(demands))
	for _, d := range demands {
		if d.Quantity <= 0 {
			return nil, apperr.Validation(op, "quantity for product %d must be positive", d.ProductID)
		}
		ids = append(ids, d.ProductID)
	}

	totals, err := uc.repo.TotalQuantities(ctx, ids)
	if err != nil {
		return nil, apperr.Storage(op, err)
	}

	result := &dto.Verification{Sufficient: true}
	for _, d := range demands {
		available := totals[d.ProductID]
		if available < d.Quantity {
			result.Sufficient = false
			result.Shortages = append(result.Shortages, model.Shortage{
				ProductID: d.ProductID,
				Quantity:  d.Quantity - available,
			})
		}
	}
	return result, nil
}

func (uc *stockUseCase) AllocateTx(ctx context.Context, tx *sqlx.Tx, productID, qty int64, reference string) (bool, error) {
	const op = "stock.Allocate"

	if qty <= 0 {
		return false, apperr.Validation(op, "quantity must be positive, got %d", qty)
	}

	records, err := uc.repo.RecordsForAllocation(ctx, tx, productID)
	if err != nil {
		return false, apperr.Storage(op, err)
	}
	if len(records) == 0 {
		// Legitimate out-of-stock outcome, not an error.
		return false, nil
	}

	now := time.Now()
	remaining := qty
	for _, rec := range records {
		if remaining <= 0 {
			break
		}
		take := remaining
		if rec.Quantity < take {
			take = rec.Quantity
		}

		if err := uc.repo.DeductQuantity(ctx, tx, rec.ID, take); err != nil {
			return false, apperr.Storage(op, err)
		}

		movement := &model.StockMovement{
			Kind:       model.MovementOut,
			ProductID:  productID,
			LocationID: rec.LocationID,
			Quantity:   take,
			Reference:  reference,
			Note:       fmt.Sprintf("sale allocation, order %s", reference),
			CreatedAt:  now,
		}
		if err := uc.repo.InsertMovement(ctx, tx, movement); err != nil {
			return false, apperr.Storage(op, err)
		}

		remaining -= take
	}

	if remaining > 0 {
		uc.logger.Warn("allocation short",
			zap.Int64("product_id", productID),
			zap.Int64("requested", qty),
			zap.Int64("missing", remaining),
			zap.String("reference", reference))
		return false, nil
	}
	return true, nil
}

// errAllocationShort forces WithinTx to roll back when standalone
// allocation cannot cover the demand.
var errAllocationShort = fmt.Errorf("allocation short")

func (uc *stockUseCase) Allocate(ctx context.Context, productID, qty int64, reference string) (bool, error) {
	var ok bool
	err := uc.db.WithinTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		ok, err = uc.AllocateTx(ctx, tx, productID, qty, reference)
		if err != nil {
			return err
		}
		if !ok {
			return errAllocationShort
		}
		return nil
	})
	if err == errAllocationShort {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return ok, nil
}
