package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mnavarro-dev/pedidos-service/internal/apperr"
	"github.com/mnavarro-dev/pedidos-service/internal/model"
	"github.com/mnavarro-dev/pedidos-service/internal/stock/dto"
)

// fakeStockRepo holds stock in memory. The tx argument is ignored;
// fakeTxRunner provides the rollback semantics.
type fakeStockRepo struct {
	records   []model.StockRecord
	movements []model.StockMovement
	failOn    string
}

func (f *fakeStockRepo) TotalQuantity(_ context.Context, productID int64) (int64, error) {
	if f.failOn == "total" {
		return 0, fmt.Errorf("query failed")
	}
	var total int64
	for _, r := range f.records {
		if r.ProductID == productID {
			total += r.Quantity
		}
	}
	return total, nil
}

func (f *fakeStockRepo) TotalQuantities(ctx context.Context, productIDs []int64) (map[int64]int64, error) {
	if f.failOn == "totals" {
		return nil, fmt.Errorf("query failed")
	}
	totals := make(map[int64]int64)
	for _, id := range productIDs {
		t, _ := f.TotalQuantity(ctx, id)
		if t > 0 {
			totals[id] = t
		}
	}
	return totals, nil
}

func (f *fakeStockRepo) RecordsForAllocation(_ context.Context, _ *sqlx.Tx, productID int64) ([]model.StockRecord, error) {
	if f.failOn == "records" {
		return nil, fmt.Errorf("lock failed")
	}
	var out []model.StockRecord
	for _, r := range f.records {
		if r.ProductID == productID && r.Quantity > 0 {
			out = append(out, r)
		}
	}
	// quantity descending, as the SQL does
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].Quantity > out[i].Quantity {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (f *fakeStockRepo) DeductQuantity(_ context.Context, _ *sqlx.Tx, recordID, qty int64) error {
	if f.failOn == "deduct" {
		return fmt.Errorf("update failed")
	}
	for i := range f.records {
		if f.records[i].ID == recordID {
			f.records[i].Quantity -= qty
			return nil
		}
	}
	return fmt.Errorf("record %d not found", recordID)
}

func (f *fakeStockRepo) InsertMovement(_ context.Context, _ *sqlx.Tx, m *model.StockMovement) error {
	if f.failOn == "movement" {
		return fmt.Errorf("insert failed")
	}
	f.movements = append(f.movements, *m)
	return nil
}

// fakeTxRunner snapshots the fake repo and restores it when the closure
// fails, mirroring a real rollback.
type fakeTxRunner struct {
	repo *fakeStockRepo
}

func (r *fakeTxRunner) WithinTx(_ context.Context, fn func(tx *sqlx.Tx) error) error {
	records := append([]model.StockRecord(nil), r.repo.records...)
	movements := append([]model.StockMovement(nil), r.repo.movements...)

	if err := fn(nil); err != nil {
		r.repo.records = records
		r.repo.movements = movements
		return err
	}
	return nil
}

func newStockFixture(records ...model.StockRecord) (*fakeStockRepo, *stockUseCase) {
	repo := &fakeStockRepo{records: records}
	uc := NewStockUseCase(repo, &fakeTxRunner{repo: repo}, zap.NewNop()).(*stockUseCase)
	return repo, uc
}

func TestVerifySufficient(t *testing.T) {
	_, uc := newStockFixture(
		model.StockRecord{ID: 1, ProductID: 4, LocationID: 1, Quantity: 5},
		model.StockRecord{ID: 2, ProductID: 4, LocationID: 2, Quantity: 5},
	)

	result, err := uc.Verify(context.Background(), []dto.Demand{{ProductID: 4, Quantity: 10}})
	require.NoError(t, err)
	assert.True(t, result.Sufficient)
	assert.Empty(t, result.Shortages)
}

func TestVerifyShortageReportsMissingQuantity(t *testing.T) {
	_, uc := newStockFixture(
		model.StockRecord{ID: 1, ProductID: 4, LocationID: 1, Quantity: 2},
	)

	result, err := uc.Verify(context.Background(), []dto.Demand{
		{ProductID: 4, Quantity: 5},
		{ProductID: 9, Quantity: 1},
	})
	require.NoError(t, err)
	assert.False(t, result.Sufficient)
	assert.Equal(t, []model.Shortage{
		{ProductID: 4, Quantity: 3},
		{ProductID: 9, Quantity: 1},
	}, result.Shortages)
}

func TestVerifyRejectsNonPositiveDemand(t *testing.T) {
	_, uc := newStockFixture()

	_, err := uc.Verify(context.Background(), []dto.Demand{{ProductID: 4, Quantity: 0}})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestAllocateConsumesLargestLocationsFirst(t *testing.T) {
	repo, uc := newStockFixture(
		model.StockRecord{ID: 1, ProductID: 4, LocationID: 100, Quantity: 3},  // locA
		model.StockRecord{ID: 2, ProductID: 4, LocationID: 200, Quantity: 10}, // locB
		model.StockRecord{ID: 3, ProductID: 4, LocationID: 300, Quantity: 5},  // locC
	)

	ok, err := uc.Allocate(context.Background(), 4, 12, "PED-250901-0001")
	require.NoError(t, err)
	assert.True(t, ok)

	byLocation := map[int64]int64{}
	for _, r := range repo.records {
		byLocation[r.LocationID] = r.Quantity
	}
	assert.Equal(t, int64(1), byLocation[100])
	assert.Equal(t, int64(0), byLocation[200])
	assert.Equal(t, int64(5), byLocation[300])

	require.Len(t, repo.movements, 2)
	assert.Equal(t, int64(200), repo.movements[0].LocationID)
	assert.Equal(t, int64(10), repo.movements[0].Quantity)
	assert.Equal(t, int64(100), repo.movements[1].LocationID)
	assert.Equal(t, int64(2), repo.movements[1].Quantity)
	for _, m := range repo.movements {
		assert.Equal(t, model.MovementOut, m.Kind)
		assert.Equal(t, "PED-250901-0001", m.Reference)
	}
}

func TestAllocateInsufficientRollsBackEverything(t *testing.T) {
	repo, uc := newStockFixture(
		model.StockRecord{ID: 1, ProductID: 4, LocationID: 100, Quantity: 3},
		model.StockRecord{ID: 2, ProductID: 4, LocationID: 200, Quantity: 5},
	)

	ok, err := uc.Allocate(context.Background(), 4, 20, "PED-250901-0002")
	require.NoError(t, err)
	assert.False(t, ok)

	// Every record unchanged, zero movements.
	assert.Equal(t, int64(3), repo.records[0].Quantity)
	assert.Equal(t, int64(5), repo.records[1].Quantity)
	assert.Empty(t, repo.movements)
}

func TestAllocateNoRecordsIsOutOfStock(t *testing.T) {
	_, uc := newStockFixture()

	ok, err := uc.Allocate(context.Background(), 99, 1, "PED-250901-0003")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAllocateExactFit(t *testing.T) {
	repo, uc := newStockFixture(
		model.StockRecord{ID: 1, ProductID: 4, LocationID: 100, Quantity: 7},
	)

	ok, err := uc.Allocate(context.Background(), 4, 7, "PED-250901-0004")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(0), repo.records[0].Quantity)
	require.Len(t, repo.movements, 1)
	assert.Equal(t, int64(7), repo.movements[0].Quantity)
}

func TestAllocateStorageFailurePropagates(t *testing.T) {
	repo, uc := newStockFixture(
		model.StockRecord{ID: 1, ProductID: 4, LocationID: 100, Quantity: 7},
	)
	repo.failOn = "movement"

	_, err := uc.Allocate(context.Background(), 4, 5, "PED-250901-0005")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindStorage))
	// Rolled back by the runner.
	assert.Equal(t, int64(7), repo.records[0].Quantity)
}

func TestAllocateRejectsNonPositiveQuantity(t *testing.T) {
	_, uc := newStockFixture()

	_, err := uc.AllocateTx(context.Background(), nil, 4, 0, "ref")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestProductStock(t *testing.T) {
	_, uc := newStockFixture(
		model.StockRecord{ID: 1, ProductID: 4, LocationID: 100, Quantity: 3},
		model.StockRecord{ID: 2, ProductID: 4, LocationID: 200, Quantity: 9},
		model.StockRecord{ID: 3, ProductID: 5, LocationID: 100, Quantity: 1},
	)

	total, err := uc.ProductStock(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, int64(12), total)
}
