package order

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/mnavarro-dev/pedidos-service/internal/model"
)

// ErrDuplicateNumber is returned by InsertOrder when the generated order
// number collides with an existing one; callers regenerate and retry.
var ErrDuplicateNumber = errors.New("order number already exists")

type Repository interface {
	// InsertOrder writes the order header within tx and returns its id.
	InsertOrder(ctx context.Context, tx *sqlx.Tx, o *model.Order) (int64, error)

	// InsertItems writes the order's line items within tx.
	InsertItems(ctx context.Context, tx *sqlx.Tx, orderID int64, items []model.OrderItem) error

	// InsertHistory appends one state-history row within tx.
	InsertHistory(ctx context.Context, tx *sqlx.Tx, entry *model.StatusHistoryEntry) error

	// CountCreatedOn counts orders created on the given calendar day,
	// read within tx so the count and the insert share one snapshot.
	CountCreatedOn(ctx context.Context, tx *sqlx.Tx, day time.Time) (int64, error)

	// GetForUpdate loads id, number and current state locked FOR UPDATE.
	GetForUpdate(ctx context.Context, tx *sqlx.Tx, id int64) (*model.Order, error)

	// UpdateState sets the order's state and, when the state has a
	// dedicated timestamp column, stamps it with at.
	UpdateState(ctx context.Context, tx *sqlx.Tx, id int64, state model.OrderState, at time.Time) error

	// ItemsByOrder returns the order's line items within tx.
	ItemsByOrder(ctx context.Context, tx *sqlx.Tx, orderID int64) ([]model.OrderItem, error)

	GetByID(ctx context.Context, id int64) (*model.Order, error)
	GetByNumber(ctx context.Context, number string) (*model.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]model.Order, error)
	ListByState(ctx context.Context, state model.OrderState) ([]model.Order, error)
}
