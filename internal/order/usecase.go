package order

import (
	"context"
	"time"

	"github.com/mnavarro-dev/pedidos-service/internal/model"
	"github.com/mnavarro-dev/pedidos-service/internal/order/dto"
)

type UseCase interface {
	// Create validates the draft, verifies stock, and persists the order
	// with its items and creation history entry in one transaction.
	Create(ctx context.Context, in *dto.CreateOrderInput) (*model.Order, error)

	// Get looks an order up by id or by order number, items and history
	// attached.
	Get(ctx context.Context, q *dto.GetOrderQuery) (*model.Order, error)

	// Transition moves an order to newState per the lifecycle rules. A
	// same-state request is a no-op with Applied=false, not an error.
	Transition(ctx context.Context, orderID int64, newState model.OrderState, comment string) (*dto.TransitionResult, error)

	ListByUser(ctx context.Context, userID int64) ([]model.Order, error)
	ListByState(ctx context.Context, state model.OrderState) ([]model.Order, error)
}

// Sequencer hands out the per-day order-number sequence. Backed by a
// redis counter in production; nil-able, the usecase falls back to a
// count-based sequence inside the creation transaction.
type Sequencer interface {
	NextDailySequence(ctx context.Context, day time.Time) (int64, error)
}

// EventPublisher emits order lifecycle events after commit. Best effort:
// publish failures are logged, never surfaced to the caller.
type EventPublisher interface {
	Publish(ctx context.Context, eventType, key string, payload any) error
}
