package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/mnavarro-dev/pedidos-service/internal/apperr"
	"github.com/mnavarro-dev/pedidos-service/internal/model"
	"github.com/mnavarro-dev/pedidos-service/internal/order"
	"github.com/mnavarro-dev/pedidos-service/internal/order/dto"
	"github.com/mnavarro-dev/pedidos-service/internal/platform/database"
	"github.com/mnavarro-dev/pedidos-service/internal/stock"
	stockdto "github.com/mnavarro-dev/pedidos-service/internal/stock/dto"
)

const (
	eventOrderCreated      = "order.created"
	eventOrderStateChanged = "order.state_changed"

	// createRetries bounds the duplicate-number retry loop; collisions
	// only happen on the count-based fallback path under concurrency.
	createRetries = 3
)

type orderUseCase struct {
	orders    order.Repository
	stock     stock.UseCase
	db        database.TxRunner
	seq       order.Sequencer
	publisher order.EventPublisher
	logger    *zap.Logger
}

func NewOrderUseCase(
	orders order.Repository,
	stockUC stock.UseCase,
	db database.TxRunner,
	seq order.Sequencer,
	publisher order.EventPublisher,
	log *zap.Logger,
) order.UseCase {
	return &orderUseCase{
		orders:    orders,
		stock:     stockUC,
		db:        db,
		seq:       seq,
		publisher: publisher,
		logger:    log,
	}
}

func (uc *orderUseCase) Create(ctx context.Context, in *dto.CreateOrderInput) (*model.Order, error) {
	const op = "order.Create"

	if err := in.Validate(); err != nil {
		return nil, err
	}

	demands := make([]stockdto.Demand, len(in.Items))
	for i, item := range in.Items {
		demands[i] = stockdto.Demand{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	verification, err := uc.stock.Verify(ctx, demands)
	if err != nil {
		return nil, err
	}
	if !verification.Sufficient {
		return nil, apperr.InsufficientStock(op, verification.Shortages)
	}

	draft := uc.buildOrder(in)
	if draft.Total < 0 {
		return nil, apperr.Validation(op, "order total must be non-negative, got %.2f", draft.Total)
	}

	var orderID int64
	for attempt := 0; ; attempt++ {
		err = uc.db.WithinTx(ctx, func(tx *sqlx.Tx) error {
			number, err := uc.generateNumber(ctx, tx, draft.CreatedAt)
			if err != nil {
				return err
			}
			draft.OrderNumber = number

			id, err := uc.orders.InsertOrder(ctx, tx, draft)
			if err != nil {
				return err
			}
			orderID = id

			entry := &model.StatusHistoryEntry{
				OrderID:   id,
				NewState:  model.StatePending,
				Comment:   "order created",
				CreatedAt: draft.CreatedAt,
			}
			if err := uc.orders.InsertHistory(ctx, tx, entry); err != nil {
				return err
			}

			return uc.orders.InsertItems(ctx, tx, id, draft.Items)
		})
		if err == nil {
			break
		}
		if errors.Is(err, order.ErrDuplicateNumber) && attempt < createRetries {
			uc.logger.Warn("order number collision, retrying",
				zap.String("order_number", draft.OrderNumber),
				zap.Int("attempt", attempt+1))
			continue
		}
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, apperr.Storage(op, err)
	}

	created, err := uc.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, apperr.Storage(op, err)
	}

	uc.publish(ctx, eventOrderCreated, created.OrderNumber, &dto.CreatedOrder{
		OrderID:     created.ID,
		OrderNumber: created.OrderNumber,
		State:       created.State,
		Total:       created.Total,
	})

	uc.logger.Info("order created",
		zap.Int64("order_id", created.ID),
		zap.String("order_number", created.OrderNumber),
		zap.Float64("total", created.Total))
	return created, nil
}

// buildOrder assembles the persistent order from a validated draft.
// Subtotal, line subtotals and total are recomputed server-side.
func (uc *orderUseCase) buildOrder(in *dto.CreateOrderInput) *model.Order {
	now := time.Now()

	o := &model.Order{
		UserID:        in.UserID,
		Subtotal:      in.Subtotal(),
		ShippingCost:  in.ShippingCost,
		Discount:      in.Discount,
		Tax:           in.Tax,
		State:         model.StatePending,
		PaymentMethod: model.PaymentMethod(in.PaymentMethod),
		DeliveryMode:  model.DeliveryMode(in.DeliveryMode),
		CreatedAt:     now,
	}
	o.Total = o.ComputedTotal()

	if in.PaymentReference != "" {
		o.PaymentReference = &in.PaymentReference
	}
	if o.DeliveryMode == model.DeliveryPickup {
		o.PickupLocationID = &in.PickupLocationID
	} else {
		o.DeliveryAddress = &in.DeliveryAddress
		o.DeliveryCommune = &in.DeliveryCommune
		o.DeliveryCity = &in.DeliveryCity
		o.DeliveryRegion = &in.DeliveryRegion
	}
	if in.ReceiverName != "" {
		o.ReceiverName = &in.ReceiverName
	}
	if in.ContactPhone != "" {
		o.ContactPhone = &in.ContactPhone
	}
	if in.DeliveryInstructions != "" {
		o.DeliveryInstructions = &in.DeliveryInstructions
	}

	o.Items = make([]model.OrderItem, len(in.Items))
	for i, item := range in.Items {
		o.Items[i] = model.OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    float64(item.Quantity) * item.UnitPrice,
		}
	}
	return o
}

// generateNumber produces PED-YYMMDD-NNNN. The redis daily counter is
// the primary source; when it is absent or down, the count of today's
// orders inside the open transaction serves as the sequence, and the
// unique index on order_number turns any race into a retryable
// duplicate-key error instead of a silent collision.
func (uc *orderUseCase) generateNumber(ctx context.Context, tx *sqlx.Tx, now time.Time) (string, error) {
	prefix := fmt.Sprintf("PED-%s", now.Format("060102"))

	if uc.seq != nil {
		n, err := uc.seq.NextDailySequence(ctx, now)
		if err == nil {
			return fmt.Sprintf("%s-%04d", prefix, n), nil
		}
		uc.logger.Warn("daily sequence unavailable, falling back to count", zap.Error(err))
	}

	count, err := uc.orders.CountCreatedOn(ctx, tx, now)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s-%04d", prefix, count+1), nil
}

func (uc *orderUseCase) Get(ctx context.Context, q *dto.GetOrderQuery) (*model.Order, error) {
	const op = "order.Get"

	var (
		found *model.Order
		err   error
	)
	switch {
	case q.ID > 0:
		found, err = uc.orders.GetByID(ctx, q.ID)
	case q.OrderNumber != "":
		found, err = uc.orders.GetByNumber(ctx, q.OrderNumber)
	default:
		return nil, apperr.Validation(op, "an order id or order number is required")
	}
	if err != nil {
		return nil, apperr.Storage(op, err)
	}
	if found == nil {
		return nil, apperr.NotFound(op, "order not found")
	}
	return found, nil
}

func (uc *orderUseCase) Transition(ctx context.Context, orderID int64, newState model.OrderState, comment string) (*dto.TransitionResult, error) {
	const op = "order.Transition"

	if !newState.Valid() {
		return nil, apperr.Validation(op, "invalid state %q", newState)
	}

	var (
		result      *dto.TransitionResult
		orderNumber string
	)
	err := uc.db.WithinTx(ctx, func(tx *sqlx.Tx) error {
		current, err := uc.orders.GetForUpdate(ctx, tx, orderID)
		if err != nil {
			return apperr.Storage(op, err)
		}
		if current == nil {
			return apperr.NotFound(op, "order %d not found", orderID)
		}

		if current.State == newState {
			result = &dto.TransitionResult{
				Applied:       false,
				Message:       fmt.Sprintf("order already in state %s", newState),
				PreviousState: current.State,
				NewState:      newState,
			}
			return nil
		}

		if !model.CanTransition(current.State, newState) {
			return apperr.Conflict(op, "transition %s -> %s is not allowed", current.State, newState)
		}

		if newState == model.StatePaid {
			if err := uc.allocateForOrder(ctx, tx, current); err != nil {
				return err
			}
		}

		if err := uc.orders.UpdateState(ctx, tx, orderID, newState, time.Now()); err != nil {
			return apperr.Storage(op, err)
		}

		prev := current.State
		entry := &model.StatusHistoryEntry{
			OrderID:       orderID,
			PreviousState: &prev,
			NewState:      newState,
			Comment:       comment,
			CreatedAt:     time.Now(),
		}
		if err := uc.orders.InsertHistory(ctx, tx, entry); err != nil {
			return apperr.Storage(op, err)
		}

		result = &dto.TransitionResult{
			Applied:       true,
			Message:       fmt.Sprintf("order state updated to %s", newState),
			PreviousState: current.State,
			NewState:      newState,
		}
		orderNumber = current.OrderNumber
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Applied {
		uc.publish(ctx, eventOrderStateChanged, orderNumber, &dto.OrderStateChanged{
			OrderID:       orderID,
			OrderNumber:   orderNumber,
			PreviousState: result.PreviousState,
			NewState:      result.NewState,
			Comment:       comment,
		})
		uc.logger.Info("order transitioned",
			zap.Int64("order_id", orderID),
			zap.String("from", string(result.PreviousState)),
			zap.String("to", string(result.NewState)))
	}
	return result, nil
}

// allocateForOrder re-verifies stock for every line item and then
// allocates each one inside tx. Any shortage or failed allocation aborts
// the whole transition; stock already decremented in this transaction
// rolls back with it.
func (uc *orderUseCase) allocateForOrder(ctx context.Context, tx *sqlx.Tx, current *model.Order) error {
	const op = "order.Transition"

	items, err := uc.orders.ItemsByOrder(ctx, tx, current.ID)
	if err != nil {
		return apperr.Storage(op, err)
	}

	demands := make([]stockdto.Demand, len(items))
	for i, item := range items {
		demands[i] = stockdto.Demand{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	verification, err := uc.stock.Verify(ctx, demands)
	if err != nil {
		return err
	}
	if !verification.Sufficient {
		return apperr.InsufficientStock(op, verification.Shortages)
	}

	for _, item := range items {
		ok, err := uc.stock.AllocateTx(ctx, tx, item.ProductID, item.Quantity, current.OrderNumber)
		if err != nil {
			return err
		}
		if !ok {
			// Verified above, so stock moved underneath us; the allocator
			// is the authoritative guard.
			return apperr.InsufficientStock(op, []model.Shortage{
				{ProductID: item.ProductID, Quantity: item.Quantity},
			})
		}
	}
	return nil
}

func (uc *orderUseCase) publish(ctx context.Context, eventType, key string, payload any) {
	if uc.publisher == nil {
		return
	}
	if err := uc.publisher.Publish(ctx, eventType, key, payload); err != nil {
		uc.logger.Warn("event publish failed",
			zap.String("event", eventType),
			zap.String("key", key),
			zap.Error(err))
	}
}

func (uc *orderUseCase) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	const op = "order.ListByUser"

	if userID <= 0 {
		return nil, apperr.Validation(op, "invalid user id %d", userID)
	}

	list, err := uc.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Storage(op, err)
	}
	return list, nil
}

func (uc *orderUseCase) ListByState(ctx context.Context, state model.OrderState) ([]model.Order, error) {
	const op = "order.ListByState"

	if !state.Valid() {
		return nil, apperr.Validation(op, "invalid state %q", state)
	}

	list, err := uc.orders.ListByState(ctx, state)
	if err != nil {
		return nil, apperr.Storage(op, err)
	}
	return list, nil
}
