package dto

import "github.com/mnavarro-dev/pedidos-service/internal/model"

// GetOrderQuery selects an order either by id or by order number.
// Exactly one must be set.
type GetOrderQuery struct {
	ID          int64
	OrderNumber string
}

type TransitionResult struct {
	Applied       bool             `json:"applied"`
	Message       string           `json:"message"`
	PreviousState model.OrderState `json:"previous_state"`
	NewState      model.OrderState `json:"new_state"`
}

// CreatedOrder is the creation response payload.
type CreatedOrder struct {
	OrderID     int64            `json:"order_id"`
	OrderNumber string           `json:"order_number"`
	State       model.OrderState `json:"state"`
	Total       float64          `json:"total"`
}

// OrderStateChanged is the kafka payload for a committed transition.
type OrderStateChanged struct {
	OrderID       int64            `json:"order_id"`
	OrderNumber   string           `json:"order_number"`
	PreviousState model.OrderState `json:"previous_state"`
	NewState      model.OrderState `json:"new_state"`
	Comment       string           `json:"comment,omitempty"`
}
