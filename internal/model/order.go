package model

import "time"

type PaymentMethod string

const (
	PaymentWebpay   PaymentMethod = "webpay"
	PaymentTransfer PaymentMethod = "transferencia"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentWebpay || m == PaymentTransfer
}

type DeliveryMode string

const (
	DeliveryShip   DeliveryMode = "ship"
	DeliveryPickup DeliveryMode = "pickup"
)

func (m DeliveryMode) Valid() bool {
	return m == DeliveryShip || m == DeliveryPickup
}

type Order struct {
	ID                   int64         `db:"id" json:"id"`
	OrderNumber          string        `db:"order_number" json:"order_number"`
	UserID               int64         `db:"user_id" json:"user_id"`
	Subtotal             float64       `db:"subtotal" json:"subtotal"`
	ShippingCost         float64       `db:"shipping_cost" json:"shipping_cost"`
	Discount             float64       `db:"discount" json:"discount"`
	Tax                  float64       `db:"tax" json:"tax"`
	Total                float64       `db:"total" json:"total"`
	State                OrderState    `db:"state" json:"state"`
	PaymentMethod        PaymentMethod `db:"payment_method" json:"payment_method"`
	PaymentReference     *string       `db:"payment_reference" json:"payment_reference,omitempty"`
	DeliveryMode         DeliveryMode  `db:"delivery_mode" json:"delivery_mode"`
	PickupLocationID     *int64        `db:"pickup_location_id" json:"pickup_location_id,omitempty"`
	ReceiverName         *string       `db:"receiver_name" json:"receiver_name,omitempty"`
	DeliveryAddress      *string       `db:"delivery_address" json:"delivery_address,omitempty"`
	DeliveryCommune      *string       `db:"delivery_commune" json:"delivery_commune,omitempty"`
	DeliveryCity         *string       `db:"delivery_city" json:"delivery_city,omitempty"`
	DeliveryRegion       *string       `db:"delivery_region" json:"delivery_region,omitempty"`
	ContactPhone         *string       `db:"contact_phone" json:"contact_phone,omitempty"`
	DeliveryInstructions *string       `db:"delivery_instructions" json:"delivery_instructions,omitempty"`
	CreatedAt            time.Time     `db:"created_at" json:"created_at"`
	PaidAt               *time.Time    `db:"paid_at" json:"paid_at,omitempty"`
	PreparingAt          *time.Time    `db:"preparing_at" json:"preparing_at,omitempty"`
	ShippedAt            *time.Time    `db:"shipped_at" json:"shipped_at,omitempty"`
	DeliveredAt          *time.Time    `db:"delivered_at" json:"delivered_at,omitempty"`

	Items   []OrderItem          `db:"-" json:"items"`
	History []StatusHistoryEntry `db:"-" json:"history,omitempty"`
}

// ComputedTotal is the authoritative total; the stored column is derived
// from it, never the other way around.
func (o *Order) ComputedTotal() float64 {
	return o.Subtotal + o.ShippingCost - o.Discount + o.Tax
}

type OrderItem struct {
	ID          int64   `db:"id" json:"id"`
	OrderID     int64   `db:"order_id" json:"order_id"`
	ProductID   int64   `db:"product_id" json:"product_id"`
	ProductName string  `db:"product_name" json:"product_name"`
	Quantity    int64   `db:"quantity" json:"quantity"`
	UnitPrice   float64 `db:"unit_price" json:"unit_price"`
	Subtotal    float64 `db:"subtotal" json:"subtotal"`
}

// StatusHistoryEntry rows are append-only; PreviousState is nil only for
// the entry written at order creation.
type StatusHistoryEntry struct {
	ID            int64       `db:"id" json:"id"`
	OrderID       int64       `db:"order_id" json:"order_id"`
	PreviousState *OrderState `db:"previous_state" json:"previous_state"`
	NewState      OrderState  `db:"new_state" json:"new_state"`
	Comment       string      `db:"comment" json:"comment"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"`
}
