package dto

import (
	"github.com/go-playground/validator/v10"

	"github.com/mnavarro-dev/pedidos-service/internal/apperr"
	"github.com/mnavarro-dev/pedidos-service/internal/model"
)

var validate = validator.New()

type LineItemInput struct {
	ProductID   int64   `json:"product_id" validate:"required,gt=0"`
	ProductName string  `json:"product_name" validate:"required"`
	Quantity    int64   `json:"quantity" validate:"required,gt=0"`
	UnitPrice   float64 `json:"unit_price" validate:"gte=0"`
}

// CreateOrderInput is the strict shape of an order draft. The transport
// passes loosely-typed documents; everything is re-checked here before
// any mutation happens.
type CreateOrderInput struct {
	UserID           int64   `json:"user_id" validate:"required,gt=0"`
	ShippingCost     float64 `json:"shipping_cost" validate:"gte=0"`
	Discount         float64 `json:"discount" validate:"gte=0"`
	Tax              float64 `json:"tax" validate:"gte=0"`
	PaymentMethod    string  `json:"payment_method" validate:"required"`
	PaymentReference string  `json:"payment_reference"`
	DeliveryMode     string  `json:"delivery_mode" validate:"required"`
	PickupLocationID int64   `json:"pickup_location_id"`

	ReceiverName         string `json:"receiver_name"`
	DeliveryAddress      string `json:"delivery_address"`
	DeliveryCommune      string `json:"delivery_commune"`
	DeliveryCity         string `json:"delivery_city"`
	DeliveryRegion       string `json:"delivery_region"`
	ContactPhone         string `json:"contact_phone"`
	DeliveryInstructions string `json:"delivery_instructions"`

	Items []LineItemInput `json:"items" validate:"required,min=1,dive"`
}

// Validate enforces every creation precondition before any mutation:
// field presence and shape, enum membership, and the delivery-mode
// conditional requirements.
func (in *CreateOrderInput) Validate() error {
	const op = "order.Create"

	if err := validate.Struct(in); err != nil {
		return apperr.Validation(op, "invalid order draft: %v", err)
	}

	if !model.PaymentMethod(in.PaymentMethod).Valid() {
		return apperr.Validation(op, "invalid payment method %q", in.PaymentMethod)
	}

	switch model.DeliveryMode(in.DeliveryMode) {
	case model.DeliveryShip:
		if in.DeliveryAddress == "" || in.DeliveryCommune == "" || in.DeliveryCity == "" || in.DeliveryRegion == "" {
			return apperr.Validation(op, "shipping orders require address, commune, city and region")
		}
	case model.DeliveryPickup:
		if in.PickupLocationID <= 0 {
			return apperr.Validation(op, "pickup orders require a pickup location id")
		}
	default:
		return apperr.Validation(op, "invalid delivery mode %q", in.DeliveryMode)
	}

	return nil
}

// Subtotal recomputes the draft's subtotal from its items. Caller-supplied
// line subtotals are never trusted.
func (in *CreateOrderInput) Subtotal() float64 {
	var subtotal float64
	for _, item := range in.Items {
		subtotal += float64(item.Quantity) * item.UnitPrice
	}
	return subtotal
}
