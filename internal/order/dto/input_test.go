package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mnavarro-dev/pedidos-service/internal/apperr"
)

func validDraft() *CreateOrderInput {
	return &CreateOrderInput{
		UserID:          7,
		ShippingCost:    50,
		Tax:             190,
		PaymentMethod:   "webpay",
		DeliveryMode:    "ship",
		DeliveryAddress: "Av. Providencia 1234",
		DeliveryCommune: "Providencia",
		DeliveryCity:    "Santiago",
		DeliveryRegion:  "Metropolitana",
		Items: []LineItemInput{
			{ProductID: 1, ProductName: "Hammer", Quantity: 2, UnitPrice: 500},
		},
	}
}

func TestValidateOK(t *testing.T) {
	assert.NoError(t, validDraft().Validate())
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*CreateOrderInput)
	}{
		{"missing user", func(in *CreateOrderInput) { in.UserID = 0 }},
		{"negative discount", func(in *CreateOrderInput) { in.Discount = -1 }},
		{"unknown payment method", func(in *CreateOrderInput) { in.PaymentMethod = "bitcoin" }},
		{"unknown delivery mode", func(in *CreateOrderInput) { in.DeliveryMode = "drone" }},
		{"ship without address", func(in *CreateOrderInput) { in.DeliveryAddress = "" }},
		{"ship without commune", func(in *CreateOrderInput) { in.DeliveryCommune = "" }},
		{"ship without city", func(in *CreateOrderInput) { in.DeliveryCity = "" }},
		{"ship without region", func(in *CreateOrderInput) { in.DeliveryRegion = "" }},
		{"no items", func(in *CreateOrderInput) { in.Items = nil }},
		{"zero quantity item", func(in *CreateOrderInput) { in.Items[0].Quantity = 0 }},
		{"negative unit price", func(in *CreateOrderInput) { in.Items[0].UnitPrice = -10 }},
		{"item without product", func(in *CreateOrderInput) { in.Items[0].ProductID = 0 }},
		{"item without name", func(in *CreateOrderInput) { in.Items[0].ProductName = "" }},
		{"pickup without location", func(in *CreateOrderInput) {
			in.DeliveryMode = "pickup"
			in.PickupLocationID = 0
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validDraft()
			tc.mutate(in)
			err := in.Validate()
			assert.Error(t, err)
			assert.True(t, apperr.IsKind(err, apperr.KindValidation))
		})
	}
}

func TestValidatePickup(t *testing.T) {
	in := validDraft()
	in.DeliveryMode = "pickup"
	in.PickupLocationID = 3
	in.DeliveryAddress = ""
	in.DeliveryCommune = ""
	in.DeliveryCity = ""
	in.DeliveryRegion = ""

	assert.NoError(t, in.Validate())
}

func TestSubtotal(t *testing.T) {
	in := validDraft()
	in.Items = append(in.Items, LineItemInput{ProductID: 2, ProductName: "Nails", Quantity: 3, UnitPrice: 120})

	assert.InDelta(t, 2*500+3*120.0, in.Subtotal(), 1e-9)
}
