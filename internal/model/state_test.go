package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		name string
		from OrderState
		to   OrderState
		want bool
	}{
		{"pending to paid", StatePending, StatePaid, true},
		{"paid to preparing", StatePaid, StatePreparing, true},
		{"preparing to shipped", StatePreparing, StateShipped, true},
		{"shipped to delivered", StateShipped, StateDelivered, true},
		{"paid to shipped skips preparing", StatePaid, StateShipped, true},
		{"pending to delivered skips everything", StatePending, StateDelivered, true},
		{"cancel from pending", StatePending, StateCancelled, true},
		{"cancel from shipped", StateShipped, StateCancelled, true},
		{"no backward move", StatePaid, StatePending, false},
		{"no backward from delivered", StateDelivered, StateShipped, false},
		{"delivered is terminal", StateDelivered, StateCancelled, false},
		{"cancelled is terminal", StateCancelled, StatePaid, false},
		{"same state is not a transition", StatePaid, StatePaid, false},
		{"unknown target", StatePending, OrderState("archived"), false},
		{"unknown source", OrderState("archived"), StatePaid, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanTransition(tc.from, tc.to))
		})
	}
}

func TestOrderStateValid(t *testing.T) {
	for _, s := range []OrderState{StatePending, StatePaid, StatePreparing, StateShipped, StateDelivered, StateCancelled} {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, OrderState("refunded").Valid())
	assert.False(t, OrderState("").Valid())
}

func TestComputedTotal(t *testing.T) {
	o := &Order{Subtotal: 1000, ShippingCost: 50, Discount: 100, Tax: 190}
	assert.InDelta(t, 1140.0, o.ComputedTotal(), 1e-9)
}
