package model

type OrderState string

const (
	StatePending   OrderState = "pending"
	StatePaid      OrderState = "paid"
	StatePreparing OrderState = "preparing"
	StateShipped   OrderState = "shipped"
	StateDelivered OrderState = "delivered"
	StateCancelled OrderState = "cancelled"
)

// stateRank orders the forward lifecycle. Cancelled sits outside the
// sequence and is handled separately.
var stateRank = map[OrderState]int{
	StatePending:   0,
	StatePaid:      1,
	StatePreparing: 2,
	StateShipped:   3,
	StateDelivered: 4,
}

func (s OrderState) Valid() bool {
	if s == StateCancelled {
		return true
	}
	_, ok := stateRank[s]
	return ok
}

func (s OrderState) Terminal() bool {
	return s == StateDelivered || s == StateCancelled
}

// CanTransition reports whether from -> to is a legal state change.
// Forward moves may skip intermediate states (an order can go straight
// from paid to shipped); backward moves are never legal. Cancellation is
// allowed from any non-terminal state.
func CanTransition(from, to OrderState) bool {
	if !from.Valid() || !to.Valid() || from == to {
		return false
	}
	if from.Terminal() {
		return false
	}
	if to == StateCancelled {
		return true
	}
	return stateRank[to] > stateRank[from]
}
