package model

import "time"

type MovementKind string

const (
	MovementIn  MovementKind = "IN"
	MovementOut MovementKind = "OUT"
)

// StockRecord is the quantity of one product held at one location.
// Quantity never goes below zero; only the allocator mutates it.
type StockRecord struct {
	ID         int64 `db:"id" json:"id"`
	ProductID  int64 `db:"product_id" json:"product_id"`
	LocationID int64 `db:"location_id" json:"location_id"`
	Quantity   int64 `db:"quantity" json:"quantity"`
}

// StockMovement is an immutable audit row for one stock change.
type StockMovement struct {
	ID         int64        `db:"id" json:"id"`
	Kind       MovementKind `db:"kind" json:"kind"`
	ProductID  int64        `db:"product_id" json:"product_id"`
	LocationID int64        `db:"location_id" json:"location_id"`
	Quantity   int64        `db:"quantity" json:"quantity"`
	Reference  string       `db:"reference" json:"reference"`
	Note       string       `db:"note" json:"note"`
	CreatedAt  time.Time    `db:"created_at" json:"created_at"`
}

// Shortage reports the missing quantity for one product after a stock
// verification: demanded minus available.
type Shortage struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}
