package dto

import "github.com/mnavarro-dev/pedidos-service/internal/model"

// Demand is one product/quantity pair to check or allocate.
type Demand struct {
	ProductID int64 `json:"product_id" binding:"required,gt=0"`
	Quantity  int64 `json:"quantity" binding:"required,gt=0"`
}

type Verification struct {
	Sufficient bool             `json:"sufficient"`
	Shortages  []model.Shortage `json:"shortages,omitempty"`
}
