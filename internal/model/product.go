package model

import (
	"time"

	"github.com/google/uuid"
)

// Product is the sole inventory entity. ID and CreatedAt are assigned at
// creation and never change afterwards.
type Product struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Sku       string    `json:"sku"`
	Quantity  int       `json:"quantity"`
	Price     float64   `json:"price"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
