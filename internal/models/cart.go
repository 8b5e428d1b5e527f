package models

import (
	"time"

	"github.com/google/uuid"
)

// CartOwner identifies who a cart belongs to. Exactly one of UserID and
// SessionID is set; the repository refuses to write a cart that breaks this.
type CartOwner struct {
	UserID    *uuid.UUID
	SessionID *string
}

func UserOwner(userID uuid.UUID) CartOwner {
	return CartOwner{UserID: &userID}
}

func SessionOwner(sessionID string) CartOwner {
	return CartOwner{SessionID: &sessionID}
}

func (o CartOwner) Valid() bool {
	return (o.UserID != nil) != (o.SessionID != nil)
}

type CartItem struct {
	ID            uuid.UUID `json:"id"`
	CartID        uuid.UUID `json:"cart_id"`
	ProductID     string    `json:"product_id"`
	Quantity      int       `json:"quantity"`
	PriceSnapshot *string   `json:"price_snapshot,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type Cart struct {
	ID        uuid.UUID  `json:"id"`
	UserID    *uuid.UUID `json:"user_id,omitempty"`
	SessionID *string    `json:"session_id,omitempty"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TotalItems is the summed quantity across all lines.
func (c *Cart) TotalItems() int {

	var total int

	for _, item := range c.Items {
		total += item.Quantity
	}

	return total
}

type AddItemRequest struct {
	ProductID     string `json:"product_id" validate:"required,max=100"`
	Quantity      int    `json:"quantity" validate:"required,min=1"`
	PriceSnapshot string `json:"price_snapshot,omitempty" validate:"omitempty,max=20"`
}

// Quantity of zero or below deletes the line, so no lower bound here; the
// service enforces the ceiling on positive quantities.
type UpdateItemRequest struct {
	Quantity int `json:"quantity"`
}

type CartResponse struct {
	Cart       *Cart `json:"cart"`
	TotalItems int   `json:"total_items"`
}
