package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Order status values. Orders move forward only; the payment reconciler owns
// the pending -> processing transition, administrators own the rest.
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// Payment status values. Transitions only pending -> completed or
// pending -> failed, never reversed.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// GuestOwnerPrefix marks owner identifiers generated for unauthenticated checkouts.
const GuestOwnerPrefix = "guest_"

// NewGuestOwnerID generates an owner identifier for a guest checkout.
func NewGuestOwnerID() string {
	return GuestOwnerPrefix + uuid.New().String()
}

// IsGuestOwner reports whether the owner identifier belongs to a guest
// rather than an authenticated account.
func IsGuestOwner(owner string) bool {
	return strings.HasPrefix(owner, GuestOwnerPrefix)
}

// OrderItem is a line item snapshotted at order-creation time. UnitPrice is
// the catalog price captured during checkout validation and is never
// recomputed from the live catalog afterwards.
type OrderItem struct {
	ProductID        string  `json:"product_id"`
	ProductName      string  `json:"product_name"`
	Quantity         int     `json:"quantity"`
	SelectedImage    string  `json:"selected_image,omitempty"`
	Flavor           string  `json:"flavor"`
	NicotineStrength int     `json:"nicotine_strength"`
	UnitPrice        float64 `json:"unit_price"`
}

// Order is the system of record for a single checkout attempt and its
// payment lifecycle.
type Order struct {
	ID                string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OwnerID           string      `json:"owner_id" gorm:"index;type:varchar(64)"`
	Items             []OrderItem `json:"items" gorm:"serializer:json"`
	TotalAmount       float64     `json:"total_amount"`
	ShippingAddress   string      `json:"shipping_address"`
	ContactEmail      string      `json:"contact_email"`
	ContactPhone      string      `json:"contact_phone"`
	Status            string      `json:"status"`
	PaymentStatus     string      `json:"payment_status"`
	PaymentSessionRef string      `json:"payment_session_ref,omitempty" gorm:"index;type:varchar(128)"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`
}

// ValidOrderStatus reports whether s is one of the known order statuses.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}
