package repositories

import (
	"vapestore/internal/models"
)

// OrderRepository defines the interface for order data access.
//
// MarkPaymentCompleted and MarkPaymentFailed are conditional transitions out
// of the pending payment state. They report whether the transition was
// applied, so duplicate confirmations become observable no-ops instead of
// repeated mutations.
type OrderRepository interface {
	GetAll() ([]models.Order, error)
	GetByOwner(owner string) ([]models.Order, error)
	GetByID(id string) (*models.Order, error)
	GetBySessionRef(sessionRef string) (*models.Order, error)
	Create(order *models.Order) error
	SetPaymentSession(id string, sessionRef string) error
	MarkPaymentCompleted(id string) (bool, error)
	MarkPaymentFailed(id string) (bool, error)
	UpdateStatus(id string, status string) error
	Delete(id string) error
}
