package repositories

import (
	"vapestore/internal/models"
)

// ProductRepository defines the interface for product data access.
//
// DecrementStock is the only cross-request shared mutation in the system: it
// must be conditional (never drive stock negative) and atomic, so that two
// concurrent checkouts cannot both claim the last unit.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	GetByCategory(category string) ([]models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error
	DecrementStock(id string, quantity int) error
	IncrementStock(id string, quantity int) error
}
