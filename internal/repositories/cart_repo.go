package repositories

import (
	"vapestore/internal/models"
)

// CartRepository defines the interface for cart line data access. Lines are
// keyed by the (owner, product, flavor, nicotine strength) tuple.
type CartRepository interface {
	GetByOwner(owner string) ([]models.CartItem, error)
	GetLine(owner, productID, flavor string, strength int) (*models.CartItem, error)
	Save(item *models.CartItem) error
	Delete(id string) error
	Clear(owner string) error
}
