package repositories

import (
	"fmt"
	"vapestore/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{
		db: db,
	}
}

// GetByOwner retrieves all cart lines for one owner.
func (r *GORMCartRepository) GetByOwner(owner string) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.db.Order("created_at").Find(&items, "owner_id = ?", owner).Error; err != nil {
		return nil, fmt.Errorf("failed to get cart for owner %s: %w", owner, err)
	}
	return items, nil
}

// GetLine retrieves one cart line by its identifying tuple.
func (r *GORMCartRepository) GetLine(owner, productID, flavor string, strength int) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.First(&item,
		"owner_id = ? AND product_id = ? AND flavor = ? AND nicotine_strength = ?",
		owner, productID, flavor, strength).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("cart line for product %s: %w", productID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get cart line for product %s: %w", productID, err)
	}
	return &item, nil
}

// Save creates or updates a cart line.
func (r *GORMCartRepository) Save(item *models.CartItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if err := r.db.Save(item).Error; err != nil {
		return fmt.Errorf("failed to save cart line: %w", err)
	}
	return nil
}

// Delete removes a cart line by its ID.
func (r *GORMCartRepository) Delete(id string) error {
	res := r.db.Delete(&models.CartItem{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete cart line %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart line with ID %s for deletion: %w", id, ErrNotFound)
	}
	return nil
}

// Clear removes all cart lines for one owner. Clearing an already empty cart
// is not an error.
func (r *GORMCartRepository) Clear(owner string) error {
	if err := r.db.Delete(&models.CartItem{}, "owner_id = ?", owner).Error; err != nil {
		return fmt.Errorf("failed to clear cart for owner %s: %w", owner, err)
	}
	return nil
}
