package repositories

import (
	"fmt"
	"sync"
	"vapestore/internal/models"

	"github.com/google/uuid"
)

// MockCartRepository is an in-memory implementation of CartRepository.
type MockCartRepository struct {
	items map[string]models.CartItem
	mu    sync.RWMutex
}

// NewMockCartRepository creates a new instance of MockCartRepository.
func NewMockCartRepository() *MockCartRepository {
	return &MockCartRepository{
		items: make(map[string]models.CartItem),
	}
}

// GetByOwner returns all cart lines for one owner.
func (r *MockCartRepository) GetByOwner(owner string) ([]models.CartItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var itemList []models.CartItem
	for _, item := range r.items {
		if item.OwnerID == owner {
			itemList = append(itemList, item)
		}
	}
	return itemList, nil
}

// GetLine returns one cart line by its identifying tuple.
func (r *MockCartRepository) GetLine(owner, productID, flavor string, strength int) (*models.CartItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if item.OwnerID == owner && item.ProductID == productID &&
			item.Flavor == flavor && item.NicotineStrength == strength {
			return &item, nil
		}
	}
	return nil, fmt.Errorf("cart line for product %s: %w", productID, ErrNotFound)
}

// Save creates or updates a cart line.
func (r *MockCartRepository) Save(item *models.CartItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	r.items[item.ID] = *item
	return nil
}

// Delete removes a cart line by its ID.
func (r *MockCartRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.items[id]
	if !ok {
		return fmt.Errorf("cart line with ID %s for deletion: %w", id, ErrNotFound)
	}
	delete(r.items, id)
	return nil
}

// Clear removes all cart lines for one owner.
func (r *MockCartRepository) Clear(owner string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, item := range r.items {
		if item.OwnerID == owner {
			delete(r.items, id)
		}
	}
	return nil
}
