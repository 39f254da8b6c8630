package repositories

import (
	"fmt"
	"sync"
	"time"
	"vapestore/internal/models"

	"github.com/google/uuid"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
// The conditional transitions hold the write lock across check and mutation,
// mirroring the single-statement conditional updates of the GORM
// implementation.
type MockOrderRepository struct {
	orders map[string]models.Order
	mu     sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]models.Order),
	}
}

// GetAll returns all orders.
func (r *MockOrderRepository) GetAll() ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orderList := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		orderList = append(orderList, order)
	}
	return orderList, nil
}

// GetByOwner returns the orders belonging to one owner.
func (r *MockOrderRepository) GetByOwner(owner string) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var orderList []models.Order
	for _, order := range r.orders {
		if order.OwnerID == owner {
			orderList = append(orderList, order)
		}
	}
	return orderList, nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
	}
	return &order, nil
}

// GetBySessionRef returns the order correlated to an external payment session.
func (r *MockOrderRepository) GetBySessionRef(sessionRef string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, order := range r.orders {
		if order.PaymentSessionRef == sessionRef {
			return &order, nil
		}
	}
	return nil, fmt.Errorf("order for session %s: %w", sessionRef, ErrNotFound)
}

// Create adds a new order.
func (r *MockOrderRepository) Create(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()
	r.orders[order.ID] = *order
	return nil
}

// SetPaymentSession records the external session reference, write-once.
func (r *MockOrderRepository) SetPaymentSession(id string, sessionRef string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
	}
	if order.PaymentSessionRef != "" {
		return fmt.Errorf("order %s: %w", id, ErrSessionRefAlreadySet)
	}
	order.PaymentSessionRef = sessionRef
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return nil
}

// MarkPaymentCompleted applies the pending -> completed transition once.
func (r *MockOrderRepository) MarkPaymentCompleted(id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return false, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
	}
	if order.PaymentStatus != models.PaymentStatusPending {
		return false, nil
	}
	order.PaymentStatus = models.PaymentStatusCompleted
	order.Status = models.OrderStatusProcessing
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return true, nil
}

// MarkPaymentFailed applies the pending -> failed transition once.
func (r *MockOrderRepository) MarkPaymentFailed(id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return false, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
	}
	if order.PaymentStatus != models.PaymentStatusPending {
		return false, nil
	}
	order.PaymentStatus = models.PaymentStatusFailed
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return true, nil
}

// UpdateStatus updates the status of an order.
func (r *MockOrderRepository) UpdateStatus(id string, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order with ID %s for status update: %w", id, ErrNotFound)
	}
	order.Status = status
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return nil
}

// Delete removes an order by its ID.
func (r *MockOrderRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order with ID %s for deletion: %w", id, ErrNotFound)
	}
	delete(r.orders, id)
	return nil
}
