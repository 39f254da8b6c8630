package repositories

import (
	"fmt"
	"vapestore/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// GetAll retrieves all orders from the database.
func (r *GORMOrderRepository) GetAll() ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get all orders: %w", err)
	}
	return orders, nil
}

// GetByOwner retrieves the orders belonging to one owner.
func (r *GORMOrderRepository) GetByOwner(owner string) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Order("created_at DESC").Find(&orders, "owner_id = ?", owner).Error; err != nil {
		return nil, fmt.Errorf("failed to get orders for owner %s: %w", owner, err)
	}
	return orders, nil
}

// GetByID retrieves a single order by its ID from the database.
func (r *GORMOrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.First(&order, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// GetBySessionRef retrieves the order correlated to an external payment session.
func (r *GORMOrderRepository) GetBySessionRef(sessionRef string) (*models.Order, error) {
	var order models.Order
	if err := r.db.First(&order, "payment_session_ref = ?", sessionRef).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("order for session %s: %w", sessionRef, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by session %s: %w", sessionRef, err)
	}
	return &order, nil
}

// Create creates a new order in the database.
func (r *GORMOrderRepository) Create(order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if err := r.db.Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// SetPaymentSession records the external session reference on the order.
// The reference is write-once: a second write for the same order fails.
func (r *GORMOrderRepository) SetPaymentSession(id string, sessionRef string) error {
	res := r.db.Model(&models.Order{}).
		Where("id = ? AND (payment_session_ref = '' OR payment_session_ref IS NULL)", id).
		Update("payment_session_ref", sessionRef)
	if res.Error != nil {
		return fmt.Errorf("failed to set payment session for order %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.Model(&models.Order{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to set payment session for order %s: %w", id, err)
		}
		if count == 0 {
			return fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
		}
		return fmt.Errorf("order %s: %w", id, ErrSessionRefAlreadySet)
	}
	return nil
}

// MarkPaymentCompleted transitions the order to payment completed and status
// processing, but only out of the pending payment state. Returns whether the
// transition was applied.
func (r *GORMOrderRepository) MarkPaymentCompleted(id string) (bool, error) {
	res := r.db.Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", id, models.PaymentStatusPending).
		Updates(map[string]interface{}{
			"payment_status": models.PaymentStatusCompleted,
			"status":         models.OrderStatusProcessing,
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to mark order %s payment completed: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// MarkPaymentFailed transitions the order's payment to failed, only out of
// the pending payment state. Returns whether the transition was applied.
func (r *GORMOrderRepository) MarkPaymentFailed(id string) (bool, error) {
	res := r.db.Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", id, models.PaymentStatusPending).
		Update("payment_status", models.PaymentStatusFailed)
	if res.Error != nil {
		return false, fmt.Errorf("failed to mark order %s payment failed: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// UpdateStatus updates the order status.
func (r *GORMOrderRepository) UpdateStatus(id string, status string) error {
	res := r.db.Model(&models.Order{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update status for order %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order with ID %s for status update: %w", id, ErrNotFound)
	}
	return nil
}

// Delete removes an order. Callers are responsible for only deleting unpaid
// pending orders; confirmed orders are never deleted.
func (r *GORMOrderRepository) Delete(id string) error {
	res := r.db.Delete(&models.Order{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete order %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order with ID %s for deletion: %w", id, ErrNotFound)
	}
	return nil
}
