package services

import (
	"fmt"

	"vapestore/internal/models"
	"vapestore/internal/repositories"
)

// OrderService handles the administrative order surface: querying orders and
// moving them through fulfillment statuses. Order creation belongs to the
// CheckoutService; payment transitions belong to the PaymentService.
type OrderService struct {
	orderRepo repositories.OrderRepository
}

// NewOrderService creates a new OrderService.
func NewOrderService(orderRepo repositories.OrderRepository) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
	}
}

// GetAllOrders retrieves all orders.
func (s *OrderService) GetAllOrders() ([]models.Order, error) {
	return s.orderRepo.GetAll()
}

// GetOrdersByOwner retrieves the orders belonging to one owner.
func (s *OrderService) GetOrdersByOwner(owner string) ([]models.Order, error) {
	return s.orderRepo.GetByOwner(owner)
}

// GetOrderByID retrieves a single order by its ID.
func (s *OrderService) GetOrderByID(id string) (*models.Order, error) {
	return s.orderRepo.GetByID(id)
}

// UpdateOrderStatus moves an order to a new fulfillment status.
func (s *OrderService) UpdateOrderStatus(id string, status string) error {
	if !models.ValidOrderStatus(status) {
		return fmt.Errorf("%w: invalid order status: %s", ErrValidation, status)
	}

	if err := s.orderRepo.UpdateStatus(id, status); err != nil {
		return fmt.Errorf("failed to update order status for order %s: %w", id, err)
	}
	return nil
}

// DeleteOrder removes an order as administrative cleanup. Only a pending
// order whose payment never completed may be deleted; a paid order is part
// of the permanent record.
func (s *OrderService) DeleteOrder(id string) error {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return fmt.Errorf("%w: order %s", ErrNotFound, id)
	}
	if order.PaymentStatus == models.PaymentStatusCompleted {
		return fmt.Errorf("%w: order %s has a completed payment and cannot be deleted", ErrConflict, id)
	}
	if order.Status != models.OrderStatusPending {
		return fmt.Errorf("%w: only pending orders can be deleted", ErrConflict)
	}
	return s.orderRepo.Delete(id)
}
