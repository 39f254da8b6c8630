package services

import (
	"errors"
	"fmt"

	"vapestore/internal/models"
	"vapestore/internal/repositories"
)

// CartService handles business logic for per-owner carts. Cart state is
// read-only input to checkout; the checkout orchestrator never mutates it.
type CartService struct {
	cartRepo    repositories.CartRepository
	productRepo repositories.ProductRepository
}

// NewCartService creates a new CartService.
func NewCartService(cartRepo repositories.CartRepository, productRepo repositories.ProductRepository) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// AddItem validates the variant selection against the product's allowed sets
// and increments the matching cart line, creating it at quantity 1 if absent.
// It returns the owner's full cart.
func (s *CartService) AddItem(owner, productID, flavor string, strength int, selectedImage string) ([]models.CartItem, error) {
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, fmt.Errorf("%w: product %s not found", ErrNotFound, productID)
	}
	if !product.AllowsFlavor(flavor) {
		return nil, fmt.Errorf("%w: invalid flavor %q for %s", ErrConflict, flavor, product.Name)
	}
	if !product.AllowsStrength(strength) {
		return nil, fmt.Errorf("%w: invalid nicotine strength %d for %s", ErrConflict, strength, product.Name)
	}

	line, err := s.cartRepo.GetLine(owner, productID, flavor, strength)
	switch {
	case err == nil:
		line.Quantity++
		if saveErr := s.cartRepo.Save(line); saveErr != nil {
			return nil, saveErr
		}
	case errors.Is(err, repositories.ErrNotFound):
		line = &models.CartItem{
			OwnerID:          owner,
			ProductID:        productID,
			Quantity:         1,
			SelectedImage:    product.ImageOrDefault(selectedImage),
			Flavor:           flavor,
			NicotineStrength: strength,
		}
		if saveErr := s.cartRepo.Save(line); saveErr != nil {
			return nil, saveErr
		}
	default:
		return nil, err
	}

	return s.cartRepo.GetByOwner(owner)
}

// RemoveItem decrements the matching cart line, deleting it when the
// quantity reaches zero. A missing line is an error, not a silent no-op.
// It returns the owner's full cart.
func (s *CartService) RemoveItem(owner, productID, flavor string, strength int) ([]models.CartItem, error) {
	line, err := s.cartRepo.GetLine(owner, productID, flavor, strength)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: item not found in cart", ErrNotFound)
		}
		return nil, err
	}

	if line.Quantity > 1 {
		line.Quantity--
		if err := s.cartRepo.Save(line); err != nil {
			return nil, err
		}
	} else {
		if err := s.cartRepo.Delete(line.ID); err != nil {
			return nil, err
		}
	}

	return s.cartRepo.GetByOwner(owner)
}

// GetCart returns all cart lines for one owner.
func (s *CartService) GetCart(owner string) ([]models.CartItem, error) {
	return s.cartRepo.GetByOwner(owner)
}

// ClearCart empties the owner's cart.
func (s *CartService) ClearCart(owner string) error {
	return s.cartRepo.Clear(owner)
}
