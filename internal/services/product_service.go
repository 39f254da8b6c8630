package services

import (
	"fmt"

	"vapestore/internal/models"
	"vapestore/internal/repositories"

	"github.com/go-playground/validator/v10"
)

// ProductService handles business logic related to products.
type ProductService struct {
	repo     repositories.ProductRepository
	validate *validator.Validate
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository) *ProductService {
	return &ProductService{
		repo:     repo,
		validate: validator.New(),
	}
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts() ([]models.Product, error) {
	return s.repo.GetAll()
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(id string) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// GetProductsByCategory retrieves all products in the given category.
func (s *ProductService) GetProductsByCategory(category string) ([]models.Product, error) {
	return s.repo.GetByCategory(category)
}

// CreateProduct validates and creates a new product.
func (s *ProductService) CreateProduct(product *models.Product) error {
	if err := s.checkProduct(product); err != nil {
		return err
	}
	return s.repo.Create(product)
}

// UpdateProduct validates and updates an existing product.
func (s *ProductService) UpdateProduct(product *models.Product) error {
	if err := s.checkProduct(product); err != nil {
		return err
	}
	return s.repo.Update(product)
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(id string) error {
	return s.repo.Delete(id)
}

func (s *ProductService) checkProduct(product *models.Product) error {
	if err := s.validate.Struct(product); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if product.DiscountedPrice > product.BasePrice {
		return fmt.Errorf("%w: discounted price cannot be higher than base price", ErrValidation)
	}
	return nil
}
