package services_test

import (
	"fmt"
	"testing"

	"vapestore/internal/models"
	"vapestore/internal/repositories"
	"vapestore/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetAll() ([]models.Product, error) {
	args := m.Called()
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(id string) (*models.Product, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) GetByCategory(category string) ([]models.Product, error) {
	args := m.Called(category)
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) Create(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockProductRepository) DecrementStock(id string, quantity int) error {
	args := m.Called(id, quantity)
	return args.Error(0)
}

func (m *MockProductRepository) IncrementStock(id string, quantity int) error {
	args := m.Called(id, quantity)
	return args.Error(0)
}

func validProduct() *models.Product {
	return &models.Product{
		Name:              "Mango Blast Pod",
		Description:       "Tropical mango pod system",
		BasePrice:         15.0,
		DiscountedPrice:   12.5,
		Stock:             100,
		Images:            []string{"mango-1.jpg"},
		Category:          "pods",
		BrandName:         "CloudWorks",
		ProductCode:       "CW-MANGO-001",
		Flavors:           []string{"mango", "mango ice"},
		NicotineStrengths: []int{3, 6},
	}
}

func TestProductService_GetAllProducts(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	expectedProducts := []models.Product{
		{ID: "1", Name: "Product A", BasePrice: 10.0, DiscountedPrice: 10.0, Stock: 100},
		{ID: "2", Name: "Product B", BasePrice: 20.0, DiscountedPrice: 18.0, Stock: 50},
	}

	mockRepo.On("GetAll").Return(expectedProducts, nil).Once()

	products, err := service.GetAllProducts()

	assert.NoError(t, err)
	assert.Len(t, products, 2)
	assert.Equal(t, expectedProducts, products)
	mockRepo.AssertExpectations(t)
}

func TestProductService_GetProductByID(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	expectedProduct := validProduct()
	expectedProduct.ID = "1"

	// Test successful retrieval
	mockRepo.On("GetByID", "1").Return(expectedProduct, nil).Once()
	product, err := service.GetProductByID("1")
	assert.NoError(t, err)
	assert.Equal(t, expectedProduct, product)
	mockRepo.AssertExpectations(t)

	// Test product not found
	mockRepo.On("GetByID", "99").Return(nil, fmt.Errorf("product with ID 99 not found: %w", repositories.ErrNotFound)).Once()
	product, err = service.GetProductByID("99")
	assert.Error(t, err)
	assert.Nil(t, product)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	mockRepo.AssertExpectations(t)
}

func TestProductService_GetProductsByCategory(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	expected := []models.Product{*validProduct()}
	mockRepo.On("GetByCategory", "pods").Return(expected, nil).Once()

	products, err := service.GetProductsByCategory("pods")
	assert.NoError(t, err)
	assert.Equal(t, expected, products)
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	newProduct := validProduct()

	// Test successful creation
	mockRepo.On("Create", newProduct).Return(nil).Once()
	err := service.CreateProduct(newProduct)
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)

	// Test creation failure (e.g., database error)
	mockRepo.On("Create", newProduct).Return(fmt.Errorf("database error")).Once()
	err = service.CreateProduct(newProduct)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "database error")
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct_Validation(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	// Missing required fields never reaches the repository.
	err := service.CreateProduct(&models.Product{Name: "x"})
	assert.ErrorIs(t, err, services.ErrValidation)

	// Discounted price above base price is rejected.
	bad := validProduct()
	bad.DiscountedPrice = bad.BasePrice + 1
	err = service.CreateProduct(bad)
	assert.ErrorIs(t, err, services.ErrValidation)
	assert.Contains(t, err.Error(), "discounted price")

	mockRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestProductService_UpdateProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	updatedProduct := validProduct()
	updatedProduct.ID = "c2c5a8e5-6c2f-4f4a-9a3e-2f6a1d9a7b11"
	updatedProduct.Stock = 95

	// Test successful update
	mockRepo.On("Update", updatedProduct).Return(nil).Once()
	err := service.UpdateProduct(updatedProduct)
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)

	// Test update failure (e.g., product not found in repo)
	missing := validProduct()
	missing.ID = "f2b1a5d0-9f6e-4a28-8c31-0d1e2f3a4b5c"
	mockRepo.On("Update", missing).Return(fmt.Errorf("product with ID %s not found for update: %w", missing.ID, repositories.ErrNotFound)).Once()
	err = service.UpdateProduct(missing)
	assert.Error(t, err)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	mockRepo.AssertExpectations(t)
}

func TestProductService_DeleteProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo)

	// Test successful deletion
	mockRepo.On("Delete", "1").Return(nil).Once()
	err := service.DeleteProduct("1")
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)

	// Test deletion failure (e.g., product not found)
	mockRepo.On("Delete", "99").Return(fmt.Errorf("product with ID 99 not found for deletion: %w", repositories.ErrNotFound)).Once()
	err = service.DeleteProduct("99")
	assert.Error(t, err)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	mockRepo.AssertExpectations(t)
}
