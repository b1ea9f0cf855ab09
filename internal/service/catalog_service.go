package service

import (
	"context"

	"github.com/apsx/clinic-api/internal/models"
	"github.com/apsx/clinic-api/internal/repository"
)

// CatalogService serves the machine-to-machine listings consumed by the
// public storefront and the telemedicine frontend.
type CatalogService struct {
	shopRepo     repository.ShopRepository
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(
	shopRepo repository.ShopRepository,
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
) *CatalogService {
	return &CatalogService{
		shopRepo:     shopRepo,
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
	}
}

// GetShop retrieves an active shop's public details.
func (s *CatalogService) GetShop(ctx context.Context, id int64) (*models.Shop, error) {
	return s.shopRepo.GetByID(ctx, id)
}

// ListCategories retrieves the active categories of a shop.
func (s *CatalogService) ListCategories(ctx context.Context, shopID int64) ([]*models.Category, error) {
	return s.categoryRepo.ListActive(ctx, shopID)
}

// ListProducts retrieves the active products of a shop.
func (s *CatalogService) ListProducts(ctx context.Context, shopID int64, limit int) ([]*models.Product, error) {
	return s.productRepo.ListActive(ctx, shopID, limit)
}
