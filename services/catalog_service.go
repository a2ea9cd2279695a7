package services

import (
	"context"
	"slices"
	"strings"

	"github.com/prasadthilina9090-coder/cybergear-hub-a5dec790/models"
	"go.uber.org/zap"
)

// FilterState is the storefront's product filter panel.
type FilterState struct {
	Search         string   `form:"search" json:"search"`
	MinPrice       float64  `form:"min_price" json:"min_price"`
	MaxPrice       float64  `form:"max_price" json:"max_price"` // 0 means no upper bound
	Brands         []string `form:"brand" json:"brands"`
	RAMOptions     []string `form:"ram" json:"ram_options"`
	StorageOptions []string `form:"storage" json:"storage_options"`
	InStock        bool     `form:"in_stock" json:"in_stock"`
}

type CatalogService struct {
	products ProductLookup
	logger   *zap.Logger
}

func NewCatalogService(products ProductLookup, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{products: products, logger: logger}
}

// Get returns ErrProductNotFound for unknown or inactive products.
func (s *CatalogService) Get(ctx context.Context, id string) (*models.Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to load product", zap.String("product_id", id), zap.Error(err))
		return nil, &StoreError{Op: "get product", Err: err}
	}
	if p == nil || !p.IsActive {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (s *CatalogService) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	products, err := s.products.List(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list products", zap.Any("filter", filter), zap.Error(err))
		return nil, &StoreError{Op: "list products", Err: err}
	}
	return products, nil
}

// Search lists the catalog and applies the filter panel on top.
func (s *CatalogService) Search(ctx context.Context, filter models.ProductFilter, state FilterState) ([]models.Product, error) {
	products, err := s.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return FilterProducts(products, state), nil
}

// FilterProducts keeps the products matching every active filter. Brand, RAM
// and storage filters only exclude products that carry the attribute.
func FilterProducts(products []models.Product, f FilterState) []models.Product {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if search != "" && !matchesSearch(&p, search) {
			continue
		}

		price := p.EffectivePrice()
		if price < f.MinPrice || (f.MaxPrice > 0 && price > f.MaxPrice) {
			continue
		}

		if len(f.Brands) > 0 && p.Brand != "" && !slices.Contains(f.Brands, p.Brand) {
			continue
		}
		if !specMatches(p.Specs["ram"], f.RAMOptions) {
			continue
		}
		if !specMatches(p.Specs["storage"], f.StorageOptions) {
			continue
		}
		if f.InStock && p.StockQuantity == 0 {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matchesSearch(p *models.Product, search string) bool {
	return strings.Contains(strings.ToLower(p.Name), search) ||
		strings.Contains(strings.ToLower(p.Brand), search) ||
		strings.Contains(strings.ToLower(p.Description), search)
}

func specMatches(value string, options []string) bool {
	if len(options) == 0 || value == "" {
		return true
	}
	for _, o := range options {
		if strings.Contains(value, o) {
			return true
		}
	}
	return false
}
