package service

import (
	"context"
	"strings"
	"time"

	"github.com/bijouxelegance/boutique/internal/model"
	"github.com/bijouxelegance/boutique/internal/pkg/errs"
	"github.com/bijouxelegance/boutique/internal/repo"
)

// CatalogStore is the read-only catalog surface the chat core consumes.
type CatalogStore interface {
	FindFactsByIDs(ctx context.Context, ids []int64) ([]model.ProductFact, error)
	FindFeaturedFacts(ctx context.Context, limit int) ([]model.ProductFact, error)
	FindAllFacts(ctx context.Context) ([]model.ProductFact, error)
}

type CatalogService struct {
	products   *repo.ProductRepo
	categories *repo.CategoryRepo
	carts      *repo.CartRepo
}

func NewCatalogService(products *repo.ProductRepo, categories *repo.CategoryRepo, carts *repo.CartRepo) *CatalogService {
	return &CatalogService{products: products, categories: categories, carts: carts}
}

func (s *CatalogService) CreateProduct(ctx context.Context, p *model.Product) (int64, error) {
	if strings.TrimSpace(p.Name) == "" || p.Price <= 0 || p.CategoryID <= 0 {
		return 0, errs.ErrInvalid
	}
	if _, err := s.categories.GetByID(ctx, p.CategoryID); err != nil {
		if errs.IsNotFound(err) {
			return 0, errs.ErrInvalid
		}
		return 0, err
	}
	now := time.Now().UnixMilli()
	p.Ctime = now
	p.Mtime = now
	return s.products.Create(ctx, p)
}

func (s *CatalogService) UpdateProduct(ctx context.Context, p *model.Product) error {
	if p.ID <= 0 || strings.TrimSpace(p.Name) == "" || p.Price <= 0 || p.CategoryID <= 0 {
		return errs.ErrInvalid
	}
	if _, err := s.categories.GetByID(ctx, p.CategoryID); err != nil {
		if errs.IsNotFound(err) {
			return errs.ErrInvalid
		}
		return err
	}
	p.Mtime = time.Now().UnixMilli()
	return s.products.Update(ctx, p)
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	return s.products.Delete(ctx, id)
}

func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	return s.products.GetByID(ctx, id)
}

func (s *CatalogService) ListProducts(ctx context.Context, categoryID int64) ([]model.Product, error) {
	return s.products.List(ctx, categoryID)
}

func (s *CatalogService) CreateCategory(ctx context.Context, cat *model.Category) (int64, error) {
	if strings.TrimSpace(cat.Name) == "" {
		return 0, errs.ErrInvalid
	}
	if cat.IconClass == "" {
		cat.IconClass = "fas fa-gem"
	}
	return s.categories.Create(ctx, cat)
}

func (s *CatalogService) UpdateCategory(ctx context.Context, cat *model.Category) error {
	if cat.ID <= 0 || strings.TrimSpace(cat.Name) == "" {
		return errs.ErrInvalid
	}
	return s.categories.Update(ctx, cat)
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id int64) error {
	products, err := s.products.List(ctx, id)
	if err != nil {
		return err
	}
	if len(products) > 0 {
		return errs.ErrConflict
	}
	return s.categories.Delete(ctx, id)
}

func (s *CatalogService) GetCategory(ctx context.Context, id int64) (*model.Category, error) {
	return s.categories.GetByID(ctx, id)
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]model.Category, error) {
	return s.categories.List(ctx)
}

// CartLine is a cart row joined with its product.
type CartLine struct {
	Product  model.Product `json:"product"`
	Quantity int           `json:"quantity"`
}

func (s *CatalogService) AddToCart(ctx context.Context, sessionID string, productID int64, quantity int) error {
	if sessionID == "" || quantity <= 0 {
		return errs.ErrInvalid
	}
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if product.Stock < quantity {
		return errs.ErrConflict
	}
	return s.carts.Upsert(ctx, &model.CartItem{
		SessionID: sessionID,
		ProductID: productID,
		Quantity:  quantity,
		Mtime:     time.Now().UnixMilli(),
	})
}

func (s *CatalogService) CartLines(ctx context.Context, sessionID string) ([]CartLine, error) {
	items, err := s.carts.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	lines := make([]CartLine, 0, len(items))
	for _, item := range items {
		product, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil {
			if errs.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		lines = append(lines, CartLine{Product: *product, Quantity: item.Quantity})
	}
	return lines, nil
}

func (s *CatalogService) RemoveFromCart(ctx context.Context, sessionID string, productID int64) error {
	return s.carts.Delete(ctx, sessionID, productID)
}

func (s *CatalogService) CartCount(ctx context.Context, sessionID string) (int, error) {
	return s.carts.Count(ctx, sessionID)
}
