// Package catalog enforces the product and category rules that the
// collections themselves do not: a product's category must exist, a
// category in use cannot be deleted, and category names are unique.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"perrada/internal/models"
	"perrada/internal/seed"
	"perrada/internal/store"
)

var (
	ErrUnknownCategory   = errors.New("category does not exist")
	ErrCategoryInUse     = errors.New("category still has products")
	ErrDuplicateCategory = errors.New("category already exists")
)

type Service struct {
	products   store.ProductRepository
	categories store.CategoryRepository
	writer     store.CatalogWriter
	now        func() time.Time
}

func NewService(products store.ProductRepository, categories store.CategoryRepository, writer store.CatalogWriter) *Service {
	return &Service{products: products, categories: categories, writer: writer, now: time.Now}
}

// Products lists products, optionally of one category, with their
// category names filled in.
func (s *Service) Products(ctx context.Context, categoryID *primitive.ObjectID) ([]models.Product, error) {
	products, err := s.products.List(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}

	names := make(map[primitive.ObjectID]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}
	for i := range products {
		products[i].CategoryName = names[products[i].CategoryID]
	}
	return products, nil
}

func (s *Service) CreateProduct(ctx context.Context, product models.Product) (models.Product, error) {
	category, err := s.category(ctx, product.CategoryID)
	if err != nil {
		return models.Product{}, err
	}

	created, err := s.products.Create(ctx, product)
	if err != nil {
		return models.Product{}, err
	}
	created.CategoryName = category.Name
	return created, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id primitive.ObjectID, update store.ProductUpdate) (models.Product, error) {
	if update.CategoryID != nil {
		if _, err := s.category(ctx, *update.CategoryID); err != nil {
			return models.Product{}, err
		}
	}

	updated, err := s.products.Update(ctx, id, update)
	if err != nil {
		return models.Product{}, err
	}
	if category, err := s.categories.Get(ctx, updated.CategoryID); err == nil {
		updated.CategoryName = category.Name
	}
	return updated, nil
}

// DeleteProduct removes the product and returns what was removed.
func (s *Service) DeleteProduct(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	product, err := s.products.Get(ctx, id)
	if err != nil {
		return models.Product{}, err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return models.Product{}, err
	}
	return product, nil
}

func (s *Service) Categories(ctx context.Context) ([]models.Category, error) {
	return s.categories.List(ctx)
}

func (s *Service) CreateCategory(ctx context.Context, name string) (models.Category, error) {
	created, err := s.categories.Create(ctx, models.Category{Name: name})
	if errors.Is(err, store.ErrDuplicate) {
		return models.Category{}, ErrDuplicateCategory
	}
	return created, err
}

func (s *Service) RenameCategory(ctx context.Context, id primitive.ObjectID, name string) (models.Category, error) {
	updated, err := s.categories.Rename(ctx, id, name)
	if errors.Is(err, store.ErrDuplicate) {
		return models.Category{}, ErrDuplicateCategory
	}
	return updated, err
}

func (s *Service) DeleteCategory(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.categories.Get(ctx, id); err != nil {
		return err
	}

	inUse, err := s.products.CountByCategory(ctx, id)
	if err != nil {
		return err
	}
	if inUse > 0 {
		return fmt.Errorf("%w (%d)", ErrCategoryInUse, inUse)
	}
	return s.categories.Delete(ctx, id)
}

// Reset wipes the catalog and loads the bundled fixture. It is not
// atomic across the two collections.
func (s *Service) Reset(ctx context.Context) (categories, products int, err error) {
	cats, prods, err := seed.Catalog(s.now())
	if err != nil {
		return 0, 0, err
	}
	if err := s.writer.ResetCatalog(ctx, cats, prods); err != nil {
		return 0, 0, err
	}
	log.Printf("[CATALOG] [INFO] catalog reset with %d categories and %d products", len(cats), len(prods))
	return len(cats), len(prods), nil
}

func (s *Service) category(ctx context.Context, id primitive.ObjectID) (models.Category, error) {
	if id.IsZero() {
		return models.Category{}, ErrUnknownCategory
	}
	category, err := s.categories.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return models.Category{}, ErrUnknownCategory
	}
	return category, err
}
