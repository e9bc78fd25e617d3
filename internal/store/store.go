// Package store holds the MongoDB repositories for the catalog, orders
// and the shop settings singleton.
package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"perrada/internal/models"
)

//go:generate mockgen -destination=mock_store/mock_store.go -package=mock_store perrada/internal/store ProductRepository,CategoryRepository,OrderRepository,SettingsRepository,CatalogWriter

const (
	productsCollection   = "products"
	categoriesCollection = "categories"
	ordersCollection     = "orders"
	settingsCollection   = "settings"
	shopSettingsID       = "shop"

	opTimeout = 5 * time.Second
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")
)

// ProductUpdate carries the fields of a partial product update. Nil
// fields are left untouched.
type ProductUpdate struct {
	Name        *string
	Description *string
	Price       *int64
	CategoryID  *primitive.ObjectID
	ImageURL    *string
	ImageHint   *string
}

func (u ProductUpdate) Empty() bool {
	return u.Name == nil && u.Description == nil && u.Price == nil &&
		u.CategoryID == nil && u.ImageURL == nil && u.ImageHint == nil
}

type ProductRepository interface {
	List(ctx context.Context, categoryID *primitive.ObjectID) ([]models.Product, error)
	Get(ctx context.Context, id primitive.ObjectID) (models.Product, error)
	Create(ctx context.Context, product models.Product) (models.Product, error)
	Update(ctx context.Context, id primitive.ObjectID, update ProductUpdate) (models.Product, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	CountByCategory(ctx context.Context, categoryID primitive.ObjectID) (int64, error)
}

type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
	Get(ctx context.Context, id primitive.ObjectID) (models.Category, error)
	Create(ctx context.Context, category models.Category) (models.Category, error)
	Rename(ctx context.Context, id primitive.ObjectID, name string) (models.Category, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ChangeType tells a watcher how to apply an OrderChange.
type ChangeType string

const (
	ChangeUpsert ChangeType = "upsert"
	ChangeDelete ChangeType = "delete"
)

type OrderChange struct {
	Type  ChangeType
	ID    primitive.ObjectID
	Order *models.Order
}

type OrderRepository interface {
	Create(ctx context.Context, order models.Order) (models.Order, error)
	// List returns orders newest first. A nil since returns every order.
	List(ctx context.Context, since *time.Time) ([]models.Order, error)
	Get(ctx context.Context, id primitive.ObjectID) (models.Order, error)
	// UpdateStatus writes the status and its transition timestamp. It
	// carries no expected-prior-status condition; the last write wins.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.OrderStatus, at time.Time) error
	// Watch blocks, calling fn for every change until ctx is done or the
	// stream fails. opened runs once the stream is listening, so changes
	// made after it returns are never missed.
	Watch(ctx context.Context, opened func(), fn func(OrderChange)) error
}

type SettingsRepository interface {
	Get(ctx context.Context) (models.ShopSettings, error)
	// SetOpen stores the open flag. A closed to open transition stamps
	// shiftStartAt with now.
	SetOpen(ctx context.Context, isOpen bool, now time.Time) (models.ShopSettings, error)
}

// CatalogWriter wipes and repopulates the catalog collections.
type CatalogWriter interface {
	ResetCatalog(ctx context.Context, categories []models.Category, products []models.Product) error
}
