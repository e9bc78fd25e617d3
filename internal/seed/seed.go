// Package seed holds the bundled catalog fixture used by the catalog
// reset.
package seed

import (
	_ "embed"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"perrada/internal/models"
)

//go:embed catalog.json
var catalogJSON []byte

type fixtureProduct struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int64  `json:"price"`
	Category    string `json:"category"`
	ImageURL    string `json:"imageUrl"`
	ImageHint   string `json:"imageHint"`
}

type fixture struct {
	Categories []string         `json:"categories"`
	Products   []fixtureProduct `json:"products"`
}

// Catalog decodes the bundled fixture into documents ready to insert.
// Product categories are resolved from names to the new category ids.
func Catalog(now time.Time) ([]models.Category, []models.Product, error) {
	return decode(catalogJSON, now)
}

func decode(raw []byte, now time.Time) ([]models.Category, []models.Product, error) {
	var f fixture
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, nil, fmt.Errorf("decode catalog fixture: %w", err)
	}

	now = now.UTC()
	categories := make([]models.Category, 0, len(f.Categories))
	byName := make(map[string]primitive.ObjectID, len(f.Categories))
	for _, name := range f.Categories {
		if _, dup := byName[name]; dup {
			return nil, nil, fmt.Errorf("catalog fixture: duplicate category %q", name)
		}
		c := models.Category{ID: primitive.NewObjectID(), Name: name, CreatedAt: now}
		byName[name] = c.ID
		categories = append(categories, c)
	}

	products := make([]models.Product, 0, len(f.Products))
	for _, p := range f.Products {
		categoryID, ok := byName[p.Category]
		if !ok {
			return nil, nil, fmt.Errorf("catalog fixture: product %q has unknown category %q", p.Name, p.Category)
		}
		products = append(products, models.Product{
			ID:           primitive.NewObjectID(),
			Name:         p.Name,
			Description:  p.Description,
			Price:        p.Price,
			CategoryID:   categoryID,
			CategoryName: p.Category,
			ImageURL:     p.ImageURL,
			ImageHint:    p.ImageHint,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}
	return categories, products, nil
}
