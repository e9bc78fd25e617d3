package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"perrada/internal/catalog"
	"perrada/internal/imagehost"
	"perrada/internal/models"
	"perrada/internal/store"
)

type ProductCreateRequest struct {
	Name        string `json:"name" binding:"required,min=3"`
	Description string `json:"description" binding:"required,min=10"`
	Price       *int64 `json:"price" binding:"required,min=0"`
	CategoryID  string `json:"categoryId" binding:"required"`
	ImageURL    string `json:"imageUrl"`
	ImageHint   string `json:"imageHint"`
}

type ProductUpdateRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=3"`
	Description *string `json:"description" binding:"omitempty,min=10"`
	Price       *int64  `json:"price" binding:"omitempty,min=0"`
	CategoryID  *string `json:"categoryId"`
	ImageURL    *string `json:"imageUrl"`
	ImageHint   *string `json:"imageHint"`
}

func sanitizeLogValue(value string, max int) string {
	value = strings.ReplaceAll(strings.TrimSpace(value), "\n", " ")
	if len(value) > max {
		return value[:max] + "..."
	}
	return value
}

/*
GET /admin/api/products
*/
func GetAllProducts(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/products"
		defer handlePanic(c, route)

		var categoryID *primitive.ObjectID
		if raw := strings.TrimSpace(c.Query("categoryId")); raw != "" {
			id, err := primitive.ObjectIDFromHex(raw)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "invalid categoryId")
				return
			}
			categoryID = &id
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		products, err := svc.Products(ctx, categoryID)
		if err != nil {
			respondStoreError(c, route, err, "products not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": products})
	}
}

/*
POST /admin/api/products
*/
func CreateProduct(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/products"
		defer handlePanic(c, route)

		var req ProductCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		fields := map[string]string{}
		name := checkTrimmed(fields, "name", req.Name, 3)
		description := checkTrimmed(fields, "description", req.Description, 10)
		categoryID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.CategoryID))
		if err != nil {
			fields["categoryId"] = "is invalid"
		}
		if len(fields) > 0 {
			respondFieldErrors(c, fields)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		created, err := svc.CreateProduct(ctx, models.Product{
			Name:        name,
			Description: description,
			Price:       *req.Price,
			CategoryID:  categoryID,
			ImageURL:    strings.TrimSpace(req.ImageURL),
			ImageHint:   strings.TrimSpace(req.ImageHint),
		})
		if errors.Is(err, catalog.ErrUnknownCategory) {
			respondFieldErrors(c, map[string]string{"categoryId": "unknown category"})
			return
		}
		if err != nil {
			respondStoreError(c, route, err, "product not found")
			return
		}

		log.Printf("[%s] created product %s name=%q", route, created.ID.Hex(), sanitizeLogValue(created.Name, 60))
		c.JSON(http.StatusCreated, created)
	}
}

/*
PUT /admin/api/products/:id
*/
func UpdateProduct(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/products/:id"
		defer handlePanic(c, route)

		id, ok := parseObjectIDParam(c, route, "id")
		if !ok {
			return
		}

		var req ProductUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		fields := map[string]string{}
		var update store.ProductUpdate
		if req.Name != nil {
			name := checkTrimmed(fields, "name", *req.Name, 3)
			update.Name = &name
		}
		if req.Description != nil {
			description := checkTrimmed(fields, "description", *req.Description, 10)
			update.Description = &description
		}
		update.Price = req.Price
		if req.CategoryID != nil {
			categoryID, err := primitive.ObjectIDFromHex(strings.TrimSpace(*req.CategoryID))
			if err != nil {
				fields["categoryId"] = "is invalid"
			}
			update.CategoryID = &categoryID
		}
		if req.ImageURL != nil {
			imageURL := strings.TrimSpace(*req.ImageURL)
			update.ImageURL = &imageURL
		}
		if req.ImageHint != nil {
			imageHint := strings.TrimSpace(*req.ImageHint)
			update.ImageHint = &imageHint
		}
		if len(fields) > 0 {
			respondFieldErrors(c, fields)
			return
		}
		if update.Empty() {
			respondWithError(c, http.StatusBadRequest, route, "no fields to update")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		updated, err := svc.UpdateProduct(ctx, id, update)
		if errors.Is(err, catalog.ErrUnknownCategory) {
			respondFieldErrors(c, map[string]string{"categoryId": "unknown category"})
			return
		}
		if err != nil {
			respondStoreError(c, route, err, "product not found")
			return
		}

		c.JSON(http.StatusOK, updated)
	}
}

/*
DELETE /admin/api/products/:id
- Removes the stored image when it lives on local disk.
*/
func DeleteProduct(svc *catalog.Service, images imagehost.Host) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/products/:id"
		defer handlePanic(c, route)

		id, ok := parseObjectIDParam(c, route, "id")
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		removed, err := svc.DeleteProduct(ctx, id)
		if err != nil {
			respondStoreError(c, route, err, "product not found")
			return
		}

		if remover, ok := images.(imagehost.Remover); ok && strings.HasPrefix(removed.ImageURL, imagehost.PublicPrefix+"/") {
			if err := remover.Remove(removed.ImageURL); err != nil {
				log.Printf("[%s] image cleanup failed for %s: %v", route, removed.ImageURL, err)
			}
		}

		c.Status(http.StatusNoContent)
	}
}
