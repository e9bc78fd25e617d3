package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"perrada/internal/catalog"
)

type CategoryRequest struct {
	Name string `json:"name" binding:"required,min=3"`
}

/*
GET /admin/api/categories
*/
func GetAllCategories(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/categories"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		categories, err := svc.Categories(ctx)
		if err != nil {
			respondStoreError(c, route, err, "categories not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": categories})
	}
}

/*
POST /admin/api/categories
- Names are unique
*/
func CreateCategory(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/categories"
		defer handlePanic(c, route)

		var req CategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		fields := map[string]string{}
		name := checkTrimmed(fields, "name", req.Name, 3)
		if len(fields) > 0 {
			respondFieldErrors(c, fields)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		created, err := svc.CreateCategory(ctx, name)
		if errors.Is(err, catalog.ErrDuplicateCategory) {
			respondWithError(c, http.StatusConflict, route, "category already exists")
			return
		}
		if err != nil {
			respondStoreError(c, route, err, "category not found")
			return
		}

		c.JSON(http.StatusCreated, created)
	}
}

/*
PUT /admin/api/categories/:id
*/
func UpdateCategory(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/categories/:id"
		defer handlePanic(c, route)

		id, ok := parseObjectIDParam(c, route, "id")
		if !ok {
			return
		}

		var req CategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		fields := map[string]string{}
		name := checkTrimmed(fields, "name", req.Name, 3)
		if len(fields) > 0 {
			respondFieldErrors(c, fields)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		updated, err := svc.RenameCategory(ctx, id, name)
		if errors.Is(err, catalog.ErrDuplicateCategory) {
			respondWithError(c, http.StatusConflict, route, "category already exists")
			return
		}
		if err != nil {
			respondStoreError(c, route, err, "category not found")
			return
		}

		c.JSON(http.StatusOK, updated)
	}
}

/*
DELETE /admin/api/categories/:id
- Refused while products still point at the category
*/
func DeleteCategory(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/api/categories/:id"
		defer handlePanic(c, route)

		id, ok := parseObjectIDParam(c, route, "id")
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		err := svc.DeleteCategory(ctx, id)
		if errors.Is(err, catalog.ErrCategoryInUse) {
			respondWithError(c, http.StatusConflict, route, "category still has products")
			return
		}
		if err != nil {
			respondStoreError(c, route, err, "category not found")
			return
		}

		c.Status(http.StatusNoContent)
	}
}

/*
POST /admin/api/catalog/reset
- Destructive: requires {"confirm": true}
*/
func ResetCatalog(svc *catalog.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/catalog/reset"
		defer handlePanic(c, route)

		var req struct {
			Confirm bool `json:"confirm"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || !req.Confirm {
			respondWithError(c, http.StatusBadRequest, route, "confirmation required")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*requestTimeout)
		defer cancel()

		categories, products, err := svc.Reset(ctx)
		if err != nil {
			respondStoreError(c, route, err, "catalog not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"categories": categories, "products": products})
	}
}
