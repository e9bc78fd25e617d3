package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"perrada/internal/cart"
	"perrada/internal/store"
)

type SettingsRequest struct {
	IsOpen *bool `json:"isOpen" binding:"required"`
}

// GetShop is the public view of the settings: whether orders are taken.
func GetShop(settings store.SettingsRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /shop"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		shop, err := settings.Get(ctx)
		if err != nil {
			respondStoreError(c, route, err, "settings not found")
			return
		}
		c.JSON(http.StatusOK, gin.H{"isOpen": shop.IsOpen})
	}
}

func GetSettings(settings store.SettingsRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/settings"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		shop, err := settings.Get(ctx)
		if err != nil {
			respondStoreError(c, route, err, "settings not found")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"isOpen":         shop.IsOpen,
			"shiftStartAt":   shop.ShiftStartAt,
			"hasActiveShift": shop.HasActiveShift(),
		})
	}
}

/*
PUT /admin/api/settings
- Opening a closed shop starts a new shift
- Closing the shop empties every cart
*/
func UpdateSettings(settings store.SettingsRepository, carts *cart.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/api/settings"
		defer handlePanic(c, route)

		var req SettingsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		shop, err := settings.SetOpen(ctx, *req.IsOpen, time.Now().UTC())
		if err != nil {
			respondStoreError(c, route, err, "settings not found")
			return
		}

		if !shop.IsOpen {
			cleared := carts.ClearAll()
			log.Printf("[%s] shop closed, cleared %d carts", route, cleared)
		}

		c.JSON(http.StatusOK, gin.H{
			"isOpen":         shop.IsOpen,
			"shiftStartAt":   shop.ShiftStartAt,
			"hasActiveShift": shop.HasActiveShift(),
		})
	}
}
