package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"perrada/internal/cart"
	"perrada/internal/middleware"
	"perrada/internal/store"
)

type CartAddRequest struct {
	ProductID string `json:"productId" binding:"required"`
}

type CartQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func GetCart(carts *cart.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, carts.Snapshot(middleware.SessionID(c)))
	}
}

/*
POST /cart/items
- Only while the shop is open
- The product is read from the catalog; the client never sends prices
*/
func AddCartItem(carts *cart.Registry, products store.ProductRepository, settings store.SettingsRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /cart/items"
		defer handlePanic(c, route)

		var req CartAddRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		productID, err := primitive.ObjectIDFromHex(req.ProductID)
		if err != nil {
			respondFieldErrors(c, map[string]string{"productId": "is invalid"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		shop, err := settings.Get(ctx)
		if err != nil {
			respondStoreError(c, route, err, "settings not found")
			return
		}
		if !shop.IsOpen {
			respondWithError(c, http.StatusConflict, route, cart.ErrShopClosed.Error())
			return
		}

		product, err := products.Get(ctx, productID)
		if err != nil {
			respondStoreError(c, route, err, "product not found")
			return
		}

		c.JSON(http.StatusOK, carts.Add(middleware.SessionID(c), product))
	}
}

/*
PUT /cart/items/:productId
- quantity <= 0 removes the line
*/
func UpdateCartItem(carts *cart.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /cart/items/:productId"
		defer handlePanic(c, route)

		productID, ok := parseObjectIDParam(c, route, "productId")
		if !ok {
			return
		}

		var req CartQuantityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		snapshot, found := carts.SetQuantity(middleware.SessionID(c), productID, *req.Quantity)
		if !found {
			respondWithError(c, http.StatusNotFound, route, "product not in cart")
			return
		}
		c.JSON(http.StatusOK, snapshot)
	}
}

func RemoveCartItem(carts *cart.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /cart/items/:productId"
		defer handlePanic(c, route)

		productID, ok := parseObjectIDParam(c, route, "productId")
		if !ok {
			return
		}
		c.JSON(http.StatusOK, carts.Remove(middleware.SessionID(c), productID))
	}
}

func ClearCart(carts *cart.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, carts.Update(middleware.SessionID(c), func(cc *cart.Cart) { cc.Clear() }))
	}
}

func cartErrorStatus(err error) (int, bool) {
	switch {
	case errors.Is(err, cart.ErrShopClosed):
		return http.StatusConflict, true
	case errors.Is(err, cart.ErrEmptyCart):
		return http.StatusBadRequest, true
	}
	return 0, false
}
