package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"perrada/internal/checkout"
	"perrada/internal/middleware"
	"perrada/internal/models"
)

type CheckoutRequest struct {
	CustomerName    string `json:"customerName" binding:"required,min=3"`
	CustomerPhone   string `json:"customerPhone" binding:"required,min=7"`
	CustomerAddress string `json:"customerAddress" binding:"required,min=5"`
	PaymentMethod   string `json:"paymentMethod" binding:"required,oneof=EFECTIVO TRANSFERENCIA"`
	Notes           string `json:"notes"`
}

/*
POST /checkout
- Turns the session cart into an order waiting for payment
- The response says how to pay: transfer accounts or a cash note
*/
func Checkout(svc *checkout.Service, accounts []models.PaymentAccount) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /checkout"
		defer handlePanic(c, route)

		var req CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		fields := map[string]string{}
		checkTrimmed(fields, "customerName", req.CustomerName, 3)
		checkTrimmed(fields, "customerPhone", req.CustomerPhone, 7)
		checkTrimmed(fields, "customerAddress", req.CustomerAddress, 5)
		if len(fields) > 0 {
			respondFieldErrors(c, fields)
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		order, err := svc.Submit(ctx, middleware.SessionID(c), checkout.Details{
			CustomerName:    req.CustomerName,
			CustomerPhone:   req.CustomerPhone,
			CustomerAddress: req.CustomerAddress,
			PaymentMethod:   models.PaymentMethod(req.PaymentMethod),
			Notes:           req.Notes,
		})
		if status, ok := cartErrorStatus(err); ok {
			respondWithError(c, status, route, err.Error())
			return
		}
		if err != nil {
			respondStoreError(c, route, err, "order not found")
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"orderId":       order.ID.Hex(),
			"shortId":       order.ShortID(),
			"status":        order.Status,
			"totalAmount":   order.TotalAmount,
			"paymentMethod": order.PaymentMethod,
			"instructions":  checkout.InstructionsFor(order.PaymentMethod, accounts),
		})
	}
}
