package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"perrada/internal/metrics"
	"perrada/internal/models"
	"perrada/internal/orders"
	"perrada/internal/store"
)

const filterCookieMaxAge = 365 * 24 * 60 * 60

// OrderDeps groups what the admin order routes read from.
type OrderDeps struct {
	Service  *orders.Service
	Orders   store.OrderRepository
	Settings store.SettingsRepository
	Hub      *orders.Hub
	Location *time.Location
}

// resolveFilter picks the filter from the query, then the cookie, then
// the default. An explicit query value is remembered in the cookie.
func resolveFilter(c *gin.Context) (orders.FilterMode, bool) {
	if raw := c.Query("filter"); raw != "" {
		mode, ok := orders.ParseFilterMode(raw)
		if !ok {
			return "", false
		}
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(orders.FilterCookie, string(mode), filterCookieMaxAge, "/", "", false, true)
		return mode, true
	}
	if raw, err := c.Cookie(orders.FilterCookie); err == nil {
		if mode, ok := orders.ParseFilterMode(raw); ok {
			return mode, true
		}
	}
	return orders.DefaultFilter, true
}

// filtered reads the board, or the database while the board is still
// loading, and applies mode.
func (d OrderDeps) filtered(ctx context.Context, mode orders.FilterMode) (orders.FilterResult, error) {
	shop, err := d.Settings.Get(ctx)
	if err != nil {
		return orders.FilterResult{}, err
	}
	now := time.Now()

	board := d.Service.Board()
	if board.Loaded() {
		return orders.ApplyFilter(board.View(), mode, shop, now, d.Location), nil
	}

	since, ok := orders.Cutoff(mode, shop, now, d.Location)
	if !ok {
		return orders.ApplyFilter(nil, mode, shop, now, d.Location), nil
	}
	list, err := d.Orders.List(ctx, since)
	if err != nil {
		return orders.FilterResult{}, err
	}
	return orders.ApplyFilter(orders.Wrap(list), mode, shop, now, d.Location), nil
}

type boardResponse struct {
	orders.Kanban
	Mode           orders.FilterMode `json:"mode"`
	Count          int               `json:"count"`
	HasActiveShift bool              `json:"hasActiveShift"`
	NoActiveShift  bool              `json:"noActiveShift"`
}

func newBoardResponse(result orders.FilterResult) boardResponse {
	return boardResponse{
		Kanban:         orders.GroupKanban(result.Orders),
		Mode:           result.Mode,
		Count:          result.Count,
		HasActiveShift: result.HasActiveShift,
		NoActiveShift:  result.NoActiveShift,
	}
}

/*
GET /admin/api/orders?filter=
*/
func ListOrders(d OrderDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/orders"
		defer handlePanic(c, route)

		mode, ok := resolveFilter(c)
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "invalid filter")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		result, err := d.filtered(ctx, mode)
		if err != nil {
			respondStoreError(c, route, err, "orders not found")
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

/*
GET /admin/api/orders/board?filter=
*/
func GetBoard(d OrderDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/orders/board"
		defer handlePanic(c, route)

		mode, ok := resolveFilter(c)
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "invalid filter")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		result, err := d.filtered(ctx, mode)
		if err != nil {
			respondStoreError(c, route, err, "orders not found")
			return
		}
		c.JSON(http.StatusOK, newBoardResponse(result))
	}
}

type AdvanceRequest struct {
	Status string `json:"status" binding:"required"`
}

/*
POST /admin/api/orders/:id/advance
- The board shows the new status at once; the write happens afterwards
*/
func AdvanceOrder(d OrderDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/api/orders/:id/advance"
		defer handlePanic(c, route)

		id, ok := parseObjectIDParam(c, route, "id")
		if !ok {
			return
		}

		var req AdvanceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}
		target, err := models.ParseOrderStatus(req.Status)
		if err != nil {
			respondFieldErrors(c, map[string]string{"status": "is invalid"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		respondAdvance(c, route, func() (orders.BoardOrder, error) {
			return d.Service.Advance(ctx, id, target)
		})
	}
}

func ForwardOrder(d OrderDeps) gin.HandlerFunc {
	return stepOrder("POST /admin/api/orders/:id/forward", d.Service.Forward)
}

func BackOrder(d OrderDeps) gin.HandlerFunc {
	return stepOrder("POST /admin/api/orders/:id/back", d.Service.Back)
}

func stepOrder(route string, step func(context.Context, primitive.ObjectID) (orders.BoardOrder, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer handlePanic(c, route)

		id, ok := parseObjectIDParam(c, route, "id")
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		respondAdvance(c, route, func() (orders.BoardOrder, error) {
			return step(ctx, id)
		})
	}
}

func respondAdvance(c *gin.Context, route string, advance func() (orders.BoardOrder, error)) {
	order, err := advance()
	if errors.Is(err, orders.ErrTransitionNotOffered) {
		respondWithError(c, http.StatusConflict, route, err.Error())
		return
	}
	if err != nil {
		respondStoreError(c, route, err, "order not found")
		return
	}
	c.JSON(http.StatusAccepted, order)
}

/*
GET /admin/api/orders/:id/ticket
*/
func GetTicket(d OrderDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/orders/:id/ticket"
		defer handlePanic(c, route)

		id, ok := parseObjectIDParam(c, route, "id")
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		order, err := d.Service.Current(ctx, id)
		if err != nil {
			respondStoreError(c, route, err, "order not found")
			return
		}
		c.String(http.StatusOK, orders.Ticket(order.Order, d.Location))
	}
}

/*
GET /admin/api/dashboard
*/
func GetDashboard(d OrderDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/dashboard"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		shop, err := d.Settings.Get(ctx)
		if err != nil {
			respondStoreError(c, route, err, "settings not found")
			return
		}

		var all []models.Order
		if board := d.Service.Board(); board.Loaded() {
			all = board.Orders()
		} else if all, err = d.Orders.List(ctx, nil); err != nil {
			respondStoreError(c, route, err, "orders not found")
			return
		}

		c.JSON(http.StatusOK, metrics.Compute(all, shop, time.Now(), d.Location))
	}
}
