package handlers

import (
	"context"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"perrada/internal/orders"
)

const streamKeepAlive = 25 * time.Second

type newOrderEvent struct {
	OrderID      string `json:"orderId"`
	ShortID      string `json:"shortId"`
	CustomerName string `json:"customerName"`
	TotalAmount  int64  `json:"totalAmount"`
}

/*
GET /admin/api/stream?filter=&token=
- Server-sent events: "board" carries the filtered kanban, "new-order"
  announces an order seen for the first time in PENDIENTE_PAGO
*/
func StreamOrders(d OrderDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/api/stream"
		defer handlePanic(c, route)

		mode, ok := resolveFilter(c)
		if !ok {
			respondWithError(c, http.StatusBadRequest, route, "invalid filter")
			return
		}

		events, unsubscribe := d.Hub.Subscribe()
		defer unsubscribe()

		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.Header("X-Accel-Buffering", "no")

		log.Printf("[%s] subscriber joined (%d active)", route, d.Hub.Subscribers())

		reqCtx := c.Request.Context()
		sendBoard := func() bool {
			ctx, cancel := context.WithTimeout(reqCtx, requestTimeout)
			defer cancel()
			result, err := d.filtered(ctx, mode)
			if err != nil {
				log.Printf("[%s] board render failed: %v", route, err)
				return reqCtx.Err() == nil
			}
			c.SSEvent(orders.EventBoard, newBoardResponse(result))
			return true
		}

		first := true
		c.Stream(func(w io.Writer) bool {
			if first {
				first = false
				return sendBoard()
			}
			select {
			case <-reqCtx.Done():
				return false
			case ev, open := <-events:
				if !open {
					return false
				}
				switch ev.Name {
				case orders.EventBoard:
					return sendBoard()
				case orders.EventNewOrder:
					if ev.Order == nil {
						return true
					}
					c.SSEvent(orders.EventNewOrder, newOrderEvent{
						OrderID:      ev.Order.ID.Hex(),
						ShortID:      ev.Order.ShortID(),
						CustomerName: ev.Order.CustomerName,
						TotalAmount:  ev.Order.TotalAmount,
					})
				}
				return true
			case <-time.After(streamKeepAlive):
				c.SSEvent("ping", time.Now().Unix())
				return true
			}
		})
		log.Printf("[%s] subscriber left", route)
	}
}
