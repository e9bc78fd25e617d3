package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

func Health(client *mongo.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /healthz"

		if err := ensureDBConnection(c.Request.Context(), client); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
