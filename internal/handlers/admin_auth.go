package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"perrada/internal/auth"
)

type AdminLoginRequest struct {
	Passcode string `json:"passcode"`
}

// AdminLogin signs the admin panel in. With no passcode hash configured
// any caller gets an admin session.
func AdminLogin(jwtSecret string, ttl time.Duration, passcodeHash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/login"
		defer handlePanic(c, route)

		var req AdminLoginRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				respondWithError(c, http.StatusBadRequest, route, "invalid body")
				return
			}
		}

		if passcodeHash != "" {
			if strings.TrimSpace(req.Passcode) == "" {
				respondWithError(c, http.StatusUnauthorized, route, "invalid credentials")
				return
			}
			if err := bcrypt.CompareHashAndPassword([]byte(passcodeHash), []byte(req.Passcode)); err != nil {
				respondWithError(c, http.StatusUnauthorized, route, "invalid credentials")
				return
			}
		}

		session, err := auth.Issue(jwtSecret, auth.RoleAdmin, ttl, time.Now())
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "token generation failed")
			return
		}

		c.JSON(http.StatusOK, session)
	}
}

// CreateSession starts an anonymous storefront session.
func CreateSession(jwtSecret string, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /auth/session"
		defer handlePanic(c, route)

		session, err := auth.Issue(jwtSecret, auth.RoleCustomer, ttl, time.Now())
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "token generation failed")
			return
		}

		c.JSON(http.StatusCreated, session)
	}
}
