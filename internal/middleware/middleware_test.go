package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perrada/internal/auth"
)

const secret = "test-secret"

func newRouter(guard gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", guard, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"session": SessionID(c), "role": c.GetString(RoleKey)})
	})
	return r
}

func issue(t *testing.T, role string) auth.Session {
	t.Helper()
	s, err := auth.Issue(secret, role, time.Hour, time.Now())
	require.NoError(t, err)
	return s
}

func TestAdminAuth(t *testing.T) {
	r := newRouter(AdminAuth(secret))

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"malformed", "Token abc", http.StatusUnauthorized},
		{"bad signature", "Bearer abc.def.ghi", http.StatusUnauthorized},
		{"customer", "Bearer " + issue(t, auth.RoleCustomer).Token, http.StatusForbidden},
		{"admin", "Bearer " + issue(t, auth.RoleAdmin).Token, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/x", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestSessionAuthAcceptsAnyRole(t *testing.T) {
	r := newRouter(SessionAuth(secret))
	s := issue(t, auth.RoleCustomer)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+s.Token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), s.ID)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestAdminAuthIgnoresQueryToken(t *testing.T) {
	r := newRouter(AdminAuth(secret))
	s := issue(t, auth.RoleAdmin)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x?token="+s.Token, nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestStreamAuthAcceptsQueryToken(t *testing.T) {
	r := newRouter(StreamAuth(secret))

	cases := []struct {
		name  string
		token string
		want  int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"customer", issue(t, auth.RoleCustomer).Token, http.StatusForbidden},
		{"admin", issue(t, auth.RoleAdmin).Token, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x?token="+tc.token, nil))

			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestRedactPath(t *testing.T) {
	cases := map[string]string{
		"/admin/api/stream":                        "/admin/api/stream",
		"/admin/api/stream?filter=all":             "/admin/api/stream?filter=all",
		"/admin/api/stream?token=abc.def.ghi":      "/admin/api/stream?token=REDACTED",
		"/admin/api/stream?filter=all&token=a.b.c": "/admin/api/stream?filter=all&token=REDACTED",
	}
	for in, want := range cases {
		assert.Equal(t, want, RedactPath(in), in)
	}
}

func TestLoggerMasksToken(t *testing.T) {
	var out bytes.Buffer
	gin.SetMode(gin.TestMode)
	gin.DefaultWriter = &out
	defer func() { gin.DefaultWriter = os.Stdout }()

	r := gin.New()
	r.Use(Logger())
	r.GET("/admin/api/stream", StreamAuth(secret), func(c *gin.Context) { c.Status(http.StatusOK) })

	token := issue(t, auth.RoleAdmin).Token
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/api/stream?token="+token, nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, out.String(), "token=REDACTED")
	assert.NotContains(t, out.String(), token)
}

func TestRequestIDIsEchoed(t *testing.T) {
	r := newRouter(func(c *gin.Context) { c.Next() })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}
