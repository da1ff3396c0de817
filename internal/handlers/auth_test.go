package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/kipsang/customer-orders-api/internal/config"
	"github.com/kipsang/customer-orders-api/internal/middleware"
	"github.com/stretchr/testify/assert"
)

// Without provider credentials the handler must come up disabled and answer
// 503 rather than panic.
func TestAuthHandlerUnconfigured(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAuthHandler(&config.Config{})

	r := gin.New()
	r.Use(sessions.Sessions("session", cookie.NewStore([]byte("test-secret"))))
	r.GET("/login", handler.Login)
	r.GET("/authorize", handler.Authorize)

	for _, path := range []string{"/login", "/authorize?code=abc"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", path, nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code, path)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAuthHandler(&config.Config{})

	r := gin.New()
	r.Use(sessions.Sessions("session", cookie.NewStore([]byte("test-secret"))))
	r.GET("/test-login", func(c *gin.Context) {
		session := sessions.Default(c)
		session.Set(middleware.SessionProfileKey, "jane@example.com")
		session.Save()
		c.Status(http.StatusOK)
	})
	r.GET("/logout", handler.Logout)
	r.GET("/whoami", func(c *gin.Context) {
		session := sessions.Default(c)
		if session.Get(middleware.SessionProfileKey) == nil {
			c.JSON(http.StatusUnauthorized, gin.H{})
			return
		}
		c.JSON(http.StatusOK, gin.H{})
	})

	login := httptest.NewRecorder()
	loginReq, _ := http.NewRequest("GET", "/test-login", nil)
	r.ServeHTTP(login, loginReq)
	loginCookies := login.Result().Cookies()

	whoami := httptest.NewRecorder()
	whoamiReq, _ := http.NewRequest("GET", "/whoami", nil)
	for _, c := range loginCookies {
		whoamiReq.AddCookie(c)
	}
	r.ServeHTTP(whoami, whoamiReq)
	assert.Equal(t, http.StatusOK, whoami.Code)

	logout := httptest.NewRecorder()
	logoutReq, _ := http.NewRequest("GET", "/logout", nil)
	for _, c := range loginCookies {
		logoutReq.AddCookie(c)
	}
	r.ServeHTTP(logout, logoutReq)
	assert.Equal(t, http.StatusOK, logout.Code)
	assert.Contains(t, logout.Body.String(), "You have logged out successfully!")

	// session cookie returned by logout no longer carries the profile
	after := httptest.NewRecorder()
	afterReq, _ := http.NewRequest("GET", "/whoami", nil)
	for _, c := range logout.Result().Cookies() {
		afterReq.AddCookie(c)
	}
	r.ServeHTTP(after, afterReq)
	assert.Equal(t, http.StatusUnauthorized, after.Code)
}
