package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/kipsang/customer-orders-api/internal/config"
	"github.com/kipsang/customer-orders-api/internal/middleware"
	"github.com/kipsang/customer-orders-api/internal/models"
	"github.com/kipsang/customer-orders-api/pkg/logger"
	"golang.org/x/oauth2"
)

const sessionStateKey = "oauth_state"

// AuthHandler drives the identity-provider exchange: /login redirects to the
// provider's consent page, /authorize trades the code for a verified profile
// stored in the session, /logout clears the session.
type AuthHandler struct {
	cfg          *config.Config
	provider     *oidc.Provider
	verifier     *oidc.IDTokenVerifier
	oauth2Config *oauth2.Config
	enabled      bool
}

func NewAuthHandler(cfg *config.Config) *AuthHandler {
	h := &AuthHandler{cfg: cfg}

	if cfg.GoogleClientID == "" || cfg.GoogleClientSecret == "" || cfg.OAuthRedirectURL == "" {
		logger.Warn("oidc credentials not configured, auth endpoints disabled")
		return h
	}

	provider, err := oidc.NewProvider(context.Background(), cfg.OIDCProviderURL)
	if err != nil {
		logger.Error("failed to discover oidc provider", "error", err, "url", cfg.OIDCProviderURL)
		return h
	}

	h.provider = provider
	h.verifier = provider.Verifier(&oidc.Config{ClientID: cfg.GoogleClientID})
	h.oauth2Config = &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.OAuthRedirectURL,
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		Endpoint:     provider.Endpoint(),
	}
	h.enabled = true
	return h
}

// Login starts the flow by redirecting to the provider with a state nonce
// kept in the session.
func (h *AuthHandler) Login(c *gin.Context) {
	if !h.enabled {
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Error:   "oidc not configured",
			Message: "identity provider not configured",
			Code:    http.StatusServiceUnavailable,
		})
		return
	}

	state := uuid.NewString()
	session := sessions.Default(c)
	session.Set(sessionStateKey, state)
	if err := session.Save(); err != nil {
		logger.Error("failed to save session", "error", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "session error",
			Message: "failed to start login",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.Redirect(http.StatusFound, h.oauth2Config.AuthCodeURL(state))
}

// Authorize completes the flow: verify state, exchange the code, verify the
// ID token, store the profile marker, and mint an API bearer token for
// non-browser clients.
func (h *AuthHandler) Authorize(c *gin.Context) {
	if !h.enabled {
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Error:   "oidc not configured",
			Message: "identity provider not configured",
			Code:    http.StatusServiceUnavailable,
		})
		return
	}

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "missing code",
			Message: "authorization code is required",
			Code:    http.StatusBadRequest,
		})
		return
	}

	session := sessions.Default(c)
	if state, ok := session.Get(sessionStateKey).(string); !ok || state != c.Query("state") {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid state",
			Message: "state mismatch",
			Code:    http.StatusBadRequest,
		})
		return
	}

	ctx := c.Request.Context()
	oauth2Token, err := h.oauth2Config.Exchange(ctx, code)
	if err != nil {
		logger.Error("token exchange failed", "error", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "token exchange failed",
			Message: "failed to exchange authorization code",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "id_token missing",
			Message: "provider response had no id_token",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	idToken, err := h.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:   "invalid id_token",
			Message: "id_token verification failed",
			Code:    http.StatusUnauthorized,
		})
		return
	}

	var profile struct {
		Email string `json:"email"`
		Sub   string `json:"sub"`
		Name  string `json:"name"`
	}
	if err := idToken.Claims(&profile); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "invalid id_token",
			Message: "failed to parse id_token claims",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	session.Delete(sessionStateKey)
	session.Set(middleware.SessionProfileKey, profile.Email)
	if err := session.Save(); err != nil {
		logger.Error("failed to save session", "error", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "session error",
			Message: "failed to establish session",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	tokenString, err := h.mintAPIToken(profile.Email, profile.Sub, profile.Name)
	if err != nil {
		logger.Error("failed to sign api token", "error", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "token generation failed",
			Message: "failed to generate api token",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "You have logged in successfully!",
		"access_token": tokenString,
		"token_type":   "Bearer",
		"expires_in":   int64((24 * time.Hour).Seconds()),
	})
}

// Logout clears the session marker. Always succeeds.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		logger.Error("failed to clear session", "error", err)
	}
	c.JSON(http.StatusOK, gin.H{"message": "You have logged out successfully!"})
}

func (h *AuthHandler) mintAPIToken(email, sub, name string) (string, error) {
	expiresAt := time.Now().Add(24 * time.Hour)
	claims := &middleware.Claims{
		Email: email,
		Sub:   sub,
		Name:  name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "customer-orders-api",
			Subject:   sub,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.cfg.JWTSecret))
}
