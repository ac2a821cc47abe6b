package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"attendly_console/api"
	"attendly_console/logger"
	"attendly_console/middleware"
	"attendly_console/models"
	"attendly_console/session"
)

// Closer is anything holding resources for the logged-in operator.
type Closer interface {
	CloseAll()
}

type AuthHandler struct {
	auth    *api.AuthAPI
	store   *session.Store
	release Closer
	log     *logrus.Entry
}

func NewAuthHandler(auth *api.AuthAPI, store *session.Store, release Closer) *AuthHandler {
	return &AuthHandler{
		auth:    auth,
		store:   store,
		release: release,
		log:     logger.For("auth"),
	}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := req.Validate(); err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	token := resp.SessionToken()
	user := resp.User
	if claims, err := session.ParseClaims(token); err == nil {
		if user.ID == 0 {
			user.ID = claims.UserID
		}
		if user.Role == "" {
			user.Role = claims.Role
		}
	}

	if err := h.store.Login(c.Request.Context(), token, user); err != nil {
		h.log.WithError(err).Error("Error storing session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Login successful",
		"user":     user,
		"nav":      models.NavItems(user.Role),
		"redirect": "/dashboard",
	})
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req models.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Role == "" {
		req.Role = models.RoleEmployee
	}
	if err := req.Validate(); err != nil {
		respondError(c, err)
		return
	}

	resp, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	msg := resp.Message
	if msg == "" {
		msg = "Account created. Please sign in."
	}
	c.JSON(http.StatusCreated, gin.H{"message": msg, "redirect": "/"})
}

// Logout clears the session and releases any camera the operator held.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.release.CloseAll()

	if err := h.store.Logout(c.Request.Context()); err != nil {
		h.log.WithError(err).Error("Error clearing session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out", "redirect": "/"})
}

// Me shows the backend's view of the current user next to the stored
// session and the token expiry.
func (h *AuthHandler) Me(c *gin.Context) {
	ctx := c.Request.Context()

	profile, err := h.auth.Me(ctx)
	if err != nil {
		respondError(c, err)
		return
	}

	body := gin.H{"profile": profile}
	claims, err := h.store.Claims(ctx)
	switch {
	case err == nil:
		if claims.ExpiresAt != nil {
			body["expires_at"] = claims.ExpiresAt.Time
		}
	case !errors.Is(err, session.ErrNoToken):
		h.log.WithError(err).Debug("Token claims unreadable")
	}
	body["session_user"] = middleware.CurrentUser(c)
	render(c, http.StatusOK, body)
}
