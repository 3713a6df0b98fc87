package handler

import (
	"errors"
	"net/http"
	"strings"

	"pairlink/backend/internal/chathub"
	"pairlink/backend/internal/models"
	"pairlink/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

// Handler bundles the HTTP surface over the realtime core.
type Handler struct {
	Hub      *chathub.ManagerService
	Matcher  *chathub.MatcherService
	Reveals  *chathub.RevealService
	Messages *chathub.MessageService
	Storage  storage.Storage

	JWTSecret []byte
}

func NewHandler(hub *chathub.ManagerService, matcher *chathub.MatcherService,
	reveals *chathub.RevealService, messages *chathub.MessageService,
	s storage.Storage, jwtSecret []byte) *Handler {
	return &Handler{
		Hub:       hub,
		Matcher:   matcher,
		Reveals:   reveals,
		Messages:  messages,
		Storage:   s,
		JWTSecret: jwtSecret,
	}
}

// currentUser resolves the authenticated user from the bearer token. On
// failure it writes the error response and returns nil.
func (h *Handler) currentUser(c *gin.Context) *models.User {
	tokenString := bearerToken(c)
	if tokenString == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization token missing"})
		return nil
	}

	userID, err := h.parseToken(tokenString)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
		return nil
	}

	user, err := h.Storage.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown user"})
		} else {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
		}
		return nil
	}
	return user
}

// bearerToken pulls the JWT from the Authorization header, falling back to
// the token query parameter for browser websocket clients that cannot set
// headers.
func bearerToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return c.Query("token")
}
