package handler

import (
	"errors"
	"net/http"

	"pairlink/backend/internal/chathub"

	"github.com/gin-gonic/gin"
)

// EnterMatching puts the caller into the compatibility queue. Response is
// either an immediate pairing or a waiting acknowledgment; the asynchronous
// match_found event covers the waiting case.
func (h *Handler) EnterMatching(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		return
	}

	result, err := h.Matcher.Enter(user.ID)
	if err != nil {
		if errors.Is(err, chathub.ErrPrerequisiteMissing) {
			c.JSON(http.StatusForbidden, gin.H{"error": "prerequisite_missing"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "matching failed"})
		return
	}

	if result.Status == chathub.StatusPaired {
		c.JSON(http.StatusOK, gin.H{
			"status":  chathub.StatusPaired,
			"room":    result.RoomID,
			"partner": result.PartnerID,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": chathub.StatusWaiting})
}
