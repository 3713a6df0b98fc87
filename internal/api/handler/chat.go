package handler

import (
	"errors"
	"net/http"

	"pairlink/backend/internal/models"
	"pairlink/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

// ChatHistory returns the room id, the ordered message history and the
// reveal flag for a conversation with a partner. Used by clients to render
// the chat on (re)join.
func (h *Handler) ChatHistory(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		return
	}

	partnerID := c.Param("partnerId")
	partner, err := h.Storage.GetUserByID(partnerID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "partner not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load partner"})
		return
	}

	messages, err := h.Messages.History(user.ID, partner.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}

	revealed, err := h.Reveals.IsRevealed(user.ID, partner.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load reveal state"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"room":        models.RoomID(user.ID, partner.ID),
		"partner_id":  partner.ID,
		"messages":    messages,
		"is_revealed": revealed,
	})
}
