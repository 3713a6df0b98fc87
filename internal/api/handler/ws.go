package handler

import (
	"net/http"

	"pairlink/backend/internal/chathub"
	"pairlink/backend/internal/config"
	"pairlink/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// TODO: restrict origins once the frontend host is fixed.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the connection and registers the session with the
// hub. The session is immediately subscribed to its own user channel, so
// match_found reaches it before any room join.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	user := h.currentUser(c)
	if user == nil {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to upgrade connection"})
		return
	}

	client := &chathub.WebSocketClient{
		Hub:    h.Hub,
		UserID: user.ID,
		Name:   user.Name,
		Conn:   conn,
		Send:   make(chan models.ServerEvent, config.SendBufferSize),
	}

	h.Hub.RegisterCh <- client
	client.Run()
}
