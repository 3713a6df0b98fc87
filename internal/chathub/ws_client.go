package chathub

import (
	"encoding/json"
	"log"
	"time"

	"pairlink/backend/internal/config"
	"pairlink/backend/internal/models"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// Media arrives base64-encoded inside a data-URI envelope, so the
	// read limit covers the 4/3 wire expansion of a maximal upload plus
	// header overhead. Oversize payloads are then rejected by the decoder
	// instead of killing the connection at the read limit.
	maxFrameSize = (config.MaxMediaBytes*4)/3 + 64*1024
)

// WebSocketClient implements Client over a gorilla/websocket connection.
type WebSocketClient struct {
	UserID string
	Name   string
	Conn   *websocket.Conn
	Hub    *ManagerService
	Send   chan models.ServerEvent
}

func (c *WebSocketClient) GetUserID() string                         { return c.UserID }
func (c *WebSocketClient) GetDisplayName() string                    { return c.Name }
func (c *WebSocketClient) GetSendChannel() chan<- models.ServerEvent { return c.Send }

// Run starts the read and write pumps.
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close shuts the outbound channel, which stops the write pump. The read
// pump stops on its own once the connection closes.
func (c *WebSocketClient) Close() {
	close(c.Send)
}

func (c *WebSocketClient) readPump() {
	defer func() {
		c.Hub.UnregisterCh <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxFrameSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error reading message: %v", err)
			}
			break
		}

		var ev models.ClientEvent
		if err := json.Unmarshal(message, &ev); err != nil {
			log.Printf("error decoding frame from client %s: %v", c.UserID, err)
			continue
		}

		// join subscribes this session; everything else is routed through
		// the hub's incoming channel with the sender stamped.
		if ev.Event == models.EventJoin {
			if ev.Room != "" {
				c.Hub.JoinRoomCh <- RoomJoin{Client: c, RoomID: ev.Room}
			}
			continue
		}

		ev.SenderID = c.UserID
		c.Hub.IncomingCh <- ev
	}
}

func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case evt, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteJSON(evt); err != nil {
				log.Printf("error writing to client %s: %v", c.UserID, err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
