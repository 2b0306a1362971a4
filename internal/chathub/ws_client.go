package chathub

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"salarythief/backend/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// WebSocketClient implements the chathub.Client interface on top of a
// gorilla/websocket connection.
type WebSocketClient struct {
	Conn *websocket.Conn
	Hub  *HubService
	Send chan models.ServerEvent

	// userID is written only from the hub's event loop.
	userID string

	closeOnce sync.Once
	done      chan struct{}
}

// NewWebSocketClient wraps an upgraded connection. Call Run to start the
// pumps.
func NewWebSocketClient(hub *HubService, conn *websocket.Conn) *WebSocketClient {
	return &WebSocketClient{
		Conn: conn,
		Hub:  hub,
		Send: make(chan models.ServerEvent, 256),
		done: make(chan struct{}),
	}
}

func (c *WebSocketClient) GetUserID() string                         { return c.userID }
func (c *WebSocketClient) SetUserID(id string)                       { c.userID = id }
func (c *WebSocketClient) GetSendChannel() chan<- models.ServerEvent { return c.Send }

// Run starts the read and write pumps.
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close tears down the connection. The read pump will notice and report the
// disconnect to the hub; the write pump stops on the done channel.
func (c *WebSocketClient) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.Conn.Close()
	})
}

// readPump decodes inbound JSON envelopes and forwards them to the hub.
// When the connection drops for any reason, it reports the client on
// UnregisterCh exactly once and exits.
func (c *WebSocketClient) readPump() {
	defer func() {
		c.Hub.UnregisterCh <- c
		c.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
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
			log.Printf("Error decoding JSON from client: %v", err)
			continue
		}
		if !ev.Kind.Valid() {
			log.Printf("Unknown event %q from client", ev.Kind)
			continue
		}

		select {
		case c.Hub.EventCh <- InboundEvent{Client: c, Event: ev}:
		case <-c.done:
			return
		}
	}
}

// writePump serializes outbound events onto the websocket and keeps the
// connection alive with pings.
func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case ev := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			data, err := json.Marshal(ev)
			if err != nil {
				log.Printf("Error encoding JSON for client: %v", err)
				continue
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
