package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"salarythief/backend/internal/chathub"
	"salarythief/backend/internal/models"
)

func (h *Handler) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if h.Cfg.AllowedOrigin == "*" {
				return true
			}
			return r.Header.Get("Origin") == h.Cfg.AllowedOrigin
		},
	}
}

// ServeWebSocket upgrades the HTTP connection and attaches it to the hub.
// Identity is established by a register event on the socket; a client that
// already holds a token from /anonid may pass it as ?token= to have that
// step performed at upgrade time.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	var anonID string
	if tokenString := c.Query("token"); tokenString != "" {
		id, err := validateAndGetAnonID(h.Cfg.JWTSecret, tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token or expired"})
			return
		}
		anonID = id
	}

	upgrader := h.upgrader()
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	client := chathub.NewWebSocketClient(h.Hub, conn)
	client.Run()

	if anonID != "" {
		h.Hub.EventCh <- chathub.InboundEvent{
			Client: client,
			Event:  models.ClientEvent{Kind: models.EventRegister, UserID: anonID},
		}
	}
}
