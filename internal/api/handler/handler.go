package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"salarythief/backend/internal/chathub"
	"salarythief/backend/internal/config"
)

// Handler wires the HTTP surface to the chat hub.
type Handler struct {
	Hub *chathub.HubService
	Cfg config.Config
}

func NewHandler(hub *chathub.HubService, cfg config.Config) *Handler {
	return &Handler{Hub: hub, Cfg: cfg}
}

// Healthz is a liveness probe.
func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
