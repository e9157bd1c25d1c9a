package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/choprek/middlewares"
	"github.com/yeremiapane/choprek/models"
	"github.com/yeremiapane/choprek/realtime"
	"github.com/yeremiapane/choprek/utils"
)

type RealtimeController struct {
	Hub      *realtime.Hub
	upgrader websocket.Upgrader
}

// NewRealtimeController only accepts handshakes from allowedOrigin; an empty origin
// accepts any.
func NewRealtimeController(hub *realtime.Hub, allowedOrigin string) *RealtimeController {
	return &RealtimeController{
		Hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return allowedOrigin == "" || origin == "" || strings.EqualFold(origin, allowedOrigin)
			},
		},
	}
}

// StreamChanges -> endpoint WebSocket untuk admin
func (rc *RealtimeController) StreamChanges(c *gin.Context) {
	role := c.GetString(middlewares.ContextRole)
	if role != models.RoleAdmin {
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	ws, err := rc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.WithError(err).Error("Websocket upgrade failed")
		return
	}

	rc.Hub.RegisterClient(ws, role)
	utils.InfoLogger.WithField("user_id", c.GetString(middlewares.ContextUserID)).Info("Realtime client connected")

	// Baca pesan sampai client disconnect
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	rc.Hub.UnregisterClient(ws)
}
