package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	apierrors "github.com/yukikurage/task-tracker-api/internal/errors"
	"github.com/yukikurage/task-tracker-api/internal/middleware"
	"github.com/yukikurage/task-tracker-api/internal/realtime"
)

// RealtimeHandler upgrades authenticated requests to websocket connections.
type RealtimeHandler struct {
	hub      *realtime.Hub
	auth     middleware.TokenAuthenticator
	upgrader websocket.Upgrader
}

func NewRealtimeHandler(hub *realtime.Hub, auth middleware.TokenAuthenticator) *RealtimeHandler {
	return &RealtimeHandler{
		hub:  hub,
		auth: auth,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Connect authenticates the caller, then serves the connection until it
// closes. Browsers cannot set headers on websocket requests, so the token
// may also come from the "token" query parameter or the session cookie.
func (h *RealtimeHandler) Connect(c *gin.Context) {
	token := middleware.RequestToken(c)
	if token == "" {
		token = c.Query("token")
	}

	identity, err := h.auth.Authenticate(token)
	if err != nil {
		apierrors.Unauthorized(c, "")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[hub] websocket upgrade failed: %v", err)
		return
	}

	realtime.NewClient(h.hub, conn, identity.UserID).Serve()
}
