package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"care-portal-server/internal/config"
	"care-portal-server/internal/presence"
	"care-portal-server/internal/store"
	"care-portal-server/internal/utils"
)

// PresenceHandler upgrades WebSocket connections into the presence hub and
// serves online-status lookups.
type PresenceHandler struct {
	Hub   *presence.Hub
	Users *store.UserStore
	Cfg   *config.Config

	upgrader websocket.Upgrader
}

// NewPresenceHandler creates a new PresenceHandler.
func NewPresenceHandler(db *gorm.DB, hub *presence.Hub, cfg *config.Config) *PresenceHandler {
	return &PresenceHandler{
		Hub:   hub,
		Users: store.NewUserStore(db),
		Cfg:   cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origin == cfg.Origin
			},
		},
	}
}

// Connect upgrades the request to a WebSocket. Browsers cannot set headers on
// WebSocket requests, so the access token arrives as a query parameter.
func (h *PresenceHandler) Connect(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		utils.Unauthorized(c, "A token query parameter is required")
		return
	}
	claims, err := utils.ValidateToken(token, h.Cfg.JWTSecret)
	if err != nil {
		utils.Unauthorized(c, "Invalid token")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	h.Hub.Serve(conn, claims.UserID, h.Cfg.PresenceHeartbeat)
}

// OnlineUsers returns the ids of every connected user.
func (h *PresenceHandler) OnlineUsers(c *gin.Context) {
	utils.Success(c, "Online users fetched", h.Hub.OnlineUsers())
}

// UserStatus reports whether a user is online, and their last-seen time when
// they are not.
func (h *PresenceHandler) UserStatus(c *gin.Context) {
	userID := c.Param("id")

	if h.Hub.IsOnline(userID) {
		utils.Success(c, "User status fetched", gin.H{"online": true})
		return
	}

	lastSeen, err := h.Users.LastSeen(userID)
	if err != nil {
		utils.StoreError(c, err)
		return
	}
	utils.Success(c, "User status fetched", gin.H{"online": false, "lastSeen": lastSeen})
}
