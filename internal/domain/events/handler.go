package events

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"imagedrop/internal/pkg/jwt"
	"imagedrop/internal/pkg/response"
)

type Handler struct {
	hub        *Hub
	jwtService *jwt.Service
}

func NewHandler(hub *Hub, jwtService *jwt.Service) *Handler {
	return &Handler{hub: hub, jwtService: jwtService}
}

// HandleWebSocket streams intake events for the token's user.
//
// Endpoint: GET /ws/intake?token=JWT
// Browsers cannot set headers on websocket requests, so the token travels in the query.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "Token is required")
		return
	}

	claims, err := h.jwtService.ValidateToken(token)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "Invalid token")
		return
	}

	if err := h.hub.ServeWS(c.Writer, c.Request, claims.UserID); err != nil {
		h.hub.log.Warn("websocket upgrade failed", "user_id", claims.UserID, "error", err)
	}
}

func RegisterRoutes(r *gin.Engine, h *Handler) {
	r.GET("/ws/intake", h.HandleWebSocket)
}
