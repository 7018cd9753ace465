package realtime

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"art-market/config"
	"art-market/internal/service"
	"art-market/pkg/jwt"
	"art-market/pkg/logger"
	"art-market/pkg/redis"
	"art-market/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Gateway is the authenticated push channel. The handshake verifies the
// same bearer credential the REST boundary accepts; an invalid token is
// refused before any channel exists. Inbound send_message events run
// through the shared MessageService, so sanitization and side effects are
// identical to the REST path.
type Gateway struct {
	hub      *Hub
	messages *service.MessageService
	jwtSvc   *jwt.JWTService
	cfg      config.WebSocketConfig
}

func NewGateway(hub *Hub, messages *service.MessageService, jwtSvc *jwt.JWTService, cfg config.WebSocketConfig) *Gateway {
	return &Gateway{hub: hub, messages: messages, jwtSvc: jwtSvc, cfg: cfg}
}

// inboundEvent is the client-to-server frame.
type inboundEvent struct {
	Type       string `json:"type"`
	ReceiverID uint   `json:"receiver_id"`
	Content    string `json:"content"`
	OrderRef   *uint  `json:"order_ref"`
}

// errorEvent goes back to the originating session only.
type errorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Handler upgrades GET /ws. Token comes from the query string or the
// Sec-WebSocket-Protocol header (Bearer form), since browser websocket
// clients cannot set Authorization.
func (g *Gateway) Handler(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token = strings.TrimPrefix(c.GetHeader("Sec-WebSocket-Protocol"), "Bearer ")
	}
	if token == "" {
		response.Unauthorized(c, "missing token")
		return
	}

	claims, err := g.jwtSvc.ValidateToken(token)
	if err != nil {
		response.Unauthorized(c, "invalid or expired token")
		return
	}
	userID := claims.UserID()
	if userID == 0 {
		response.Unauthorized(c, "invalid token subject")
		return
	}

	// echo the subprotocol so clients that tunnelled the token through it
	// don't drop the connection
	respHeader := http.Header{}
	if protocol := c.GetHeader("Sec-WebSocket-Protocol"); protocol != "" {
		respHeader.Set("Sec-WebSocket-Protocol", protocol)
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, respHeader)
	if err != nil {
		return
	}

	client := NewClient(userID)
	g.hub.Register(client)
	if err := redis.SetUserPresence(userID, "online"); err != nil {
		logger.Debug("presence update skipped", zap.Error(err))
	}
	logger.Info("websocket connected", zap.Uint("user_id", userID))

	defer func() {
		g.hub.Unregister(client)
		_ = conn.Close()
		if err := redis.SetUserPresence(userID, "offline"); err != nil {
			logger.Debug("presence update skipped", zap.Error(err))
		}
		logger.Info("websocket disconnected", zap.Uint("user_id", userID))
	}()

	go g.writePump(conn, client)
	g.readLoop(conn, client)
}

// writePump is the only writer on the connection: queued payloads plus
// periodic pings. Returns when the client is unregistered or the peer is
// gone.
func (g *Gateway) writePump(conn *websocket.Conn, client *Client) {
	ticker := time.NewTicker(g.cfg.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case payload, ok := <-client.Send:
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second)); err != nil {
				return
			}
		}
	}
}

// readLoop decodes inbound frames until the connection drops. A malformed
// frame or a rejected send answers the originating session with an error
// event; it never affects other connections.
func (g *Gateway) readLoop(conn *websocket.Conn, client *Client) {
	_ = conn.SetReadDeadline(time.Now().Add(g.cfg.ReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(g.cfg.ReadTimeout))
	})

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(g.cfg.ReadTimeout))

		var event inboundEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			g.sendError(client, "malformed payload")
			continue
		}

		switch event.Type {
		case "send_message":
			// delivery to both participants' sessions happens inside Send
			if _, err := g.messages.Send(client.UserID, event.ReceiverID, event.Content, event.OrderRef); err != nil {
				g.sendError(client, err.Error())
			}
		case "heartbeat":
			if err := redis.RefreshUserPresence(client.UserID); err != nil {
				logger.Debug("presence refresh skipped", zap.Error(err))
			}
		default:
			g.sendError(client, "unknown event type")
		}
	}
}

func (g *Gateway) sendError(client *Client, message string) {
	payload, err := json.Marshal(errorEvent{Type: "error", Message: message})
	if err != nil {
		return
	}
	g.hub.SendToClient(client, payload)
}
