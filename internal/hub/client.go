package hub

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/food-ordering/internal/model"
	"github.com/iliyamo/food-ordering/internal/utils"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBufferSize = 16
)

// Client is a single authenticated WebSocket connection with its
// subscription scopes fixed at connect time.
type Client struct {
	userID uint64
	scopes []string
	conn   *websocket.Conn
	send   chan []byte
}

// UserLookup resolves the authenticated user at connect time. The
// token claims carry id and role; the kitchen affiliation needs the
// user record.
type UserLookup interface {
	GetByID(ctx context.Context, id uint64) (*model.User, error)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The RPC gateway owns cross-origin policy; the hub accepts the
	// same origins echo's CORS middleware admits.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handler returns the echo handler for GET /ws. The bearer credential
// comes from the Authorization header or a ?token= query parameter
// (browsers cannot set headers on WebSocket upgrades).
func (h *Hub) Handler(jwtSecret string, users UserLookup) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := c.QueryParam("token")
		if raw == "" {
			auth := c.Request().Header.Get("Authorization")
			raw = strings.TrimPrefix(auth, "Bearer ")
		}
		if raw == "" {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing token"})
		}
		claims, err := utils.VerifyAccessToken(jwtSecret, raw)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
		}
		user, err := users.GetByID(c.Request().Context(), claims.UserID)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unknown user"})
		}

		conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			// Upgrade already wrote the failure response.
			return nil
		}

		client := &Client{
			userID: user.ID,
			scopes: scopesFor(user),
			conn:   conn,
			send:   make(chan []byte, sendBufferSize),
		}
		h.register(client)
		log.Printf("hub: connected user=%d role=%s", user.ID, user.Role)

		go client.writePump(h)
		go client.readPump(h)
		return nil
	}
}

// scopesFor derives the subscription scopes from the user record:
// everyone joins their role scope, customers their own order feed,
// kitchen staff their kitchen's feed.
func scopesFor(u *model.User) []string {
	scopes := []string{RoleScope(u.Role)}
	switch u.Role {
	case model.RoleCustomer:
		scopes = append(scopes, CustomerScope(u.ID))
	case model.RoleKitchen:
		if u.KitchenCode != "" {
			scopes = append(scopes, KitchenScope(u.KitchenCode))
		}
	}
	return scopes
}

// readPump drains incoming frames. Clients do not send application
// messages; the loop exists to notice closes and answer pings.
func (c *Client) readPump(h *Hub) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
		log.Printf("hub: disconnected user=%d", c.userID)
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump forwards hub events to the peer and keeps the connection
// alive with pings.
func (c *Client) writePump(h *Hub) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
