package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/ardakaya/car-market/internal/broker"
	"github.com/ardakaya/car-market/internal/utils"
	"github.com/ardakaya/car-market/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // add origin check in production
	},
}

type feedClient struct {
	conn     *websocket.Conn
	userID   uint
	username string
}

// EventsHandler streams car events to connected clients over websockets.
// The feed is read-only: clients never send application frames, only
// pong control frames in response to pings.
type EventsHandler struct {
	broker  broker.CarBroker
	clients map[*websocket.Conn]*feedClient
	mu      sync.RWMutex
}

func NewEventsHandler(carBroker broker.CarBroker) *EventsHandler {
	return &EventsHandler{
		broker:  carBroker,
		clients: make(map[*websocket.Conn]*feedClient),
	}
}

// Run subscribes to the car event channel and fans incoming events out to
// every connected client. Blocks until the context is cancelled; run it in
// its own goroutine.
func (h *EventsHandler) Run(ctx context.Context) error {
	events, err := h.broker.Subscribe(ctx)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				return nil
			}
			h.broadcast(event)
		}
	}
}

// HandleFeed upgrades an authenticated request to a websocket connection and
// keeps it registered until the peer disconnects.
// GET /api/cars/feed
func (h *EventsHandler) HandleFeed(c *gin.Context) {
	claimsValue, exists := c.Get("claims")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No token provided"})
		return
	}

	claims, ok := claimsValue.(*utils.Claims)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Log.Warn("Failed to upgrade connection",
			zap.String("username", claims.Username),
			zap.Error(err),
		)
		return
	}

	client := &feedClient{
		conn:     conn,
		userID:   claims.UserID,
		username: claims.Username,
	}

	h.mu.Lock()
	h.clients[conn] = client
	total := len(h.clients)
	h.mu.Unlock()

	logger.Log.Info("Event feed client connected",
		zap.String("username", client.username),
		zap.Int("total", total),
	)

	defer h.removeClient(conn)

	h.keepAlive(client)
}

// keepAlive pings the client periodically and drains inbound frames so pong
// handlers fire. Returns when the connection drops.
func (h *EventsHandler) keepAlive(client *feedClient) {
	client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		client.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	done := make(chan struct{})
	defer close(done)

	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				client.conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Log.Debug("Event feed read error",
					zap.String("username", client.username),
					zap.Error(err),
				)
			}
			return
		}
		// Inbound application frames are ignored, the feed is one-way.
	}
}

func (h *EventsHandler) broadcast(event broker.CarEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(event); err != nil {
			logger.Log.Debug("Failed to send event to client",
				zap.Error(err),
			)
			// keepAlive does the cleanup when the read side fails
		}
	}
}

func (h *EventsHandler) removeClient(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, exists := h.clients[conn]
	if exists {
		delete(h.clients, conn)
		conn.Close()

		logger.Log.Info("Event feed client disconnected",
			zap.String("username", client.username),
			zap.Int("remaining", len(h.clients)),
		)
	}
}
