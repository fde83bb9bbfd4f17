package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/mcdev12/matchday/go/internal/outbox"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// HubConfig holds configuration for WebSocket connections.
type HubConfig struct {
	WriteTimeout    time.Duration
	PongTimeout     time.Duration
	PingInterval    time.Duration
	SendBufferSize  int
	ReadBufferSize  int
	WriteBufferSize int
	CheckOrigin     func(r *http.Request) bool
}

// DefaultHubConfig returns the default WebSocket configuration.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		WriteTimeout:    10 * time.Second,
		PongTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		SendBufferSize:  32,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			// allow all origins in development
			return true
		},
	}
}

// Hub fans game events out to WebSocket subscribers. Connections are pooled
// per game; events arrive from the message bus, so every instance behind a
// load balancer sees the same stream.
type Hub struct {
	gameConns map[uuid.UUID]map[*wsConn]bool
	mu        sync.RWMutex

	upgrader    websocket.Upgrader
	config      HubConfig
	broadcastCh chan broadcast
	logger      zerolog.Logger
}

type broadcast struct {
	gameID  uuid.UUID
	message []byte
}

type wsConn struct {
	gameID uuid.UUID
	conn   *websocket.Conn
	send   chan []byte
}

func NewHub(config HubConfig, logger zerolog.Logger) *Hub {
	return &Hub{
		gameConns: make(map[uuid.UUID]map[*wsConn]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:      config,
		broadcastCh: make(chan broadcast, 256),
		logger:      logger,
	}
}

// Start processes broadcasts until the context is cancelled.
func (h *Hub) Start(ctx context.Context) {
	h.logger.Info().Msg("websocket hub started")
	for {
		select {
		case <-ctx.Done():
			h.logger.Info().Msg("websocket hub shutting down")
			h.closeAll()
			return
		case b := <-h.broadcastCh:
			h.deliver(b)
		}
	}
}

// SubscribeBus wires the hub to the outbox event stream on NATS. Subjects
// follow the publisher's layout: <prefix>.game.<EventType>.
func (h *Hub) SubscribeBus(nc *nats.Conn, subjectPrefix string) (*nats.Subscription, error) {
	subject := fmt.Sprintf("%s.game.>", subjectPrefix)
	sub, err := nc.Subscribe(subject, func(msg *nats.Msg) {
		var env outbox.Envelope
		if err := json.Unmarshal(msg.Data, &env); err != nil {
			h.logger.Error().Err(err).Str("subject", msg.Subject).Msg("failed to decode bus event")
			return
		}
		gameID, err := uuid.Parse(env.GameID)
		if err != nil {
			h.logger.Error().Err(err).Str("game_id", env.GameID).Msg("bus event carries bad game id")
			return
		}
		h.Broadcast(gameID, msg.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}
	return sub, nil
}

// Broadcast queues a message for every subscriber of a game. Drops the
// message if the hub's queue is full rather than blocking the caller.
func (h *Hub) Broadcast(gameID uuid.UUID, message []byte) {
	select {
	case h.broadcastCh <- broadcast{gameID: gameID, message: message}:
	default:
		h.logger.Warn().Str("game_id", gameID.String()).Msg("broadcast queue full, dropping event")
	}
}

// ServeWS upgrades the request and joins the caller to a game's feed.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, gameID uuid.UUID) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to upgrade websocket connection")
		return
	}

	c := &wsConn{
		gameID: gameID,
		conn:   conn,
		send:   make(chan []byte, h.config.SendBufferSize),
	}
	h.register(c)

	go h.writePump(c)
	go h.readPump(c)
}

func (h *Hub) register(c *wsConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.gameConns[c.gameID] == nil {
		h.gameConns[c.gameID] = make(map[*wsConn]bool)
	}
	h.gameConns[c.gameID][c] = true
}

func (h *Hub) unregister(c *wsConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.gameConns[c.gameID]; ok && conns[c] {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.gameConns, c.gameID)
		}
		close(c.send)
	}
}

func (h *Hub) deliver(b broadcast) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.gameConns[b.gameID] {
		select {
		case c.send <- b.message:
		default:
			// slow consumer, skip
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for gameID, conns := range h.gameConns {
		for c := range conns {
			close(c.send)
		}
		delete(h.gameConns, gameID)
	}
}

// readPump drains client messages (the feed is one-way) and keeps the pong
// deadline fresh.
func (h *Hub) readPump(c *wsConn) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(h.config.PongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(h.config.PongTimeout))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *wsConn) {
	ticker := time.NewTicker(h.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
