// Package gateway is the realtime and REST surface of the server. Each
// room's connections are tracked here; all game state lives behind the
// room manager.
package gateway

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/DeafWorld/story-clash/internal/game"
	"github.com/DeafWorld/story-clash/internal/interfaces"
	"github.com/DeafWorld/story-clash/internal/types"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = 45 * time.Second
	maxMessageSize = 4096
	sendBuffer     = 64
)

// Gateway upgrades sockets, validates envelopes at the boundary, and fans
// server events out to every connection in a room.
type Gateway struct {
	rooms     *game.RoomManager
	publicURL string
	logger    *zap.Logger

	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[string]map[*client]struct{}
}

var (
	_ game.Broadcaster       = (*Gateway)(nil)
	_ interfaces.RoomService = (*game.RoomManager)(nil)
)

// NewGateway creates a new gateway
func NewGateway(rooms *game.RoomManager, publicURL string, logger *zap.Logger) *Gateway {
	g := &Gateway{
		rooms:     rooms,
		publicURL: publicURL,
		logger:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: make(map[string]map[*client]struct{}),
	}
	rooms.SetBroadcaster(g)
	return g
}

type client struct {
	gateway *Gateway
	conn    *websocket.Conn
	send    chan types.ServerEnvelope
	code    string

	mu       sync.Mutex
	playerID string
}

func (c *client) boundPlayer() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playerID
}

func (c *client) bindPlayer(playerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playerID = playerID
}

// ServeWS upgrades one connection and joins it to a room's fan-out set. The
// room code comes from the query string; the player binds on join_room.
func (g *Gateway) ServeWS(w http.ResponseWriter, r *http.Request) {
	code := game.NormalizeRoomCode(r.URL.Query().Get("code"))
	if !game.ValidRoomCode(code) {
		http.Error(w, "invalid room code", http.StatusBadRequest)
		return
	}
	if _, err := g.rooms.RoomView(code); err != nil {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}

	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{
		gateway: g,
		conn:    conn,
		send:    make(chan types.ServerEnvelope, sendBuffer),
		code:    code,
	}
	g.register(c)

	go c.writePump()
	go c.readPump()
}

func (g *Gateway) register(c *client) {
	g.mu.Lock()
	defer g.mu.Unlock()
	set, ok := g.clients[c.code]
	if !ok {
		set = make(map[*client]struct{})
		g.clients[c.code] = set
	}
	set[c] = struct{}{}
}

func (g *Gateway) unregister(c *client) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if set, ok := g.clients[c.code]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(g.clients, c.code)
		}
	}
}

func (g *Gateway) hasOtherSocket(code, playerID string, except *client) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	for c := range g.clients[code] {
		if c != except && c.boundPlayer() == playerID {
			return true
		}
	}
	return false
}

// BroadcastRoom sends one event to every connection in a room. Slow
// consumers are dropped rather than allowed to stall the room.
func (g *Gateway) BroadcastRoom(code, event string, data any) {
	g.broadcast(code, types.ServerEnvelope{Event: event, Data: data})
}

func (g *Gateway) broadcast(code string, env types.ServerEnvelope) {
	g.mu.Lock()
	targets := make([]*client, 0, len(g.clients[code]))
	for c := range g.clients[code] {
		targets = append(targets, c)
	}
	g.mu.Unlock()

	for _, c := range targets {
		select {
		case c.send <- env:
		default:
			g.logger.Warn("Dropping slow connection",
				zap.String("code", code),
				zap.String("player_id", c.boundPlayer()))
			c.conn.Close()
		}
	}
}

// CloseRoom disconnects every socket in a room.
func (g *Gateway) CloseRoom(code, reason string) {
	g.mu.Lock()
	targets := make([]*client, 0, len(g.clients[code]))
	for c := range g.clients[code] {
		targets = append(targets, c)
	}
	delete(g.clients, code)
	g.mu.Unlock()

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
	for _, c := range targets {
		c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		c.conn.Close()
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case env, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := c.conn.WriteJSON(env); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *client) readPump() {
	defer c.close()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var env types.ClientEnvelope
		if err := json.Unmarshal(raw, &env); err != nil || env.Event == "" {
			c.sendError(env.ID, "validation", "malformed envelope")
			continue
		}
		c.gateway.dispatch(c, env)
	}
}

func (c *client) close() {
	g := c.gateway
	g.unregister(c)
	c.conn.Close()

	playerID := c.boundPlayer()
	if playerID == "" || g.hasOtherSocket(c.code, playerID, c) {
		return
	}

	view, err := g.rooms.DisconnectPlayer(c.code, playerID)
	if err != nil {
		return
	}
	g.BroadcastRoom(c.code, types.EventPlayerLeft, types.PlayerLeftPayload{PlayerID: playerID})
	g.BroadcastRoom(c.code, types.EventRoomUpdated, view)
}

func (c *client) sendEnvelope(env types.ServerEnvelope) {
	select {
	case c.send <- env:
	default:
	}
}

func (c *client) sendError(id, code, message string) {
	c.sendEnvelope(types.ServerEnvelope{
		Event: types.EventServerError,
		Data:  types.ServerErrorPayload{Code: code, Message: message},
		ID:    id,
	})
}
