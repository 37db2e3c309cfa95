package realtime

import (
	"log/slog"
	"sync"
	"time"

	"github.com/mcoot/teamscore/internal/metrics"
	"github.com/mcoot/teamscore/internal/model"
)

// RoomKey scopes a category room to one competition
type RoomKey struct {
	CompetitionID model.CompetitionID
	Room          model.RoomID
}

// Frame is one encoded event ready to be written to any transport
type Frame struct {
	Event string
	Data  []byte
}

// Hub fans frames out to the clients of a single room
type Hub struct {
	key     RoomKey
	clients map[*Client]bool
	mu      sync.RWMutex
	logger  *slog.Logger
	metrics *metrics.Recorder

	// Channels for managing clients
	register   chan *Client
	unregister chan *Client
	broadcast  chan Frame
	done       chan struct{}
	closeOnce  sync.Once
}

// NewHub creates a new Hub for a room
func NewHub(key RoomKey, logger *slog.Logger, recorder *metrics.Recorder) *Hub {
	return &Hub{
		key:     key,
		clients: make(map[*Client]bool),
		logger: logger.With(
			slog.String("competition_id", string(key.CompetitionID)),
			slog.String("room", string(key.Room)),
		),
		metrics:    recorder,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Frame, 256),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	h.logger.Info("room hub started")
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			clientCount := len(h.clients)
			h.mu.Unlock()
			h.metrics.ClientConnected()
			h.logger.Info("room client registered",
				slog.String("subject", client.subject),
				slog.Int("total_clients", clientCount))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				clientCount := len(h.clients)
				h.mu.Unlock()
				h.metrics.ClientDisconnected()
				h.logger.Info("room client unregistered",
					slog.String("subject", client.subject),
					slog.Duration("connection_duration", time.Since(client.connectedAt)),
					slog.Int("total_clients", clientCount))
			} else {
				h.mu.Unlock()
			}

		case frame := <-h.broadcast:
			h.mu.RLock()
			sentCount := 0
			droppedCount := 0
			for client := range h.clients {
				select {
				case client.send <- frame:
					sentCount++
				default:
					droppedCount++
					h.metrics.EventDropped()
					h.logger.Warn("room message dropped - client buffer full",
						slog.String("subject", client.subject))
				}
			}
			h.mu.RUnlock()
			if droppedCount > 0 {
				h.logger.Warn("room broadcast partial failure",
					slog.String("event", frame.Event),
					slog.Int("sent", sentCount),
					slog.Int("dropped", droppedCount))
			}

		case <-h.done:
			h.mu.Lock()
			clientCount := len(h.clients)
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
				h.metrics.ClientDisconnected()
			}
			h.mu.Unlock()
			h.logger.Info("room hub stopped", slog.Int("disconnected_clients", clientCount))
			return
		}
	}
}

// Register adds a client to the hub. It reports false if the hub has stopped.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Broadcast sends a frame to all clients
func (h *Hub) Broadcast(frame Frame) {
	select {
	case h.broadcast <- frame:
	case <-h.done:
	default:
		h.metrics.EventDropped()
		h.logger.Warn("room broadcast dropped - hub buffer full", slog.String("event", frame.Event))
	}
}

// Close shuts down the hub
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HubManager manages hubs for all rooms
type HubManager struct {
	hubs    map[RoomKey]*Hub
	mu      sync.RWMutex
	logger  *slog.Logger
	metrics *metrics.Recorder
}

// NewHubManager creates a new HubManager
func NewHubManager(logger *slog.Logger, recorder *metrics.Recorder) *HubManager {
	return &HubManager{
		hubs:    make(map[RoomKey]*Hub),
		logger:  logger.With(slog.String("component", "realtime")),
		metrics: recorder,
	}
}

// GetOrCreateHub returns the hub for a room, creating one if it doesn't exist
func (m *HubManager) GetOrCreateHub(key RoomKey) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[key]; ok {
		return hub
	}

	hub := NewHub(key, m.logger, m.metrics)
	m.hubs[key] = hub
	go hub.Run()
	return hub
}

// GetHub returns the hub for a room, or nil if it doesn't exist
func (m *HubManager) GetHub(key RoomKey) *Hub {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hubs[key]
}

// Join registers the client with the room's hub, recreating the hub if it was
// cleaned up while the client was joining
func (m *HubManager) Join(key RoomKey, client *Client) *Hub {
	for {
		hub := m.GetOrCreateHub(key)
		if hub.Register(client) {
			return hub
		}
	}
}

// RemoveHub removes and closes a hub
func (m *HubManager) RemoveHub(key RoomKey) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[key]; ok {
		hub.Close()
		delete(m.hubs, key)
		m.logger.Info("room hub removed", slog.String("room", string(key.Room)))
	}
}

// CleanupEmptyHubs removes hubs with no clients
func (m *HubManager) CleanupEmptyHubs() {
	m.mu.Lock()
	defer m.mu.Unlock()

	removedCount := 0
	for key, hub := range m.hubs {
		if hub.ClientCount() == 0 {
			hub.Close()
			delete(m.hubs, key)
			removedCount++
		}
	}
	if removedCount > 0 {
		m.logger.Info("empty room hubs cleaned up", slog.Int("removed", removedCount))
	}
}

// Shutdown closes every hub, disconnecting all clients
func (m *HubManager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, hub := range m.hubs {
		hub.Close()
		delete(m.hubs, key)
	}
}

// HubCount returns the number of live hubs
func (m *HubManager) HubCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.hubs)
}
