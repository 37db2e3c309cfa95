package realtime

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/teamscore/internal/model"
)

// Inbound message types
const (
	MessageJoinRoom  = "join_room"
	MessageLeaveRoom = "leave_room"
)

// Outbound control events
const (
	EventRoomJoined = "room_joined"
	EventRoomLeft   = "room_left"
	EventError      = "error"
)

// ClientMessage is a frame sent by a websocket client
type ClientMessage struct {
	Type   string       `json:"type"`
	RoomID model.RoomID `json:"roomId,omitempty"`
}

type wireFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// wsSession is one websocket connection. It belongs to at most one room at a
// time; joining another room leaves the current one first.
type wsSession struct {
	conn          *websocket.Conn
	manager       *HubManager
	competitionID model.CompetitionID
	subject       string
	logger        *slog.Logger

	out  chan Frame
	done chan struct{}

	mu     sync.Mutex
	hub    *Hub
	client *Client
	room   model.RoomID
}

// ServeWS upgrades the request and serves room membership over a websocket
// until the peer disconnects
func ServeWS(w http.ResponseWriter, r *http.Request, manager *HubManager, competitionID model.CompetitionID, subject string, logger *slog.Logger) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied with an HTTP error
		logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	s := &wsSession{
		conn:          conn,
		manager:       manager,
		competitionID: competitionID,
		subject:       subject,
		logger:        logger.With(slog.String("subject", subject)),
		out:           make(chan Frame, sendBufferSize),
		done:          make(chan struct{}),
	}

	go s.writePump()
	s.readPump()
}

// readPump handles client messages until the connection fails
func (s *wsSession) readPump() {
	defer func() {
		s.leave()
		close(s.done)
		_ = s.conn.Close()
	}()

	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg ClientMessage
		if err := s.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn("websocket read failed", slog.Any("error", err))
			}
			return
		}

		switch msg.Type {
		case MessageJoinRoom:
			s.join(msg.RoomID)
		case MessageLeaveRoom:
			room := s.leave()
			s.control(EventRoomLeft, map[string]any{"roomId": room})
		default:
			s.control(EventError, map[string]any{"message": "unknown message type", "type": msg.Type})
		}
	}
}

// writePump serialises every outbound frame and keeps the connection alive
func (s *wsSession) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case frame := <-s.out:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(wireFrame{Event: frame.Event, Data: frame.Data}); err != nil {
				return
			}

		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-s.done:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = s.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (s *wsSession) join(room model.RoomID) {
	if _, err := model.ParseRoomID(room); err != nil {
		s.control(EventError, map[string]any{"message": err.Error(), "roomId": room})
		return
	}

	s.leave()

	client := NewClient(s.subject)
	hub := s.manager.Join(RoomKey{CompetitionID: s.competitionID, Room: room}, client)

	s.mu.Lock()
	s.hub, s.client, s.room = hub, client, room
	s.mu.Unlock()

	go s.forward(client)
	s.control(EventRoomJoined, map[string]any{"roomId": room})
}

// leave drops the current room membership, returning the room left
func (s *wsSession) leave() model.RoomID {
	s.mu.Lock()
	hub, client, room := s.hub, s.client, s.room
	s.hub, s.client, s.room = nil, nil, ""
	s.mu.Unlock()

	if hub != nil {
		hub.Unregister(client)
	}
	return room
}

// forward copies a membership's frames onto the session until it ends
func (s *wsSession) forward(client *Client) {
	for frame := range client.send {
		s.enqueue(frame)
	}
}

func (s *wsSession) control(event string, data any) {
	body, err := json.Marshal(data)
	if err != nil {
		return
	}
	s.enqueue(Frame{Event: event, Data: body})
}

func (s *wsSession) enqueue(frame Frame) {
	select {
	case s.out <- frame:
	case <-s.done:
	default:
		s.manager.metrics.EventDropped()
		s.logger.Warn("websocket frame dropped - session buffer full", slog.String("event", frame.Event))
	}
}
