package realtime

import (
	"time"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time between keepalive pings
	pingPeriod = 30 * time.Second

	// Time allowed to read the next pong from a websocket peer
	pongWait = 60 * time.Second

	// Largest inbound websocket message accepted
	maxMessageSize = 4096

	// Buffer size for outgoing messages
	sendBufferSize = 256
)

// Client is one room membership. A transport session owns at most one at a time.
type Client struct {
	subject     string
	send        chan Frame
	connectedAt time.Time
}

// NewClient creates a new room client for the subject
func NewClient(subject string) *Client {
	return &Client{
		subject:     subject,
		send:        make(chan Frame, sendBufferSize),
		connectedAt: time.Now(),
	}
}

// Frames returns the channel of frames delivered to this client. It is closed
// when the client leaves the room or the hub stops.
func (c *Client) Frames() <-chan Frame {
	return c.send
}
