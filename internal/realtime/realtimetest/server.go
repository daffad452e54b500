// Package realtimetest provides an in-process Socket.IO server for tests.
package realtimetest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"prdoc/internal/realtime"
)

// Conn is the server side of one client session.
type Conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

// Emit sends an event to the client.
func (c *Conn) Emit(event string, payload interface{}) error {
	frame, err := realtime.EncodeEvent(event, payload)
	if err != nil {
		return err
	}
	return c.WriteFrame(frame)
}

// WriteFrame sends a raw text frame.
func (c *Conn) WriteFrame(frame []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteMessage(websocket.TextMessage, frame)
}

// Close drops the connection without a close packet.
func (c *Conn) Close() error { return c.ws.Close() }

// Received is an event the client sent.
type Received struct {
	Name string
	Data json.RawMessage
}

// Handler reacts to one client event. It runs on the connection's read
// goroutine.
type Handler func(c *Conn, ev Received)

// Server is a Socket.IO endpoint backed by httptest.
type Server struct {
	*httptest.Server

	// PingInterval and PingTimeout are advertised in the handshake.
	PingInterval time.Duration
	PingTimeout  time.Duration
	// RefuseConnect answers the namespace connect with connect_error.
	RefuseConnect bool

	handler Handler

	mu       sync.Mutex
	received []Received
	pongs    int
	header   http.Header
}

// NewServer starts a server that calls handler for every event it receives.
func NewServer(handler Handler) *Server {
	s := &Server{
		PingInterval: 25 * time.Second,
		PingTimeout:  20 * time.Second,
		handler:      handler,
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	return s
}

// Received returns a copy of the events seen so far.
func (s *Server) Received() []Received {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Received, len(s.received))
	copy(out, s.received)
	return out
}

// Header returns the headers of the last upgrade request.
func (s *Server) Header() http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.header.Clone()
}

// Pongs returns how many pong packets the client sent.
func (s *Server) Pongs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pongs
}

var upgrader = websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.URL.Path, "/socket.io/") || r.URL.Query().Get("EIO") != "4" {
		http.NotFound(w, r)
		return
	}
	s.mu.Lock()
	s.header = r.Header.Clone()
	s.mu.Unlock()

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &Conn{ws: ws}
	defer ws.Close()

	open, _ := json.Marshal(map[string]interface{}{
		"sid":          "test-sid",
		"upgrades":     []string{},
		"pingInterval": s.PingInterval.Milliseconds(),
		"pingTimeout":  s.PingTimeout.Milliseconds(),
		"maxPayload":   1000000,
	})
	if err := c.WriteFrame(append([]byte{'0'}, open...)); err != nil {
		return
	}

	for {
		_, frame, err := ws.ReadMessage()
		if err != nil {
			return
		}
		p, err := realtime.DecodePacket(frame)
		if err != nil {
			continue
		}
		switch {
		case p.Type == realtime.PacketPong:
			s.mu.Lock()
			s.pongs++
			s.mu.Unlock()
		case p.Type == realtime.PacketMessage && p.Socket == realtime.SocketConnect:
			if s.RefuseConnect {
				c.WriteFrame([]byte(`44{"message":"not authorized"}`))
				return
			}
			c.WriteFrame([]byte(`40{"sid":"ns-sid"}`))
		case p.Type == realtime.PacketMessage && p.Socket == realtime.SocketDisconnect:
			return
		case p.Type == realtime.PacketMessage && p.Socket == realtime.SocketEvent:
			name, data, err := realtime.DecodeEvent(p.Data)
			if err != nil {
				continue
			}
			ev := Received{Name: name, Data: data}
			s.mu.Lock()
			s.received = append(s.received, ev)
			s.mu.Unlock()
			if s.handler != nil {
				s.handler(c, ev)
			}
		}
	}
}
