// Package realtime is a minimal Socket.IO (Engine.IO v4) client over a
// WebSocket. It covers what the analysis server uses: the default namespace,
// JSON events and heartbeats. Reconnection is left to the caller.
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"prdoc/internal/log"
	"prdoc/internal/model"
)

// ErrClosed is returned by Emit after the connection has ended.
var ErrClosed = errors.New("realtime: connection closed")

// Event is one server notification. Connect and disconnect are synthesised
// by the client and carry no data.
type Event struct {
	Name string
	Data json.RawMessage
}

type handshake struct {
	SID          string `json:"sid"`
	PingInterval int    `json:"pingInterval"`
	PingTimeout  int    `json:"pingTimeout"`
}

type options struct {
	path   string
	dialer *websocket.Dialer
	header http.Header
	buffer int
}

// Option customises Dial.
type Option func(*options)

// WithPath sets the Socket.IO endpoint path (default "/socket.io/").
func WithPath(p string) Option { return func(o *options) { o.path = p } }

// WithDialer overrides the WebSocket dialer.
func WithDialer(d *websocket.Dialer) Option { return func(o *options) { o.dialer = d } }

// WithHeader adds headers to the upgrade request.
func WithHeader(h http.Header) Option { return func(o *options) { o.header = h } }

// Client is a connected Socket.IO session.
type Client struct {
	conn     *websocket.Conn
	sid      string
	deadline time.Duration

	events chan Event
	done   chan struct{}

	writeMu   sync.Mutex
	closeOnce sync.Once
}

// Dial opens the WebSocket, completes the Engine.IO handshake and joins the
// default namespace. ctx bounds the handshake only.
func Dial(ctx context.Context, serverURL string, opts ...Option) (*Client, error) {
	o := options{path: "/socket.io/", dialer: websocket.DefaultDialer, buffer: 64}
	for _, opt := range opts {
		opt(&o)
	}

	endpoint, err := socketURL(serverURL, o.path)
	if err != nil {
		return nil, err
	}

	conn, _, err := o.dialer.DialContext(ctx, endpoint, o.header)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", endpoint, err)
	}

	if dl, ok := ctx.Deadline(); ok {
		conn.SetReadDeadline(dl)
	}

	hs, err := readOpen(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}

	if err := conn.WriteMessage(websocket.TextMessage,
		EncodePacket(Packet{Type: PacketMessage, Socket: SocketConnect})); err != nil {
		conn.Close()
		return nil, fmt.Errorf("namespace connect: %w", err)
	}
	if err := readConnectAck(conn); err != nil {
		conn.Close()
		return nil, err
	}

	c := &Client{
		conn:     conn,
		sid:      hs.SID,
		deadline: time.Duration(hs.PingInterval+hs.PingTimeout) * time.Millisecond,
		events:   make(chan Event, o.buffer),
		done:     make(chan struct{}),
	}
	conn.SetReadDeadline(c.nextDeadline())

	log.WithField("sid", c.sid).Info("realtime connected")
	c.events <- Event{Name: model.EventConnect}
	go c.readLoop()
	return c, nil
}

// SID is the Engine.IO session id assigned by the server.
func (c *Client) SID() string { return c.sid }

// Events delivers server events in arrival order. The channel is closed after
// the disconnect event.
func (c *Client) Events() <-chan Event { return c.events }

// Emit sends one event with a JSON payload.
func (c *Client) Emit(event string, payload interface{}) error {
	frame, err := EncodeEvent(event, payload)
	if err != nil {
		return err
	}
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	if err := c.write(frame); err != nil {
		return fmt.Errorf("emit %s: %w", event, err)
	}
	log.Debugf("realtime emit %s", event)
	return nil
}

// Close leaves the namespace and closes the connection.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		c.write(EncodePacket(Packet{Type: PacketMessage, Socket: SocketDisconnect}))
		err = c.conn.Close()
	})
	return err
}

func (c *Client) write(frame []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.conn.WriteMessage(websocket.TextMessage, frame)
}

func (c *Client) nextDeadline() time.Time {
	if c.deadline <= 0 {
		return time.Time{}
	}
	return time.Now().Add(c.deadline)
}

func (c *Client) readLoop() {
	defer func() {
		c.deliver(Event{Name: model.EventDisconnect})
		c.Close()
		close(c.events)
	}()

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.done:
			default:
				log.Warnf("realtime read: %v", err)
			}
			return
		}
		c.conn.SetReadDeadline(c.nextDeadline())

		p, err := DecodePacket(frame)
		if err != nil {
			log.Warnf("realtime: dropping frame: %v", err)
			continue
		}

		switch p.Type {
		case PacketPing:
			if err := c.write(EncodePacket(Packet{Type: PacketPong, Data: p.Data})); err != nil {
				log.Warnf("realtime pong: %v", err)
				return
			}
		case PacketClose:
			log.Info("realtime: server closed the session")
			return
		case PacketMessage:
			switch p.Socket {
			case SocketEvent:
				name, data, err := DecodeEvent(p.Data)
				if err != nil {
					log.Warnf("realtime: %v", err)
					continue
				}
				if !c.deliver(Event{Name: name, Data: data}) {
					return
				}
			case SocketDisconnect:
				log.Info("realtime: server left the namespace")
				return
			}
		}
	}
}

// deliver hands ev to the consumer unless the client is closing.
func (c *Client) deliver(ev Event) bool {
	select {
	case c.events <- ev:
		return true
	case <-c.done:
		return false
	}
}

func readOpen(conn *websocket.Conn) (handshake, error) {
	var hs handshake
	_, frame, err := conn.ReadMessage()
	if err != nil {
		return hs, fmt.Errorf("read open packet: %w", err)
	}
	p, err := DecodePacket(frame)
	if err != nil {
		return hs, fmt.Errorf("open packet: %w", err)
	}
	if p.Type != PacketOpen {
		return hs, fmt.Errorf("expected open packet, got %q", byte(p.Type))
	}
	if err := json.Unmarshal(p.Data, &hs); err != nil {
		return hs, fmt.Errorf("decode handshake: %w", err)
	}
	return hs, nil
}

func readConnectAck(conn *websocket.Conn) error {
	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read connect ack: %w", err)
		}
		p, err := DecodePacket(frame)
		if err != nil {
			return fmt.Errorf("connect ack: %w", err)
		}
		switch {
		case p.Type == PacketPing:
			if err := conn.WriteMessage(websocket.TextMessage, EncodePacket(Packet{Type: PacketPong})); err != nil {
				return fmt.Errorf("pong: %w", err)
			}
		case p.Type == PacketMessage && p.Socket == SocketConnect:
			return nil
		case p.Type == PacketMessage && p.Socket == SocketConnectError:
			var e struct {
				Message string `json:"message"`
			}
			json.Unmarshal(p.Data, &e)
			return fmt.Errorf("namespace connect refused: %s", e.Message)
		default:
			return fmt.Errorf("unexpected packet %q during connect", frame)
		}
	}
}

// socketURL turns an http(s) server URL into the Engine.IO WebSocket endpoint.
func socketURL(serverURL, path string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("parse server url: %w", err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported server url scheme %q", u.Scheme)
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	u.Path = strings.TrimRight(u.Path, "/") + path
	q := u.Query()
	q.Set("EIO", "4")
	q.Set("transport", "websocket")
	u.RawQuery = q.Encode()
	return u.String(), nil
}
