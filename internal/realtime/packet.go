package realtime

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// PacketType is the Engine.IO v4 packet type, the first byte of a text frame.
type PacketType byte

const (
	PacketOpen    PacketType = '0'
	PacketClose   PacketType = '1'
	PacketPing    PacketType = '2'
	PacketPong    PacketType = '3'
	PacketMessage PacketType = '4'
	PacketUpgrade PacketType = '5'
	PacketNoop    PacketType = '6'
)

// SocketType is the Socket.IO packet type carried inside an Engine.IO message.
type SocketType byte

const (
	SocketConnect      SocketType = '0'
	SocketDisconnect   SocketType = '1'
	SocketEvent        SocketType = '2'
	SocketAck          SocketType = '3'
	SocketConnectError SocketType = '4'
)

// Packet is one decoded text frame. Socket, Namespace and AckID are only set
// for PacketMessage frames.
type Packet struct {
	Type      PacketType
	Socket    SocketType
	Namespace string
	AckID     string
	Data      []byte
}

var errEmptyFrame = errors.New("empty frame")

// DecodePacket parses an Engine.IO text frame, including the Socket.IO
// header of message frames.
func DecodePacket(frame []byte) (Packet, error) {
	if len(frame) == 0 {
		return Packet{}, errEmptyFrame
	}
	p := Packet{Type: PacketType(frame[0])}
	switch p.Type {
	case PacketOpen, PacketClose, PacketPing, PacketPong, PacketUpgrade, PacketNoop:
		p.Data = frame[1:]
		return p, nil
	case PacketMessage:
	default:
		return Packet{}, fmt.Errorf("unknown packet type %q", frame[0])
	}

	rest := frame[1:]
	if len(rest) == 0 {
		return Packet{}, errors.New("message frame without socket type")
	}
	p.Socket = SocketType(rest[0])
	switch p.Socket {
	case SocketConnect, SocketDisconnect, SocketEvent, SocketAck, SocketConnectError:
	default:
		return Packet{}, fmt.Errorf("unknown socket packet type %q", rest[0])
	}
	rest = rest[1:]

	if len(rest) > 0 && rest[0] == '/' {
		i := bytes.IndexByte(rest, ',')
		if i < 0 {
			p.Namespace = string(rest)
			return p, nil
		}
		p.Namespace = string(rest[:i])
		rest = rest[i+1:]
	}

	i := 0
	for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
		i++
	}
	p.AckID = string(rest[:i])
	p.Data = rest[i:]
	return p, nil
}

// EncodePacket renders p as a text frame.
func EncodePacket(p Packet) []byte {
	var b bytes.Buffer
	b.WriteByte(byte(p.Type))
	if p.Type == PacketMessage {
		b.WriteByte(byte(p.Socket))
		if p.Namespace != "" && p.Namespace != "/" {
			b.WriteString(p.Namespace)
			b.WriteByte(',')
		}
		b.WriteString(p.AckID)
	}
	b.Write(p.Data)
	return b.Bytes()
}

// EncodeEvent renders an event frame for the default namespace.
func EncodeEvent(name string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal([]interface{}{name, payload})
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", name, err)
	}
	return EncodePacket(Packet{Type: PacketMessage, Socket: SocketEvent, Data: data}), nil
}

// DecodeEvent splits event data (a JSON array) into its name and first
// argument. Events without an argument have a nil payload.
func DecodeEvent(data []byte) (string, json.RawMessage, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return "", nil, fmt.Errorf("decode event: %w", err)
	}
	if len(parts) == 0 {
		return "", nil, errors.New("decode event: empty array")
	}
	var name string
	if err := json.Unmarshal(parts[0], &name); err != nil {
		return "", nil, fmt.Errorf("decode event name: %w", err)
	}
	if len(parts) == 1 {
		return name, nil, nil
	}
	return name, parts[1], nil
}
