package realtime

import (
	"testing"
)

func TestDecodePacket(t *testing.T) {
	tests := []struct {
		name      string
		frame     string
		wantType  PacketType
		wantSock  SocketType
		wantNS    string
		wantAck   string
		wantData  string
		wantError bool
	}{
		{name: "open", frame: `0{"sid":"a"}`, wantType: PacketOpen, wantData: `{"sid":"a"}`},
		{name: "ping", frame: "2", wantType: PacketPing},
		{name: "connect ack", frame: `40{"sid":"b"}`, wantType: PacketMessage, wantSock: SocketConnect, wantData: `{"sid":"b"}`},
		{name: "event", frame: `42["progress",{"progress":10}]`, wantType: PacketMessage, wantSock: SocketEvent, wantData: `["progress",{"progress":10}]`},
		{name: "namespaced event with ack", frame: `42/admin,17["x"]`, wantType: PacketMessage, wantSock: SocketEvent, wantNS: "/admin", wantAck: "17", wantData: `["x"]`},
		{name: "namespace only", frame: `41/admin`, wantType: PacketMessage, wantSock: SocketDisconnect, wantNS: "/admin"},
		{name: "empty", frame: "", wantError: true},
		{name: "unknown type", frame: "9", wantError: true},
		{name: "bare message", frame: "4", wantError: true},
		{name: "unknown socket type", frame: "49", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := DecodePacket([]byte(tt.frame))
			if tt.wantError {
				if err == nil {
					t.Fatalf("DecodePacket(%q) expected error", tt.frame)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodePacket(%q): %v", tt.frame, err)
			}
			if p.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", p.Type, tt.wantType)
			}
			if p.Socket != tt.wantSock {
				t.Errorf("Socket = %q, want %q", p.Socket, tt.wantSock)
			}
			if p.Namespace != tt.wantNS {
				t.Errorf("Namespace = %q, want %q", p.Namespace, tt.wantNS)
			}
			if p.AckID != tt.wantAck {
				t.Errorf("AckID = %q, want %q", p.AckID, tt.wantAck)
			}
			if string(p.Data) != tt.wantData {
				t.Errorf("Data = %q, want %q", p.Data, tt.wantData)
			}
		})
	}
}

func TestEncodeEvent(t *testing.T) {
	frame, err := EncodeEvent("start_analysis", map[string]string{"pr_id": "42"})
	if err != nil {
		t.Fatalf("EncodeEvent: %v", err)
	}
	want := `42["start_analysis",{"pr_id":"42"}]`
	if string(frame) != want {
		t.Errorf("frame = %s, want %s", frame, want)
	}
}

func TestEncodePacket_Namespace(t *testing.T) {
	got := EncodePacket(Packet{Type: PacketMessage, Socket: SocketEvent, Namespace: "/admin", AckID: "3", Data: []byte(`["x"]`)})
	if string(got) != `42/admin,3["x"]` {
		t.Errorf("got %s", got)
	}
	got = EncodePacket(Packet{Type: PacketMessage, Socket: SocketConnect, Namespace: "/"})
	if string(got) != "40" {
		t.Errorf("default namespace should be omitted, got %s", got)
	}
}

func TestDecodeEvent(t *testing.T) {
	name, data, err := DecodeEvent([]byte(`["analysis_error",{"error":"boom"}]`))
	if err != nil {
		t.Fatalf("DecodeEvent: %v", err)
	}
	if name != "analysis_error" {
		t.Errorf("name = %q", name)
	}
	if string(data) != `{"error":"boom"}` {
		t.Errorf("data = %s", data)
	}

	name, data, err = DecodeEvent([]byte(`["ping_only"]`))
	if err != nil || name != "ping_only" || data != nil {
		t.Errorf("no-arg event: name=%q data=%s err=%v", name, data, err)
	}

	for _, bad := range []string{`[]`, `{}`, `[1]`} {
		if _, _, err := DecodeEvent([]byte(bad)); err == nil {
			t.Errorf("DecodeEvent(%s) expected error", bad)
		}
	}
}

func TestSocketURL(t *testing.T) {
	tests := []struct {
		server, path, want string
		wantErr            bool
	}{
		{"http://localhost:5001", "/socket.io/", "ws://localhost:5001/socket.io/?EIO=4&transport=websocket", false},
		{"https://host/app/", "socket.io", "wss://host/app/socket.io/?EIO=4&transport=websocket", false},
		{"ftp://host", "/socket.io/", "", true},
	}
	for _, tt := range tests {
		got, err := socketURL(tt.server, tt.path)
		if (err != nil) != tt.wantErr {
			t.Errorf("socketURL(%q) error = %v", tt.server, err)
			continue
		}
		if got != tt.want {
			t.Errorf("socketURL(%q, %q) = %q, want %q", tt.server, tt.path, got, tt.want)
		}
	}
}
