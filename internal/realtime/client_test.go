package realtime_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"prdoc/internal/model"
	"prdoc/internal/realtime"
	"prdoc/internal/realtime/realtimetest"
)

func next(t *testing.T, c *realtime.Client) realtime.Event {
	t.Helper()
	select {
	case ev, ok := <-c.Events():
		if !ok {
			t.Fatal("events channel closed")
		}
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return realtime.Event{}
}

func dial(t *testing.T, srv *realtimetest.Server) *realtime.Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c, err := realtime.Dial(ctx, srv.URL)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestClient_EmitAndReceive(t *testing.T) {
	srv := realtimetest.NewServer(func(c *realtimetest.Conn, ev realtimetest.Received) {
		if ev.Name != model.EventStartAnalysis {
			return
		}
		c.Emit(model.EventProgress, model.ProgressEvent{Progress: 50, Message: "Fetching PR"})
		c.Emit(model.EventComplete, map[string]interface{}{"code_review": "x"})
	})
	defer srv.Close()

	c := dial(t, srv)
	if c.SID() != "test-sid" {
		t.Errorf("SID = %q", c.SID())
	}
	if ev := next(t, c); ev.Name != model.EventConnect {
		t.Fatalf("first event = %q, want connect", ev.Name)
	}

	if err := c.Emit(model.EventStartAnalysis, map[string]string{"pr_id": "42"}); err != nil {
		t.Fatalf("Emit: %v", err)
	}

	ev := next(t, c)
	if ev.Name != model.EventProgress {
		t.Fatalf("event = %q, want progress", ev.Name)
	}
	var p model.ProgressEvent
	if err := json.Unmarshal(ev.Data, &p); err != nil {
		t.Fatalf("decode progress: %v", err)
	}
	if p.Progress != 50 || p.Message != "Fetching PR" {
		t.Errorf("progress = %+v", p)
	}

	if ev := next(t, c); ev.Name != model.EventComplete {
		t.Errorf("event = %q, want analysis_complete", ev.Name)
	}

	got := srv.Received()
	if len(got) != 1 || got[0].Name != model.EventStartAnalysis || string(got[0].Data) != `{"pr_id":"42"}` {
		t.Errorf("server received %+v", got)
	}
}

func TestClient_AnswersPing(t *testing.T) {
	srv := realtimetest.NewServer(func(c *realtimetest.Conn, ev realtimetest.Received) {
		c.WriteFrame([]byte("2"))
		c.Emit("pinged", nil)
	})
	defer srv.Close()

	c := dial(t, srv)
	next(t, c) // connect
	c.Emit("hello", nil)
	if ev := next(t, c); ev.Name != "pinged" {
		t.Fatalf("event = %q", ev.Name)
	}

	deadline := time.Now().Add(2 * time.Second)
	for srv.Pongs() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if srv.Pongs() != 1 {
		t.Errorf("pongs = %d, want 1", srv.Pongs())
	}
}

func TestClient_ServerDisconnect(t *testing.T) {
	srv := realtimetest.NewServer(func(c *realtimetest.Conn, ev realtimetest.Received) {
		c.Close()
	})
	defer srv.Close()

	c := dial(t, srv)
	next(t, c) // connect
	c.Emit("bye", nil)

	if ev := next(t, c); ev.Name != model.EventDisconnect {
		t.Fatalf("event = %q, want disconnect", ev.Name)
	}
	select {
	case _, ok := <-c.Events():
		if ok {
			t.Error("events channel should be closed after disconnect")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("events channel not closed")
	}
	if err := c.Emit("late", nil); err == nil {
		t.Error("Emit after disconnect should fail")
	}
}

func TestDial_ConnectRefused(t *testing.T) {
	srv := realtimetest.NewServer(nil)
	srv.RefuseConnect = true
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := realtime.Dial(ctx, srv.URL); err == nil {
		t.Fatal("expected connect_error to fail Dial")
	}
}

func TestDial_WrongPath(t *testing.T) {
	srv := realtimetest.NewServer(nil)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := realtime.Dial(ctx, srv.URL, realtime.WithPath("/elsewhere/")); err == nil {
		t.Fatal("expected dial to a non-socket.io path to fail")
	}
}
