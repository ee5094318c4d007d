package transport

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"fastpai/models"
)

var testUpgrader = websocket.Upgrader{}

// newWSServer runs serve for each incoming websocket and returns a ws:// URL.
func newWSServer(t *testing.T, serve func(*websocket.Conn)) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer ws.Close()
		serve(ws)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func waitFor(t *testing.T, ch <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func TestConnectSendReceive(t *testing.T) {
	url := newWSServer(t, func(ws *websocket.Conn) {
		_, data, err := ws.ReadMessage()
		if err != nil {
			return
		}
		reply := `{"message":{"llm_response":{"info":"ciao ` + string(data) + `"}}}`
		_ = ws.WriteMessage(websocket.TextMessage, []byte(reply))
		// keep the connection up until the client goes away
		_, _, _ = ws.ReadMessage()
	})

	opened := make(chan struct{})
	got := make(chan models.InboundFrame, 1)
	c := New(Handler{
		OnOpen:    func() { close(opened) },
		OnMessage: func(f models.InboundFrame) { got <- f },
	})
	defer c.Close()

	c.Connect(url)
	waitFor(t, opened, "open")
	if s := c.State(); s != StateOpen {
		t.Fatalf("expected open state, got %s", s)
	}

	if err := c.SendText("mondo"); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	select {
	case f := <-got:
		if info, _ := f.BotMessage(); info != "ciao mondo" {
			t.Fatalf("unexpected reply %q", info)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for reply")
	}
}

func TestSendJSONCarriesCityFrame(t *testing.T) {
	got := make(chan string, 1)
	url := newWSServer(t, func(ws *websocket.Conn) {
		_, data, err := ws.ReadMessage()
		if err != nil {
			return
		}
		got <- string(data)
	})

	opened := make(chan struct{})
	c := New(Handler{OnOpen: func() { close(opened) }})
	defer c.Close()
	c.Connect(url)
	waitFor(t, opened, "open")

	if err := c.SendJSON(models.OutboundFrame{Message: "vorrei prenotare", City: "Roma"}); err != nil {
		t.Fatalf("send failed: %v", err)
	}

	select {
	case raw := <-got:
		f := models.ParseOutbound([]byte(raw))
		if f.Message != "vorrei prenotare" || f.City != "Roma" {
			t.Fatalf("unexpected frame on the wire: %s", raw)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for frame")
	}
}

func TestMalformedFramesAreDropped(t *testing.T) {
	url := newWSServer(t, func(ws *websocket.Conn) {
		_ = ws.WriteMessage(websocket.TextMessage, []byte(`not json`))
		_ = ws.WriteMessage(websocket.TextMessage, []byte(`{"message":{}}`))
		_ = ws.WriteMessage(websocket.TextMessage, []byte(`{"message":{"llm_response":{"info":"valida"}}}`))
		_, _, _ = ws.ReadMessage()
	})

	got := make(chan models.InboundFrame, 3)
	c := New(Handler{OnMessage: func(f models.InboundFrame) { got <- f }})
	defer c.Close()
	c.Connect(url)

	select {
	case f := <-got:
		if info, _ := f.BotMessage(); info != "valida" {
			t.Fatalf("expected only the valid frame, got %q", info)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for the valid frame")
	}
	select {
	case f := <-got:
		t.Fatalf("unexpected extra frame %+v", f)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSendBeforeOpenRejected(t *testing.T) {
	c := New(Handler{})
	if err := c.SendText("ciao"); err != ErrNotOpen {
		t.Fatalf("expected ErrNotOpen, got %v", err)
	}
	if err := c.SendJSON(models.OutboundFrame{Message: "ciao"}); err != ErrNotOpen {
		t.Fatalf("expected ErrNotOpen, got %v", err)
	}
}

func TestDialFailureDegradesToClosed(t *testing.T) {
	errored := make(chan struct{})
	closed := make(chan struct{})
	c := New(Handler{
		OnError: func(error) { close(errored) },
		OnClose: func() { close(closed) },
	})

	// nothing listens here; dial must fail without returning an error
	c.Connect("ws://127.0.0.1:1/ws")

	waitFor(t, errored, "error event")
	waitFor(t, closed, "close event")
	if s := c.State(); s != StateClosed {
		t.Fatalf("expected closed state, got %s", s)
	}
	if err := c.SendText("ciao"); err != ErrNotOpen {
		t.Fatalf("expected ErrNotOpen after failure, got %v", err)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	url := newWSServer(t, func(ws *websocket.Conn) {
		_, _, _ = ws.ReadMessage()
	})

	var closes atomic.Int32
	opened := make(chan struct{})
	c := New(Handler{
		OnOpen:  func() { close(opened) },
		OnClose: func() { closes.Add(1) },
	})
	c.Connect(url)
	waitFor(t, opened, "open")

	c.Close()
	c.Close()
	time.Sleep(100 * time.Millisecond)

	if n := closes.Load(); n != 1 {
		t.Fatalf("expected exactly one close event, got %d", n)
	}
	if s := c.State(); s != StateClosed {
		t.Fatalf("expected closed state, got %s", s)
	}
	if err := c.SendText("ciao"); err != ErrNotOpen {
		t.Fatalf("expected ErrNotOpen after close, got %v", err)
	}
}

func TestPeerDisconnectReportsErrorThenClose(t *testing.T) {
	url := newWSServer(t, func(ws *websocket.Conn) {
		// drop the connection immediately
	})

	errored := make(chan struct{})
	closed := make(chan struct{})
	c := New(Handler{
		OnError: func(error) { close(errored) },
		OnClose: func() { close(closed) },
	})
	c.Connect(url)

	waitFor(t, errored, "error event")
	waitFor(t, closed, "close event")
	if s := c.State(); s != StateClosed {
		t.Fatalf("expected closed state, got %s", s)
	}
}
