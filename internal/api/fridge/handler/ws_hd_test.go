package fridgeHandler

import (
	"bytes"
	"errors"
	"net"
	"testing"
	"time"

	"FridgeMood/internal/api/fridge"

	"github.com/gorilla/websocket"
)

func dialFridgeSocket(t *testing.T, ta *testApp) *websocket.Conn {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	go ta.app.Listener(ln)
	t.Cleanup(func() { ta.app.Shutdown() })

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return conn
}

func TestWebSocketFrames(t *testing.T) {
	ta := newTestApp(t, &fakeDetector{labels: []string{"yogurt", "YOGURT", "lettuce"}}, time.Second, 100)
	conn := dialFridgeSocket(t, ta)
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	if err := conn.WriteMessage(websocket.BinaryMessage, png); err != nil {
		t.Fatal(err)
	}

	var result fridge.MoodResponse
	if err := conn.ReadJSON(&result); err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(result.Moods) != 2 || result.Moods[0].Name != "yogurt" {
		t.Errorf("unexpected moods %+v", result.Moods)
	}

	if err := conn.WriteMessage(websocket.BinaryMessage, []byte("plain text")); err != nil {
		t.Fatal(err)
	}

	var failure map[string]string
	if err := conn.ReadJSON(&failure); err != nil {
		t.Fatalf("read: %v", err)
	}
	if failure["error"] != fridge.ErrInvalidImage.Error() {
		t.Errorf("error = %q", failure["error"])
	}
}

func TestWebSocketOversizedFrame(t *testing.T) {
	ta := newTestApp(t, &fakeDetector{labels: []string{"milk"}}, time.Second, 100)
	conn := dialFridgeSocket(t, ta)
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	frame := bytes.Repeat([]byte{0xff}, 2*testFrameLimit)
	if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
		t.Fatal(err)
	}

	_, _, err := conn.ReadMessage()
	var closeErr *websocket.CloseError
	if !errors.As(err, &closeErr) || closeErr.Code != websocket.CloseMessageTooBig {
		t.Fatalf("expected close 1009, got %v", err)
	}
}

func TestWebSocketRequiresUpgrade(t *testing.T) {
	ta := newTestApp(t, &fakeDetector{}, time.Second, 100)

	resp := do(t, ta.app, httptestGet("/ws"), nil)
	if resp.StatusCode != 426 {
		t.Errorf("status = %d, want 426", resp.StatusCode)
	}
}
