package service

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

func TestSessionServiceLifecycle(t *testing.T) {
	sessions := NewSessionService(zap.NewNop())
	registered := make(chan *Session, 1)

	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		registered <- sessions.Register(conn, "127.0.0.1")
	}))
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	session := <-registered
	if session.ID == "" || sessions.Count() != 1 {
		t.Fatalf("session %+v, count %d", session, sessions.Count())
	}

	if err := session.WriteJSON(map[string]string{"role": "assistant", "content": "hi"}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	var got map[string]string
	if err := conn.ReadJSON(&got); err != nil || got["content"] != "hi" {
		t.Fatalf("ReadJSON = %v, %v", got, err)
	}

	sessions.Remove(session.ID)
	sessions.Remove(session.ID)
	if sessions.Count() != 0 {
		t.Errorf("count after remove = %d", sessions.Count())
	}
	session.Close(websocket.CloseNormalClosure, "bye")
	if _, _, err := conn.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Errorf("read after close = %v", err)
	}
}
