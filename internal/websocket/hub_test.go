package websocket

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type stubTokens struct {
	userID uuid.UUID
}

func (s stubTokens) ParseToken(tokenStr string) (uuid.UUID, error) {
	if tokenStr != "good" {
		return uuid.Nil, errors.New("invalid token")
	}
	return s.userID, nil
}

func TestHub_RejectsMissingOrBadToken(t *testing.T) {
	hub := NewHub(nil, stubTokens{userID: uuid.New()})

	for _, target := range []string{"/ws", "/ws?token=bad"} {
		rr := httptest.NewRecorder()
		hub.HandleWebSocket(rr, httptest.NewRequest(http.MethodGet, target, nil))
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", target, rr.Code)
		}
	}
}

func TestHub_BroadcastReachesUserSocket(t *testing.T) {
	userID := uuid.New()
	hub := NewHub(nil, stubTokens{userID: userID})
	defer hub.Close()

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?token=good"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Connections(userID) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("connection was never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	hub.broadcast(userID, []byte(`{"type":"notification"}`))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !strings.Contains(string(data), `"notification"`) {
		t.Fatalf("unexpected payload %s", data)
	}
}
