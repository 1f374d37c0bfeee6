package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub(ctx)
	go hub.Run()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(r.URL.Query().Get("user"))
		if err != nil {
			http.Error(w, "bad user", http.StatusBadRequest)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		NewClient(conn, hub, userID).Run(r.Context())
	}))
	t.Cleanup(srv.Close)
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server, userID uuid.UUID) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?user=" + userID.String()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHub_DeliversOnlyToAddressee(t *testing.T) {
	hub, srv := startHub(t)
	alice, bob := uuid.New(), uuid.New()

	aliceConn := dial(t, srv, alice)
	bobConn := dial(t, srv, bob)

	// регистрация идёт через цикл хаба, поэтому шлём событие, пока оно не дойдёт
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		ticker := time.NewTicker(10 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				hub.Notify(alice, "badge_earned", map[string]string{"name": "Первый шаг"})
			}
		}
	}()

	require.NoError(t, aliceConn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := aliceConn.ReadMessage()
	require.NoError(t, err)
	var got envelope
	require.NoError(t, json.Unmarshal(raw, &got))

	assert.Equal(t, "badge_earned", got.Type)
	assert.Equal(t, map[string]any{"name": "Первый шаг"}, got.Data)

	_ = bobConn.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	_, _, err = bobConn.ReadMessage()
	assert.Error(t, err)
}

func TestHub_NotifyWithoutClientsDoesNotBlock(t *testing.T) {
	hub, _ := startHub(t)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 1000; i++ {
			hub.Notify(uuid.New(), "points_changed", i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Notify заблокировался")
	}
}
