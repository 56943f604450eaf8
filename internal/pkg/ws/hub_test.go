package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func TestHub_ConnectionCount_Empty(t *testing.T) {
	hub := NewHub(zap.NewNop())

	assert.Equal(t, 0, hub.ConnectionCount())
	assert.False(t, hub.IsOnline(123))
}

func TestHub_SendToUser_UserNotOnline(t *testing.T) {
	hub := NewHub(zap.NewNop())

	msg := &Message{
		Type: "generation_update",
		Data: map[string]string{"status": "COMPLETED"},
	}

	// 离线用户直接丢弃，不报错
	err := hub.SendToUser(123, msg)
	assert.NoError(t, err)
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub(zap.NewNop())

	client := &Client{UserID: 7}
	hub.Register(client)
	assert.True(t, hub.IsOnline(7))
	assert.Equal(t, 1, hub.ConnectionCount())

	// 同一用户的第二个连接
	client2 := &Client{UserID: 7}
	hub.Register(client2)
	assert.Equal(t, 2, hub.ConnectionCount())

	hub.Unregister(client)
	assert.True(t, hub.IsOnline(7))

	hub.Unregister(client2)
	assert.False(t, hub.IsOnline(7))
	assert.Equal(t, 0, hub.ConnectionCount())
}

func TestHub_SendToUser_RealWebSocket(t *testing.T) {
	hub := NewHub(zap.NewNop())

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade error: %v", err)
			return
		}

		hub.Register(&Client{
			UserID: 100,
			Conn:   conn,
		})
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	// 等注册完成
	require.Eventually(t, func() bool {
		return hub.IsOnline(100)
	}, time.Second, 10*time.Millisecond)

	msg := &Message{
		Type: "generation_update",
		Data: map[string]interface{}{"generation_id": 1, "status": "COMPLETED"},
	}
	require.NoError(t, hub.SendToUser(100, msg))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var received Message
	require.NoError(t, json.Unmarshal(payload, &received))
	assert.Equal(t, "generation_update", received.Type)
}
