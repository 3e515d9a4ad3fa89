package websocket

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub(t *testing.T) *Hub {
	hub := NewHub()
	go hub.Run()
	t.Cleanup(hub.Close)
	return hub
}

func TestHubBroadcastToPlayers(t *testing.T) {
	hub := newTestHub(t)

	c1 := &Client{Handle: "h-a", Send: make(chan OutgoingMessage, 1), Hub: hub}
	c2 := &Client{Handle: "h-b", Send: make(chan OutgoingMessage, 1), Hub: hub}
	c3 := &Client{Handle: "h-c", Send: make(chan OutgoingMessage, 1), Hub: hub}

	hub.register <- c1
	hub.register <- c2
	hub.register <- c3

	msg := OutgoingMessage{
		Event: "room_update",
		Data:  map[string]interface{}{"roomId": "ABC123"},
	}
	hub.BroadcastToPlayers([]string{"h-a", "h-b"}, msg)

	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, "room_update", (<-c1.Send).Event)
	assert.Equal(t, "room_update", (<-c2.Send).Event)
	select {
	case <-c3.Send:
		assert.Fail(t, "C should NOT receive anything")
	default:
	}
}

func TestHubSendToPlayer(t *testing.T) {
	hub := newTestHub(t)

	c1 := &Client{Handle: "h-a", Send: make(chan OutgoingMessage, 1), Hub: hub}
	c2 := &Client{Handle: "h-b", Send: make(chan OutgoingMessage, 1), Hub: hub}

	hub.register <- c1
	hub.register <- c2

	hub.SendToPlayer("h-a", OutgoingMessage{Event: "play_error", Data: "not_your_turn"})

	time.Sleep(20 * time.Millisecond)

	received := <-c1.Send
	assert.Equal(t, "play_error", received.Event)
	assert.Equal(t, "not_your_turn", received.Data)

	select {
	case <-c2.Send:
		assert.Fail(t, "B should NOT receive anything")
	default:
		// success
	}
}

// ✅ 缓冲满了直接丢，Hub 不会卡住
func TestHubDropsWhenBufferFull(t *testing.T) {
	hub := newTestHub(t)
	c := &Client{Handle: "h-a", Send: make(chan OutgoingMessage, 1), Hub: hub}
	hub.register <- c

	for i := 0; i < 5; i++ {
		hub.SendToPlayer("h-a", OutgoingMessage{Event: "state_update"})
	}
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, c.Send, 1)

	// 还能继续处理注册
	hub.register <- &Client{Handle: "h-b", Send: make(chan OutgoingMessage, 1), Hub: hub}
	assert.Eventually(t, func() bool {
		_, ok := hub.ClientByHandle("h-b")
		return ok
	}, time.Second, 5*time.Millisecond)
}

func TestHubRegisterUnregister(t *testing.T) {
	hub := newTestHub(t)
	gone := make(chan string, 1)
	hub.OnDisconnect = func(handle string) { gone <- handle }

	c := &Client{Handle: "h-a", Send: make(chan OutgoingMessage, 1), Hub: hub}

	hub.register <- c
	require.Eventually(t, func() bool {
		_, ok := hub.ClientByHandle("h-a")
		return ok
	}, time.Second, 5*time.Millisecond, "client should be registered")

	hub.unregister <- c
	select {
	case h := <-gone:
		assert.Equal(t, "h-a", h)
	case <-time.After(time.Second):
		t.Fatal("disconnect hook not called")
	}
	_, ok := hub.ClientByHandle("h-a")
	assert.False(t, ok, "client should be removed after unregister")

	// Send 已关闭
	_, open := <-c.Send
	assert.False(t, open)
}

func TestHubReplacesDuplicateHandle(t *testing.T) {
	hub := newTestHub(t)
	old := &Client{Handle: "h-a", Send: make(chan OutgoingMessage, 1), Hub: hub}
	fresh := &Client{Handle: "h-a", Send: make(chan OutgoingMessage, 1), Hub: hub}

	hub.register <- old
	hub.register <- fresh

	_, open := <-old.Send
	assert.False(t, open)

	// 旧连接的注销不能把新连接删掉
	hub.unregister <- old
	c, ok := hub.ClientByHandle("h-a")
	require.True(t, ok)
	assert.Same(t, fresh, c)
}

func TestServeWSRoundTrip(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := newTestHub(t)
	got := make(chan IncomingMessage, 1)
	hub.OnIncoming = func(m IncomingMessage) { got <- m }

	r := gin.New()
	r.GET("/ws", func(c *gin.Context) {
		c.Set("handle", "h-a")
		c.Set("name", "alice")
	}, ServeWS(hub))
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// from 由服务端填，客户端伪造无效
	require.NoError(t, conn.WriteJSON(map[string]any{"from": "someone-else", "event": "pass"}))
	select {
	case m := <-got:
		assert.Equal(t, "h-a", m.From)
		assert.Equal(t, "pass", m.Event)
	case <-time.After(time.Second):
		t.Fatal("incoming message not dispatched")
	}

	require.Eventually(t, func() bool {
		_, ok := hub.ClientByHandle("h-a")
		return ok
	}, time.Second, 5*time.Millisecond)
	c, _ := hub.ClientByHandle("h-a")
	assert.Equal(t, "alice", c.Name)

	hub.SendToPlayer("h-a", OutgoingMessage{Event: "chat", Data: "hi"})
	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	var out OutgoingMessage
	require.NoError(t, conn.ReadJSON(&out))
	assert.Equal(t, "chat", out.Event)
	assert.Equal(t, "hi", out.Data)
}

func TestServeWSRequiresHandle(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := newTestHub(t)
	r := gin.New()
	r.GET("/ws", ServeWS(hub))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/ws", nil))
	assert.Equal(t, 401, w.Code)
}

func BenchmarkHubBroadcast(b *testing.B) {
	hub := NewHub()
	go hub.Run()
	defer hub.Close()

	// 创建两个客户端，并给他们的 Send 启动 drain goroutine
	c1 := &Client{Handle: "h-a", Send: make(chan OutgoingMessage, 1024), Hub: hub}
	c2 := &Client{Handle: "h-b", Send: make(chan OutgoingMessage, 1024), Hub: hub}
	go func() {
		for range c1.Send {
		}
	}()
	go func() {
		for range c2.Send {
		}
	}()

	hub.register <- c1
	hub.register <- c2

	b.ResetTimer()
	msg := OutgoingMessage{Event: "bench", Data: nil}

	for i := 0; i < b.N; i++ {
		hub.BroadcastToPlayers([]string{"h-a", "h-b"}, msg)
	}
}
