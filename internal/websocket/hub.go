package websocket

import (
	"sync"

	"RedCatch/internal/utils"
)

type HubInterface interface {
	BroadcastToPlayers(handles []string, msg OutgoingMessage)
	ClientByHandle(handle string) (*Client, bool)
	SendToPlayer(handle string, msg OutgoingMessage)
	Close()
}

type Hub struct {
	clients    map[string]*Client // handle -> client
	register   chan *Client
	unregister chan *Client
	broadcast  chan broadcastReq
	sendOne    chan sendReq
	incoming   chan IncomingMessage

	// 玩家消息和断线都交给游戏层，在独立协程里调用，不阻塞 Run
	OnIncoming   func(IncomingMessage)
	OnDisconnect func(handle string)

	quit      chan struct{}
	closeOnce sync.Once
	mu        sync.RWMutex
}

type broadcastReq struct {
	Handles []string
	Message OutgoingMessage
}

type sendReq struct {
	Handle  string
	Message OutgoingMessage
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan broadcastReq, 64),
		sendOne:    make(chan sendReq, 64),
		incoming:   make(chan IncomingMessage, 64),
		quit:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	utils.Log.Info("hub started")
	go h.dispatch()

	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			if old, ok := h.clients[c.Handle]; ok && old != c {
				// 同一个 handle 重复连接，踢掉旧的
				close(old.Send)
			}
			h.clients[c.Handle] = c
			utils.Log.Info("hub register", "handle", c.Handle, "clients", len(h.clients))
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			cur, ok := h.clients[c.Handle]
			if ok && cur == c {
				delete(h.clients, c.Handle)
				close(c.Send)
				utils.Log.Info("hub unregister", "handle", c.Handle, "clients", len(h.clients))
			}
			h.mu.Unlock()
			if ok && cur == c && h.OnDisconnect != nil {
				go h.OnDisconnect(c.Handle)
			}

		case req := <-h.broadcast:
			h.mu.RLock()
			for _, handle := range req.Handles {
				if client, ok := h.clients[handle]; ok {
					h.deliver(client, req.Message)
				}
			}
			h.mu.RUnlock()

		case req := <-h.sendOne:
			h.mu.RLock()
			if client, ok := h.clients[req.Handle]; ok {
				h.deliver(client, req.Message)
			}
			h.mu.RUnlock()

		case <-h.quit:
			h.mu.Lock()
			for handle, c := range h.clients {
				close(c.Send)
				delete(h.clients, handle)
			}
			h.mu.Unlock()
			utils.Log.Info("hub stopped")
			return
		}
	}
}

// deliver 客户端写不过来就丢弃，不能卡住 Hub
func (h *Hub) deliver(c *Client, msg OutgoingMessage) {
	select {
	case c.Send <- msg:
	default:
		utils.Log.Warn("client send buffer full, dropping", "handle", c.Handle, "event", msg.Event)
	}
}

// dispatch 按到达顺序把玩家消息转给游戏层（GameManager）
func (h *Hub) dispatch() {
	for {
		select {
		case msg := <-h.incoming:
			if h.OnIncoming != nil {
				h.OnIncoming(msg)
			}
		case <-h.quit:
			return
		}
	}
}

// Broadcast to multiple players
func (h *Hub) BroadcastToPlayers(handles []string, msg OutgoingMessage) {
	select {
	case h.broadcast <- broadcastReq{Handles: handles, Message: msg}:
	case <-h.quit:
	}
}

// Send to a single player (safe concurrent)
func (h *Hub) SendToPlayer(handle string, msg OutgoingMessage) {
	select {
	case h.sendOne <- sendReq{Handle: handle, Message: msg}:
	case <-h.quit:
	}
}

// Lookup for a player client by handle
func (h *Hub) ClientByHandle(handle string) (*Client, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[handle]
	return c, ok
}

func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.quit) })
}
