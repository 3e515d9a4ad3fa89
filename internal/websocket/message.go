package websocket

// OutgoingMessage 下行：{"event": "...", "data": {...}}
type OutgoingMessage struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// IncomingMessage 上行；From 只由 readPump 按连接的 handle 填写
type IncomingMessage struct {
	From  string      `json:"-"`
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}
