package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ClientConn 负责向单个客户端发送数据的轻量包装
type ClientConn struct {
	ws   *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	closed bool
}

func NewClientConn(ws *websocket.Conn) *ClientConn {
	return &ClientConn{
		ws:   ws,
		send: make(chan []byte, 64),
	}
}

// Enqueue 将出站帧压入队列（非阻塞，满则丢弃，避免慢客户端拖住 Tick）
// 连接已关闭时静默丢弃——广播方可能晚于断线仍持有本连接
func (c *ClientConn) Enqueue(b []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- b:
	default:
	}
}

// Send 序列化并入队单条事件
func (c *ClientConn) Send(msg any) {
	b, err := json.Marshal(msg)
	if err != nil {
		return
	}
	c.Enqueue(b)
}

// Close 关闭发送队列与底层连接；可被多方调用，仅生效一次
func (c *ClientConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	c.mu.Unlock()
	_ = c.ws.Close()
}

// writePump 独立协程，从 send 队列写出到 WebSocket
func (c *ClientConn) writePump() {
	defer c.ws.Close()
	for msg := range c.send {
		_ = c.ws.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

// session 单连接会话记录
// 当前房间 id 直接存放在会话上（而不是反查广播分组），一个连接至多属于一个房间
type session struct {
	id     PlayerID
	conn   *ClientConn
	roomID string
}

// sendError 仅向本连接回发错误事件
func (s *session) sendError(msg string) {
	s.conn.Send(errorMessage{Type: evError, Message: msg})
}
