package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Gateway 会话网关：把连接上的事件翻译为注册表/房间操作，并回发广播
type Gateway struct {
	rooms    *RoomManager
	upgrader websocket.Upgrader
}

// NewGateway 绑定注册表构造网关
func NewGateway(rm *RoomManager) *Gateway {
	return &Gateway{
		rooms: rm,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// 跨域策略交给部署层；此处放行
				return true
			},
		},
	}
}

// HandleWS WebSocket 接入点（挂在 gin 路由上）
// 升级连接、分配连接 id、下发 connected，然后进入事件循环直到断线
func (g *Gateway) HandleWS(c *gin.Context) {
	ws, err := g.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		Log.Warnf("ws upgrade failed: %v", err)
		return
	}

	sess := &session{
		id:   PlayerID(uuid.NewString()),
		conn: NewClientConn(ws),
	}
	go sess.conn.writePump()
	sess.conn.Send(connectedMessage{Type: evConnected, ID: sess.id})
	Log.Infof("connection opened: id=%s", sess.id)

	g.readLoop(sess)
}

// readLoop 逐条读取入站事件并分发；退出时按 leave-room 处理断线
func (g *Gateway) readLoop(sess *session) {
	ws := sess.conn.ws
	defer func() {
		g.handleLeave(sess)
		sess.conn.Close()
		Log.Infof("connection closed: id=%s", sess.id)
	}()

	ws.SetReadLimit(1 << 16)
	_ = ws.SetReadDeadline(time.Now().Add(60 * time.Second))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(60 * time.Second))
	})

	for {
		_, payload, err := ws.ReadMessage()
		if err != nil {
			return
		}
		var msg ClientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			sess.sendError(ErrInvalidInput.Error())
			continue
		}
		g.dispatch(sess, msg)
	}
}

// dispatch 处理单条事件
// 任何未预期的 panic 在此边界收敛：记日志、向触发方回发通用错误，
// 事件循环与其他房间不受影响
func (g *Gateway) dispatch(sess *session, msg ClientMessage) {
	defer func() {
		if rec := recover(); rec != nil {
			Log.Errorf("event handler panic: conn=%s type=%s err=%v", sess.id, msg.Type, rec)
			sess.sendError("internal error")
		}
	}()

	switch msg.Type {
	case evJoinRoom:
		g.handleJoin(sess, msg)
	case evStartGame:
		g.handleStart(sess)
	case evChangeDirection:
		g.handleDirection(sess, msg)
	case evLeaveRoom:
		g.handleLeave(sess)
	default:
		sess.sendError(ErrInvalidInput.Error())
	}
}

// handleJoin join-room：校验参数、取得或创建房间、入房、私发确认、广播快照
func (g *Gateway) handleJoin(sess *session, msg ClientMessage) {
	roomID := NormalizeRoomID(msg.RoomID)
	name := strings.TrimSpace(msg.PlayerName)
	if roomID == "" || name == "" {
		sess.sendError(ErrInvalidInput.Error())
		return
	}
	if sess.roomID != "" && sess.roomID != roomID {
		// 一个连接同一时刻只属于一个房间
		sess.sendError("already in a room")
		return
	}

	room := g.rooms.GetOrCreateRoom(roomID)
	player, err := room.Join(sess.id, name, sess.conn)
	if errors.Is(err, ErrRoomNotFound) {
		// 取到的房间恰在清空后被销毁：重取一次
		room = g.rooms.GetOrCreateRoom(roomID)
		player, err = room.Join(sess.id, name, sess.conn)
	}
	if err != nil {
		sess.sendError(err.Error())
		room.Metrics().IncErrorEmitted()
		return
	}

	sess.roomID = roomID
	sess.conn.Send(playerJoinedMessage{Type: evPlayerJoined, PlayerID: player.ID})
	room.BroadcastState()
	Log.Infof("player joined: room=%s player=%s name=%s", roomID, player.ID, name)
}

// handleStart start-game：重置对局并（重）启动房间循环
func (g *Gateway) handleStart(sess *session) {
	room, ok := g.currentRoom(sess)
	if !ok {
		sess.sendError(ErrRoomNotFound.Error())
		return
	}
	if err := room.ResetForStart(); err != nil {
		sess.sendError(err.Error())
		room.Metrics().IncErrorEmitted()
		return
	}
	room.BroadcastState()
	room.StartLoop()
	Log.Infof("game started: room=%s by=%s", room.ID, sess.id)
}

// handleDirection change-direction：意图立即记录，下一次 Tick 生效
func (g *Gateway) handleDirection(sess *session, msg ClientMessage) {
	dir := Direction(msg.Direction)
	if !dir.Valid() {
		sess.sendError(ErrInvalidInput.Error())
		return
	}
	room, ok := g.currentRoom(sess)
	if !ok {
		sess.sendError(ErrRoomNotFound.Error())
		return
	}
	room.ChangeDirection(sess.id, dir)
}

// handleLeave leave-room 与断线共用的收尾：
// 摘除成员，房间空则销毁（含取消循环），否则广播更新后的快照
func (g *Gateway) handleLeave(sess *session) {
	if sess.roomID == "" {
		return
	}
	room, ok := g.rooms.GetRoom(sess.roomID)
	sess.roomID = ""
	if !ok {
		return
	}

	remaining := room.Leave(sess.id)
	Log.Infof("player left: room=%s player=%s remaining=%d", room.ID, sess.id, remaining)
	if remaining == 0 {
		g.rooms.RemoveIfEmpty(room)
		return
	}
	room.BroadcastState()
}

// currentRoom 依会话上记录的房间 id 解析当前房间
func (g *Gateway) currentRoom(sess *session) (*Room, bool) {
	if sess.roomID == "" {
		return nil, false
	}
	return g.rooms.GetRoom(sess.roomID)
}
