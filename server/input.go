package server

// 入站事件名（WebSocket 文本帧，JSON 信封）
const (
	evJoinRoom        = "join-room"
	evStartGame       = "start-game"
	evChangeDirection = "change-direction"
	evLeaveRoom       = "leave-room"
)

// 出站事件名
const (
	evConnected    = "connected"
	evPlayerJoined = "player-joined"
	evGameState    = "game-state"
	evError        = "error"
)

// ClientMessage 客户端入站事件信封
// 示例：{"type":"join-room","roomId":"lobby","playerName":"alice"}
//       {"type":"change-direction","direction":"UP"}
type ClientMessage struct {
	Type       string `json:"type"`
	RoomID     string `json:"roomId,omitempty"`
	PlayerName string `json:"playerName,omitempty"`
	Direction  string `json:"direction,omitempty"`
}

// connectedMessage 连接建立后下发一次，携带服务端分配的连接 id
type connectedMessage struct {
	Type string   `json:"type"`
	ID   PlayerID `json:"id"`
}

// playerJoinedMessage 入房成功的私发确认
type playerJoinedMessage struct {
	Type     string   `json:"type"`
	PlayerID PlayerID `json:"playerId"`
}

// gameStateMessage 对局快照广播
type gameStateMessage struct {
	Type  string     `json:"type"`
	State *GameState `json:"state"`
}

// errorMessage 仅发给触发方的错误事件
type errorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
