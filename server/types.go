package server

// PlayerID 玩家唯一标识（由连接派生，服务端生成）
type PlayerID string

// Direction 蛇的移动方向（服务端权威解释客户端"意图"）
type Direction string

const (
	DirUp    Direction = "UP"
	DirDown  Direction = "DOWN"
	DirLeft  Direction = "LEFT"
	DirRight Direction = "RIGHT"
)

// Valid 判断方向是否为四个合法值之一
func (d Direction) Valid() bool {
	switch d {
	case DirUp, DirDown, DirLeft, DirRight:
		return true
	}
	return false
}

// Opposite 返回相反方向；非法输入返回空值
func (d Direction) Opposite() Direction {
	switch d {
	case DirUp:
		return DirDown
	case DirDown:
		return DirUp
	case DirLeft:
		return DirRight
	case DirRight:
		return DirLeft
	}
	return ""
}

// delta 返回该方向对应的单格位移
func (d Direction) delta() (dx, dy int) {
	switch d {
	case DirUp:
		return 0, -1
	case DirDown:
		return 0, 1
	case DirLeft:
		return -1, 0
	case DirRight:
		return 1, 0
	}
	return 0, 0
}

// Position 网格坐标；越界在碰撞判定时处理，存储本身不做约束
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Player 房间内的玩家实体（服务端权威状态）
// Snake 为蛇身坐标序列，头部在前，长度 ≥ 1
type Player struct {
	ID        PlayerID   `json:"id"`
	Name      string     `json:"name"`
	Snake     []Position `json:"snake"`
	Direction Direction  `json:"direction"`
	Score     int        `json:"score"`
	Color     string     `json:"color"`
	Alive     bool       `json:"alive"`
}

// GameState 单房间的权威对局快照，可整体序列化广播
// Order 记录加入顺序，碰撞判定与重开分配都按它遍历（map 遍历顺序不可依赖）
type GameState struct {
	RoomID      string               `json:"roomId"`
	Players     map[PlayerID]*Player `json:"players"`
	Order       []PlayerID           `json:"order"`
	Food        []Position           `json:"food"`
	GameStarted bool                 `json:"gameStarted"`
	GameOver    bool                 `json:"gameOver"`
	Winner      PlayerID             `json:"winner,omitempty"`
}

// NewGameState 构造空对局状态
func NewGameState(roomID string) *GameState {
	return &GameState{
		RoomID:  roomID,
		Players: make(map[PlayerID]*Player),
		Order:   make([]PlayerID, 0, MaxPlayers),
		Food:    make([]Position, 0, defaultFoodTarget),
	}
}

// AliveIDs 按加入顺序返回当前存活玩家 id
func (s *GameState) AliveIDs() []PlayerID {
	alive := make([]PlayerID, 0, len(s.Order))
	for _, id := range s.Order {
		if p, ok := s.Players[id]; ok && p.Alive {
			alive = append(alive, id)
		}
	}
	return alive
}
