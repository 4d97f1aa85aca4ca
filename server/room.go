package server

import (
	"encoding/json"
	"sync"
	"time"
)

// Room 房间：权威对局状态、有序成员、每房间一把互斥锁
// 参考实现依赖单线程事件循环保证原子性；这里以 mu 复刻同等约束——
// 网关事件与 Tick 触发都必须持锁执行，彼此串行
type Room struct {
	ID        string
	CreatedAt time.Time

	mu    sync.Mutex
	state *GameState
	conns map[PlayerID]*ClientConn

	// 可热更新配置（admin 接口）
	tickInterval time.Duration
	foodTarget   int

	loop    *gameLoop
	closed  bool
	metrics *RoomMetrics
}

// NewRoom 创建空房间
func NewRoom(id string, cfg *Config) *Room {
	return &Room{
		ID:           id,
		CreatedAt:    time.Now(),
		state:        NewGameState(id),
		conns:        make(map[PlayerID]*ClientConn),
		tickInterval: cfg.TickInterval,
		foodTarget:   cfg.FoodTarget,
		metrics:      &RoomMetrics{},
	}
}

// Join 加入房间：满员返回 ErrRoomFull，重复加入幂等返回既有玩家
// 出生槽位与配色按加入序号对 4 取模循环；首个玩家入房时播种食物
func (r *Room) Join(id PlayerID, name string, conn *ClientConn) (*Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrRoomNotFound
	}
	if p, ok := r.state.Players[id]; ok {
		r.conns[id] = conn
		return p, nil
	}
	if len(r.state.Order) >= MaxPlayers {
		return nil, ErrRoomFull
	}

	slot := len(r.state.Order)
	p := NewPlayer(id, name, slot)
	r.state.Players[id] = p
	r.state.Order = append(r.state.Order, id)
	r.conns[id] = conn
	if len(r.state.Food) == 0 {
		r.seedFoodLocked()
	}
	return p, nil
}

// Leave 移除成员及其玩家实体，返回剩余成员数（生命周期收尾由注册表负责）
func (r *Room) Leave(id PlayerID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.state.Players, id)
	delete(r.conns, id)
	for i, member := range r.state.Order {
		if member == id {
			r.state.Order = append(r.state.Order[:i], r.state.Order[i+1:]...)
			break
		}
	}
	return len(r.state.Order)
}

// MemberCount 当前成员数
func (r *Room) MemberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.state.Order)
}

// ResetForStart 重开对局：不足 2 人返回 ErrNotEnoughPlayers
// 按当前遍历顺序重新分配出生槽位（有人中途退出后第二局的站位会相对第一局改变），
// 清空并重播食物，gameStarted 置位、gameOver 与胜者复位
func (r *Room) ResetForStart() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.state.Order) < MinPlayers {
		return ErrNotEnoughPlayers
	}
	for i, id := range r.state.Order {
		ResetPlayer(r.state.Players[id], i)
	}
	r.state.Food = r.state.Food[:0]
	r.seedFoodLocked()
	r.state.GameStarted = true
	r.state.GameOver = false
	r.state.Winner = ""
	return nil
}

// ChangeDirection 记录玩家转向意图，下一次 Tick 生效
// 玩家缺席或已死亡时静默忽略；与当前方向正好相反的输入被拒绝（唯一的输入校验规则）
func (r *Room) ChangeDirection(id PlayerID, dir Direction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.state.Players[id]
	if !ok || !p.Alive {
		return
	}
	if dir == p.Direction.Opposite() {
		r.metrics.IncReversalRejected()
		return
	}
	p.Direction = dir
	r.metrics.IncIntentAccepted()
}

// seedFoodLocked 补齐食物到目标数量；调用方必须已持锁
func (r *Room) seedFoodLocked() {
	for len(r.state.Food) < r.foodTarget {
		r.state.Food = append(r.state.Food, GenerateFood(r.state))
	}
}

// BroadcastState 将当前对局快照广播给房间内全部连接（非阻塞入队，拥塞即丢帧）
func (r *Room) BroadcastState() {
	r.mu.Lock()
	frame := r.marshalStateLocked()
	conns := make([]*ClientConn, 0, len(r.conns))
	for _, c := range r.conns {
		conns = append(conns, c)
	}
	r.mu.Unlock()

	for _, c := range conns {
		c.Enqueue(frame)
	}
	r.metrics.IncBroadcast()
}

// marshalStateLocked 在持锁状态下序列化快照，避免与 Tick 改动交叠
func (r *Room) marshalStateLocked() []byte {
	b, _ := json.Marshal(gameStateMessage{Type: evGameState, State: r.state})
	return b
}

// Snapshot 返回对局状态的深拷贝，供测试与只读接口使用
func (r *Room) Snapshot() *GameState {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, _ := json.Marshal(r.state)
	var copied GameState
	_ = json.Unmarshal(b, &copied)
	return &copied
}

// Metrics 房间运行指标
func (r *Room) Metrics() *RoomMetrics {
	return r.metrics
}
