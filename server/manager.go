package server

import (
	"strings"
	"sync"
)

// RoomManager 房间注册表：id → 房间，负责创建与销毁
// 显式实例由启动代码构造并传给网关/管理接口，不再使用进程级单例，便于测试隔离
type RoomManager struct {
	mu    sync.RWMutex
	rooms map[string]*Room
	cfg   *Config
}

// NewRoomManager 构造空注册表
func NewRoomManager(cfg *Config) *RoomManager {
	return &RoomManager{
		rooms: make(map[string]*Room),
		cfg:   cfg,
	}
}

// NormalizeRoomID 房间 id 规范化：去空白并转小写
func NormalizeRoomID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// GetOrCreateRoom 获取或创建房间；对同一 id 幂等
// 计时器不在此启动——对局循环由 start-game 显式开启
func (m *RoomManager) GetOrCreateRoom(id string) *Room {
	id = NormalizeRoomID(id)
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[id]
	if !ok {
		r = NewRoom(id, m.cfg)
		m.rooms[id] = r
		Log.Infof("room created: id=%s", id)
	}
	return r
}

// GetRoom 查找既有房间
func (m *RoomManager) GetRoom(id string) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[NormalizeRoomID(id)]
	return r, ok
}

// RemoveIfEmpty 成员清零时销毁房间：停掉循环、标记关闭、从注册表摘除
// 幂等；房间非空或已不在注册表时为空操作
func (m *RoomManager) RemoveIfEmpty(r *Room) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.rooms[r.ID]
	if !ok || cur != r {
		return
	}
	r.mu.Lock()
	if len(r.state.Order) > 0 {
		r.mu.Unlock()
		return
	}
	r.stopLoopLocked()
	r.closed = true
	r.mu.Unlock()
	delete(m.rooms, r.ID)
	Log.Infof("room destroyed: id=%s", r.ID)
}

// RoomCount 当前房间数（监控用）
func (m *RoomManager) RoomCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

// Shutdown 停止全部房间循环（进程退出路径）
func (m *RoomManager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rooms {
		r.StopLoop()
	}
	m.rooms = make(map[string]*Room)
}
