package server

import "time"

// DefaultTickInterval 对局推进周期
const DefaultTickInterval = 150 * time.Millisecond

// gameLoop 单房间的对局循环句柄；stop 关闭即取消
type gameLoop struct {
	stop chan struct{}
}

// StartLoop 启动房间对局循环；已有循环先取消，保证任一时刻至多一个计时器
// （重复 start-game 不会产生叠加的双倍推进）
func (r *Room) StartLoop() {
	r.mu.Lock()
	r.stopLoopLocked()
	l := &gameLoop{stop: make(chan struct{})}
	r.loop = l
	interval := r.tickInterval
	r.mu.Unlock()

	go r.runLoop(l, interval)
}

// StopLoop 取消房间循环；幂等，未启动时为空操作
func (r *Room) StopLoop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopLoopLocked()
}

// stopLoopLocked 调用方必须已持锁
func (r *Room) stopLoopLocked() {
	if r.loop != nil {
		close(r.loop.stop)
		r.loop = nil
	}
}

// runLoop 固定周期推进对局，直到被取消或对局终结
func (r *Room) runLoop(l *gameLoop, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			if r.stepOnce(l) {
				return
			}
		}
	}
}

// stepOnce 单次 Tick 触发；返回 true 表示本循环应退出
// 房间已销毁或循环已被替换 → 退出；对局未开始或已终结 → 空转（防御陈旧计时器）
func (r *Room) stepOnce(l *gameLoop) bool {
	start := time.Now()

	r.mu.Lock()
	if r.closed || r.loop != l {
		r.mu.Unlock()
		return true
	}
	if !r.state.GameStarted || r.state.GameOver {
		r.mu.Unlock()
		return false
	}

	over := Tick(r.state)
	if over {
		r.loop = nil
	}
	frame := r.marshalStateLocked()
	conns := make([]*ClientConn, 0, len(r.conns))
	for _, c := range r.conns {
		conns = append(conns, c)
	}
	winner := r.state.Winner
	r.mu.Unlock()

	// Tick 后无条件广播最新快照
	for _, c := range conns {
		c.Enqueue(frame)
	}
	r.metrics.IncBroadcast()
	r.metrics.AddTick(time.Since(start).Nanoseconds())

	if over {
		Log.Infof("game over: room=%s winner=%s", r.ID, winner)
		return true
	}
	return false
}
