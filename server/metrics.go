package server

import (
	"sync/atomic"
)

// RoomMetrics 记录房间运行期的关键指标（用于监控与调试）
type RoomMetrics struct {
	TickCount         int64 // 统计的 Tick 次数
	IntentsAccepted   int64 // 被接受的转向意图数
	ReversalsRejected int64 // 因反向输入被拒绝的意图数
	Broadcasts        int64 // 广播的快照帧数
	ErrorsEmitted     int64 // 回发给客户端的错误事件数
	TotalTickNs       int64 // Tick 累计耗时（纳秒）
}

func (m *RoomMetrics) IncIntentAccepted()   { atomic.AddInt64(&m.IntentsAccepted, 1) }
func (m *RoomMetrics) IncReversalRejected() { atomic.AddInt64(&m.ReversalsRejected, 1) }
func (m *RoomMetrics) IncBroadcast()        { atomic.AddInt64(&m.Broadcasts, 1) }
func (m *RoomMetrics) IncErrorEmitted()     { atomic.AddInt64(&m.ErrorsEmitted, 1) }
func (m *RoomMetrics) AddTick(ns int64) {
	atomic.AddInt64(&m.TickCount, 1)
	atomic.AddInt64(&m.TotalTickNs, ns)
}

// Snapshot 返回只读副本，便于 HTTP 输出
func (m *RoomMetrics) Snapshot() map[string]any {
	tick := atomic.LoadInt64(&m.TickCount)
	total := atomic.LoadInt64(&m.TotalTickNs)
	var avgMs float64
	if tick > 0 {
		avgMs = float64(total) / float64(tick) / 1e6
	}
	return map[string]any{
		"tick_count":         tick,
		"intents_accepted":   atomic.LoadInt64(&m.IntentsAccepted),
		"reversals_rejected": atomic.LoadInt64(&m.ReversalsRejected),
		"broadcasts":         atomic.LoadInt64(&m.Broadcasts),
		"errors_emitted":     atomic.LoadInt64(&m.ErrorsEmitted),
		"avg_tick_ms":        avgMs,
	}
}
