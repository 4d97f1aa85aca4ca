package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// AdminAPI 管理与监控接口（gin 路由）
type AdminAPI struct {
	rooms *RoomManager
}

func NewAdminAPI(rm *RoomManager) *AdminAPI {
	return &AdminAPI{rooms: rm}
}

// roomConfigPayload 热更新载荷；字段为空指针表示不改
type roomConfigPayload struct {
	TickMs     *int `json:"tickMs,omitempty"`
	FoodTarget *int `json:"foodTarget,omitempty"`
}

// HandleConfig 房间配置的读取与热更新
// GET  /admin/config?room=lobby          返回当前配置
// POST /admin/config?room=lobby          以 JSON 载荷更新部分字段
// 周期改动在下一次循环启动时生效；食物目标在下一次播种时生效
func (a *AdminAPI) HandleConfig(c *gin.Context) {
	room, ok := a.rooms.GetRoom(c.Query("room"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": ErrRoomNotFound.Error()})
		return
	}

	switch c.Request.Method {
	case http.MethodGet:
		room.mu.Lock()
		tickMs := int(room.tickInterval / time.Millisecond)
		foodTarget := room.foodTarget
		room.mu.Unlock()
		c.JSON(http.StatusOK, gin.H{
			"room":       room.ID,
			"tickMs":     tickMs,
			"foodTarget": foodTarget,
		})
	case http.MethodPost:
		var body roomConfigPayload
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		room.mu.Lock()
		if body.TickMs != nil && *body.TickMs > 0 {
			room.tickInterval = time.Duration(*body.TickMs) * time.Millisecond
		}
		if body.FoodTarget != nil && *body.FoodTarget > 0 {
			room.foodTarget = *body.FoodTarget
		}
		tickMs := int(room.tickInterval / time.Millisecond)
		foodTarget := room.foodTarget
		room.mu.Unlock()
		Log.Infof("config updated: room=%s tickMs=%d foodTarget=%d", room.ID, tickMs, foodTarget)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	default:
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "method not allowed"})
	}
}

// HandleMetrics 输出指定房间的运行指标
// GET /metrics?room=lobby
func (a *AdminAPI) HandleMetrics(c *gin.Context) {
	room, ok := a.rooms.GetRoom(c.Query("room"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": ErrRoomNotFound.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"room":    room.ID,
		"metrics": room.Metrics().Snapshot(),
	})
}
