package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serverEnvelope 出站事件的宽松解码结构，测试侧复用
type serverEnvelope struct {
	Type     string     `json:"type"`
	ID       PlayerID   `json:"id,omitempty"`
	PlayerID PlayerID   `json:"playerId,omitempty"`
	Message  string     `json:"message,omitempty"`
	State    *GameState `json:"state,omitempty"`
}

func newTestServer(t *testing.T) (*httptest.Server, *RoomManager) {
	t.Helper()
	cfg := fastConfig()
	rm := NewRoomManager(cfg)
	gw := NewGateway(rm)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/ws", gw.HandleWS)
	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		rm.Shutdown()
		srv.Close()
	})
	return srv, rm
}

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func sendEvent(t *testing.T, ws *websocket.Conn, msg ClientMessage) {
	t.Helper()
	require.NoError(t, ws.WriteJSON(msg))
}

// waitForEvent 逐帧读取直到谓词满足或超时
func waitForEvent(t *testing.T, ws *websocket.Conn, match func(serverEnvelope) bool) serverEnvelope {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var env serverEnvelope
		_, payload, err := ws.ReadMessage()
		require.NoError(t, err, "等待事件超时")
		require.NoError(t, json.Unmarshal(payload, &env))
		if match(env) {
			return env
		}
	}
}

func joinRoom(t *testing.T, ws *websocket.Conn, roomID, name string) PlayerID {
	t.Helper()
	sendEvent(t, ws, ClientMessage{Type: evJoinRoom, RoomID: roomID, PlayerName: name})
	env := waitForEvent(t, ws, func(e serverEnvelope) bool { return e.Type == evPlayerJoined })
	return env.PlayerID
}

func TestGatewayConnectAndJoin(t *testing.T) {
	srv, rm := newTestServer(t)
	ws := dialWS(t, srv)

	connected := waitForEvent(t, ws, func(e serverEnvelope) bool { return e.Type == evConnected })
	assert.NotEmpty(t, connected.ID)

	playerID := joinRoom(t, ws, "Lobby", "alice")
	assert.Equal(t, connected.ID, playerID, "玩家 id 即连接 id")

	// 入房后全房间广播一次快照；房间 id 已规范化
	state := waitForEvent(t, ws, func(e serverEnvelope) bool { return e.Type == evGameState })
	require.NotNil(t, state.State)
	assert.Equal(t, "lobby", state.State.RoomID)
	assert.Contains(t, state.State.Players, playerID)
	assert.Len(t, state.State.Food, defaultFoodTarget)

	_, ok := rm.GetRoom("lobby")
	assert.True(t, ok, "首次加入即创建房间")
}

func TestGatewayJoinValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	ws := dialWS(t, srv)
	waitForEvent(t, ws, func(e serverEnvelope) bool { return e.Type == evConnected })

	sendEvent(t, ws, ClientMessage{Type: evJoinRoom, RoomID: "lobby", PlayerName: "  "})
	env := waitForEvent(t, ws, func(e serverEnvelope) bool { return e.Type == evError })
	assert.Equal(t, ErrInvalidInput.Error(), env.Message)
}

func TestGatewayStartGameFlow(t *testing.T) {
	srv, _ := newTestServer(t)

	ws1 := dialWS(t, srv)
	waitForEvent(t, ws1, func(e serverEnvelope) bool { return e.Type == evConnected })
	ws2 := dialWS(t, srv)
	waitForEvent(t, ws2, func(e serverEnvelope) bool { return e.Type == evConnected })

	joinRoom(t, ws1, "arena", "alice")
	p2 := joinRoom(t, ws2, "arena", "bob")

	// 第二人入房的广播对既有成员可见
	waitForEvent(t, ws1, func(e serverEnvelope) bool {
		return e.Type == evGameState && e.State != nil && len(e.State.Players) == 2
	})

	sendEvent(t, ws1, ClientMessage{Type: evStartGame})
	started := waitForEvent(t, ws2, func(e serverEnvelope) bool {
		return e.Type == evGameState && e.State != nil && e.State.GameStarted
	})
	assert.Contains(t, started.State.Players, p2)

	// 循环开始后持续收到 Tick 广播（蛇在移动）
	var firstHead Position
	waitForEvent(t, ws2, func(e serverEnvelope) bool {
		if e.Type != evGameState || e.State == nil || !e.State.GameStarted {
			return false
		}
		firstHead = e.State.Players[p2].Snake[0]
		return true
	})
	waitForEvent(t, ws2, func(e serverEnvelope) bool {
		return e.Type == evGameState && e.State != nil &&
			e.State.Players[p2] != nil && e.State.Players[p2].Snake[0] != firstHead
	})
}

func TestGatewayStartWithoutRoom(t *testing.T) {
	srv, _ := newTestServer(t)
	ws := dialWS(t, srv)
	waitForEvent(t, ws, func(e serverEnvelope) bool { return e.Type == evConnected })

	sendEvent(t, ws, ClientMessage{Type: evStartGame})
	env := waitForEvent(t, ws, func(e serverEnvelope) bool { return e.Type == evError })
	assert.Equal(t, ErrRoomNotFound.Error(), env.Message)
}

func TestGatewayRoomFull(t *testing.T) {
	srv, _ := newTestServer(t)

	for i := 0; i < 4; i++ {
		ws := dialWS(t, srv)
		waitForEvent(t, ws, func(e serverEnvelope) bool { return e.Type == evConnected })
		joinRoom(t, ws, "full", "player")
	}

	fifth := dialWS(t, srv)
	waitForEvent(t, fifth, func(e serverEnvelope) bool { return e.Type == evConnected })
	sendEvent(t, fifth, ClientMessage{Type: evJoinRoom, RoomID: "full", PlayerName: "late"})
	env := waitForEvent(t, fifth, func(e serverEnvelope) bool { return e.Type == evError })
	assert.Equal(t, ErrRoomFull.Error(), env.Message)
}

func TestGatewayDisconnectTearsDownRoom(t *testing.T) {
	srv, rm := newTestServer(t)
	ws := dialWS(t, srv)
	waitForEvent(t, ws, func(e serverEnvelope) bool { return e.Type == evConnected })
	joinRoom(t, ws, "solo", "alice")

	require.NoError(t, ws.Close())

	// 断线等同 leave-room：最后一名成员离开即销毁房间
	assert.Eventually(t, func() bool {
		_, ok := rm.GetRoom("solo")
		return !ok
	}, 2*time.Second, 10*time.Millisecond)
}

func TestGatewayLeaveBroadcastsToRemaining(t *testing.T) {
	srv, _ := newTestServer(t)

	ws1 := dialWS(t, srv)
	waitForEvent(t, ws1, func(e serverEnvelope) bool { return e.Type == evConnected })
	ws2 := dialWS(t, srv)
	waitForEvent(t, ws2, func(e serverEnvelope) bool { return e.Type == evConnected })

	p1 := joinRoom(t, ws1, "pair", "alice")
	joinRoom(t, ws2, "pair", "bob")

	sendEvent(t, ws2, ClientMessage{Type: evLeaveRoom})
	waitForEvent(t, ws1, func(e serverEnvelope) bool {
		return e.Type == evGameState && e.State != nil &&
			len(e.State.Players) == 1 && e.State.Players[p1] != nil
	})
}

func TestGatewayHTTPSurface(t *testing.T) {
	cfg := DefaultConfig()
	rm := NewRoomManager(cfg)
	admin := NewAdminAPI(rm)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	router.GET("/metrics", admin.HandleMetrics)
	srv := httptest.NewServer(router)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// 不存在的房间：404
	resp2, err := http.Get(srv.URL + "/metrics?room=nope")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp2.StatusCode)
}
