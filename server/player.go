package server

// 棋盘与玩家常量
const (
	GridWidth  = 30
	GridHeight = 20

	MinPlayers = 2
	MaxPlayers = 4

	ScorePerFood  = 10
	initialLength = 3
)

// spawnSlot 出生槽位：头部坐标与初始方向
type spawnSlot struct {
	head Position
	dir  Direction
}

// 四个出生槽位与四种配色，按加入顺序循环分配
var (
	spawnTable = [MaxPlayers]spawnSlot{
		{Position{X: 5, Y: 5}, DirRight},
		{Position{X: 24, Y: 14}, DirLeft},
		{Position{X: 24, Y: 5}, DirLeft},
		{Position{X: 5, Y: 14}, DirRight},
	}
	playerColors = [MaxPlayers]string{"#e74c3c", "#3498db", "#2ecc71", "#f1c40f"}
)

// NewPlayer 依槽位序号生成玩家实体（槽位对 4 取模循环）
func NewPlayer(id PlayerID, name string, slot int) *Player {
	p := &Player{ID: id, Name: name}
	ResetPlayer(p, slot)
	return p
}

// ResetPlayer 将玩家重置为指定槽位的初始状态：蛇长 3、比分清零、存活
func ResetPlayer(p *Player, slot int) {
	sp := spawnTable[slot%len(spawnTable)]
	p.Snake = spawnBody(sp)
	p.Direction = sp.dir
	p.Score = 0
	p.Color = playerColors[slot%len(playerColors)]
	p.Alive = true
}

// spawnBody 自头部向移动方向的反向延伸出整条蛇身
func spawnBody(sp spawnSlot) []Position {
	dx, dy := sp.dir.delta()
	body := make([]Position, 0, initialLength)
	for i := 0; i < initialLength; i++ {
		body = append(body, Position{X: sp.head.X - i*dx, Y: sp.head.Y - i*dy})
	}
	return body
}
