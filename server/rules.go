package server

import "math/rand"

// 食物采样的上限次数；用尽后接受最后一次采样（尽力而为，满盘时允许重叠）
const foodAttempts = 100

const defaultFoodTarget = 3

// 规则引擎：纯函数，只读写传入的 GameState，不持有任何状态。
// 遍历一律按 state.Order（加入顺序），保证跨次运行结果一致。

// GenerateFood 在棋盘内均匀采样一个食物位置
// 与任一蛇身或既有食物重叠则重采，最多 foodAttempts 次；
// 用尽后直接返回最后一次采样，即使重叠——这是刻意保留的策略，不要"修复"
func GenerateFood(s *GameState) Position {
	var pos Position
	for i := 0; i < foodAttempts; i++ {
		pos = Position{X: rand.Intn(GridWidth), Y: rand.Intn(GridHeight)}
		if !occupied(s, pos) {
			return pos
		}
	}
	return pos
}

// occupied 判断位置是否被任一蛇身或食物占用
func occupied(s *GameState, pos Position) bool {
	for _, p := range s.Players {
		for _, seg := range p.Snake {
			if seg == pos {
				return true
			}
		}
	}
	for _, f := range s.Food {
		if f == pos {
			return true
		}
	}
	return false
}

// MoveSnake 依当前方向推进一格：新头部入列，尾部不在此处弹出
// （是否弹尾由 CheckFoodCollision 决定，吃到食物时跳过弹尾实现增长）
func MoveSnake(p *Player) {
	head := p.Snake[0]
	dx, dy := p.Direction.delta()
	next := Position{X: head.X + dx, Y: head.Y + dy}
	p.Snake = append([]Position{next}, p.Snake...)
}

// CheckCollisions 逐玩家按加入顺序判定：撞墙 → 撞自身 → 撞他人，先命中先生效
// "他人是否存活"以本帧开始时的快照为准：同帧早先死亡的玩家尸体仍可撞死后判定者
func CheckCollisions(s *GameState) {
	aliveBefore := make(map[PlayerID]bool, len(s.Players))
	for id, p := range s.Players {
		if p.Alive {
			aliveBefore[id] = true
		}
	}

	for _, id := range s.Order {
		p, ok := s.Players[id]
		if !ok || !p.Alive {
			continue
		}
		head := p.Snake[0]

		if head.X < 0 || head.X >= GridWidth || head.Y < 0 || head.Y >= GridHeight {
			p.Alive = false
			continue
		}
		if containsPosition(p.Snake[1:], head) {
			p.Alive = false
			continue
		}
		for _, otherID := range s.Order {
			if otherID == id || !aliveBefore[otherID] {
				continue
			}
			if containsPosition(s.Players[otherID].Snake, head) {
				p.Alive = false
				break
			}
		}
	}
}

// CheckFoodCollision 存活玩家头部落在食物上则得分并补生一枚；否则弹出尾部保持长度
func CheckFoodCollision(s *GameState) {
	for _, id := range s.Order {
		p, ok := s.Players[id]
		if !ok || !p.Alive {
			continue
		}
		head := p.Snake[0]

		ate := false
		for i, f := range s.Food {
			if f == head {
				s.Food = append(s.Food[:i], s.Food[i+1:]...)
				p.Score += ScorePerFood
				s.Food = append(s.Food, GenerateFood(s))
				ate = true
				break
			}
		}
		if !ate {
			p.Snake = p.Snake[:len(p.Snake)-1]
		}
	}
}

// Tick 推进一帧：移动存活玩家 → 碰撞判定 → 食物结算 → 胜负判定
// 存活数 ≤ 1 时终局：gameOver 置位、gameStarted 复位，恰余一人则记为胜者；
// 返回 true 通知调用方停掉该房间的计时器
func Tick(s *GameState) bool {
	for _, id := range s.Order {
		if p, ok := s.Players[id]; ok && p.Alive {
			MoveSnake(p)
		}
	}
	CheckCollisions(s)
	CheckFoodCollision(s)

	alive := s.AliveIDs()
	if len(alive) <= 1 {
		s.GameOver = true
		s.GameStarted = false
		if len(alive) == 1 {
			s.Winner = alive[0]
		}
		return true
	}
	return false
}

func containsPosition(segs []Position, pos Position) bool {
	for _, seg := range segs {
		if seg == pos {
			return true
		}
	}
	return false
}
