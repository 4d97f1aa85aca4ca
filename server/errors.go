package server

import "errors"

// 可恢复的业务错误：只回发给触发方，不影响其他房间
var (
	ErrRoomFull         = errors.New("room is full")
	ErrNotEnoughPlayers = errors.New("not enough players")
	ErrRoomNotFound     = errors.New("room not found")
	ErrInvalidInput     = errors.New("invalid input")
)
