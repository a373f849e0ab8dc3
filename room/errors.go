package room

import "errors"

// 协调器层错误, 只回发给发起请求的连接
var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrRoomFull            = errors.New("room is full")
	ErrNotAuthorized       = errors.New("only the host can perform this action")
	ErrInvalidState        = errors.New("action not allowed in the current room status")
	ErrNoActiveRound       = errors.New("no active round")
	ErrDuplicateSubmission = errors.New("already submitted a guess this round")
)
