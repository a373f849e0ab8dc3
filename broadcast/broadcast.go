// broadcast/broadcast.go
package broadcast

import (
	"github.com/wfunc/casino/session"
)

// 广播接口
type Broadcaster interface {
	BroadcastToRoom(roomCode string, msgID uint16, data []byte) error
	BroadcastToAll(msgID uint16, data []byte) error
	SendToUser(userID int64, msgID uint16, data []byte) error
}

// 基于会话房间索引的广播器
type RoomBroadcaster struct {
	sessionManager *session.Manager
}

func NewRoomBroadcaster(sessionManager *session.Manager) *RoomBroadcaster {
	return &RoomBroadcaster{
		sessionManager: sessionManager,
	}
}

// BroadcastToRoom 向房间广播组内所有会话发送消息
// 空房间不算错误: 广播是尽力而为的
func (b *RoomBroadcaster) BroadcastToRoom(roomCode string, msgID uint16, data []byte) error {
	for _, s := range b.sessionManager.GetByRoomCode(roomCode) {
		if err := s.Send(msgID, data); err != nil {
			// 发送失败的连接由读循环负责清理
			continue
		}
	}
	return nil
}

func (b *RoomBroadcaster) BroadcastToAll(msgID uint16, data []byte) error {
	for _, s := range b.sessionManager.All() {
		if err := s.Send(msgID, data); err != nil {
			continue
		}
	}
	return nil
}

// SendToUser 向某个用户的所有在线会话发送消息
func (b *RoomBroadcaster) SendToUser(userID int64, msgID uint16, data []byte) error {
	for _, s := range b.sessionManager.GetByUserID(userID) {
		if err := s.Send(msgID, data); err != nil {
			continue
		}
	}
	return nil
}
