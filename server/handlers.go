// server/handlers.go
package server

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/wfunc/casino/game/pattern"
	"github.com/wfunc/casino/logger"
	"github.com/wfunc/casino/network"
	"github.com/wfunc/casino/room"
	"github.com/wfunc/casino/session"
)

const maxChatLength = 200

// truncateMessage 按字符数截断, 不能落在多字节字符中间
func truncateMessage(msg string, max int) string {
	if len(msg) <= max {
		return msg
	}
	runes := []rune(msg)
	if len(runes) <= max {
		return msg
	}
	return string(runes[:max])
}

func (s *GameServer) handlePacket(sess *session.Session, packet *network.Packet) {
	switch packet.MsgID {
	case network.MsgTypeHeartbeat:
		sess.LastActive = time.Now()
	case network.MsgTypeJoinRoom:
		s.handleJoinRoom(sess, packet)
	case network.MsgTypeLeaveRoom:
		s.handleLeaveRoom(sess)
	case network.MsgTypeStartGame:
		s.handleStartGame(sess)
	case network.MsgTypeSubmitGuess:
		s.handleSubmitGuess(sess, packet)
	case network.MsgTypeChat:
		s.handleChat(sess, packet)
	default:
		logger.Log.Infof("Unknown message type: %d", packet.MsgID)
	}
}

// 错误以统一的结构回发给发起请求的连接
func (s *GameServer) sendError(sess *session.Session, err error) {
	payload := map[string]string{
		"code":    errorCode(err),
		"message": err.Error(),
	}
	data, _ := json.Marshal(payload)
	if err := sess.Send(network.MsgTypeError, data); err != nil {
		logger.Log.Warnf("Failed to send error to session %s: %v", sess.GetID(), err)
	}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, room.ErrRoomNotFound):
		return "room_not_found"
	case errors.Is(err, room.ErrRoomFull):
		return "room_full"
	case errors.Is(err, room.ErrNotAuthorized):
		return "not_authorized"
	case errors.Is(err, room.ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, room.ErrNoActiveRound):
		return "no_active_round"
	case errors.Is(err, room.ErrDuplicateSubmission):
		return "duplicate_submission"
	default:
		return "internal_error"
	}
}

func (s *GameServer) handleJoinRoom(sess *session.Session, packet *network.Packet) {
	var req struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.sendError(sess, err)
		return
	}

	rm, err := s.roomService.JoinRoom(req.Code, sess.UserID)
	if err != nil {
		s.sendError(sess, err)
		return
	}

	s.sessionManager.AttachToRoom(sess.GetID(), rm.Code)
	s.broadcastToRoom(rm.Code, network.MsgTypePlayerJoined, map[string]interface{}{
		"player_id": sess.UserID,
		"username":  sess.Username,
	})
	s.sendRoomState(sess, rm.Code)
}

// sendRoomState 下发房间快照, 加入和重连时各发一次
func (s *GameServer) sendRoomState(sess *session.Session, code string) {
	rm, err := s.roomService.Room(code)
	if err != nil {
		s.sendError(sess, err)
		return
	}
	players, err := s.roomService.Players(rm.ID)
	if err != nil {
		s.sendError(sess, err)
		return
	}

	data, _ := json.Marshal(map[string]interface{}{
		"room":    rm,
		"players": players,
	})
	if err := sess.Send(network.MsgTypeRoomState, data); err != nil {
		logger.Log.Warnf("Failed to send room state to session %s: %v", sess.GetID(), err)
	}
}

func (s *GameServer) handleLeaveRoom(sess *session.Session) {
	code := sess.Room()
	if code == "" {
		return
	}

	closed, _, err := s.roomService.LeaveRoom(code, sess.UserID)
	if err != nil {
		s.sendError(sess, err)
		return
	}
	s.finishLeave(sess, code, closed)
}

// finishLeave 离开后的清理和通知, WebSocket 和 REST 两条路径共用
func (s *GameServer) finishLeave(sess *session.Session, code string, closed bool) {
	s.broadcastToRoom(code, network.MsgTypePlayerLeft, map[string]interface{}{
		"player_id": sess.UserID,
		"username":  sess.Username,
		"reason":    "left",
	})

	if closed {
		// 房主离开: 丢弃进行中的轮次并清空所有成员的房间关联
		s.coordinator.CloseRoom(code)
		s.broadcastToRoom(code, network.MsgTypeRoomState, map[string]interface{}{
			"room": map[string]string{"code": code, "status": "closed"},
		})
		for _, member := range s.sessionManager.GetByRoomCode(code) {
			s.sessionManager.DetachFromRoom(member.GetID())
		}
		return
	}
	s.sessionManager.DetachFromRoom(sess.GetID())
}

func (s *GameServer) handleStartGame(sess *session.Session) {
	code := sess.Room()
	if code == "" {
		s.sendError(sess, room.ErrRoomNotFound)
		return
	}
	if err := s.coordinator.StartGame(code, sess.UserID); err != nil {
		s.sendError(sess, err)
	}
}

func (s *GameServer) handleSubmitGuess(sess *session.Session, packet *network.Packet) {
	code := sess.Room()
	if code == "" {
		s.sendError(sess, room.ErrNoActiveRound)
		return
	}

	var req struct {
		Guess     pattern.Guess     `json:"guess"`
		GuessType pattern.GuessType `json:"guess_type"`
		Bet       int64             `json:"bet"`
	}
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		s.sendError(sess, err)
		return
	}

	if err := s.coordinator.SubmitGuess(code, sess.UserID, req.Guess, req.GuessType, req.Bet); err != nil {
		s.sendError(sess, err)
	}
}

func (s *GameServer) handleChat(sess *session.Session, packet *network.Packet) {
	code := sess.Room()
	if code == "" {
		return
	}

	var req struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(packet.Data, &req); err != nil {
		return
	}
	if req.Message == "" {
		return
	}
	req.Message = truncateMessage(req.Message, maxChatLength)

	s.broadcastToRoom(code, network.MsgTypeChatMessage, map[string]interface{}{
		"player_id": sess.UserID,
		"username":  sess.Username,
		"message":   req.Message,
		"timestamp": time.Now().Unix(),
	})
}
