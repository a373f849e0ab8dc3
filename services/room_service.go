// services/room_service.go
package services

import (
	"errors"
	"math/rand"
	"strings"

	"github.com/wfunc/casino/config"
	"github.com/wfunc/casino/logger"
	"github.com/wfunc/casino/models"
	"github.com/wfunc/casino/persistence"
	"github.com/wfunc/casino/room"
	"github.com/wfunc/casino/state"
)

// 去掉易混淆字符 (0/O, 1/I) 的房间码字母表
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	codeLength      = 6
	codeMaxAttempts = 10
)

// RoomService 房间的创建、加入和退出; 轮次推进由协调器负责
type RoomService struct {
	db  persistence.Database
	cfg config.GameConfig
}

func NewRoomService(db persistence.Database, cfg config.GameConfig) *RoomService {
	return &RoomService{db: db, cfg: cfg}
}

func generateCode() string {
	b := make([]byte, codeLength)
	for i := range b {
		b[i] = codeAlphabet[rand.Intn(len(codeAlphabet))]
	}
	return string(b)
}

// allocateCode 找一个未被占用的房间码, 已关闭房间的码可复用
func (s *RoomService) allocateCode() (string, error) {
	for attempt := 0; attempt < codeMaxAttempts; attempt++ {
		code := generateCode()
		existing, err := s.db.RoomByCode(code)
		if errors.Is(err, persistence.ErrRecordNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
		if existing.Status == models.RoomStatusClosed {
			return code, nil
		}
	}
	return "", ErrCodeGenerationExhausted
}

// CreateRoom 创建房间并把房主登记为第一个成员
func (s *RoomService) CreateRoom(hostID int64, gameType string) (*models.Room, error) {
	if gameType == "" {
		gameType = "pattern-prediction"
	}
	code, err := s.allocateCode()
	if err != nil {
		return nil, err
	}

	rm, err := s.db.CreateRoom(code, gameType, hostID, s.cfg.MaxRoomPlayers)
	if err != nil {
		return nil, err
	}
	if err := s.db.AddRoomPlayer(rm.ID, hostID); err != nil {
		return nil, err
	}
	logger.Log.Infof("用户 %d 创建房间 %s", hostID, code)
	return rm, nil
}

// JoinRoom 加入等待中的房间. 已是成员时直接返回房间 (幂等)
func (s *RoomService) JoinRoom(code string, userID int64) (*models.Room, error) {
	rm, err := s.Room(code)
	if err != nil {
		return nil, err
	}
	// 已结束或已关闭的房间对加入者等同于不存在
	if state.Status(rm.Status).Terminal() {
		return nil, room.ErrRoomNotFound
	}

	members, err := s.db.RoomPlayers(rm.ID)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		if m.UserID == userID {
			return rm, nil
		}
	}

	if rm.Status != models.RoomStatusWaiting {
		return nil, room.ErrInvalidState
	}
	if len(members) >= rm.MaxPlayers {
		return nil, room.ErrRoomFull
	}
	if err := s.db.AddRoomPlayer(rm.ID, userID); err != nil {
		return nil, err
	}
	logger.Log.Infof("用户 %d 加入房间 %s", userID, code)
	return rm, nil
}

// LeaveRoom 退出房间. 房主退出时整个房间关闭, 返回 closed=true,
// 调用方负责通知其余成员和丢弃进行中的轮次
func (s *RoomService) LeaveRoom(code string, userID int64) (closed bool, rm *models.Room, err error) {
	rm, err = s.Room(code)
	if err != nil {
		return false, nil, err
	}

	if rm.HostID == userID {
		if !state.Status(rm.Status).Terminal() {
			if err := s.db.UpdateRoomStatus(rm.ID, models.RoomStatusClosed); err != nil {
				return false, nil, err
			}
			rm.Status = models.RoomStatusClosed
		}
		logger.Log.Infof("房主 %d 离开, 房间 %s 关闭", userID, code)
		return true, rm, nil
	}

	if err := s.db.RemoveRoomPlayer(rm.ID, userID); err != nil {
		return false, nil, err
	}
	logger.Log.Infof("用户 %d 离开房间 %s", userID, code)
	return false, rm, nil
}

// Room 按房间码查找, 大小写不敏感
func (s *RoomService) Room(code string) (*models.Room, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	rm, err := s.db.RoomByCode(code)
	if err != nil {
		if errors.Is(err, persistence.ErrRecordNotFound) {
			return nil, room.ErrRoomNotFound
		}
		return nil, err
	}
	return rm, nil
}

// Players 房间成员及积分, 按分数降序
func (s *RoomService) Players(roomID int64) ([]models.RoomPlayer, error) {
	return s.db.RoomPlayers(roomID)
}
