package room

import (
	"github.com/wfunc/casino/models"
)

// Registry is the durable room record store the coordinator runs against.
// Defined here to keep the coordinator decoupled from the persistence package.
type Registry interface {
	RoomByCode(code string) (*models.Room, error)
	UpdateRoomStatus(roomID int64, status string) error
	IncrementRound(roomID int64) error
	RoomPlayers(roomID int64) ([]models.RoomPlayer, error)
	RoomPlayerCount(roomID int64) (int, error)
	AddRoomScore(roomID, userID int64, delta int64) error
}

// Wallet mutates player coin balances on behalf of submissions.
type Wallet interface {
	UserByID(id int64) (*models.User, error)
	AddBalance(userID int64, delta int64) (*models.User, error)
}

// Broadcaster relays coordinator events to connected clients.
type Broadcaster interface {
	BroadcastToRoom(roomCode string, msgID uint16, data []byte) error
	SendToUser(userID int64, msgID uint16, data []byte) error
}
