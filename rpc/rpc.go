// rpc/rpc.go
package rpc

import (
	"net"
	"net/rpc"

	"github.com/wfunc/casino/logger"
	"github.com/wfunc/casino/models"
	"github.com/wfunc/casino/services"
)

// Server manages the RPC listener used by internal tooling.
type Server struct {
	listener net.Listener
	address  string
}

func NewServer(addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Server{
		listener: listener,
		address:  addr,
	}, nil
}

// Start begins listening for RPC requests.
func (s *Server) Start() {
	logger.Log.Infof("RPC server listening on %s", s.address)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if _, ok := err.(*net.OpError); ok {
				logger.Log.Info("RPC server listener closed.")
				return
			}
			logger.Log.Errorf("RPC server accept error: %v", err)
			continue
		}
		go rpc.ServeConn(conn)
	}
}

// Stop closes the RPC listener.
func (s *Server) Stop() {
	if s.listener != nil {
		logger.Log.Info("Stopping RPC server.")
		s.listener.Close()
	}
}

// StatsService exposes read-only player data over net/rpc.
// Methods follow the net/rpc signature: exported method, exported
// argument types, pointer reply, error return.
type StatsService struct {
	playerService *services.PlayerService
}

func NewStatsService(ps *services.PlayerService) *StatsService {
	return &StatsService{playerService: ps}
}

type ProfileArgs struct {
	UserID int64
}

type ProfileReply struct {
	User *models.User
}

func (s *StatsService) Profile(args *ProfileArgs, reply *ProfileReply) error {
	user, err := s.playerService.Profile(args.UserID)
	if err != nil {
		return err
	}
	reply.User = user
	return nil
}

type LeaderboardArgs struct {
	Limit int
}

type LeaderboardReply struct {
	Entries []models.LeaderboardEntry
}

func (s *StatsService) Leaderboard(args *LeaderboardArgs, reply *LeaderboardReply) error {
	entries, err := s.playerService.Leaderboard(args.Limit)
	if err != nil {
		return err
	}
	reply.Entries = entries
	return nil
}
