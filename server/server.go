// server/server.go
package server

import (
	"encoding/json"
	"net/http"
	"net/rpc"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/wfunc/casino/auth"
	"github.com/wfunc/casino/broadcast"
	"github.com/wfunc/casino/config"
	"github.com/wfunc/casino/logger"
	"github.com/wfunc/casino/monitor"
	"github.com/wfunc/casino/network"
	"github.com/wfunc/casino/persistence"
	"github.com/wfunc/casino/room"
	casino_rpc "github.com/wfunc/casino/rpc"
	"github.com/wfunc/casino/services"
	"github.com/wfunc/casino/session"
	"github.com/wfunc/casino/timer"
)

type GameServer struct {
	cfg            *config.Config
	upgrader       websocket.Upgrader
	sessionManager *session.Manager
	broadcaster    *broadcast.RoomBroadcaster
	timers         *timer.Manager
	coordinator    *room.Coordinator
	monitor        *monitor.Monitor

	authService   *services.AuthService
	playerService *services.PlayerService
	roomService   *services.RoomService
	soloService   *services.SoloGameService

	rpcServer    *casino_rpc.Server
	shutdownChan chan struct{}
}

func NewGameServer(cfg *config.Config, db persistence.Database) *GameServer {
	s := &GameServer{
		cfg:            cfg,
		sessionManager: session.NewManager(),
		timers:         timer.NewManager(),
		monitor:        monitor.NewMonitor("casino"),
		shutdownChan:   make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许所有跨域请求
			},
		},
	}

	s.broadcaster = broadcast.NewRoomBroadcaster(s.sessionManager)

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	s.authService = services.NewAuthService(db, jwtManager, cfg.Game)
	s.playerService = services.NewPlayerService(db, cfg.Game)
	s.roomService = services.NewRoomService(db, cfg.Game)
	s.soloService = services.NewSoloGameService(db, cfg.Game)

	s.coordinator = room.NewCoordinator(db, db, s.broadcaster, s.timers, cfg.Game)
	s.coordinator.SetResolveHook(s.monitor.IncRoundsResolved)

	rpcServer, err := casino_rpc.NewServer(cfg.Server.RPCAddress)
	if err != nil {
		logger.Log.Fatalf("Failed to create RPC server: %v", err)
	}
	s.rpcServer = rpcServer

	statsService := casino_rpc.NewStatsService(s.playerService)
	if err := rpc.Register(statsService); err != nil {
		logger.Log.Fatalf("Failed to register RPC service: %v", err)
	}

	// 定期刷新在线人数和活跃轮次指标
	s.timers.Schedule(10*time.Second, 10*time.Second, func() {
		s.monitor.SetOnlinePlayers(s.sessionManager.Count())
		s.monitor.SetActiveRooms(s.coordinator.ActiveMatches())
	})

	return s
}

func (s *GameServer) Start() error {
	go s.rpcServer.Start()
	s.monitor.StartServer(s.cfg.Server.MetricsAddress)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	s.registerAPIRoutes(mux)

	logger.Log.Infof("Game server listening on %s", s.cfg.Server.HTTPAddress)
	return http.ListenAndServe(s.cfg.Server.HTTPAddress, mux)
}

func (s *GameServer) Shutdown() {
	close(s.shutdownChan)
	s.timers.Stop()
	s.rpcServer.Stop()
}

// handleWebSocket 升级连接. 身份在握手时通过 token 查询参数校验,
// 匿名连接直接拒绝
func (s *GameServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	claims, err := s.authService.Verify(r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.Infof("Failed to upgrade connection: %v", err)
		return
	}
	s.handleConnection(conn, claims)
}

func (s *GameServer) handleConnection(conn *websocket.Conn, claims *auth.Claims) {
	wsConn := network.NewWSConnection(conn)
	sess := session.NewSession(uuid.New().String(), wsConn)
	sess.UserID = claims.UserID
	sess.Username = claims.Username
	s.sessionManager.Add(sess)
	s.monitor.IncOnlinePlayers()
	s.broadcastOnlineCount()

	logger.Log.Infof("用户 %s (id=%d) 连接, session %s", claims.Username, claims.UserID, sess.GetID())

	defer func() {
		logger.Log.Infof("用户 %s 断开, session %s", sess.Username, sess.GetID())
		s.handleDisconnect(sess)
		s.sessionManager.Remove(sess.GetID())
		s.monitor.DecOnlinePlayers()
		s.broadcastOnlineCount()
		wsConn.Close()
	}()

	for {
		select {
		case <-s.shutdownChan:
			return
		default:
			packet, err := wsConn.ReadPacket()
			if err != nil {
				return
			}
			s.monitor.IncMessagesReceived()
			start := time.Now()
			s.handlePacket(sess, packet)
			s.monitor.ObserveMessageLatency(time.Since(start))
		}
	}
}

// handleDisconnect 掉线只断开连接, 不取消房间成员资格,
// 玩家重连后仍在原房间
func (s *GameServer) handleDisconnect(sess *session.Session) {
	code := sess.Room()
	if code == "" {
		return
	}
	s.sessionManager.DetachFromRoom(sess.GetID())
	s.broadcastToRoom(code, network.MsgTypePlayerLeft, map[string]interface{}{
		"player_id": sess.UserID,
		"username":  sess.Username,
		"reason":    "disconnected",
	})
}

func (s *GameServer) broadcastOnlineCount() {
	data, _ := json.Marshal(map[string]int{"online": s.sessionManager.Count()})
	_ = s.broadcaster.BroadcastToAll(network.MsgTypeOnlineCount, data)
}

func (s *GameServer) broadcastToRoom(code string, msgID uint16, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Log.Errorf("Error marshalling message %d: %v", msgID, err)
		return
	}
	if err := s.broadcaster.BroadcastToRoom(code, msgID, data); err != nil {
		logger.Log.Errorf("Broadcast to room %s failed: %v", code, err)
	}
}
