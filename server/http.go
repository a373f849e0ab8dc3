// server/http.go
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/wfunc/casino/auth"
	"github.com/wfunc/casino/game/pattern"
	"github.com/wfunc/casino/logger"
	"github.com/wfunc/casino/network"
	"github.com/wfunc/casino/persistence"
	"github.com/wfunc/casino/room"
	"github.com/wfunc/casino/services"
)

func (s *GameServer) registerAPIRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)

	mux.HandleFunc("GET /api/profile", s.withAuth(s.handleProfile))
	mux.HandleFunc("GET /api/currency/balance", s.withAuth(s.handleBalance))
	mux.HandleFunc("POST /api/currency/daily-bonus", s.withAuth(s.handleDailyBonus))
	mux.HandleFunc("GET /api/currency/transactions", s.withAuth(s.handleTransactions))
	mux.HandleFunc("GET /api/leaderboard", s.handleLeaderboard)

	mux.HandleFunc("POST /api/rooms", s.withAuth(s.handleCreateRoom))
	mux.HandleFunc("GET /api/rooms/{code}", s.withAuth(s.handleGetRoom))
	mux.HandleFunc("POST /api/rooms/{code}/join", s.withAuth(s.handleJoinRoomHTTP))
	mux.HandleFunc("POST /api/rooms/{code}/leave", s.withAuth(s.handleLeaveRoomHTTP))

	mux.HandleFunc("POST /api/games/pattern-prediction/start", s.withAuth(s.handleSoloStart))
	mux.HandleFunc("POST /api/games/pattern-prediction/guess", s.withAuth(s.handleSoloGuess))
	mux.HandleFunc("POST /api/games/slots/spin", s.withAuth(s.handleSlotsSpin))

	mux.HandleFunc("GET /api/health", s.handleHealth)
}

type authedHandler func(w http.ResponseWriter, r *http.Request, claims *auth.Claims)

// withAuth 解析 Authorization: Bearer 头, 失败直接 401
func (s *GameServer) withAuth(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		claims, err := s.authService.Verify(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next(w, r, claims)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Log.Warnf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError 把业务错误映射到 HTTP 状态码
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, room.ErrRoomNotFound), errors.Is(err, services.ErrGameNotFound),
		errors.Is(err, persistence.ErrRecordNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, room.ErrRoomFull), errors.Is(err, room.ErrInvalidState),
		errors.Is(err, room.ErrDuplicateSubmission), errors.Is(err, services.ErrBonusNotReady),
		errors.Is(err, persistence.ErrDuplicateUsername):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, room.ErrNotAuthorized):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrInvalidBet), errors.Is(err, room.ErrNoActiveRound),
		errors.Is(err, persistence.ErrInsufficientBalance):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrCodeGenerationExhausted):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		logger.Log.Errorf("Internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *GameServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	user, token, err := s.authService.Register(req.Username, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"user": user, "token": token})
}

func (s *GameServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	user, token, err := s.authService.Login(req.Username, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user, "token": token})
}

func (s *GameServer) handleProfile(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	user, err := s.playerService.Profile(claims.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user":          user,
		"next_bonus_in": s.playerService.NextBonusIn(user).Seconds(),
	})
}

func (s *GameServer) handleBalance(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	user, err := s.playerService.Profile(claims.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"balance": user.Balance})
}

func (s *GameServer) handleDailyBonus(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	user, err := s.playerService.ClaimDailyBonus(claims.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

func (s *GameServer) handleTransactions(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	txs, err := s.playerService.Transactions(claims.UserID, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"transactions": txs})
}

func (s *GameServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := s.playerService.Leaderboard(limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"leaderboard": entries})
}

func (s *GameServer) handleCreateRoom(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	var req struct {
		GameType string `json:"game_type"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	rm, err := s.roomService.CreateRoom(claims.UserID, req.GameType)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{"room": rm})
}

func (s *GameServer) handleGetRoom(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	rm, err := s.roomService.Room(r.PathValue("code"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	players, err := s.roomService.Players(rm.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"room": rm, "players": players})
}

func (s *GameServer) handleJoinRoomHTTP(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	rm, err := s.roomService.JoinRoom(r.PathValue("code"), claims.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	s.broadcastToRoom(rm.Code, network.MsgTypePlayerJoined, map[string]interface{}{
		"player_id": claims.UserID,
		"username":  claims.Username,
	})
	writeJSON(w, http.StatusOK, map[string]interface{}{"room": rm})
}

func (s *GameServer) handleLeaveRoomHTTP(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	code := strings.ToUpper(r.PathValue("code"))
	closed, rm, err := s.roomService.LeaveRoom(code, claims.UserID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	s.broadcastToRoom(code, network.MsgTypePlayerLeft, map[string]interface{}{
		"player_id": claims.UserID,
		"username":  claims.Username,
		"reason":    "left",
	})
	if closed {
		s.coordinator.CloseRoom(code)
		s.broadcastToRoom(code, network.MsgTypeRoomState, map[string]interface{}{
			"room": map[string]string{"code": code, "status": "closed"},
		})
		for _, member := range s.sessionManager.GetByRoomCode(code) {
			s.sessionManager.DetachFromRoom(member.GetID())
		}
	} else {
		for _, member := range s.sessionManager.GetByRoomCode(code) {
			if member.UserID == claims.UserID {
				s.sessionManager.DetachFromRoom(member.GetID())
			}
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"room": rm, "closed": closed})
}

func (s *GameServer) handleSoloStart(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	var req struct {
		Type       string             `json:"type"`
		Difficulty pattern.Difficulty `json:"difficulty"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)

	view, err := s.soloService.StartGame(claims.UserID, req.Type, req.Difficulty)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *GameServer) handleSoloGuess(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	var req struct {
		GameID    string            `json:"game_id"`
		Guess     pattern.Guess     `json:"guess"`
		GuessType pattern.GuessType `json:"guess_type"`
		Bet       int64             `json:"bet"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.soloService.SubmitGuess(req.GameID, claims.UserID, req.Guess, req.GuessType, req.Bet)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *GameServer) handleSlotsSpin(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	var req struct {
		Bet int64 `json:"bet"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.soloService.SpinSlots(claims.UserID, req.Bet)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *GameServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"online": s.sessionManager.Count(),
	})
}
