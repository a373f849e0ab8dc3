// room/coordinator.go
package room

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/wfunc/casino/config"
	"github.com/wfunc/casino/game/pattern"
	"github.com/wfunc/casino/logger"
	"github.com/wfunc/casino/models"
	"github.com/wfunc/casino/network"
	"github.com/wfunc/casino/state"
	"github.com/wfunc/casino/timer"
)

// Coordinator 多人回合协调器: 每个房间同一时刻至多一个进行中的轮次,
// 轮次的推进由两个竞争触发器驱动 (全员提交 / 截止定时器), 结算幂等
type Coordinator struct {
	registry Registry
	wallet   Wallet
	bus      Broadcaster
	timers   *timer.Manager
	cfg      config.GameConfig

	matches map[string]*Match // roomCode -> 当前轮
	mutex   sync.RWMutex

	resolveHook func() // 每轮结算后调用一次, 用于指标上报
}

func NewCoordinator(registry Registry, wallet Wallet, bus Broadcaster, timers *timer.Manager, cfg config.GameConfig) *Coordinator {
	return &Coordinator{
		registry: registry,
		wallet:   wallet,
		bus:      bus,
		timers:   timers,
		cfg:      cfg,
		matches:  make(map[string]*Match),
	}
}

// SetResolveHook 注册轮次结算回调, 在每轮恰好结算一次之后触发
func (c *Coordinator) SetResolveHook(hook func()) {
	c.resolveHook = hook
}

// 难度随轮次递进: 第1轮 easy, 第2轮 medium, 之后 hard
func difficultyFor(roundIndex int) pattern.Difficulty {
	schedule := []pattern.Difficulty{pattern.Easy, pattern.Medium, pattern.Hard}
	if roundIndex > 2 {
		roundIndex = 2
	}
	return schedule[roundIndex]
}

// StartGame 房主开局: waiting -> playing 并开始第一轮
func (c *Coordinator) StartGame(code string, userID int64) error {
	rm, err := c.registry.RoomByCode(code)
	if err != nil {
		return ErrRoomNotFound
	}
	if rm.HostID != userID {
		return ErrNotAuthorized
	}
	if err := c.transition(rm, state.StatusPlaying); err != nil {
		return err
	}
	c.startRound(code, rm.ID)
	return nil
}

func (c *Coordinator) transition(rm *models.Room, to state.Status) error {
	if !state.CanTransition(state.Status(rm.Status), to) {
		return ErrInvalidState
	}
	if err := c.registry.UpdateRoomStatus(rm.ID, string(to)); err != nil {
		return err
	}
	rm.Status = string(to)
	return nil
}

// startRound 开始新的一轮, 由 StartGame 或上一轮的续轮定时器触发
func (c *Coordinator) startRound(code string, roomID int64) {
	rm, err := c.registry.RoomByCode(code)
	if err != nil || rm.Status != models.RoomStatusPlaying {
		// 房间在间隔期被关闭或消失, 静默放弃
		return
	}

	roundIndex := rm.CurrentRound
	difficulty := difficultyFor(roundIndex)
	p := pattern.Generate("", difficulty)
	match := newMatch(roomID, code, roundIndex+1, p, time.Now())

	c.mutex.Lock()
	if current, exists := c.matches[code]; exists && !current.isResolved() {
		// 已有进行中的轮次, 不允许并发第二轮
		c.mutex.Unlock()
		logger.Log.Warnf("房间 %s 已有进行中的第 %d 轮, 忽略重复开轮", code, current.Round)
		return
	}
	c.matches[code] = match
	c.mutex.Unlock()

	if err := c.registry.IncrementRound(roomID); err != nil {
		logger.Log.Errorf("Failed to increment round for room %s: %v", code, err)
	}

	c.broadcast(code, network.MsgTypeNewRound, NewRoundEvent{
		Round:       match.Round,
		PatternType: p.Type,
		Sequence:    p.Sequence,
		Difficulty:  difficulty,
		TimeLimit:   int(c.cfg.RoundTime.Seconds()),
	})

	// 截止定时器带着轮次号, 早结算后迟到的触发是空操作
	round := match.Round
	c.timers.Schedule(c.cfg.RoundTime+c.cfg.RoundGrace, 0, func() {
		c.resolveRound(code, round)
	})

	logger.Log.Infof("房间 %s 第 %d 轮开始, 难度 %s, 类型 %s", code, match.Round, difficulty, p.Type)
}

func (m *Match) isResolved() bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.resolved
}

// SubmitGuess 接收一个玩家的猜测, 每人每轮只允许一次
// 下注金额被收拢到 [最小注, 余额] 而不是直接拒绝
func (c *Coordinator) SubmitGuess(code string, userID int64, guess pattern.Guess, guessType pattern.GuessType, betAmount int64) error {
	match := c.currentMatch(code)
	if match == nil {
		return ErrNoActiveRound
	}

	user, err := c.wallet.UserByID(userID)
	if err != nil {
		return err
	}

	bet := c.clampBet(betAmount, user.Balance)
	correct := pattern.Validate(match.Pattern, guess, guessType)
	payout := pattern.Payout(bet, guessType, correct)

	sub := &Submission{
		UserID:    userID,
		Username:  user.Username,
		Guess:     guess,
		GuessType: guessType,
		Bet:       bet,
		Correct:   correct,
		Payout:    payout,
	}
	// 净结果立即作用于余额; 积分只记正向赢取.
	// 落账走在 record 的锁内, 结算快照不会夹在登记和落账之间
	var updated *models.User
	err = match.record(sub, func() error {
		u, err := c.wallet.AddBalance(userID, payout-bet)
		if err != nil {
			return err
		}
		updated = u
		if correct {
			if err := c.registry.AddRoomScore(match.RoomID, userID, payout); err != nil {
				logger.Log.Errorf("Failed to add score for user %d in room %s: %v", userID, code, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	// 只公布"谁提交了", 不公布猜的内容
	c.broadcast(code, network.MsgTypePlayerSubmitted, PlayerSubmittedEvent{
		PlayerID: userID,
		Username: user.Username,
	})
	c.unicast(userID, network.MsgTypeGuessResult, GuessResultEvent{
		Correct:    correct,
		Payout:     payout,
		NewBalance: updated.Balance,
	})

	// 全员提交时提前结算; 人数按注册成员数而不是在线连接数
	count, err := c.registry.RoomPlayerCount(match.RoomID)
	if err == nil && match.submissionCount() >= count {
		c.resolveRound(code, match.Round)
	}
	return nil
}

func (c *Coordinator) currentMatch(code string) *Match {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.matches[code]
}

func (c *Coordinator) clampBet(bet, balance int64) int64 {
	if bet <= 0 {
		bet = c.cfg.DefaultBet
	}
	if bet < c.cfg.MinBet {
		bet = c.cfg.MinBet
	}
	if bet > balance {
		bet = balance
	}
	return bet
}

// resolveRound 结算一轮. 幂等: 只有轮次号匹配且尚未结算时才生效,
// 无论触发方是提前完成还是截止定时器, 恰好执行一次
func (c *Coordinator) resolveRound(code string, round int) {
	match := c.currentMatch(code)
	if match == nil || match.Round != round {
		// 过期触发器 (轮次已推进或房间已关闭)
		return
	}

	submissions, ok := match.settle()
	if !ok {
		return
	}
	if c.resolveHook != nil {
		c.resolveHook()
	}

	// 结果按赔付降序, 同额按提交顺序
	results := make([]PlayerResult, 0, len(submissions))
	for _, sub := range submissions {
		results = append(results, PlayerResult{
			PlayerID:  sub.UserID,
			Username:  sub.Username,
			GuessType: sub.GuessType,
			Bet:       sub.Bet,
			Correct:   sub.Correct,
			Payout:    sub.Payout,
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Payout > results[j].Payout
	})

	standings := c.standings(match.RoomID)

	c.broadcast(code, network.MsgTypeRoundEnded, RoundEndedEvent{
		Round:     round,
		Answer:    match.Pattern.Answer,
		Results:   results,
		Standings: standings,
	})
	logger.Log.Infof("房间 %s 第 %d 轮结算, %d 人提交", code, round, len(results))

	if round < c.cfg.RoundsPerMatch {
		// 留出查看结果的间隔再开下一轮
		roomID := match.RoomID
		c.timers.Schedule(c.cfg.Intermission, 0, func() {
			c.startRound(code, roomID)
		})
		return
	}

	// 一局结束, 房间进入终态
	if err := c.registry.UpdateRoomStatus(match.RoomID, models.RoomStatusFinished); err != nil {
		logger.Log.Errorf("Failed to finish room %s: %v", code, err)
	}
	c.mutex.Lock()
	delete(c.matches, code)
	c.mutex.Unlock()

	c.broadcast(code, network.MsgTypeGameOver, GameOverEvent{FinalStandings: standings})
	logger.Log.Infof("房间 %s 一局结束", code)
}

// standings 当前积分榜, 按分数降序、加入时间升序 (排序由存储层保证)
func (c *Coordinator) standings(roomID int64) []Standing {
	players, err := c.registry.RoomPlayers(roomID)
	if err != nil {
		logger.Log.Errorf("Failed to load standings for room %d: %v", roomID, err)
		return nil
	}
	standings := make([]Standing, 0, len(players))
	for _, p := range players {
		standings = append(standings, Standing{
			PlayerID: p.UserID,
			Username: p.Username,
			Score:    p.Score,
		})
	}
	return standings
}

// CloseRoom 房主离开时丢弃进行中的轮次, 迟到的定时器会自然空操作
func (c *Coordinator) CloseRoom(code string) {
	c.mutex.Lock()
	delete(c.matches, code)
	c.mutex.Unlock()
}

// ActiveMatches 当前进行中的轮次数, 用于监控
func (c *Coordinator) ActiveMatches() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.matches)
}

func (c *Coordinator) broadcast(code string, msgID uint16, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Log.Errorf("Error marshalling broadcast message: %v", err)
		return
	}
	if err := c.bus.BroadcastToRoom(code, msgID, data); err != nil {
		logger.Log.Errorf("Broadcast to room %s failed: %v", code, err)
	}
}

func (c *Coordinator) unicast(userID int64, msgID uint16, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Log.Errorf("Error marshalling unicast message: %v", err)
		return
	}
	if err := c.bus.SendToUser(userID, msgID, data); err != nil {
		logger.Log.Errorf("Send to user %d failed: %v", userID, err)
	}
}
