// room/round.go
package room

import (
	"sync"
	"time"

	"github.com/wfunc/casino/game/pattern"
)

// Submission 一个玩家在当前轮的提交记录, 写入后不再修改
type Submission struct {
	UserID    int64
	Username  string
	Guess     pattern.Guess
	GuessType pattern.GuessType
	Bet       int64
	Correct   bool
	Payout    int64
}

// Match 房间内进行中的一轮, 只存在于内存, 不落库
// Round 和 Pattern 创建后不变, submissions 由 mutex 保护
type Match struct {
	RoomID    int64
	Code      string
	Round     int
	Pattern   *pattern.Pattern
	StartedAt time.Time

	mutex       sync.Mutex
	submissions map[int64]*Submission
	order       []int64 // 提交顺序
	resolved    bool
}

func newMatch(roomID int64, code string, round int, p *pattern.Pattern, now time.Time) *Match {
	return &Match{
		RoomID:      roomID,
		Code:        code,
		Round:       round,
		Pattern:     p,
		StartedAt:   now,
		submissions: make(map[int64]*Submission),
	}
}

// record 登记一个提交, 同一玩家第二次提交被拒绝而不是覆盖.
// apply (余额与积分落账) 在锁内执行: settle 拿到的快照里的每条提交,
// 它的账一定已经落完; apply 失败则什么都没登记, 无需回滚
func (m *Match) record(sub *Submission, apply func() error) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.resolved {
		return ErrNoActiveRound
	}
	if _, exists := m.submissions[sub.UserID]; exists {
		return ErrDuplicateSubmission
	}
	if apply != nil {
		if err := apply(); err != nil {
			return err
		}
	}
	m.submissions[sub.UserID] = sub
	m.order = append(m.order, sub.UserID)
	return nil
}

func (m *Match) submissionCount() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.submissions)
}

// settle 将本轮标记为已结算并按提交顺序返回快照
// 第二次调用返回 false: 结算只会发生一次
func (m *Match) settle() ([]Submission, bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.resolved {
		return nil, false
	}
	m.resolved = true

	snapshot := make([]Submission, 0, len(m.order))
	for _, id := range m.order {
		snapshot = append(snapshot, *m.submissions[id])
	}
	return snapshot, true
}
