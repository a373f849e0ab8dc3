package room

import (
	"github.com/wfunc/casino/game/pattern"
)

// 协调器对外广播的事件载荷

type NewRoundEvent struct {
	Round       int                `json:"round"`
	PatternType string             `json:"pattern_type"`
	Sequence    []pattern.Item     `json:"sequence"`
	Difficulty  pattern.Difficulty `json:"difficulty"`
	TimeLimit   int                `json:"time_limit"` // 秒
}

type PlayerSubmittedEvent struct {
	PlayerID int64  `json:"player_id"`
	Username string `json:"username"`
}

// GuessResultEvent 只发给提交者本人
type GuessResultEvent struct {
	Correct    bool  `json:"correct"`
	Payout     int64 `json:"payout"`
	NewBalance int64 `json:"new_balance"`
}

type PlayerResult struct {
	PlayerID  int64             `json:"player_id"`
	Username  string            `json:"username"`
	GuessType pattern.GuessType `json:"guess_type"`
	Bet       int64             `json:"bet"`
	Correct   bool              `json:"correct"`
	Payout    int64             `json:"payout"`
}

type Standing struct {
	PlayerID int64  `json:"player_id"`
	Username string `json:"username"`
	Score    int64  `json:"score"`
}

type RoundEndedEvent struct {
	Round     int            `json:"round"`
	Answer    pattern.Item   `json:"answer"`
	Results   []PlayerResult `json:"results"`
	Standings []Standing     `json:"standings"`
}

type GameOverEvent struct {
	FinalStandings []Standing `json:"final_standings"`
}
