package services

import (
	"errors"
	"testing"

	"github.com/wfunc/casino/game/pattern"
)

func TestSoloGame_BetBounds(t *testing.T) {
	db := NewMockDatabase()
	u := seedUser(t, db, "alice")
	s := NewSoloGameService(db, testGameConfig())

	view, err := s.StartGame(u.ID, "numbers", pattern.Easy)
	if err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}

	// 单人模式越界注金直接拒绝
	if _, err := s.SubmitGuess(view.GameID, u.ID, pattern.Guess{}, pattern.GuessExact, 5); !errors.Is(err, ErrInvalidBet) {
		t.Errorf("bet below minimum: expected ErrInvalidBet, got %v", err)
	}
	if _, err := s.SubmitGuess(view.GameID, u.ID, pattern.Guess{}, pattern.GuessExact, 10001); !errors.Is(err, ErrInvalidBet) {
		t.Errorf("bet above maximum: expected ErrInvalidBet, got %v", err)
	}

	// 被拒绝的提交不消耗对局
	if s.ActiveGames() != 1 {
		t.Errorf("rejected bets must not consume the game, active = %d", s.ActiveGames())
	}
}

func TestSoloGame_SubmitAndSettle(t *testing.T) {
	db := NewMockDatabase()
	u := seedUser(t, db, "alice")
	s := NewSoloGameService(db, testGameConfig())

	view, err := s.StartGame(u.ID, "numbers", pattern.Easy)
	if err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}
	if len(view.Sequence) != pattern.SequenceLength {
		t.Fatalf("expected %d sequence items, got %d", pattern.SequenceLength, len(view.Sequence))
	}

	// 空的精确猜测必然不中
	res, err := s.SubmitGuess(view.GameID, u.ID, pattern.Guess{}, pattern.GuessExact, 100)
	if err != nil {
		t.Fatalf("SubmitGuess failed: %v", err)
	}
	if res.Correct || res.Payout != 0 {
		t.Errorf("empty exact guess should miss, got %+v", res)
	}
	if res.NewBalance != u.Balance-100 {
		t.Errorf("expected balance %d, got %d", u.Balance-100, res.NewBalance)
	}

	// 对局已消耗, 二次提交找不到
	if _, err := s.SubmitGuess(view.GameID, u.ID, pattern.Guess{}, pattern.GuessExact, 100); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("expected ErrGameNotFound on reuse, got %v", err)
	}

	// 统计和流水已更新
	updated, _ := db.UserByID(u.ID)
	if updated.TotalWagered != 100 || updated.GamesPlayed != 1 {
		t.Errorf("stats not updated: %+v", updated)
	}
	txs, _ := db.TransactionsByUser(u.ID, 10)
	if len(txs) != 1 || txs[0].Amount != -100 {
		t.Errorf("expected one bet transaction of -100, got %+v", txs)
	}
}

func TestSoloGame_WrongOwner(t *testing.T) {
	db := NewMockDatabase()
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	s := NewSoloGameService(db, testGameConfig())

	view, err := s.StartGame(alice.ID, "colors", pattern.Medium)
	if err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}

	if _, err := s.SubmitGuess(view.GameID, bob.ID, pattern.Guess{}, pattern.GuessExact, 100); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("foreign game: expected ErrGameNotFound, got %v", err)
	}
	// 别人的提交不消耗对局
	if s.ActiveGames() != 1 {
		t.Errorf("foreign submissions must not consume the game, active = %d", s.ActiveGames())
	}
}

func TestSpinSlots(t *testing.T) {
	db := NewMockDatabase()
	u := seedUser(t, db, "alice")
	s := NewSoloGameService(db, testGameConfig())

	if _, err := s.SpinSlots(u.ID, 5); !errors.Is(err, ErrInvalidBet) {
		t.Errorf("bet below minimum: expected ErrInvalidBet, got %v", err)
	}

	res, err := s.SpinSlots(u.ID, 100)
	if err != nil {
		t.Fatalf("SpinSlots failed: %v", err)
	}
	if res.NewBalance != u.Balance-100+res.Payout {
		t.Errorf("balance mismatch: start %d, bet 100, payout %d, got %d",
			u.Balance, res.Payout, res.NewBalance)
	}
	if !res.Spin.Win && res.Payout != 0 {
		t.Errorf("losing spin must pay zero, got %d", res.Payout)
	}

	updated, _ := db.UserByID(u.ID)
	if updated.TotalWagered != 100 {
		t.Errorf("stats not updated: %+v", updated)
	}
}

func TestSoloGame_UnknownGame(t *testing.T) {
	db := NewMockDatabase()
	u := seedUser(t, db, "alice")
	s := NewSoloGameService(db, testGameConfig())

	if _, err := s.SubmitGuess("nope", u.ID, pattern.Guess{}, pattern.GuessExact, 100); !errors.Is(err, ErrGameNotFound) {
		t.Errorf("expected ErrGameNotFound, got %v", err)
	}
}
