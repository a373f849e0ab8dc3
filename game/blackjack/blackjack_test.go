package blackjack

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func card(face string) Card { return Card{Suit: "H", Face: face} }

func TestHandValue(t *testing.T) {
	cases := []struct {
		name  string
		hand  []Card
		value int
	}{
		{"number cards", []Card{card("2"), card("9")}, 11},
		{"face cards", []Card{card("K"), card("Q")}, 20},
		{"ten", []Card{card("10"), card("7")}, 17},
		{"soft ace", []Card{card("A"), card("6")}, 17},
		{"blackjack", []Card{card("A"), card("K")}, 21},
		{"ace demoted once", []Card{card("A"), card("9"), card("5")}, 15},
		{"two aces", []Card{card("A"), card("A"), card("9")}, 21},
		{"all aces", []Card{card("A"), card("A"), card("A"), card("A")}, 14},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.value, HandValue(c.hand))
		})
	}
}

func TestNewDeck(t *testing.T) {
	deck := NewDeck()
	assert.Len(t, deck, 52)

	seen := make(map[Card]bool)
	for _, c := range deck {
		assert.False(t, seen[c], "duplicate card %v", c)
		seen[c] = true
	}
}

func TestHit_Bust(t *testing.T) {
	g := &Game{
		PlayerHand: []Card{card("K"), card("Q")},
		DealerHand: []Card{card("2"), card("3")},
		Deck:       []Card{card("5")},
	}
	g.Hit()
	assert.True(t, g.Finished)
	assert.Equal(t, ResultBust, g.Result)
}

func TestStand_DealerDrawsTo17(t *testing.T) {
	g := &Game{
		PlayerHand: []Card{card("K"), card("9")},
		DealerHand: []Card{card("2"), card("4")},
		Deck:       []Card{card("5"), card("6"), card("9")},
	}
	g.Stand()
	assert.True(t, g.Finished)
	assert.GreaterOrEqual(t, HandValue(g.DealerHand), 17)
	assert.Equal(t, ResultWin, g.Result) // 19 vs 17
}

func TestStand_DealerBust(t *testing.T) {
	g := &Game{
		PlayerHand: []Card{card("10"), card("8")},
		DealerHand: []Card{card("10"), card("6")},
		Deck:       []Card{card("K")},
	}
	g.Stand()
	assert.Equal(t, ResultDealerBust, g.Result)
}

func TestStand_Push(t *testing.T) {
	g := &Game{
		PlayerHand: []Card{card("K"), card("8")},
		DealerHand: []Card{card("10"), card("8")},
		Deck:       []Card{},
	}
	g.Stand()
	assert.Equal(t, ResultPush, g.Result)
}

func TestPayout(t *testing.T) {
	assert.Equal(t, int64(250), Payout(100, ResultBlackjack))
	assert.Equal(t, int64(200), Payout(100, ResultWin))
	assert.Equal(t, int64(200), Payout(100, ResultDealerBust))
	assert.Equal(t, int64(100), Payout(100, ResultPush))
	assert.Equal(t, int64(0), Payout(100, ResultLose))
	assert.Equal(t, int64(0), Payout(100, ResultBust))
}
