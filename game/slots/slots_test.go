package slots

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func symbol(id string) Symbol {
	for _, s := range Symbols {
		if s.ID == id {
			return s
		}
	}
	panic("unknown symbol " + id)
}

func TestPayout_ThreeMatch(t *testing.T) {
	r := Result{
		Reels:            [3]Symbol{symbol("seven"), symbol("seven"), symbol("seven")},
		Win:              true,
		PayoutMultiplier: symbol("seven").Payout * 2,
		WinLine:          []int{0, 1, 2},
	}
	assert.Equal(t, int64(5000), Payout(100, r))
}

func TestPayout_TwoMatch(t *testing.T) {
	r := Result{
		Reels:            [3]Symbol{symbol("cherry"), symbol("cherry"), symbol("lemon")},
		Win:              true,
		PayoutMultiplier: symbol("cherry").Payout * 0.5,
		WinLine:          []int{0, 1},
	}
	assert.Equal(t, int64(100), Payout(100, r))
}

func TestPayout_Loss(t *testing.T) {
	assert.Equal(t, int64(0), Payout(100, Result{}))
}

func TestSpin_ConsistentResult(t *testing.T) {
	for i := 0; i < 200; i++ {
		r := Spin()
		if r.Win {
			assert.NotEmpty(t, r.WinLine)
			assert.Greater(t, r.PayoutMultiplier, 0.0)
			first := r.WinLine[0]
			second := r.WinLine[1]
			assert.Equal(t, r.Reels[first].ID, r.Reels[second].ID)
		} else {
			assert.Empty(t, r.WinLine)
			assert.Zero(t, r.PayoutMultiplier)
			assert.NotEqual(t, r.Reels[0].ID, r.Reels[1].ID)
			assert.NotEqual(t, r.Reels[1].ID, r.Reels[2].ID)
		}
	}
}
