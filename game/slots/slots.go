// Package slots 实现老虎机转轮的纯函数部分
package slots

import (
	"math/rand"
)

// Symbol 转轮符号, Weight 越大出现概率越高
type Symbol struct {
	ID     string  `json:"id"`
	Glyph  string  `json:"glyph"`
	Payout float64 `json:"payout"`
	Weight int     `json:"weight"`
}

var Symbols = []Symbol{
	{ID: "cherry", Glyph: "🍒", Payout: 2, Weight: 40},
	{ID: "lemon", Glyph: "🍋", Payout: 3, Weight: 30},
	{ID: "grapes", Glyph: "🍇", Payout: 5, Weight: 20},
	{ID: "diamond", Glyph: "💎", Payout: 10, Weight: 10},
	{ID: "seven", Glyph: "7️⃣", Payout: 25, Weight: 5},
	{ID: "jackpot", Glyph: "🎰", Payout: 100, Weight: 1},
}

var totalWeight = func() int {
	sum := 0
	for _, s := range Symbols {
		sum += s.Weight
	}
	return sum
}()

// Result 单次旋转结果
type Result struct {
	Reels            [3]Symbol `json:"reels"`
	Win              bool      `json:"win"`
	PayoutMultiplier float64   `json:"payout_multiplier"`
	WinLine          []int     `json:"win_line"`
}

func randomSymbol() Symbol {
	n := rand.Float64() * float64(totalWeight)
	sum := 0.0
	for _, s := range Symbols {
		sum += float64(s.Weight)
		if n <= sum {
			return s
		}
	}
	return Symbols[0]
}

// Spin 旋转三个转轮并结算中奖线
func Spin() Result {
	reels := [3]Symbol{randomSymbol(), randomSymbol(), randomSymbol()}

	result := Result{Reels: reels}

	switch {
	case reels[0].ID == reels[1].ID && reels[1].ID == reels[2].ID:
		// 三连额外加倍
		result.Win = true
		result.PayoutMultiplier = reels[0].Payout * 2
		result.WinLine = []int{0, 1, 2}
	case reels[0].ID == reels[1].ID:
		result.Win = true
		result.PayoutMultiplier = reels[0].Payout * 0.5
		result.WinLine = []int{0, 1}
	case reels[1].ID == reels[2].ID:
		result.Win = true
		result.PayoutMultiplier = reels[1].Payout * 0.5
		result.WinLine = []int{1, 2}
	}

	return result
}

// Payout 按旋转结果计算赔付
func Payout(bet int64, r Result) int64 {
	if !r.Win {
		return 0
	}
	return int64(float64(bet) * r.PayoutMultiplier)
}
