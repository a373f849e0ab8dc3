// Package blackjack 实现二十一点的纯函数部分, 不持有任何跨局状态
package blackjack

import (
	"math/rand"
)

var (
	suits = []string{"H", "D", "C", "S"}
	faces = []string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}
)

type Card struct {
	Suit string `json:"suit"`
	Face string `json:"face"`
}

// 结局分类
const (
	ResultBust       = "bust"
	ResultBlackjack  = "blackjack"
	ResultDealerBust = "dealer_bust"
	ResultWin        = "win"
	ResultLose       = "lose"
	ResultPush       = "push"
)

// Game 一局进行中的牌面
type Game struct {
	Deck       []Card `json:"-"`
	PlayerHand []Card `json:"player_hand"`
	DealerHand []Card `json:"dealer_hand"`
	Finished   bool   `json:"finished"`
	Result     string `json:"result,omitempty"`
}

// NewDeck 生成一副洗好的牌
func NewDeck() []Card {
	deck := make([]Card, 0, len(suits)*len(faces))
	for _, s := range suits {
		for _, f := range faces {
			deck = append(deck, Card{Suit: s, Face: f})
		}
	}
	rand.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
	return deck
}

// HandValue 计算手牌点数, A 按需从 11 退为 1
func HandValue(hand []Card) int {
	value := 0
	aces := 0
	for _, c := range hand {
		switch c.Face {
		case "J", "Q", "K":
			value += 10
		case "A":
			aces++
			value += 11
		case "10":
			value += 10
		default:
			value += int(c.Face[0] - '0')
		}
	}
	for value > 21 && aces > 0 {
		value -= 10
		aces--
	}
	return value
}

// Deal 发初始两张牌, 天生二十一点直接结束
func Deal() *Game {
	deck := NewDeck()
	g := &Game{
		PlayerHand: []Card{deck[0], deck[1]},
		DealerHand: []Card{deck[2], deck[3]},
		Deck:       deck[4:],
	}
	if HandValue(g.PlayerHand) == 21 && HandValue(g.DealerHand) != 21 {
		g.Finished = true
		g.Result = ResultBlackjack
	}
	return g
}

// Hit 玩家要牌, 爆牌即结束
func (g *Game) Hit() {
	if g.Finished {
		return
	}
	g.PlayerHand = append(g.PlayerHand, g.draw())
	if HandValue(g.PlayerHand) > 21 {
		g.Finished = true
		g.Result = ResultBust
	}
}

// Stand 玩家停牌, 庄家补到 17 点后结算
func (g *Game) Stand() {
	if g.Finished {
		return
	}
	for HandValue(g.DealerHand) < 17 {
		g.DealerHand = append(g.DealerHand, g.draw())
	}

	dealer := HandValue(g.DealerHand)
	player := HandValue(g.PlayerHand)

	g.Finished = true
	switch {
	case dealer > 21:
		g.Result = ResultDealerBust
	case dealer > player:
		g.Result = ResultLose
	case dealer < player:
		g.Result = ResultWin
	default:
		g.Result = ResultPush
	}
}

func (g *Game) draw() Card {
	card := g.Deck[0]
	g.Deck = g.Deck[1:]
	return card
}

// Payout 按结局计算赔付: 天生二十一点 1.5 倍, 普通胜局 1 倍, 平局退注
func Payout(bet int64, result string) int64 {
	switch result {
	case ResultBlackjack:
		return bet + int64(float64(bet)*1.5)
	case ResultWin, ResultDealerBust:
		return bet * 2
	case ResultPush:
		return bet
	default:
		return 0
	}
}
