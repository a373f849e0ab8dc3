// Package pattern 实现序列预测玩法的纯函数部分:
// 生成一段有规律的序列并扣留下一项作为答案, 校验玩家的猜测并计算赔付
package pattern

import (
	"fmt"
	"math/rand"
	"strconv"
)

type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

type GuessType string

const (
	GuessExact    GuessType = "exact"
	GuessCategory GuessType = "category"
	GuessBinary   GuessType = "binary"
)

// 赔率
var Multipliers = map[GuessType]float64{
	GuessExact:    5,
	GuessCategory: 2,
	GuessBinary:   1.5,
}

const SequenceLength = 5

var (
	Types  = []string{"cards", "numbers", "colors"}
	Suits  = []string{"hearts", "diamonds", "clubs", "spades"}
	Faces  = []string{"A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}
	Colors = []string{"red", "blue", "green", "yellow", "purple", "orange"}
	Shapes = []string{"circle", "square", "triangle", "star", "diamond", "hexagon"}
)

// Item 序列中的一项, 按类型使用不同字段
type Item struct {
	Suit   string `json:"suit,omitempty"`
	Face   string `json:"face,omitempty"`
	Red    bool   `json:"red,omitempty"`
	Number int    `json:"number,omitempty"`
	Color  string `json:"color,omitempty"`
	Shape  string `json:"shape,omitempty"`
}

// Hints 每种猜测粒度对应的正确答案描述
type Hints struct {
	Exact    string `json:"exact"`
	Category string `json:"category"`
	Binary   string `json:"binary"`
}

// Pattern 一次生成结果, Answer 不下发给客户端
type Pattern struct {
	Type       string     `json:"type"`
	Difficulty Difficulty `json:"difficulty"`
	Sequence   []Item     `json:"sequence"`
	Answer     Item       `json:"answer"`
	Hints      Hints      `json:"hints"`
}

// Guess 玩家的猜测, 指针字段区分"未填"和零值
type Guess struct {
	Suit   string `json:"suit,omitempty"`
	Face   string `json:"face,omitempty"`
	Number *int   `json:"number,omitempty"`
	Color  string `json:"color,omitempty"`
	Shape  string `json:"shape,omitempty"`
	Red    *bool  `json:"red,omitempty"`
	Higher *bool  `json:"higher,omitempty"`
	Warm   *bool  `json:"warm,omitempty"`
}

// Generate 生成一个序列, patternType 为空时随机选择类型
func Generate(patternType string, difficulty Difficulty) *Pattern {
	t := patternType
	if t == "" {
		t = Types[rand.Intn(len(Types))]
	}

	var p *Pattern
	switch t {
	case "cards":
		p = generateCards(difficulty)
	case "colors":
		p = generateColors(difficulty)
	default:
		p = generateNumbers(difficulty)
	}
	p.Difficulty = difficulty
	return p
}

func isRedSuit(suit string) bool {
	return suit == "hearts" || suit == "diamonds"
}

func randomCard(suit string) Item {
	return Item{
		Suit: suit,
		Face: Faces[rand.Intn(len(Faces))],
		Red:  isRedSuit(suit),
	}
}

func generateCards(difficulty Difficulty) *Pattern {
	items := make([]Item, 0, SequenceLength+1)

	switch difficulty {
	case Easy:
		if rand.Intn(2) == 0 {
			// 红黑交替
			startRed := rand.Intn(2) == 0
			for i := 0; i < SequenceLength+1; i++ {
				red := (i%2 == 0) == startRed
				var suit string
				if red {
					suit = []string{"hearts", "diamonds"}[rand.Intn(2)]
				} else {
					suit = []string{"clubs", "spades"}[rand.Intn(2)]
				}
				items = append(items, randomCard(suit))
			}
		} else {
			// 同花
			suit := Suits[rand.Intn(len(Suits))]
			for i := 0; i < SequenceLength+1; i++ {
				items = append(items, randomCard(suit))
			}
		}
	case Medium:
		// 升序或降序的点数
		ascending := rand.Intn(2) == 0
		var start int
		if ascending {
			start = rand.Intn(7)
		} else {
			start = rand.Intn(7) + 6
		}
		for i := 0; i < SequenceLength+1; i++ {
			idx := start + i
			if !ascending {
				idx = start - i
			}
			suit := Suits[rand.Intn(len(Suits))]
			items = append(items, Item{Suit: suit, Face: Faces[idx], Red: isRedSuit(suit)})
		}
	default:
		// 困难: 点数递增 + 花色轮换
		rotation := append([]string(nil), Suits...)
		rand.Shuffle(len(rotation), func(i, j int) {
			rotation[i], rotation[j] = rotation[j], rotation[i]
		})
		start := rand.Intn(6)
		for i := 0; i < SequenceLength+1; i++ {
			suit := rotation[i%len(rotation)]
			items = append(items, Item{
				Suit: suit,
				Face: Faces[(start+i)%len(Faces)],
				Red:  isRedSuit(suit),
			})
		}
	}

	answer := items[SequenceLength]
	binary := "black"
	if answer.Red {
		binary = "red"
	}
	return &Pattern{
		Type:     "cards",
		Sequence: items[:SequenceLength],
		Answer:   answer,
		Hints: Hints{
			Exact:    fmt.Sprintf("%s of %s", answer.Face, answer.Suit),
			Category: answer.Suit,
			Binary:   binary,
		},
	}
}

func generateNumbers(difficulty Difficulty) *Pattern {
	numbers := make([]int, 0, SequenceLength+1)

	switch difficulty {
	case Easy:
		// 等差数列
		start := rand.Intn(10) + 1
		step := rand.Intn(5) + 1
		for i := 0; i < SequenceLength+1; i++ {
			numbers = append(numbers, start+step*i)
		}
	case Medium:
		if rand.Intn(2) == 0 {
			// 等比数列
			start := rand.Intn(3) + 2
			ratio := rand.Intn(2) + 2
			value := start
			for i := 0; i < SequenceLength+1; i++ {
				numbers = append(numbers, value)
				value *= ratio
			}
		} else {
			// 交替步长
			current := rand.Intn(10) + 1
			step1 := rand.Intn(3) + 1
			step2 := rand.Intn(3) + 2
			for i := 0; i < SequenceLength+1; i++ {
				numbers = append(numbers, current)
				if i%2 == 0 {
					current += step1
				} else {
					current += step2
				}
			}
		}
	default:
		// 斐波那契式
		a := rand.Intn(5) + 1
		b := rand.Intn(5) + 1
		numbers = append(numbers, a, b)
		for i := 2; i < SequenceLength+1; i++ {
			numbers = append(numbers, numbers[i-1]+numbers[i-2])
		}
	}

	answer := numbers[SequenceLength]
	last := numbers[SequenceLength-1]

	sequence := make([]Item, SequenceLength)
	for i := 0; i < SequenceLength; i++ {
		sequence[i] = Item{Number: numbers[i]}
	}

	category := "odd"
	if answer%2 == 0 {
		category = "even"
	}
	binary := "lower"
	if answer > last {
		binary = "higher"
	}
	return &Pattern{
		Type:     "numbers",
		Sequence: sequence,
		Answer:   Item{Number: answer},
		Hints: Hints{
			Exact:    strconv.Itoa(answer),
			Category: category,
			Binary:   binary,
		},
	}
}

func pickColors(n int) []string {
	shuffled := append([]string(nil), Colors...)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:n]
}

func generateColors(difficulty Difficulty) *Pattern {
	items := make([]Item, 0, SequenceLength+1)

	switch difficulty {
	case Easy:
		// ABAB 或 AABB 重复
		picked := pickColors(2)
		cycle := []string{picked[0], picked[1]}
		if rand.Intn(2) == 0 {
			cycle = []string{picked[0], picked[0], picked[1], picked[1]}
		}
		for i := 0; i < SequenceLength+1; i++ {
			items = append(items, Item{
				Color: cycle[i%len(cycle)],
				Shape: Shapes[rand.Intn(len(Shapes))],
			})
		}
	case Medium:
		// 三色轮换
		picked := pickColors(3)
		for i := 0; i < SequenceLength+1; i++ {
			items = append(items, Item{
				Color: picked[i%3],
				Shape: Shapes[rand.Intn(len(Shapes))],
			})
		}
	default:
		// 颜色 + 形状联合轮换
		pickedColors := pickColors(3)
		shuffledShapes := append([]string(nil), Shapes...)
		rand.Shuffle(len(shuffledShapes), func(i, j int) {
			shuffledShapes[i], shuffledShapes[j] = shuffledShapes[j], shuffledShapes[i]
		})
		for i := 0; i < SequenceLength+1; i++ {
			items = append(items, Item{
				Color: pickedColors[i%3],
				Shape: shuffledShapes[i%2],
			})
		}
	}

	answer := items[SequenceLength]
	binary := "cool"
	if isWarm(answer.Color) {
		binary = "warm"
	}
	return &Pattern{
		Type:     "colors",
		Sequence: items[:SequenceLength],
		Answer:   answer,
		Hints: Hints{
			Exact:    fmt.Sprintf("%s %s", answer.Color, answer.Shape),
			Category: answer.Color,
			Binary:   binary,
		},
	}
}

// 调色板前半段算暖色
func isWarm(color string) bool {
	for i, c := range Colors {
		if c == color {
			return i < 3
		}
	}
	return false
}

// Validate 按猜测粒度校验猜测是否命中扣留的答案
func Validate(p *Pattern, guess Guess, guessType GuessType) bool {
	answer := p.Answer

	switch guessType {
	case GuessExact:
		switch p.Type {
		case "cards":
			return guess.Suit == answer.Suit && guess.Face == answer.Face
		case "numbers":
			return guess.Number != nil && *guess.Number == answer.Number
		default:
			return guess.Color == answer.Color && guess.Shape == answer.Shape
		}

	case GuessCategory:
		switch p.Type {
		case "cards":
			return guess.Suit == answer.Suit
		case "numbers":
			if guess.Number == nil {
				return false
			}
			return (*guess.Number%2 == 0) == (answer.Number%2 == 0)
		default:
			return guess.Color == answer.Color
		}

	case GuessBinary:
		switch p.Type {
		case "cards":
			guessRed := guess.Color == "red"
			if guess.Red != nil {
				guessRed = *guess.Red
			}
			return guessRed == answer.Red
		case "numbers":
			if guess.Higher == nil {
				return false
			}
			last := p.Sequence[len(p.Sequence)-1].Number
			return *guess.Higher == (answer.Number > last)
		default:
			if guess.Warm == nil {
				return false
			}
			return *guess.Warm == isWarm(answer.Color)
		}
	}
	return false
}

// Payout 按赔率计算赔付, 猜错为零, 向下取整
func Payout(bet int64, guessType GuessType, correct bool) int64 {
	if !correct {
		return 0
	}
	mult, ok := Multipliers[guessType]
	if !ok {
		return 0
	}
	return int64(float64(bet) * mult)
}
