package table

import (
	"fmt"
	"sort"
)

// Suit 花色
type Suit string

const (
	Heart   Suit = "heart"
	Diamond Suit = "diamond"
	Spade   Suit = "spade"
	Club    Suit = "club"
	Joker   Suit = "joker"
)

// 特殊点数
const (
	SmallJokerRank = 14
	BigJokerRank   = 15
)

// Suits 四门普通花色（不含王）
var Suits = []Suit{Heart, Diamond, Spade, Club}

// Ranks 普通点数，去掉了 6
var Ranks = []int{1, 2, 3, 4, 5, 7, 8, 9, 10, 11, 12, 13}

// Card 一张牌，按 suit+rank 判等
type Card struct {
	Suit Suit `json:"suit" mapstructure:"suit"`
	Rank int  `json:"rank" mapstructure:"rank"`
}

// OpeningCard 红桃5：持有者首出，且首手必须包含它
var OpeningCard = Card{Suit: Heart, Rank: 5}

// Strength 单张大小
// 大王 > 小王 > 红3 > 4 > 黑3 > 2 > A > K > ... > 7 > 5
func (c Card) Strength() int {
	switch {
	case c.Suit == Joker && c.Rank == BigJokerRank:
		return 100
	case c.Suit == Joker && c.Rank == SmallJokerRank:
		return 99
	case c.IsRedThree():
		return 98
	case c.Rank == 4:
		return 97
	case c.Rank == 3:
		return 96
	case c.Rank == 2:
		return 95
	case c.Rank == 1:
		return 94
	case c.Rank >= 7 && c.Rank <= 13:
		return 80 + c.Rank
	case c.Rank == 5:
		return 86
	}
	return 0
}

// Valid 是否是牌组里存在的牌
func (c Card) Valid() bool {
	if c.Suit == Joker {
		return c.Rank == SmallJokerRank || c.Rank == BigJokerRank
	}
	switch c.Suit {
	case Heart, Diamond, Spade, Club:
	default:
		return false
	}
	return c.Rank >= 1 && c.Rank <= 13 && c.Rank != 6
}

func (c Card) IsRedThree() bool {
	return c.Rank == 3 && (c.Suit == Heart || c.Suit == Diamond)
}

func (c Card) IsBlackThree() bool {
	return c.Rank == 3 && (c.Suit == Spade || c.Suit == Club)
}

func (c Card) IsHeartThree() bool   { return c.Rank == 3 && c.Suit == Heart }
func (c Card) IsDiamondThree() bool { return c.Rank == 3 && c.Suit == Diamond }
func (c Card) IsJoker() bool        { return c.Suit == Joker }

// ID 形如 "heart-3"
func (c Card) ID() string {
	return fmt.Sprintf("%s-%d", c.Suit, c.Rank)
}

func (c Card) String() string {
	return fmtCard(c)
}

func fmtCard(c Card) string {
	if c.Suit == Joker {
		if c.Rank == BigJokerRank {
			return "BJ"
		}
		return "SJ"
	}
	suits := map[Suit]string{Heart: "♥", Diamond: "♦", Spade: "♠", Club: "♣"}
	ranks := map[int]string{1: "A", 11: "J", 12: "Q", 13: "K"}
	rankStr, ok := ranks[c.Rank]
	if !ok {
		rankStr = fmt.Sprintf("%d", c.Rank)
	}
	suitStr, ok := suits[c.Suit]
	if !ok {
		suitStr = "?"
	}
	return rankStr + suitStr
}

// SortByStrength 按大小降序排列（仅用于展示）
func SortByStrength(cards []Card) {
	sort.SliceStable(cards, func(i, j int) bool {
		si, sj := cards[i].Strength(), cards[j].Strength()
		if si != sj {
			return si > sj
		}
		return cards[i].Suit < cards[j].Suit
	})
}

// Contains 是否包含某张牌
func Contains(cards []Card, c Card) bool {
	for _, x := range cards {
		if x == c {
			return true
		}
	}
	return false
}

// Remove 从 hand 中移除 cards，返回新切片
func Remove(hand []Card, cards []Card) []Card {
	out := make([]Card, 0, len(hand))
	for _, c := range hand {
		if !Contains(cards, c) {
			out = append(out, c)
		}
	}
	return out
}

// Clone 复制一份
func Clone(cards []Card) []Card {
	if cards == nil {
		return nil
	}
	out := make([]Card, len(cards))
	copy(out, cards)
	return out
}
