package rules

import "RedCatch/internal/game/table"

// ComboType 牌型
type ComboType string

const (
	Invalid   ComboType = "invalid"
	Single    ComboType = "single"
	Pair      ComboType = "pair"
	BombThree ComboType = "bomb3"  // 三张炸弹
	BombFour  ComboType = "bomb4"  // 四张炸弹
	BombRed   ComboType = "bombR3" // 双红3
	BombJoker ComboType = "bombJ"  // 双王
)

// 炸弹的强度区间，高于所有非炸弹
const (
	threeBombOffset = 500
	fourBombOffset  = 600
	redBombValue    = 999
	jokerBombValue  = 1000
)

// Combo 分类后的一手牌
type Combo struct {
	Type  ComboType `json:"type"`
	Value int       `json:"value"`
}

func (c Combo) IsBomb() bool {
	switch c.Type {
	case BombThree, BombFour, BombRed, BombJoker:
		return true
	}
	return false
}

func (c Combo) Valid() bool { return c.Type != Invalid }

// Classify 判断牌型
func Classify(cards []table.Card) Combo {
	switch len(cards) {
	case 1:
		return Combo{Type: Single, Value: cards[0].Strength()}
	case 2:
		if cards[0].IsJoker() && cards[1].IsJoker() {
			return Combo{Type: BombJoker, Value: jokerBombValue}
		}
		if cards[0].IsRedThree() && cards[1].IsRedThree() {
			return Combo{Type: BombRed, Value: redBombValue}
		}
		if sameRank(cards) {
			return Combo{Type: Pair, Value: mixedValue(cards)}
		}
	case 3:
		if sameRank(cards) {
			return Combo{Type: BombThree, Value: mixedValue(cards) + threeBombOffset}
		}
	case 4:
		if sameRank(cards) {
			return Combo{Type: BombFour, Value: mixedValue(cards) + fourBombOffset}
		}
	}
	return Combo{Type: Invalid}
}

func sameRank(cards []table.Card) bool {
	for _, c := range cards[1:] {
		if c.Rank != cards[0].Rank || c.IsJoker() {
			return false
		}
	}
	return !cards[0].IsJoker()
}

// mixedValue 多张同点数牌的大小
// 红3与黑3混合时红3失去优势，按黑3计
func mixedValue(cards []table.Card) int {
	if cards[0].Rank == 3 {
		var red, black bool
		for _, c := range cards {
			red = red || c.IsRedThree()
			black = black || c.IsBlackThree()
		}
		if red && black {
			return table.Card{Suit: table.Spade, Rank: 3}.Strength()
		}
	}
	low := cards[0].Strength()
	for _, c := range cards[1:] {
		if s := c.Strength(); s < low {
			low = s
		}
	}
	return low
}

// Beats c 能否管住 ref
func (c Combo) Beats(ref Combo) bool {
	if !c.Valid() {
		return false
	}
	if c.IsBomb() {
		if !ref.IsBomb() {
			return true
		}
		return c.Value > ref.Value
	}
	if ref.IsBomb() {
		return false
	}
	return c.Type == ref.Type && c.Value > ref.Value
}

// CanBeat reference 为空时任何合法牌型都能出
func CanBeat(candidate, reference []table.Card) bool {
	cand := Classify(candidate)
	if len(reference) == 0 {
		return cand.Valid()
	}
	return cand.Beats(Classify(reference))
}
