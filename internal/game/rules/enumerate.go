package rules

import (
	"sort"

	"RedCatch/internal/game/table"
)

// LegalPlays 列出手牌中所有能出的组合
// reference 为空表示自由出牌；required 非空时只保留包含该牌的组合
func LegalPlays(hand, reference []table.Card, required *table.Card) [][]table.Card {
	var plays [][]table.Card
	admit := func(play []table.Card) {
		if required != nil && !table.Contains(play, *required) {
			return
		}
		if len(reference) == 0 || CanBeat(play, reference) {
			plays = append(plays, play)
		}
	}

	// 单张
	for _, c := range hand {
		admit([]table.Card{c})
	}

	groups := rankGroups(hand, required)

	// 对子
	for _, g := range groups {
		if len(g) >= 2 && Classify(g[:2]).Type == Pair {
			admit(table.Clone(g[:2]))
		}
	}
	// 三张、四张炸弹
	for _, g := range groups {
		if len(g) >= 3 {
			admit(table.Clone(g[:3]))
		}
	}
	for _, g := range groups {
		if len(g) == 4 {
			admit(table.Clone(g))
		}
	}

	// 双红3
	var reds, jokers []table.Card
	for _, c := range hand {
		if c.IsRedThree() {
			reds = append(reds, c)
		}
		if c.IsJoker() {
			jokers = append(jokers, c)
		}
	}
	if len(reds) == 2 {
		admit(reds)
	}
	if len(jokers) == 2 {
		admit(jokers)
	}
	return plays
}

// rankGroups 按点数分组（不含王），组按强度升序
// 组内 required 排第一，其余按强度升序（黑3 在红3 前面）
func rankGroups(hand []table.Card, required *table.Card) [][]table.Card {
	byRank := make(map[int][]table.Card)
	for _, c := range hand {
		if c.IsJoker() {
			continue
		}
		byRank[c.Rank] = append(byRank[c.Rank], c)
	}
	groups := make([][]table.Card, 0, len(byRank))
	for _, g := range byRank {
		sort.SliceStable(g, func(i, j int) bool {
			if required != nil && (g[i] == *required) != (g[j] == *required) {
				return g[i] == *required
			}
			si, sj := g[i].Strength(), g[j].Strength()
			if si != sj {
				return si < sj
			}
			return g[i].Suit < g[j].Suit
		})
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool {
		return baseStrength(groups[i][0].Rank) < baseStrength(groups[j][0].Rank)
	})
	return groups
}

// baseStrength 点数本身的大小（3 按黑3 计）
func baseStrength(rank int) int {
	return table.Card{Suit: table.Spade, Rank: rank}.Strength()
}
