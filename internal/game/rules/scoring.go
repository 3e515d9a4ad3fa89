package rules

import "RedCatch/internal/game/table"

// BaseScore 亮牌基础分
// 方片3 必亮，记 1 分；红桃3 +2；每张黑3 +1
func BaseScore(revealed [table.SeatCount][]table.Card) int {
	score := 1
	for _, cards := range revealed {
		for _, c := range cards {
			switch {
			case c.IsHeartThree():
				score += 2
			case c.IsBlackThree():
				score++
			}
		}
	}
	return score
}

// BonusScore 附加分 = 输方还没出完的人数
func BonusScore(teams [table.SeatCount]table.Team, finished []table.SeatID, hands [table.SeatCount][]table.Card, winner table.Team) int {
	done := make(map[table.SeatID]bool, len(finished))
	for _, f := range finished {
		done[f] = true
	}
	bonus := 0
	for i, team := range teams {
		if team != winner && !done[table.SeatID(i)] && len(hands[i]) > 0 {
			bonus++
		}
	}
	return bonus
}

// ScoreChanges 各座位积分变化，红桃3 持有者翻倍
func ScoreChanges(teams [table.SeatCount]table.Team, heartThree table.SeatID, winner table.Team, finalBase int) [table.SeatCount]int {
	var out [table.SeatCount]int
	for i, team := range teams {
		delta := finalBase
		if table.SeatID(i) == heartThree {
			delta *= 2
		}
		if team != winner {
			delta = -delta
		}
		out[i] = delta
	}
	return out
}
