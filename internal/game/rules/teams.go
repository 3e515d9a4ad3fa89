package rules

import "RedCatch/internal/game/table"

// Roles 发牌后确定的阵营与特殊座位
type Roles struct {
	Teams        [table.SeatCount]table.Team `json:"teams"`
	HeartThree   table.SeatID                `json:"heartThree"`   // 积分翻倍
	DiamondThree table.SeatID                `json:"diamondThree"` // 必须亮牌
	Leader       table.SeatID                `json:"leader"`       // 持红桃5，首出
}

// ResolveTeams 持红3（红桃或方片）者为红方，其余为 other
// 找不到的座位为 NoSeat，正确的 50 张发牌不会出现
func ResolveTeams(hands [table.SeatCount][]table.Card) Roles {
	r := Roles{
		HeartThree:   table.NoSeat,
		DiamondThree: table.NoSeat,
		Leader:       table.NoSeat,
	}
	for i, hand := range hands {
		seat := table.SeatID(i)
		r.Teams[i] = table.TeamOther
		for _, c := range hand {
			switch {
			case c.IsHeartThree():
				r.HeartThree = seat
				r.Teams[i] = table.TeamRed
			case c.IsDiamondThree():
				r.DiamondThree = seat
				r.Teams[i] = table.TeamRed
			case c == table.OpeningCard:
				r.Leader = seat
			}
		}
	}
	return r
}

// Complete 三个特殊座位都找到了
func (r Roles) Complete() bool {
	return r.HeartThree.Valid() && r.DiamondThree.Valid() && r.Leader.Valid()
}
