package table

// RotationOrder 出牌顺序：逆时针（座位号递减），跳过已出完的人
type RotationOrder struct{}

// Next 返回 from 之后下一个还有牌的座位
// 全部出完时返回 from
func (RotationOrder) Next(from SeatID, finished []SeatID) SeatID {
	done := make(map[SeatID]bool, len(finished))
	for _, f := range finished {
		done[f] = true
	}
	next := from
	for i := 0; i < SeatCount; i++ {
		next = prev(next)
		if !done[next] {
			return next
		}
	}
	return from
}

func prev(s SeatID) SeatID {
	if s <= 0 {
		return SeatCount - 1
	}
	return s - 1
}
