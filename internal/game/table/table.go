package table

import "time"

// SeatCount 每桌固定 5 人
const SeatCount = 5

// HandSize 发牌后每人 10 张
const HandSize = 10

// SeatID 座位号 0-4
type SeatID int

// NoSeat 表示不存在（例如找不到红桃3）
const NoSeat SeatID = -1

func (s SeatID) Valid() bool { return s >= 0 && s < SeatCount }

// Team 阵营
type Team string

const (
	TeamRed   Team = "red"   // 持红3的一方
	TeamOther Team = "other" // 其他人
)

// Opponent 对方阵营
func (t Team) Opponent() Team {
	if t == TeamRed {
		return TeamOther
	}
	return TeamRed
}

// Phase 对局阶段
type Phase string

const (
	PhaseWaiting   Phase = "waiting"
	PhaseDealing   Phase = "dealing"
	PhaseRevealing Phase = "revealing"
	PhasePlaying   Phase = "playing"
	PhaseRoundEnd  Phase = "round_end"
)

// Play 一次出牌或不要
type Play struct {
	Seat  SeatID `json:"seat"`
	Cards []Card `json:"cards"`
	Pass  bool   `json:"pass"`
}

// Result 一局结束的结果
type Result struct {
	Winner       Team           `json:"winner,omitempty"`
	Draw         bool           `json:"draw"`
	LastFinisher SeatID         `json:"lastFinisher"`
	BaseScore    int            `json:"baseScore"`
	BonusScore   int            `json:"bonusScore"`
	FinalBase    int            `json:"finalBase"`
	Deltas       [SeatCount]int `json:"deltas"`
	Finished     []SeatID       `json:"finished"`
	Seed         int64          `json:"seed"`
	DeckOrder    []Card         `json:"deckOrder"`
	EndedAt      time.Time      `json:"endedAt"`
}

// Table 一局的完整运行时状态（只在引擎内部修改）
type Table struct {
	ID    string
	Phase Phase

	Hands        [SeatCount][]Card
	Revealed     [SeatCount][]Card
	Teams        [SeatCount]Team
	HeartThree   SeatID
	DiamondThree SeatID
	Leader       SeatID

	Current     SeatID
	LastPlay    *Play
	LastActions [SeatCount]*Play
	PassCount   int
	Round       int
	FirstPlay   bool
	Finished    []SeatID

	RevealTimer int
	BaseScore   int
	Commitment  string

	Result *Result
	Scores [SeatCount]int

	// 每次成功的修改都会 +1，定时任务用它判断是否过期
	Version uint64
	// 第几次发牌
	DealSeq uint64
}

// IsFinished 座位是否已出完
func (t *Table) IsFinished(s SeatID) bool {
	for _, f := range t.Finished {
		if f == s {
			return true
		}
	}
	return false
}

// Active 还在打的人数
func (t *Table) Active() int {
	return SeatCount - len(t.Finished)
}

// Roster 某阵营的全部座位
func (t *Table) Roster(team Team) []SeatID {
	var out []SeatID
	for i, tm := range t.Teams {
		if tm == team {
			out = append(out, SeatID(i))
		}
	}
	return out
}
