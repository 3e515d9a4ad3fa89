package manager

import (
	"RedCatch/internal/game/rules"
	"RedCatch/internal/game/table"
)

// 下行事件
const (
	EventRoomUpdate     = "room_update"
	EventGameStarted    = "game_started"
	EventRevealTimer    = "reveal_timer"
	EventRevealedUpdate = "revealed_update"
	EventPhaseChanged   = "phase_changed"
	EventStateUpdate    = "state_update"
	EventGameEnded      = "game_ended"
	EventPlayError      = "play_error"
	EventChat           = "chat"
)

// 上行事件
const (
	ActionToggleReveal = "toggle_reveal"
	ActionPlayCards    = "play_cards"
	ActionPass         = "pass"
	ActionChat         = "chat"
)

// GameStarted 发给每个真人，只含自己的手牌
type GameStarted struct {
	RoomID      string                        `json:"roomId"`
	DealSeq     uint64                        `json:"dealSeq"`
	Seat        table.SeatID                  `json:"seat"`
	Hand        []table.Card                  `json:"hand"`
	Roles       rules.Roles                   `json:"roles"`
	Revealed    [table.SeatCount][]table.Card `json:"revealed"`
	RevealTicks int                           `json:"revealTicks"`
	Commitment  string                        `json:"commitment"`
	Scores      [table.SeatCount]int          `json:"scores"`
	Seats       []Seat                        `json:"seats"`
}

type PhaseChanged struct {
	RoomID      string      `json:"roomId"`
	Phase       table.Phase `json:"phase"`
	RevealTimer int         `json:"revealTimer,omitempty"`
	BaseScore   int         `json:"baseScore,omitempty"`
}

type RevealTimer struct {
	RoomID    string `json:"roomId"`
	Remaining int    `json:"remaining"`
}

// GameEnded 结果里带上种子和牌序，客户端可以校验发牌承诺
type GameEnded struct {
	RoomID     string               `json:"roomId"`
	Result     *table.Result        `json:"result"`
	Scores     [table.SeatCount]int `json:"scores"`
	Commitment string               `json:"commitment"`
}

type PlayError struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type ChatMessage struct {
	From string `json:"from"`
	Name string `json:"name"`
	Text string `json:"text"`
}
