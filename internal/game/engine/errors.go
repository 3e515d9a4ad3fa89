package engine

import "github.com/pkg/errors"

// 规则校验错误：拒绝本次操作，状态不变，只回给提交者
var (
	ErrWrongPhase             = errors.New("wrong phase")
	ErrNotYourTurn            = errors.New("not your turn")
	ErrCardsNotInHand         = errors.New("cards not in hand")
	ErrInvalidCombination     = errors.New("invalid combination")
	ErrMustContainOpeningCard = errors.New("first play must contain the opening card")
	ErrCannotBeatReference    = errors.New("cannot beat the play on the table")
	ErrMustPlay               = errors.New("pass not allowed, must play")
	ErrInvalidSeat            = errors.New("invalid seat")
)

// ErrBrokenDeal 发牌没有覆盖两张红3或红桃5，属于程序错误
var ErrBrokenDeal = errors.New("deal does not cover both red threes and the opening card")

var reasons = map[error]string{
	ErrWrongPhase:             "wrong_phase",
	ErrNotYourTurn:            "not_your_turn",
	ErrCardsNotInHand:         "cards_not_in_hand",
	ErrInvalidCombination:     "invalid_combination",
	ErrMustContainOpeningCard: "must_contain_opening_card",
	ErrCannotBeatReference:    "cannot_beat_reference",
	ErrMustPlay:               "must_play",
	ErrInvalidSeat:            "invalid_seat",
}

// Reason 错误对应的对外代码
func Reason(err error) string {
	if r, ok := reasons[errors.Cause(err)]; ok {
		return r
	}
	return "internal"
}
