package engine

import (
	"time"

	mapset "github.com/deckarep/golang-set"
	"github.com/mohae/deepcopy"
	"github.com/pkg/errors"

	"RedCatch/internal/game/dealer"
	"RedCatch/internal/game/rules"
	"RedCatch/internal/game/table"
)

// ---------------------
//       OPTIONS
// ---------------------

type Options struct {
	RevealTicks   int          // 亮牌倒计时（秒）
	StartingScore int          // 初始积分
	Seed          func() int64 // 每次发牌的洗牌种子
}

func (o Options) withDefaults() Options {
	if o.RevealTicks <= 0 {
		o.RevealTicks = 10
	}
	if o.StartingScore == 0 {
		o.StartingScore = 100
	}
	if o.Seed == nil {
		o.Seed = func() int64 { return time.Now().UnixNano() }
	}
	return o
}

// ---------------------
//       ENGINE
// ---------------------

// Engine 单个房间的对局状态机
// 不是并发安全的，调用方（GameManager）负责串行化
type Engine struct {
	Table    *table.Table
	Dealer   *dealer.Dealer
	opts     Options
	rotation table.RotationOrder
}

func NewEngine(roomID string, opts Options) *Engine {
	opts = opts.withDefaults()
	t := &table.Table{
		ID:           roomID,
		Phase:        table.PhaseWaiting,
		HeartThree:   table.NoSeat,
		DiamondThree: table.NoSeat,
		Leader:       table.NoSeat,
		Current:      table.NoSeat,
	}
	for i := range t.Scores {
		t.Scores[i] = opts.StartingScore
	}
	return &Engine{Table: t, opts: opts}
}

// DealResult 发牌结果
type DealResult struct {
	RoomID      string                        `json:"roomId"`
	DealSeq     uint64                        `json:"dealSeq"`
	Hands       [table.SeatCount][]table.Card `json:"-"`
	Roles       rules.Roles                   `json:"roles"`
	Revealed    [table.SeatCount][]table.Card `json:"revealed"`
	RevealTicks int                           `json:"revealTicks"`
	Commitment  string                        `json:"commitment"`
	Scores      [table.SeatCount]int          `json:"scores"`
}

// Deal 洗牌发牌，进入 DEALING
func (e *Engine) Deal() (*DealResult, error) {
	e.Dealer = dealer.NewDealer(e.opts.Seed())
	e.Dealer.NewDeck()
	commitment := e.Dealer.Commitment()
	return e.dealWith(e.Dealer.Deal(), commitment)
}

func (e *Engine) dealWith(hands [table.SeatCount][]table.Card, commitment string) (*DealResult, error) {
	roles := rules.ResolveTeams(hands)
	if !roles.Complete() {
		return nil, errors.Wrapf(ErrBrokenDeal, "room %s roles %+v", e.Table.ID, roles)
	}

	t := e.Table
	t.Phase = table.PhaseDealing
	t.Hands = hands
	t.Revealed = [table.SeatCount][]table.Card{}
	t.Teams = roles.Teams
	t.HeartThree = roles.HeartThree
	t.DiamondThree = roles.DiamondThree
	t.Leader = roles.Leader
	t.Current = roles.Leader
	t.LastPlay = nil
	t.LastActions = [table.SeatCount]*table.Play{}
	t.PassCount = 0
	t.Round = 1
	t.FirstPlay = true
	t.Finished = nil
	t.RevealTimer = e.opts.RevealTicks
	t.BaseScore = 1
	t.Commitment = commitment
	t.Result = nil
	t.DealSeq++
	t.Version++

	// 方片3 必须亮
	t.Revealed[roles.DiamondThree] = []table.Card{{Suit: table.Diamond, Rank: 3}}

	res := &DealResult{
		RoomID:      t.ID,
		DealSeq:     t.DealSeq,
		Roles:       roles,
		RevealTicks: t.RevealTimer,
		Commitment:  commitment,
		Scores:      t.Scores,
	}
	for i := range hands {
		res.Hands[i] = table.Clone(hands[i])
		res.Revealed[i] = table.Clone(t.Revealed[i])
	}
	return res, nil
}

// BeginReveal DEALING -> REVEALING
func (e *Engine) BeginReveal() error {
	if e.Table.Phase != table.PhaseDealing {
		return errors.Wrapf(ErrWrongPhase, "begin reveal in %s", e.Table.Phase)
	}
	e.Table.Phase = table.PhaseRevealing
	e.Table.Version++
	return nil
}

// RevealUpdate 亮牌变化
type RevealUpdate struct {
	Seat     table.SeatID                  `json:"seat"`
	Revealed [table.SeatCount][]table.Card `json:"revealed"`
}

// ToggleReveal 亮出或收回一张 3
// 方片3、非 3 的牌为空操作，返回 changed=false
func (e *Engine) ToggleReveal(seat table.SeatID, card table.Card) (*RevealUpdate, bool, error) {
	t := e.Table
	if t.Phase != table.PhaseRevealing {
		return nil, false, errors.Wrapf(ErrWrongPhase, "toggle reveal in %s", t.Phase)
	}
	if !seat.Valid() {
		return nil, false, errors.Wrapf(ErrInvalidSeat, "seat %d", seat)
	}
	if card.Rank != 3 || card.IsDiamondThree() || card.IsJoker() {
		return nil, false, nil
	}
	if !table.Contains(t.Hands[seat], card) {
		return nil, false, errors.Wrapf(ErrCardsNotInHand, "seat %d reveal %s", seat, card)
	}

	if table.Contains(t.Revealed[seat], card) {
		t.Revealed[seat] = table.Remove(t.Revealed[seat], []table.Card{card})
	} else {
		t.Revealed[seat] = append(t.Revealed[seat], card)
	}
	t.Version++

	up := &RevealUpdate{Seat: seat}
	for i := range t.Revealed {
		up.Revealed[i] = table.Clone(t.Revealed[i])
	}
	return up, true, nil
}

// TickReveal 倒计时走一秒，归零时计算基础分并进入 PLAYING
func (e *Engine) TickReveal() (remaining int, started bool, err error) {
	t := e.Table
	if t.Phase != table.PhaseRevealing {
		return 0, false, errors.Wrapf(ErrWrongPhase, "tick reveal in %s", t.Phase)
	}
	t.RevealTimer--
	t.Version++
	if t.RevealTimer > 0 {
		return t.RevealTimer, false, nil
	}
	t.RevealTimer = 0
	t.BaseScore = rules.BaseScore(t.Revealed)
	t.Phase = table.PhasePlaying
	return 0, true, nil
}

// --------------------------
//          出牌
// --------------------------

func (e *Engine) checkTurn(seat table.SeatID) error {
	t := e.Table
	if t.Phase != table.PhasePlaying {
		return errors.Wrapf(ErrWrongPhase, "phase %s", t.Phase)
	}
	if !seat.Valid() {
		return errors.Wrapf(ErrInvalidSeat, "seat %d", seat)
	}
	if seat != t.Current {
		return errors.Wrapf(ErrNotYourTurn, "seat %d, current %d", seat, t.Current)
	}
	return nil
}

// Play 出牌
func (e *Engine) Play(seat table.SeatID, cards []table.Card) error {
	if err := e.checkTurn(seat); err != nil {
		return err
	}
	t := e.Table

	if !owns(t.Hands[seat], cards) {
		return errors.Wrapf(ErrCardsNotInHand, "seat %d cards %v", seat, cards)
	}
	combo := rules.Classify(cards)
	if !combo.Valid() {
		return errors.Wrapf(ErrInvalidCombination, "seat %d cards %v", seat, cards)
	}
	if t.FirstPlay && !table.Contains(cards, table.OpeningCard) {
		return errors.Wrapf(ErrMustContainOpeningCard, "seat %d", seat)
	}
	if t.LastPlay != nil && t.LastPlay.Seat != seat {
		if !combo.Beats(rules.Classify(t.LastPlay.Cards)) {
			return errors.Wrapf(ErrCannotBeatReference, "seat %d %v vs %v", seat, cards, t.LastPlay.Cards)
		}
	}

	play := &table.Play{Seat: seat, Cards: table.Clone(cards)}
	t.Hands[seat] = table.Remove(t.Hands[seat], cards)
	t.LastPlay = play
	t.LastActions[seat] = play
	t.PassCount = 0
	t.FirstPlay = false
	t.Version++

	if len(t.Hands[seat]) == 0 {
		t.Finished = append(t.Finished, seat)
		if e.evaluateEnd() {
			return nil
		}
	}
	t.Current = e.rotation.Next(seat, t.Finished)
	return nil
}

// owns cards 是否全部在手牌里且互不重复
func owns(hand, cards []table.Card) bool {
	seen := make(map[table.Card]bool, len(cards))
	for _, c := range cards {
		if seen[c] || !table.Contains(hand, c) {
			return false
		}
		seen[c] = true
	}
	return true
}

// Pass 不要
func (e *Engine) Pass(seat table.SeatID) error {
	if err := e.checkTurn(seat); err != nil {
		return err
	}
	t := e.Table
	if t.FirstPlay || t.LastPlay == nil || t.LastPlay.Seat == seat {
		return errors.Wrapf(ErrMustPlay, "seat %d", seat)
	}

	t.LastActions[seat] = &table.Play{Seat: seat, Pass: true}
	t.PassCount++
	t.Version++

	owner := t.LastPlay.Seat
	needed := t.Active() - 1
	if t.IsFinished(owner) {
		// 出牌的人已经走了，所有还在打的人都要不要
		needed = t.Active()
	}

	if t.PassCount >= needed {
		t.LastPlay = nil
		t.PassCount = 0
		t.Round++
		if t.IsFinished(owner) {
			t.Current = e.rotation.Next(owner, t.Finished)
		} else {
			t.Current = owner
		}
		return nil
	}
	t.Current = e.rotation.Next(seat, t.Finished)
	return nil
}

// --------------------------
//        输赢判断
// --------------------------

// evaluateEnd 有人出完时调用；一方全部出完则结束
// 先出完的人所在阵营全部出完 -> 该阵营胜；否则平局
func (e *Engine) evaluateEnd() bool {
	t := e.Table
	finished := mapset.NewThreadUnsafeSet()
	for _, f := range t.Finished {
		finished.Add(f)
	}
	done := func(team table.Team) bool {
		roster := mapset.NewThreadUnsafeSet()
		for _, s := range t.Roster(team) {
			roster.Add(s)
		}
		return roster.Cardinality() > 0 && roster.IsSubset(finished)
	}
	redDone, otherDone := done(table.TeamRed), done(table.TeamOther)
	if !redDone && !otherDone {
		return false
	}

	first := t.Teams[t.Finished[0]]
	res := &table.Result{
		LastFinisher: t.Finished[len(t.Finished)-1],
		BaseScore:    t.BaseScore,
		Finished:     append([]table.SeatID(nil), t.Finished...),
		EndedAt:      time.Now(),
	}
	if e.Dealer != nil {
		res.Seed = e.Dealer.Seed()
		res.DeckOrder = e.Dealer.Order()
	}

	completed := table.TeamRed
	if otherDone {
		completed = table.TeamOther
	}
	if redDone && otherDone || completed != first || !e.hasCards(completed.Opponent()) {
		res.Draw = true
	} else {
		res.Winner = completed
		res.BonusScore = rules.BonusScore(t.Teams, t.Finished, t.Hands, completed)
		res.FinalBase = t.BaseScore + res.BonusScore
		res.Deltas = rules.ScoreChanges(t.Teams, t.HeartThree, completed, res.FinalBase)
		for i, d := range res.Deltas {
			t.Scores[i] += d
		}
	}

	t.Result = res
	t.Phase = table.PhaseRoundEnd
	t.Current = table.NoSeat
	return true
}

func (e *Engine) hasCards(team table.Team) bool {
	for _, s := range e.Table.Roster(team) {
		if !e.Table.IsFinished(s) && len(e.Table.Hands[s]) > 0 {
			return true
		}
	}
	return false
}

// --------------------------
//         只读视图
// --------------------------

func (e *Engine) Phase() table.Phase    { return e.Table.Phase }
func (e *Engine) Version() uint64       { return e.Table.Version }
func (e *Engine) DealSeq() uint64       { return e.Table.DealSeq }
func (e *Engine) Current() table.SeatID { return e.Table.Current }

// Result 本局结果，未结束为 nil
func (e *Engine) Result() *table.Result {
	if e.Table.Result == nil {
		return nil
	}
	r := deepcopy.Copy(*e.Table.Result).(table.Result)
	return &r
}

// Hand 某个座位的手牌副本
func (e *Engine) Hand(seat table.SeatID) []table.Card {
	if !seat.Valid() {
		return nil
	}
	return table.Clone(e.Table.Hands[seat])
}

// State 公开的对局状态（不含别人的手牌）
type State struct {
	RoomID      string                        `json:"roomId"`
	Phase       table.Phase                   `json:"phase"`
	Current     table.SeatID                  `json:"current"`
	LastPlay    *table.Play                   `json:"lastPlay"`
	LastActions [table.SeatCount]*table.Play  `json:"lastActions"`
	PassCount   int                           `json:"passCount"`
	Round       int                           `json:"round"`
	FirstPlay   bool                          `json:"firstPlay"`
	Finished    []table.SeatID                `json:"finished"`
	HandCounts  [table.SeatCount]int          `json:"handCounts"`
	Teams       [table.SeatCount]table.Team   `json:"teams"`
	Revealed    [table.SeatCount][]table.Card `json:"revealed"`
	RevealTimer int                           `json:"revealTimer"`
	BaseScore   int                           `json:"baseScore"`
	Commitment  string                        `json:"commitment"`
	Result      *table.Result                 `json:"result,omitempty"`
	Scores      [table.SeatCount]int          `json:"scores"`
	Version     uint64                        `json:"version"`
	DealSeq     uint64                        `json:"dealSeq"`
}

// Snapshot 深拷贝一份，可以在锁外使用
func (e *Engine) Snapshot() State {
	t := e.Table
	s := State{
		RoomID:      t.ID,
		Phase:       t.Phase,
		Current:     t.Current,
		LastPlay:    t.LastPlay,
		LastActions: t.LastActions,
		PassCount:   t.PassCount,
		Round:       t.Round,
		FirstPlay:   t.FirstPlay,
		Finished:    t.Finished,
		Teams:       t.Teams,
		Revealed:    t.Revealed,
		RevealTimer: t.RevealTimer,
		BaseScore:   t.BaseScore,
		Commitment:  t.Commitment,
		Result:      t.Result,
		Scores:      t.Scores,
		Version:     t.Version,
		DealSeq:     t.DealSeq,
	}
	for i, h := range t.Hands {
		s.HandCounts[i] = len(h)
	}
	return deepcopy.Copy(s).(State)
}

// View 轮到某个座位时它能看到的信息（托管出牌用）
type View struct {
	Seat      table.SeatID
	Hand      []table.Card
	Reference []table.Card // nil 表示自由出牌
	Required  *table.Card  // 首手必须包含的牌
	Version   uint64
}

// MustPlay 不能不要
func (v View) MustPlay() bool { return v.Required != nil || len(v.Reference) == 0 }

// ViewFor 仅当处于出牌阶段且轮到 seat 时返回
func (e *Engine) ViewFor(seat table.SeatID) (View, bool) {
	t := e.Table
	if t.Phase != table.PhasePlaying || t.Current != seat || !seat.Valid() {
		return View{}, false
	}
	v := View{Seat: seat, Hand: table.Clone(t.Hands[seat]), Version: t.Version}
	if t.LastPlay != nil && t.LastPlay.Seat != seat {
		v.Reference = table.Clone(t.LastPlay.Cards)
	}
	if t.FirstPlay {
		oc := table.OpeningCard
		v.Required = &oc
	}
	return v, true
}
