package manager

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"RedCatch/internal/game/bot"
	"RedCatch/internal/game/engine"
	"RedCatch/internal/game/rules"
	"RedCatch/internal/game/table"
	"RedCatch/internal/history"
	"RedCatch/internal/utils"
	"RedCatch/internal/websocket"
)

// deal 发牌并安排进入亮牌阶段，需持有 r.mu
func (m *GameManager) deal(r *Room) (*engine.DealResult, error) {
	r.stopTimers()
	res, err := r.engine.Deal()
	if err != nil {
		utils.Log.Error("deal failed", "room", r.ID, "err", err)
		return nil, err
	}
	r.touched = m.opts.Now()

	for i, s := range r.seats {
		if s.Bot {
			continue
		}
		m.hub.SendToPlayer(s.Handle, websocket.OutgoingMessage{
			Event: EventGameStarted,
			Data: GameStarted{
				RoomID:      r.ID,
				DealSeq:     res.DealSeq,
				Seat:        table.SeatID(i),
				Hand:        res.Hands[i],
				Roles:       res.Roles,
				Revealed:    res.Revealed,
				RevealTicks: res.RevealTicks,
				Commitment:  res.Commitment,
				Scores:      res.Scores,
				Seats:       append([]Seat(nil), r.seats...),
			},
		})
	}

	id, seq := r.ID, res.DealSeq
	r.timers[timerDeal] = m.sched.After(m.opts.DealDelay, func() { m.beginReveal(id, seq) })
	utils.Log.Info("round dealt", "room", id, "dealSeq", seq, "leader", res.Roles.Leader, "commitment", res.Commitment)
	return res, nil
}

// withLive 定时任务入口：房间还在、check 通过才执行
// 否则按过期决定丢弃
func (m *GameManager) withLive(roomID, task string, check func(*Room) bool, fn func(*Room)) {
	room, ok := m.registry.Get(roomID)
	if !ok {
		utils.Log.Debug("scheduled task dropped", "room", roomID, "task", task, "err", ErrStaleDecision)
		return
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	if room.closed || !check(room) {
		utils.Log.Debug("scheduled task dropped", "room", roomID, "task", task, "err", ErrStaleDecision)
		return
	}
	fn(room)
}

func (m *GameManager) beginReveal(roomID string, seq uint64) {
	check := func(r *Room) bool {
		return r.engine.DealSeq() == seq && r.engine.Phase() == table.PhaseDealing
	}
	m.withLive(roomID, timerDeal, check, func(r *Room) {
		delete(r.timers, timerDeal)
		if err := r.engine.BeginReveal(); err != nil {
			utils.Log.Error("begin reveal", "room", roomID, "err", err)
			return
		}
		m.broadcast(r, EventPhaseChanged, PhaseChanged{
			RoomID:      roomID,
			Phase:       table.PhaseRevealing,
			RevealTimer: r.engine.Table.RevealTimer,
		})
		m.botReveals(r)
		r.timers[timerReveal] = m.sched.Every(m.opts.RevealInterval, func() { m.tickReveal(roomID, seq) })
	})
}

// botReveals 托管座位按概率亮 3
func (m *GameManager) botReveals(r *Room) {
	for i, s := range r.seats {
		if !s.Bot {
			continue
		}
		seat := table.SeatID(i)
		for _, c := range r.agent.ChooseReveals(r.engine.Hand(seat)) {
			up, changed, err := r.engine.ToggleReveal(seat, c)
			if err != nil {
				utils.Log.Error("bot reveal", "room", r.ID, "seat", seat, "err", err)
				continue
			}
			if changed {
				m.broadcast(r, EventRevealedUpdate, up)
			}
		}
	}
}

func (m *GameManager) tickReveal(roomID string, seq uint64) {
	check := func(r *Room) bool {
		return r.engine.DealSeq() == seq && r.engine.Phase() == table.PhaseRevealing
	}
	m.withLive(roomID, timerReveal, check, func(r *Room) {
		remaining, started, err := r.engine.TickReveal()
		if err != nil {
			utils.Log.Error("reveal tick", "room", roomID, "err", err)
			return
		}
		m.broadcast(r, EventRevealTimer, RevealTimer{RoomID: roomID, Remaining: remaining})
		if !started {
			return
		}
		r.stopTimer(timerReveal)
		m.broadcast(r, EventPhaseChanged, PhaseChanged{
			RoomID:    roomID,
			Phase:     table.PhasePlaying,
			BaseScore: r.engine.Table.BaseScore,
		})
		utils.Log.Info("play started", "room", roomID, "baseScore", r.engine.Table.BaseScore)
		m.afterAction(r)
	})
}

// afterAction 每次状态变化后：广播、判断结束、安排托管
func (m *GameManager) afterAction(r *Room) {
	m.broadcast(r, EventStateUpdate, r.engine.Snapshot())
	if r.engine.Phase() == table.PhaseRoundEnd {
		m.endRound(r)
		return
	}
	m.scheduleBot(r)
}

// scheduleBot 轮到托管座位时安排一次决策，带上版本号
func (m *GameManager) scheduleBot(r *Room) {
	r.stopTimer(timerBot)
	seat := r.engine.Current()
	if r.engine.Phase() != table.PhasePlaying || !seat.Valid() || !r.seats[seat].Bot {
		return
	}
	id, version := r.ID, r.engine.Version()
	delay := r.agent.ThinkDelay(m.opts.BotDelayMin, m.opts.BotDelayMax)
	r.timers[timerBot] = m.sched.After(delay, func() { m.botMove(id, version) })
}

func (m *GameManager) botMove(roomID string, version uint64) {
	check := func(r *Room) bool {
		return r.engine.Version() == version && r.engine.Phase() == table.PhasePlaying
	}
	m.withLive(roomID, timerBot, check, func(r *Room) {
		delete(r.timers, timerBot)
		seat := r.engine.Current()
		if !r.seats[seat].Bot {
			return
		}
		view, ok := r.engine.ViewFor(seat)
		if !ok {
			return
		}
		if err := applyBotMove(r.engine, view, r.agent.Decide(view)); err != nil {
			utils.Log.Error("bot move failed", "room", roomID, "seat", seat, "err", err)
			return
		}
		m.afterAction(r)
	})
}

// applyBotMove 提交前再校验一次；不合法就退回到不要，再不行出第一手合法牌
func applyBotMove(e *engine.Engine, view engine.View, move bot.Move) error {
	if !move.Pass && rules.CanBeat(move.Cards, view.Reference) {
		if err := e.Play(view.Seat, move.Cards); err == nil {
			return nil
		}
	}
	if !view.MustPlay() {
		if err := e.Pass(view.Seat); err == nil {
			return nil
		}
	}
	plays := rules.LegalPlays(view.Hand, view.Reference, view.Required)
	if len(plays) == 0 {
		return errors.Errorf("seat %d has no legal move", view.Seat)
	}
	return e.Play(view.Seat, plays[0])
}

// endRound 广播结果，异步写历史
func (m *GameManager) endRound(r *Room) {
	r.stopTimers()
	res := r.engine.Result()
	m.broadcast(r, EventGameEnded, GameEnded{
		RoomID:     r.ID,
		Result:     res,
		Scores:     r.engine.Table.Scores,
		Commitment: r.engine.Table.Commitment,
	})
	utils.Log.Info("round ended", "room", r.ID, "winner", res.Winner, "draw", res.Draw, "finalBase", res.FinalBase)

	if m.history == nil {
		return
	}
	entry := history.Entry{
		RoomID:     r.ID,
		DealSeq:    r.engine.DealSeq(),
		Commitment: r.engine.Table.Commitment,
		Result:     *res,
		RecordedAt: m.opts.Now(),
	}
	for i, s := range r.seats {
		entry.Names[i] = s.Name
	}
	m.sched.After(0, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := m.history.Record(ctx, entry); err != nil {
			utils.Log.Error("record history", "room", entry.RoomID, "err", err)
		}
	})
}
