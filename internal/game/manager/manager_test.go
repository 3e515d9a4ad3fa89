package manager

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RedCatch/internal/game/engine"
	"RedCatch/internal/game/rules"
	"RedCatch/internal/game/scheduler"
	"RedCatch/internal/game/table"
	"RedCatch/internal/history"
	"RedCatch/internal/lobby"
	"RedCatch/internal/websocket"
)

// mockHub 实现 HubInterface，记录消息
type mockHub struct {
	mu           sync.Mutex
	sentToPlayer map[string][]websocket.OutgoingMessage
	broadcasts   []hubBroadcast
	clients      map[string]*websocket.Client
}

type hubBroadcast struct {
	to  []string
	msg websocket.OutgoingMessage
}

func newMockHub() *mockHub {
	return &mockHub{
		sentToPlayer: make(map[string][]websocket.OutgoingMessage),
		clients:      make(map[string]*websocket.Client),
	}
}

func (h *mockHub) BroadcastToPlayers(handles []string, msg websocket.OutgoingMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.broadcasts = append(h.broadcasts, hubBroadcast{to: append([]string(nil), handles...), msg: msg})
}

func (h *mockHub) ClientByHandle(handle string) (*websocket.Client, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.clients[handle]
	return c, ok
}

func (h *mockHub) SendToPlayer(handle string, msg websocket.OutgoingMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sentToPlayer[handle] = append(h.sentToPlayer[handle], msg)
}

func (h *mockHub) Close() {}

// received handle 收到的全部消息（私发 + 广播），按事件过滤
func (h *mockHub) received(handle, event string) []websocket.OutgoingMessage {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []websocket.OutgoingMessage
	for _, m := range h.sentToPlayer[handle] {
		if m.Event == event {
			out = append(out, m)
		}
	}
	for _, b := range h.broadcasts {
		if b.msg.Event != event {
			continue
		}
		for _, to := range b.to {
			if to == handle {
				out = append(out, b.msg)
				break
			}
		}
	}
	return out
}

func (h *mockHub) lastError(handle string) (PlayError, bool) {
	msgs := h.received(handle, EventPlayError)
	if len(msgs) == 0 {
		return PlayError{}, false
	}
	return msgs[len(msgs)-1].Data.(PlayError), true
}

type fixture struct {
	mgr   *GameManager
	hub   *mockHub
	sched *scheduler.Manual
	lobby lobby.Directory
	hist  history.Recorder
	now   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		hub:   newMockHub(),
		sched: scheduler.NewManual(),
		lobby: lobby.NewMemoryDirectory(),
		hist:  history.NewMemoryRecorder(),
		now:   time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	var seed int64
	opts := DefaultOptions()
	opts.Engine = engine.Options{RevealTicks: 2, Seed: func() int64 { seed++; return seed }}
	opts.DealDelay = time.Second
	opts.RevealInterval = time.Second
	opts.BotDelayMin = time.Second
	opts.BotDelayMax = time.Second
	opts.BotSeed = func() int64 { return 7 }
	opts.Now = func() time.Time { return f.now }

	f.mgr = NewGameManager(Deps{
		Hub:       f.hub,
		Scheduler: f.sched,
		Lobby:     f.lobby,
		History:   f.hist,
	}, opts)
	t.Cleanup(f.mgr.Close)
	return f
}

func (f *fixture) room(t *testing.T, id string) *Room {
	t.Helper()
	r, ok := f.mgr.registry.Get(id)
	require.True(t, ok, "room %s", id)
	return r
}

func (f *fixture) phase(t *testing.T, id string) table.Phase {
	r := f.room(t, id)
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.engine.Phase()
}

// startedRoom 一个真人 + 四个托管，推进到出牌阶段
func (f *fixture) startedRoom(t *testing.T, handles ...string) string {
	t.Helper()
	ctx := context.Background()
	info, err := f.mgr.CreateRoom(ctx, handles[0], "alice")
	require.NoError(t, err)
	for _, h := range handles[1:] {
		_, err := f.mgr.JoinRoom(ctx, info.ID, h, h)
		require.NoError(t, err)
	}
	_, err = f.mgr.StartRoom(ctx, info.ID, handles[0])
	require.NoError(t, err)

	f.sched.Advance(time.Second)     // 发牌 -> 亮牌
	f.sched.Advance(2 * time.Second) // 倒计时两格
	require.Equal(t, table.PhasePlaying, f.phase(t, info.ID))
	return info.ID
}

// playOut 真人每次出第一手合法牌或不要，托管由调度器推进，直到结束
func (f *fixture) playOut(t *testing.T, roomID string, handles ...string) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < 5000; i++ {
		r := f.room(t, roomID)
		r.mu.Lock()
		phase := r.engine.Phase()
		var (
			view  engine.View
			who   string
			found bool
		)
		for _, h := range handles {
			if v, ok := r.engine.ViewFor(r.seatOf(h)); ok {
				view, who, found = v, h, true
				break
			}
		}
		r.mu.Unlock()

		if phase == table.PhaseRoundEnd {
			return
		}
		if !found {
			f.sched.Advance(500 * time.Millisecond)
			continue
		}
		if view.MustPlay() {
			plays := rules.LegalPlays(view.Hand, view.Reference, view.Required)
			require.NotEmpty(t, plays)
			_, err := f.mgr.SubmitPlay(ctx, roomID, who, plays[0])
			require.NoError(t, err)
		} else {
			_, err := f.mgr.SubmitPass(ctx, roomID, who)
			require.NoError(t, err)
		}
	}
	t.Fatal("round did not finish")
}

// ✅ 开房、加入、开局
func TestCreateJoinStart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	info, err := f.mgr.CreateRoom(ctx, "h1", "alice")
	require.NoError(t, err)
	assert.Len(t, info.ID, 6)
	assert.Equal(t, "h1", info.Host)
	assert.Equal(t, "alice", info.HostName)
	assert.Equal(t, table.PhaseWaiting, info.Phase)

	_, err = f.mgr.CreateRoom(ctx, "h1", "alice")
	assert.True(t, errors.Is(err, ErrAlreadySeated))

	info, err = f.mgr.JoinRoom(ctx, info.ID, "h2", "bob")
	require.NoError(t, err)
	assert.Len(t, info.Seats, 2)

	// 重复加入同一个房间不报错
	info, err = f.mgr.JoinRoom(ctx, info.ID, "h2", "bob")
	require.NoError(t, err)
	assert.Len(t, info.Seats, 2)

	open, err := f.mgr.ListOpenRooms(ctx)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, info.ID, open[0].RoomID)
	assert.Equal(t, 2, open[0].SeatCount)
	assert.Equal(t, "alice", open[0].HostName)

	_, err = f.mgr.StartRoom(ctx, info.ID, "h2")
	assert.True(t, errors.Is(err, ErrNotHost))

	res, err := f.mgr.StartRoom(ctx, info.ID, "h1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.DealSeq)
	assert.NotEmpty(t, res.Commitment)

	got, err := f.mgr.Room(info.ID)
	require.NoError(t, err)
	require.Len(t, got.Seats, table.SeatCount)
	for i, s := range got.Seats {
		assert.Equal(t, i >= 2, s.Bot, "seat %d", i)
	}
	assert.Equal(t, table.PhaseDealing, got.Phase)

	// 开局后不再出现在大厅
	open, err = f.mgr.ListOpenRooms(ctx)
	require.NoError(t, err)
	assert.Empty(t, open)

	// 每个真人只收到自己的手牌
	r := f.room(t, info.ID)
	for seat, h := range []string{"h1", "h2"} {
		msgs := f.hub.received(h, EventGameStarted)
		require.Len(t, msgs, 1, h)
		gs := msgs[0].Data.(GameStarted)
		assert.Equal(t, table.SeatID(seat), gs.Seat)
		assert.Len(t, gs.Hand, 10)
		r.mu.Lock()
		assert.ElementsMatch(t, r.engine.Hand(table.SeatID(seat)), gs.Hand)
		r.mu.Unlock()
	}

	_, err = f.mgr.JoinRoom(ctx, info.ID, "h3", "carol")
	assert.True(t, errors.Is(err, ErrAlreadyStarted))
	_, err = f.mgr.StartRoom(ctx, info.ID, "h1")
	assert.True(t, errors.Is(err, ErrAlreadyStarted))
	_, err = f.mgr.RestartRoom(ctx, info.ID, "h1")
	assert.True(t, errors.Is(err, ErrRoundInProgress))
}

func TestJoinErrors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.mgr.JoinRoom(ctx, "NOPE00", "h1", "alice")
	assert.True(t, errors.Is(err, ErrRoomNotFound))
	assert.Equal(t, "room_not_found", Reason(err))

	a, err := f.mgr.CreateRoom(ctx, "h1", "alice")
	require.NoError(t, err)
	for _, h := range []string{"h2", "h3", "h4", "h5"} {
		_, err := f.mgr.JoinRoom(ctx, a.ID, h, h)
		require.NoError(t, err)
	}
	_, err = f.mgr.JoinRoom(ctx, a.ID, "h6", "h6")
	assert.True(t, errors.Is(err, ErrRoomFull))

	b, err := f.mgr.CreateRoom(ctx, "h6", "frank")
	require.NoError(t, err)
	_, err = f.mgr.JoinRoom(ctx, b.ID, "h2", "h2")
	assert.True(t, errors.Is(err, ErrAlreadySeated))
	assert.Equal(t, "already_seated", Reason(err))
}

func TestQuickJoin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.mgr.QuickJoin(ctx, "h1", "alice")
	require.NoError(t, err)
	assert.Equal(t, "h1", a.Host)

	got, err := f.mgr.QuickJoin(ctx, "h2", "bob")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	// 已经在房间里就返回原房间
	got, err = f.mgr.QuickJoin(ctx, "h1", "alice")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
	assert.Len(t, got.Seats, 2)

	f.now = f.now.Add(time.Minute)
	b, err := f.mgr.CreateRoom(ctx, "h3", "carol")
	require.NoError(t, err)

	// 人多的房间优先
	got, err = f.mgr.QuickJoin(ctx, "h4", "dave")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	_, err = f.mgr.StartRoom(ctx, a.ID, "h1")
	require.NoError(t, err)
	got, err = f.mgr.QuickJoin(ctx, "h5", "erin")
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)
}

// ✅ 发牌、亮牌倒计时、进入出牌
func TestRevealFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	info, err := f.mgr.CreateRoom(ctx, "h1", "alice")
	require.NoError(t, err)
	_, err = f.mgr.StartRoom(ctx, info.ID, "h1")
	require.NoError(t, err)

	f.sched.Advance(999 * time.Millisecond)
	assert.Equal(t, table.PhaseDealing, f.phase(t, info.ID))
	f.sched.Advance(time.Millisecond)
	assert.Equal(t, table.PhaseRevealing, f.phase(t, info.ID))

	phases := f.hub.received("h1", EventPhaseChanged)
	require.Len(t, phases, 1)
	assert.Equal(t, table.PhaseRevealing, phases[0].Data.(PhaseChanged).Phase)
	assert.Equal(t, 2, phases[0].Data.(PhaseChanged).RevealTimer)

	// 过期的发牌任务什么都不做
	f.mgr.beginReveal(info.ID, 99)
	assert.Equal(t, table.PhaseRevealing, f.phase(t, info.ID))

	f.sched.Advance(time.Second)
	ticks := f.hub.received("h1", EventRevealTimer)
	require.Len(t, ticks, 1)
	assert.Equal(t, 1, ticks[0].Data.(RevealTimer).Remaining)

	f.sched.Advance(time.Second)
	assert.Equal(t, table.PhasePlaying, f.phase(t, info.ID))
	phases = f.hub.received("h1", EventPhaseChanged)
	require.Len(t, phases, 2)
	last := phases[1].Data.(PhaseChanged)
	assert.Equal(t, table.PhasePlaying, last.Phase)
	assert.GreaterOrEqual(t, last.BaseScore, 1)
	assert.NotEmpty(t, f.hub.received("h1", EventStateUpdate))

	// 倒计时任务已经停掉
	f.sched.Advance(5 * time.Second)
	assert.Len(t, f.hub.received("h1", EventRevealTimer), 2)
}

// ✅ 一个真人四个托管打完一整局，再来一局
func TestFullRoundWithBots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	roomID := f.startedRoom(t, "h1")
	f.playOut(t, roomID, "h1")

	ended := f.hub.received("h1", EventGameEnded)
	require.Len(t, ended, 1)
	ge := ended[0].Data.(GameEnded)
	require.NotNil(t, ge.Result)
	assert.Equal(t, roomID, ge.RoomID)
	assert.NotEmpty(t, ge.Result.DeckOrder)

	sum := 0
	for i := range ge.Scores {
		assert.Equal(t, 100+ge.Result.Deltas[i], ge.Scores[i], "seat %d", i)
		sum += ge.Result.Deltas[i]
	}
	if ge.Result.Draw {
		assert.Zero(t, sum)
	}

	// 历史是异步写的
	f.sched.Advance(0)
	rounds, err := f.mgr.History(ctx, roomID, 10)
	require.NoError(t, err)
	require.Len(t, rounds, 1)
	assert.EqualValues(t, 1, rounds[0].DealSeq)
	assert.Equal(t, "alice", rounds[0].Names[0])
	assert.Equal(t, "Bot 2", rounds[0].Names[1])
	assert.Equal(t, ge.Commitment, rounds[0].Commitment)

	_, err = f.mgr.RestartRoom(ctx, roomID, "bot")
	assert.True(t, errors.Is(err, ErrNotHost))

	res, err := f.mgr.RestartRoom(ctx, roomID, "h1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.DealSeq)
	assert.Equal(t, ge.Scores, res.Scores)
	assert.Len(t, f.hub.received("h1", EventGameStarted), 2)
}

// ✅ 过期的托管决策被丢弃
func TestStaleBotDecisionDropped(t *testing.T) {
	f := newFixture(t)
	roomID := f.startedRoom(t, "h1")
	r := f.room(t, roomID)

	r.mu.Lock()
	version := r.engine.Version()
	before := r.engine.Snapshot()
	r.mu.Unlock()

	f.mgr.botMove(roomID, version-1)

	r.mu.Lock()
	assert.Equal(t, version, r.engine.Version())
	assert.Equal(t, before.Current, r.engine.Current())
	r.mu.Unlock()

	f.mgr.botMove("NOPE00", version)
	f.mgr.tickReveal(roomID, 1)

	r.mu.Lock()
	assert.Equal(t, version, r.engine.Version())
	r.mu.Unlock()
}

func TestLeaveWhileWaiting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	info, err := f.mgr.CreateRoom(ctx, "h1", "alice")
	require.NoError(t, err)
	_, err = f.mgr.JoinRoom(ctx, info.ID, "h2", "bob")
	require.NoError(t, err)

	require.NoError(t, f.mgr.LeaveSeat(ctx, info.ID, "h1"))
	got, err := f.mgr.Room(info.ID)
	require.NoError(t, err)
	assert.Equal(t, "h2", got.Host)
	assert.Equal(t, "bob", got.HostName)
	assert.Len(t, got.Seats, 1)

	_, ok := f.mgr.registry.RoomOf("h1")
	assert.False(t, ok)
	assert.True(t, errors.Is(f.mgr.LeaveSeat(ctx, info.ID, "h1"), ErrNotSeated))

	open, err := f.mgr.ListOpenRooms(ctx)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "bob", open[0].HostName)

	// 最后一个人走了，房间销毁
	require.NoError(t, f.mgr.LeaveSeat(ctx, info.ID, "h2"))
	_, err = f.mgr.Room(info.ID)
	assert.True(t, errors.Is(err, ErrRoomNotFound))
	open, err = f.mgr.ListOpenRooms(ctx)
	require.NoError(t, err)
	assert.Empty(t, open)

	// 离开后可以重新开房
	_, err = f.mgr.CreateRoom(ctx, "h1", "alice")
	assert.NoError(t, err)
}

// ✅ 对局中离开：座位交给托管，对局继续
func TestLeaveMidRoundBotTakesOver(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	roomID := f.startedRoom(t, "h1", "h2")
	require.NoError(t, f.mgr.LeaveSeat(ctx, roomID, "h2"))

	got, err := f.mgr.Room(roomID)
	require.NoError(t, err)
	assert.True(t, got.Seats[1].Bot)
	assert.Equal(t, "h2", got.Seats[1].Name)
	assert.Equal(t, "h1", got.Host)

	f.playOut(t, roomID, "h1")
	assert.Len(t, f.hub.received("h1", EventGameEnded), 1)
	f.sched.Advance(0)

	require.NoError(t, f.mgr.LeaveSeat(ctx, roomID, "h1"))
	_, err = f.mgr.Room(roomID)
	assert.True(t, errors.Is(err, ErrRoomNotFound))
	assert.Zero(t, f.sched.Pending())
}

func TestDisconnectDestroysEmptyRoom(t *testing.T) {
	f := newFixture(t)
	roomID := f.startedRoom(t, "h1")

	f.mgr.HandleDisconnect("h1")
	_, err := f.mgr.Room(roomID)
	assert.True(t, errors.Is(err, ErrRoomNotFound))
	assert.Zero(t, f.sched.Pending())

	// 不在房间里的断线忽略
	f.mgr.HandleDisconnect("h1")
}

func TestHandlePlayerMessage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.mgr.HandlePlayerMessage(websocket.IncomingMessage{From: "ghost", Event: ActionPass})
	pe, ok := f.hub.lastError("ghost")
	require.True(t, ok)
	assert.Equal(t, "not_seated", pe.Reason)

	info, err := f.mgr.CreateRoom(ctx, "h1", "alice")
	require.NoError(t, err)
	_, err = f.mgr.StartRoom(ctx, info.ID, "h1")
	require.NoError(t, err)
	f.sched.Advance(time.Second)
	require.Equal(t, table.PhaseRevealing, f.phase(t, info.ID))

	f.mgr.HandlePlayerMessage(websocket.IncomingMessage{From: "h1", Event: ActionToggleReveal, Data: "x"})
	pe, _ = f.hub.lastError("h1")
	assert.Equal(t, "bad_payload", pe.Reason)

	f.mgr.HandlePlayerMessage(websocket.IncomingMessage{From: "h1", Event: "dance"})
	pe, _ = f.hub.lastError("h1")
	assert.Equal(t, "bad_payload", pe.Reason)
	errorsBefore := len(f.hub.received("h1", EventPlayError))

	// 亮黑桃3：有就亮，没有就报 cards_not_in_hand
	r := f.room(t, info.ID)
	r.mu.Lock()
	hand := r.engine.Hand(0)
	r.mu.Unlock()
	spadeThree := table.Card{Suit: table.Spade, Rank: 3}
	updatesBefore := len(f.hub.received("h1", EventRevealedUpdate))
	f.mgr.HandlePlayerMessage(websocket.IncomingMessage{
		From:  "h1",
		Event: ActionToggleReveal,
		Data:  map[string]interface{}{"card": map[string]interface{}{"suit": "spade", "rank": float64(3)}},
	})
	if table.Contains(hand, spadeThree) {
		updates := f.hub.received("h1", EventRevealedUpdate)
		require.Len(t, updates, updatesBefore+1)
		up := updates[len(updates)-1].Data.(*engine.RevealUpdate)
		assert.Contains(t, up.Revealed[0], spadeThree)
	} else {
		pe, _ = f.hub.lastError("h1")
		assert.Equal(t, "cards_not_in_hand", pe.Reason)
		errorsBefore++
	}

	f.sched.Advance(2 * time.Second)
	require.Equal(t, table.PhasePlaying, f.phase(t, info.ID))

	// 等到轮到真人
	var (
		view  engine.View
		found bool
	)
	for i := 0; i < 100 && !found; i++ {
		r.mu.Lock()
		view, found = r.engine.ViewFor(0)
		r.mu.Unlock()
		if !found {
			f.sched.Advance(500 * time.Millisecond)
		}
	}
	require.True(t, found)
	require.Equal(t, table.PhasePlaying, f.phase(t, info.ID))

	if view.MustPlay() {
		plays := rules.LegalPlays(view.Hand, view.Reference, view.Required)
		require.NotEmpty(t, plays)
		cards := make([]interface{}, 0, len(plays[0]))
		for _, c := range plays[0] {
			cards = append(cards, map[string]interface{}{"suit": string(c.Suit), "rank": float64(c.Rank)})
		}
		f.mgr.HandlePlayerMessage(websocket.IncomingMessage{From: "h1", Event: ActionPlayCards, Data: map[string]interface{}{"cards": cards}})
	} else {
		f.mgr.HandlePlayerMessage(websocket.IncomingMessage{From: "h1", Event: ActionPass})
	}
	assert.Len(t, f.hub.received("h1", EventPlayError), errorsBefore)
	r.mu.Lock()
	assert.Greater(t, r.engine.Version(), view.Version)
	r.mu.Unlock()

	// 不是自己的回合
	f.mgr.HandlePlayerMessage(websocket.IncomingMessage{From: "h1", Event: ActionPass})
	pe, _ = f.hub.lastError("h1")
	assert.Contains(t, []string{"not_your_turn", "wrong_phase"}, pe.Reason)

	f.mgr.HandlePlayerMessage(websocket.IncomingMessage{From: "h1", Event: ActionChat, Data: map[string]interface{}{"text": " hi "}})
	f.mgr.HandlePlayerMessage(websocket.IncomingMessage{From: "h1", Event: ActionChat, Data: "yo"})
	chats := f.hub.received("h1", EventChat)
	require.Len(t, chats, 2)
	assert.Equal(t, ChatMessage{From: "h1", Name: "alice", Text: "hi"}, chats[0].Data)
	assert.Equal(t, "yo", chats[1].Data.(ChatMessage).Text)

	f.mgr.HandlePlayerMessage(websocket.IncomingMessage{From: "h1", Event: ActionChat, Data: "   "})
	pe, _ = f.hub.lastError("h1")
	assert.Equal(t, "bad_payload", pe.Reason)
}

func TestSweepIdle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	waiting, err := f.mgr.CreateRoom(ctx, "h1", "alice")
	require.NoError(t, err)
	playing := f.startedRoom(t, "h2")

	assert.Zero(t, f.mgr.SweepIdle())

	f.now = f.now.Add(31 * time.Minute)
	assert.Equal(t, 1, f.mgr.SweepIdle())

	_, err = f.mgr.Room(waiting.ID)
	assert.True(t, errors.Is(err, ErrRoomNotFound))
	_, err = f.mgr.Room(playing)
	assert.NoError(t, err)

	open, err := f.mgr.ListOpenRooms(ctx)
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestStartSweeper(t *testing.T) {
	f := newFixture(t)
	assert.Error(t, f.mgr.StartSweeper("every now and then"))
	require.NoError(t, f.mgr.StartSweeper("@every 1m"))
	require.NoError(t, f.mgr.StartSweeper("@every 1m"))
	f.mgr.Close()
	f.mgr.Close()
}
