package manager

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"RedCatch/internal/game/bot"
	"RedCatch/internal/game/engine"
	"RedCatch/internal/game/scheduler"
	"RedCatch/internal/game/table"
	"RedCatch/internal/history"
	"RedCatch/internal/lobby"
	"RedCatch/internal/utils"
	"RedCatch/internal/websocket"
)

// ---------------------
//       OPTIONS
// ---------------------

type Options struct {
	Engine engine.Options

	DealDelay      time.Duration // 发牌动画时间，之后进入亮牌
	RevealInterval time.Duration // 亮牌倒计时每一格

	BotDelayMin               time.Duration
	BotDelayMax               time.Duration
	BotPlayProbability        float64
	BotRevealHeartProbability float64
	BotRevealBlackProbability float64

	ListingTTL  time.Duration // 大厅条目过期时间
	IdleRoomTTL time.Duration // 空闲房间回收

	BotSeed func() int64
	Now     func() time.Time
}

func DefaultOptions() Options {
	return Options{
		DealDelay:                 1500 * time.Millisecond,
		RevealInterval:            time.Second,
		BotDelayMin:               time.Second,
		BotDelayMax:               2 * time.Second,
		BotPlayProbability:        0.7,
		BotRevealHeartProbability: 0.5,
		BotRevealBlackProbability: 0.3,
		ListingTTL:                30 * time.Minute,
		IdleRoomTTL:               30 * time.Minute,
	}
}

func (o Options) withDefaults() Options {
	if o.RevealInterval <= 0 {
		o.RevealInterval = time.Second
	}
	if o.ListingTTL <= 0 {
		o.ListingTTL = 30 * time.Minute
	}
	if o.IdleRoomTTL <= 0 {
		o.IdleRoomTTL = 30 * time.Minute
	}
	if o.BotSeed == nil {
		o.BotSeed = func() int64 { return time.Now().UnixNano() }
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// 房间里的定时任务
const (
	timerDeal   = "deal"
	timerReveal = "reveal"
	timerBot    = "bot"
)

// ---------------------
//     GAME MANAGER
// ---------------------

// Deps 外部依赖；Lobby / History 为空时不启用
type Deps struct {
	Hub       websocket.HubInterface
	Scheduler scheduler.Scheduler
	Registry  Registry
	Lobby     lobby.Directory
	History   history.Recorder
}

// GameManager 管理所有房间
type GameManager struct {
	opts     Options
	hub      websocket.HubInterface
	sched    scheduler.Scheduler
	registry Registry
	lobby    lobby.Directory
	history  history.Recorder

	cronMu sync.Mutex
	cron   *cron.Cron
}

func NewGameManager(d Deps, opts Options) *GameManager {
	if d.Registry == nil {
		d.Registry = NewMemoryRegistry()
	}
	return &GameManager{
		opts:     opts.withDefaults(),
		hub:      d.Hub,
		sched:    d.Scheduler,
		registry: d.Registry,
		lobby:    d.Lobby,
		history:  d.History,
	}
}

func newRoomID() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
}

func (m *GameManager) lookup(roomID string) (*Room, error) {
	room, ok := m.registry.Get(roomID)
	if !ok {
		return nil, errors.Wrapf(ErrRoomNotFound, "room %s", roomID)
	}
	return room, nil
}

// lockSeat 返回时已持有 room.mu
func (m *GameManager) lockSeat(roomID, handle string) (*Room, table.SeatID, error) {
	room, err := m.lookup(roomID)
	if err != nil {
		return nil, table.NoSeat, err
	}
	room.mu.Lock()
	if room.closed {
		room.mu.Unlock()
		return nil, table.NoSeat, errors.Wrapf(ErrRoomNotFound, "room %s closed", roomID)
	}
	seat := room.seatOf(handle)
	if seat == table.NoSeat {
		room.mu.Unlock()
		return nil, table.NoSeat, errors.Wrapf(ErrNotSeated, "%s in %s", handle, roomID)
	}
	return room, seat, nil
}

// broadcast 发给房间里所有真人，需持有 r.mu
func (m *GameManager) broadcast(r *Room, event string, data interface{}) {
	m.hub.BroadcastToPlayers(r.humans(), websocket.OutgoingMessage{Event: event, Data: data})
}

func (m *GameManager) publishListing(ctx context.Context, r *Room) {
	if m.lobby == nil {
		return
	}
	info := r.info()
	l := lobby.Listing{
		RoomID:    r.ID,
		SeatCount: len(r.seats),
		MaxSeats:  table.SeatCount,
		HostName:  info.HostName,
		CreatedAt: r.createdAt,
	}
	if err := m.lobby.Upsert(ctx, l, m.opts.ListingTTL); err != nil {
		utils.Log.Error("lobby upsert failed", "room", r.ID, "err", err)
	}
}

func (m *GameManager) removeListing(ctx context.Context, r *Room) {
	if m.lobby == nil {
		return
	}
	if err := m.lobby.Remove(ctx, r.ID); err != nil {
		utils.Log.Error("lobby remove failed", "room", r.ID, "err", err)
	}
}

// --------------------------
//        房间生命周期
// --------------------------

// CreateRoom 开房，创建者是房主并坐 0 号位
func (m *GameManager) CreateRoom(ctx context.Context, handle, name string) (*RoomInfo, error) {
	if rid, ok := m.registry.RoomOf(handle); ok {
		return nil, errors.Wrapf(ErrAlreadySeated, "%s in %s", handle, rid)
	}

	now := m.opts.Now()
	room := &Room{
		host:      handle,
		seats:     []Seat{{Handle: handle, Name: name}},
		timers:    make(map[string]scheduler.Task),
		createdAt: now,
		touched:   now,
		agent: bot.NewAgent(
			m.opts.BotPlayProbability,
			m.opts.BotRevealHeartProbability,
			m.opts.BotRevealBlackProbability,
			rand.New(rand.NewSource(m.opts.BotSeed())),
		),
	}

	var err error
	for i := 0; i < 8; i++ {
		room.ID = newRoomID()
		room.engine = engine.NewEngine(room.ID, m.opts.Engine)
		if err = m.registry.Add(room); err == nil {
			break
		}
	}
	if err != nil {
		return nil, err
	}
	m.registry.Bind(handle, room.ID)

	room.mu.Lock()
	defer room.mu.Unlock()
	m.publishListing(ctx, room)
	info := room.info()
	m.broadcast(room, EventRoomUpdate, info)
	utils.Log.Info("room created", "room", room.ID, "host", handle)
	return info, nil
}

// JoinRoom 加入等待中的房间；已经在这个房间里则直接返回
func (m *GameManager) JoinRoom(ctx context.Context, roomID, handle, name string) (*RoomInfo, error) {
	room, err := m.lookup(roomID)
	if err != nil {
		return nil, err
	}
	if rid, ok := m.registry.RoomOf(handle); ok && rid != roomID {
		return nil, errors.Wrapf(ErrAlreadySeated, "%s in %s", handle, rid)
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	if room.closed {
		return nil, errors.Wrapf(ErrRoomNotFound, "room %s closed", roomID)
	}
	if room.seatOf(handle) != table.NoSeat {
		return room.info(), nil
	}
	if room.engine.Phase() != table.PhaseWaiting {
		return nil, errors.Wrapf(ErrAlreadyStarted, "room %s", roomID)
	}
	if len(room.seats) >= table.SeatCount {
		return nil, errors.Wrapf(ErrRoomFull, "room %s", roomID)
	}

	room.seats = append(room.seats, Seat{Handle: handle, Name: name})
	room.touched = m.opts.Now()
	m.registry.Bind(handle, roomID)
	m.publishListing(ctx, room)

	info := room.info()
	m.broadcast(room, EventRoomUpdate, info)
	utils.Log.Info("player joined", "room", roomID, "handle", handle, "seats", len(room.seats))
	return info, nil
}

// QuickJoin 快速匹配：优先坐进人最多的等待房间，没有就自己开一个
func (m *GameManager) QuickJoin(ctx context.Context, handle, name string) (*RoomInfo, error) {
	if rid, ok := m.registry.RoomOf(handle); ok {
		return m.Room(rid)
	}
	open, err := m.ListOpenRooms(ctx)
	if err != nil {
		utils.Log.Warn("quick join: lobby unavailable", "err", err)
		open = nil
	}
	sort.SliceStable(open, func(i, j int) bool { return open[i].SeatCount > open[j].SeatCount })

	for _, l := range open {
		if l.SeatCount >= l.MaxSeats {
			continue
		}
		info, err := m.JoinRoom(ctx, l.RoomID, handle, name)
		switch errors.Cause(err) {
		case nil:
			return info, nil
		case ErrRoomFull, ErrAlreadyStarted, ErrRoomNotFound:
			// 并发下房间刚满或刚开局，换下一个
			continue
		default:
			return nil, err
		}
	}
	return m.CreateRoom(ctx, handle, name)
}

// StartRoom 房主开局：空位补托管，发牌
func (m *GameManager) StartRoom(ctx context.Context, roomID, handle string) (*engine.DealResult, error) {
	room, err := m.lookup(roomID)
	if err != nil {
		return nil, err
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	if room.closed {
		return nil, errors.Wrapf(ErrRoomNotFound, "room %s closed", roomID)
	}
	if room.host != handle {
		return nil, errors.Wrapf(ErrNotHost, "%s in %s", handle, roomID)
	}
	if room.engine.Phase() != table.PhaseWaiting {
		return nil, errors.Wrapf(ErrAlreadyStarted, "room %s", roomID)
	}

	for i := len(room.seats); i < table.SeatCount; i++ {
		room.seats = append(room.seats, Seat{Name: fmt.Sprintf("Bot %d", i+1), Bot: true})
	}
	m.removeListing(ctx, room)
	m.broadcast(room, EventRoomUpdate, room.info())
	return m.deal(room)
}

// RestartRoom 同一批座位、保留积分再来一局
func (m *GameManager) RestartRoom(ctx context.Context, roomID, handle string) (*engine.DealResult, error) {
	room, err := m.lookup(roomID)
	if err != nil {
		return nil, err
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	if room.closed {
		return nil, errors.Wrapf(ErrRoomNotFound, "room %s closed", roomID)
	}
	if room.host != handle {
		return nil, errors.Wrapf(ErrNotHost, "%s in %s", handle, roomID)
	}
	if room.engine.Phase() != table.PhaseRoundEnd {
		return nil, errors.Wrapf(ErrRoundInProgress, "room %s in %s", roomID, room.engine.Phase())
	}
	return m.deal(room)
}

// LeaveSeat 离开房间
// 等待中直接让出座位；开局后座位交给托管；没有真人了就销毁房间
func (m *GameManager) LeaveSeat(ctx context.Context, roomID, handle string) error {
	room, seat, err := m.lockSeat(roomID, handle)
	if err != nil {
		return err
	}
	defer room.mu.Unlock()

	m.registry.Unbind(handle)
	phase := room.engine.Phase()
	if phase == table.PhaseWaiting {
		room.seats = append(room.seats[:seat], room.seats[seat+1:]...)
	} else {
		room.seats[seat] = Seat{Name: room.seats[seat].Name, Bot: true}
	}
	room.touched = m.opts.Now()
	utils.Log.Info("player left", "room", roomID, "handle", handle, "phase", phase)

	humans := room.humans()
	if len(humans) == 0 {
		m.destroy(ctx, room, "empty")
		return nil
	}
	if room.host == handle {
		room.host = humans[0]
	}
	if phase == table.PhaseWaiting {
		m.publishListing(ctx, room)
	}
	m.broadcast(room, EventRoomUpdate, room.info())

	if phase == table.PhasePlaying && room.engine.Current() == seat {
		m.scheduleBot(room)
	}
	return nil
}

// HandleDisconnect 断线等同离开（不支持重连）
func (m *GameManager) HandleDisconnect(handle string) {
	roomID, ok := m.registry.RoomOf(handle)
	if !ok {
		return
	}
	if err := m.LeaveSeat(context.Background(), roomID, handle); err != nil {
		utils.Log.Debug("disconnect cleanup", "handle", handle, "room", roomID, "err", err)
	}
}

// destroy 需持有 r.mu
func (m *GameManager) destroy(ctx context.Context, r *Room, why string) {
	r.closed = true
	r.stopTimers()
	m.registry.Remove(r.ID)
	m.removeListing(ctx, r)
	m.broadcast(r, EventRoomUpdate, r.info())
	utils.Log.Info("room destroyed", "room", r.ID, "reason", why)
}

// ListOpenRooms 大厅里还在等人的房间
func (m *GameManager) ListOpenRooms(ctx context.Context) ([]lobby.Listing, error) {
	if m.lobby == nil {
		return []lobby.Listing{}, nil
	}
	return m.lobby.List(ctx)
}

// History 房间最近的对局
func (m *GameManager) History(ctx context.Context, roomID string, limit int) ([]history.Entry, error) {
	if m.history == nil {
		return []history.Entry{}, nil
	}
	return m.history.Recent(ctx, roomID, limit)
}

// Room 房间公开信息
func (m *GameManager) Room(roomID string) (*RoomInfo, error) {
	room, err := m.lookup(roomID)
	if err != nil {
		return nil, err
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	return room.info(), nil
}

// --------------------------
//           出牌
// --------------------------

// ToggleReveal 亮/收一张 3；空操作返回 nil, nil
func (m *GameManager) ToggleReveal(ctx context.Context, roomID, handle string, card table.Card) (*engine.RevealUpdate, error) {
	room, seat, err := m.lockSeat(roomID, handle)
	if err != nil {
		return nil, err
	}
	defer room.mu.Unlock()

	up, changed, err := room.engine.ToggleReveal(seat, card)
	if err != nil {
		utils.Log.Debug("reveal rejected", "room", roomID, "seat", seat, "err", err)
		return nil, err
	}
	if !changed {
		return nil, nil
	}
	m.broadcast(room, EventRevealedUpdate, up)
	return up, nil
}

// SubmitPlay 出牌
func (m *GameManager) SubmitPlay(ctx context.Context, roomID, handle string, cards []table.Card) (*engine.State, error) {
	room, seat, err := m.lockSeat(roomID, handle)
	if err != nil {
		return nil, err
	}
	defer room.mu.Unlock()

	if err := room.engine.Play(seat, cards); err != nil {
		utils.Log.Debug("play rejected", "room", roomID, "seat", seat, "err", err)
		return nil, err
	}
	room.touched = m.opts.Now()
	m.afterAction(room)
	s := room.engine.Snapshot()
	return &s, nil
}

// SubmitPass 不要
func (m *GameManager) SubmitPass(ctx context.Context, roomID, handle string) (*engine.State, error) {
	room, seat, err := m.lockSeat(roomID, handle)
	if err != nil {
		return nil, err
	}
	defer room.mu.Unlock()

	if err := room.engine.Pass(seat); err != nil {
		utils.Log.Debug("pass rejected", "room", roomID, "seat", seat, "err", err)
		return nil, err
	}
	room.touched = m.opts.Now()
	m.afterAction(room)
	s := room.engine.Snapshot()
	return &s, nil
}

// Close 停掉清扫任务和所有房间的定时器
func (m *GameManager) Close() {
	m.cronMu.Lock()
	if m.cron != nil {
		<-m.cron.Stop().Done()
		m.cron = nil
	}
	m.cronMu.Unlock()

	for _, r := range m.registry.All() {
		r.mu.Lock()
		r.stopTimers()
		r.mu.Unlock()
	}
}
