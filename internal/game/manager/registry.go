package manager

import (
	"sync"
	"time"

	"github.com/pkg/errors"

	"RedCatch/internal/game/bot"
	"RedCatch/internal/game/engine"
	"RedCatch/internal/game/scheduler"
	"RedCatch/internal/game/table"
)

// Seat 房间里的一个座位；开局后下标就是 SeatID
type Seat struct {
	Handle string `json:"handle,omitempty"` // 托管座位为空
	Name   string `json:"name"`
	Bot    bool   `json:"bot"`
}

// Room 一个房间，所有修改都在 mu 下串行
type Room struct {
	ID string

	mu        sync.Mutex
	host      string
	seats     []Seat
	engine    *engine.Engine
	agent     *bot.Agent
	timers    map[string]scheduler.Task
	createdAt time.Time
	touched   time.Time
	closed    bool
}

// RoomInfo 房间的公开信息
type RoomInfo struct {
	ID        string      `json:"roomId"`
	Host      string      `json:"host"`
	HostName  string      `json:"hostName"`
	Seats     []Seat      `json:"seats"`
	Phase     table.Phase `json:"phase"`
	CreatedAt time.Time   `json:"createdAt"`
	Closed    bool        `json:"closed,omitempty"`
}

// info 需持有 r.mu
func (r *Room) info() *RoomInfo {
	info := &RoomInfo{
		ID:        r.ID,
		Host:      r.host,
		Seats:     append([]Seat(nil), r.seats...),
		Phase:     r.engine.Phase(),
		CreatedAt: r.createdAt,
		Closed:    r.closed,
	}
	if s := r.seatOf(r.host); s != table.NoSeat {
		info.HostName = r.seats[s].Name
	}
	return info
}

// seatOf handle 对应的座位，没有返回 NoSeat
func (r *Room) seatOf(handle string) table.SeatID {
	if handle == "" {
		return table.NoSeat
	}
	for i, s := range r.seats {
		if !s.Bot && s.Handle == handle {
			return table.SeatID(i)
		}
	}
	return table.NoSeat
}

// humans 真人座位的 handle
func (r *Room) humans() []string {
	var out []string
	for _, s := range r.seats {
		if !s.Bot {
			out = append(out, s.Handle)
		}
	}
	return out
}

func (r *Room) stopTimer(name string) {
	if t, ok := r.timers[name]; ok {
		t.Stop()
		delete(r.timers, name)
	}
}

func (r *Room) stopTimers() {
	for name := range r.timers {
		r.stopTimer(name)
	}
}

// --------------------------
//         Registry
// --------------------------

var errDuplicateRoom = errors.New("duplicate room id")

// Registry 房间表：唯一需要并发安全的共享结构
type Registry interface {
	Add(room *Room) error
	Get(id string) (*Room, bool)
	Remove(id string)
	All() []*Room

	// handle -> roomID
	Bind(handle, roomID string)
	Unbind(handle string)
	RoomOf(handle string) (string, bool)
}

type memRegistry struct {
	mu      sync.RWMutex
	rooms   map[string]*Room
	players map[string]string
}

func NewMemoryRegistry() Registry {
	return &memRegistry{
		rooms:   make(map[string]*Room),
		players: make(map[string]string),
	}
}

func (m *memRegistry) Add(room *Room) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[room.ID]; ok {
		return errors.Wrapf(errDuplicateRoom, "room %s", room.ID)
	}
	m.rooms[room.ID] = room
	return nil
}

func (m *memRegistry) Get(id string) (*Room, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[id]
	return r, ok
}

func (m *memRegistry) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, id)
	for h, rid := range m.players {
		if rid == id {
			delete(m.players, h)
		}
	}
}

func (m *memRegistry) All() []*Room {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		out = append(out, r)
	}
	return out
}

func (m *memRegistry) Bind(handle, roomID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.players[handle] = roomID
}

func (m *memRegistry) Unbind(handle string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.players, handle)
}

func (m *memRegistry) RoomOf(handle string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.players[handle]
	return id, ok
}
