package history

import (
	"context"
	"sync"
	"time"

	"RedCatch/internal/game/table"
)

// Entry 一局的记录
type Entry struct {
	RoomID     string                  `json:"roomId"`
	DealSeq    uint64                  `json:"dealSeq"`
	Names      [table.SeatCount]string `json:"names"`
	Commitment string                  `json:"commitment"`
	Result     table.Result            `json:"result"`
	RecordedAt time.Time               `json:"recordedAt"`
}

// Recorder 对局历史
type Recorder interface {
	Record(ctx context.Context, e Entry) error
	// Recent 最近 limit 局，新的在前
	Recent(ctx context.Context, roomID string, limit int) ([]Entry, error)
}

// 每个房间只留最近这么多局
const memKeep = 50

type memRecorder struct {
	mu    sync.RWMutex
	rooms map[string][]Entry
}

func NewMemoryRecorder() Recorder {
	return &memRecorder{rooms: make(map[string][]Entry)}
}

func (m *memRecorder) Record(ctx context.Context, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := append(m.rooms[e.RoomID], e)
	if len(list) > memKeep {
		list = list[len(list)-memKeep:]
	}
	m.rooms[e.RoomID] = list
	return nil
}

func (m *memRecorder) Recent(ctx context.Context, roomID string, limit int) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	list := m.rooms[roomID]
	out := make([]Entry, 0, len(list))
	for i := len(list) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		out = append(out, list[i])
	}
	return out, nil
}
