package lobby

import (
	"context"
	"sync"
	"time"
)

type memEntry struct {
	listing Listing
	expires time.Time
}

type memDirectory struct {
	mu    sync.Mutex
	rooms map[string]memEntry
	now   func() time.Time
}

func NewMemoryDirectory() Directory {
	return &memDirectory{
		rooms: make(map[string]memEntry),
		now:   time.Now,
	}
}

func (m *memDirectory) Upsert(ctx context.Context, l Listing, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := memEntry{listing: l}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.rooms[l.RoomID] = e
	return nil
}

func (m *memDirectory) Remove(ctx context.Context, roomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, roomID)
	return nil
}

func (m *memDirectory) List(ctx context.Context) ([]Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	out := make([]Listing, 0, len(m.rooms))
	for id, e := range m.rooms {
		// ✅ 与 Redis 行为对齐：过期即删除
		if !e.expires.IsZero() && now.After(e.expires) {
			delete(m.rooms, id)
			continue
		}
		out = append(out, e.listing)
	}
	sortListings(out)
	return out, nil
}
