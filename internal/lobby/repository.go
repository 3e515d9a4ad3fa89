package lobby

import (
	"context"
	"sort"
	"time"
)

// Directory 大厅房间列表的抽象
type Directory interface {
	// Upsert 写入/刷新一个等待中的房间，ttl 到期自动消失
	Upsert(ctx context.Context, l Listing, ttl time.Duration) error
	// Remove 房间开局或销毁时移除
	Remove(ctx context.Context, roomID string) error
	// List 按创建时间返回所有等待中的房间
	List(ctx context.Context) ([]Listing, error)
}

func sortListings(ls []Listing) {
	sort.Slice(ls, func(i, j int) bool {
		if !ls[i].CreatedAt.Equal(ls[j].CreatedAt) {
			return ls[i].CreatedAt.Before(ls[j].CreatedAt)
		}
		return ls[i].RoomID < ls[j].RoomID
	})
}
