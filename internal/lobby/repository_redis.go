package lobby

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

type redisDirectory struct {
	rdb *redis.Client
}

func NewRedisDirectory(rdb *redis.Client) Directory {
	return &redisDirectory{rdb: rdb}
}

// key 约定：
//
//	set: lobby:open            -> Set(roomID,...)
//	kv : lobby:room:{roomID}   -> Listing JSON，带 TTL
//	set 里的成员可能比 kv 活得久，List 时顺手清理
const openKey = "lobby:open"

func roomKey(roomID string) string {
	return fmt.Sprintf("lobby:room:%s", roomID)
}

func (r *redisDirectory) Upsert(ctx context.Context, l Listing, ttl time.Duration) error {
	data, err := json.Marshal(l)
	if err != nil {
		return errors.Wrap(err, "marshal listing")
	}
	p := r.rdb.Pipeline()
	p.SAdd(ctx, openKey, l.RoomID)
	p.Set(ctx, roomKey(l.RoomID), data, ttl)
	_, err = p.Exec(ctx)
	return errors.Wrapf(err, "upsert listing %s", l.RoomID)
}

func (r *redisDirectory) Remove(ctx context.Context, roomID string) error {
	p := r.rdb.Pipeline()
	p.SRem(ctx, openKey, roomID)
	p.Del(ctx, roomKey(roomID))
	_, err := p.Exec(ctx)
	return errors.Wrapf(err, "remove listing %s", roomID)
}

func (r *redisDirectory) List(ctx context.Context) ([]Listing, error) {
	ids, err := r.rdb.SMembers(ctx, openKey).Result()
	if err != nil {
		return nil, errors.Wrap(err, "list open rooms")
	}
	if len(ids) == 0 {
		return []Listing{}, nil
	}

	p := r.rdb.Pipeline()
	cmds := make([]*redis.StringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = p.Get(ctx, roomKey(id))
	}
	// 部分 key 过期时 Exec 会返回 redis.Nil，逐个看结果
	if _, err := p.Exec(ctx); err != nil && err != redis.Nil {
		return nil, errors.Wrap(err, "load listings")
	}

	out := make([]Listing, 0, len(ids))
	var stale []interface{}
	for i, cmd := range cmds {
		data, err := cmd.Bytes()
		if err == redis.Nil {
			stale = append(stale, ids[i])
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(err, "load listing %s", ids[i])
		}
		var l Listing
		if err := json.Unmarshal(data, &l); err != nil {
			stale = append(stale, ids[i])
			continue
		}
		out = append(out, l)
	}
	if len(stale) > 0 {
		_ = r.rdb.SRem(ctx, openKey, stale...).Err()
	}
	sortListings(out)
	return out, nil
}
