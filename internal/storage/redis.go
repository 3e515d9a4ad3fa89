package storage

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

var Rdb *redis.Client

// InitRedis 连接大厅索引用的 Redis；addr 为空时不启用
func InitRedis(addr, password string, db int) error {
	if addr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return errors.Wrapf(err, "ping redis %s", addr)
	}
	Rdb = rdb
	return nil
}

// Close 关闭已打开的连接
func Close() {
	if Rdb != nil {
		_ = Rdb.Close()
		Rdb = nil
	}
	if DB != nil {
		_ = DB.Close()
		DB = nil
	}
}
