package scheduler

import (
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"RedCatch/internal/utils"
)

// Task 可取消的定时任务
type Task interface {
	Stop()
}

// Scheduler 一次性 / 周期回调
type Scheduler interface {
	After(d time.Duration, fn func()) Task
	Every(d time.Duration, fn func()) Task
}

// PoolScheduler 计时器到点后把回调丢进 ants 协程池执行
type PoolScheduler struct {
	pool *ants.Pool
}

func NewPoolScheduler(size int) (*PoolScheduler, error) {
	pool, err := ants.NewPool(size)
	if err != nil {
		return nil, err
	}
	return &PoolScheduler{pool: pool}, nil
}

func (s *PoolScheduler) submit(fn func()) {
	if err := s.pool.Submit(fn); err != nil {
		utils.Log.Error("scheduler submit failed", "err", err)
	}
}

type timerTask struct {
	timer *time.Timer
}

func (t *timerTask) Stop() { t.timer.Stop() }

func (s *PoolScheduler) After(d time.Duration, fn func()) Task {
	return &timerTask{timer: time.AfterFunc(d, func() { s.submit(fn) })}
}

type tickerTask struct {
	once sync.Once
	done chan struct{}
}

func (t *tickerTask) Stop() { t.once.Do(func() { close(t.done) }) }

func (s *PoolScheduler) Every(d time.Duration, fn func()) Task {
	t := &tickerTask{done: make(chan struct{})}
	ticker := time.NewTicker(d)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.submit(fn)
			case <-t.done:
				return
			}
		}
	}()
	return t
}

// Running 正在执行的回调数
func (s *PoolScheduler) Running() int { return s.pool.Running() }

func (s *PoolScheduler) Release() { s.pool.Release() }
