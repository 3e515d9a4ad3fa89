package scheduler

import (
	"sync"
	"time"
)

// Manual 手动推进时间的调度器，回调在 Advance 的调用方协程里同步执行
type Manual struct {
	mu    sync.Mutex
	now   time.Duration
	seq   int
	tasks []*manualTask
}

type manualTask struct {
	m       *Manual
	due     time.Duration
	every   time.Duration
	seq     int
	fn      func()
	stopped bool
}

func (t *manualTask) Stop() {
	t.m.mu.Lock()
	t.stopped = true
	t.m.mu.Unlock()
}

func NewManual() *Manual { return &Manual{} }

func (m *Manual) add(d, every time.Duration, fn func()) Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTask{m: m, due: m.now + d, every: every, seq: m.seq, fn: fn}
	m.tasks = append(m.tasks, t)
	return t
}

func (m *Manual) After(d time.Duration, fn func()) Task { return m.add(d, 0, fn) }

func (m *Manual) Every(d time.Duration, fn func()) Task { return m.add(d, d, fn) }

// next 取出最早到期的任务，没有返回 nil
func (m *Manual) next(until time.Duration) *manualTask {
	m.mu.Lock()
	defer m.mu.Unlock()

	live := m.tasks[:0]
	for _, t := range m.tasks {
		if !t.stopped {
			live = append(live, t)
		}
	}
	m.tasks = live

	var best *manualTask
	for _, t := range m.tasks {
		if t.due > until {
			continue
		}
		if best == nil || t.due < best.due || t.due == best.due && t.seq < best.seq {
			best = t
		}
	}
	if best == nil {
		return nil
	}
	m.now = best.due
	if best.every > 0 {
		best.due += best.every
	} else {
		best.stopped = true
	}
	return best
}

// Advance 时间前进 d，依次执行到期的回调（包括回调里新加的）
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	until := m.now + d
	m.mu.Unlock()

	for t := m.next(until); t != nil; t = m.next(until) {
		t.fn()
	}

	m.mu.Lock()
	m.now = until
	m.mu.Unlock()
}

// Pending 还没执行或取消的任务数
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.tasks {
		if !t.stopped {
			n++
		}
	}
	return n
}
