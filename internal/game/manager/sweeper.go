package manager

import (
	"context"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	"RedCatch/internal/game/table"
	"RedCatch/internal/utils"
)

// StartSweeper 按 cron 表达式定期回收空闲房间
func (m *GameManager) StartSweeper(spec string) error {
	m.cronMu.Lock()
	defer m.cronMu.Unlock()
	if m.cron != nil {
		return nil
	}
	c := cron.New()
	if _, err := c.AddFunc(spec, func() { m.SweepIdle() }); err != nil {
		return errors.Wrapf(err, "sweep spec %q", spec)
	}
	c.Start()
	m.cron = c
	utils.Log.Info("idle sweeper started", "spec", spec, "ttl", m.opts.IdleRoomTTL)
	return nil
}

// SweepIdle 销毁等待中或已结束、且超过 IdleRoomTTL 没动静的房间
func (m *GameManager) SweepIdle() int {
	ctx := context.Background()
	now := m.opts.Now()
	n := 0
	for _, r := range m.registry.All() {
		r.mu.Lock()
		phase := r.engine.Phase()
		idle := phase == table.PhaseWaiting || phase == table.PhaseRoundEnd
		if !r.closed && idle && now.Sub(r.touched) > m.opts.IdleRoomTTL {
			m.destroy(ctx, r, "idle")
			n++
		}
		r.mu.Unlock()
	}
	if n > 0 {
		utils.Log.Info("idle rooms swept", "count", n)
	}
	return n
}
