package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Maintainer runs the periodic full sweep. It sweeps immediately on start if
// the last recorded cleanup is older than the interval, then reschedules
// itself indefinitely: the normal interval after a successful sweep, a
// shorter backoff after a failed one.
type Maintainer struct {
	engine   *Engine
	clock    Clock
	log      *zap.Logger
	interval time.Duration
	backoff  time.Duration

	cancel context.CancelFunc
	done   chan struct{}
}

// NewMaintainer creates a stopped Maintainer with the standard interval and
// backoff.
func NewMaintainer(engine *Engine, log *zap.Logger) *Maintainer {
	return &Maintainer{
		engine:   engine,
		clock:    engine.clock,
		log:      log,
		interval: CleanupInterval,
		backoff:  CleanupBackoff,
	}
}

// Start launches the maintenance loop. It returns immediately.
func (m *Maintainer) Start(ctx context.Context) {
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})

	go m.run(ctx)
}

// Stop cancels the loop and waits for it to exit. A sweep already in flight
// finishes first.
func (m *Maintainer) Stop() {
	if m.cancel == nil {
		return
	}
	m.cancel()
	<-m.done
	m.cancel = nil
}

func (m *Maintainer) run(ctx context.Context) {
	defer close(m.done)

	next := m.interval
	meta := m.engine.Stats(ctx)
	if m.clock.Now().UnixMilli()-meta.LastCleanup > m.interval.Milliseconds() {
		if !m.sweep(ctx) {
			next = m.backoff
		}
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.clock.After(next):
			if m.sweep(ctx) {
				next = m.interval
			} else {
				next = m.backoff
			}
		}
	}
}

// sweep runs one full sweep, logging rather than propagating failure so the
// loop always reschedules.
func (m *Maintainer) sweep(ctx context.Context) bool {
	log := m.log.With(zap.String("run_id", uuid.NewString()))
	log.Debug("maintenance sweep starting")
	if err := m.engine.Sweep(ctx); err != nil {
		log.Error("maintenance sweep failed", zap.Error(err))
		return false
	}
	return true
}
