package infra

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Monitor is the connectivity signal. IsOnline probes the remote store at
// call time — the result is never cached. Subscribers are notified once per
// offline→online transition; that notification is the sole trigger for the
// background pending-sync sweep.
type Monitor struct {
	probe    func(ctx context.Context) bool
	interval time.Duration

	mu          sync.Mutex
	subscribers []func()
	wasOnline   bool
	started     bool
}

// NewMonitor builds a monitor over an explicit probe.
func NewMonitor(probe func(ctx context.Context) bool, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Monitor{probe: probe, interval: interval, wasOnline: true}
}

// NewDatabaseMonitor probes the remote store through its connection pool.
func NewDatabaseMonitor(db *gorm.DB, interval time.Duration) *Monitor {
	return NewMonitor(func(ctx context.Context) bool {
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		probeCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		return sqlDB.PingContext(probeCtx) == nil
	}, interval)
}

// IsOnline probes synchronously.
func (m *Monitor) IsOnline(ctx context.Context) bool {
	return m.probe(ctx)
}

// Subscribe registers fn to run on each offline→online transition.
func (m *Monitor) Subscribe(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribers = append(m.subscribers, fn)
}

// Watch runs the transition detector until ctx is cancelled. Safe to call
// once; later calls are no-ops.
func (m *Monitor) Watch(ctx context.Context) {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	m.wasOnline = m.probe(ctx)
	m.mu.Unlock()

	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.tick(ctx)
			}
		}
	}()
}

func (m *Monitor) tick(ctx context.Context) {
	online := m.probe(ctx)

	m.mu.Lock()
	transicion := online && !m.wasOnline
	m.wasOnline = online
	subs := m.subscribers
	m.mu.Unlock()

	if !transicion {
		return
	}
	log.Info().Msg("conectividad: transición offline→online detectada")
	for _, fn := range subs {
		fn()
	}
}
