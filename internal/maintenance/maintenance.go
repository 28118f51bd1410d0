// Package maintenance runs periodic housekeeping against a service database.
package maintenance

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// runTimeout bounds a single housekeeping run
const runTimeout = 5 * time.Minute

// Store is the database surface maintenance needs
type Store interface {
	Optimize(ctx context.Context) error
	Checkpoint(ctx context.Context) error
}

// Manager schedules housekeeping runs with a cron expression
type Manager struct {
	store    Store
	schedule string
	cron     *cron.Cron
	entryID  cron.EntryID
	mu       sync.Mutex
	running  bool
	lastRun  time.Time
	lastErr  error
}

// New creates a maintenance manager. An empty schedule or "off" disables it.
func New(store Store, schedule string) *Manager {
	return &Manager{
		store:    store,
		schedule: schedule,
		cron:     cron.New(),
	}
}

// Start registers the schedule and starts the cron scheduler. It reports
// false when maintenance is disabled.
func (m *Manager) Start() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return true, nil
	}
	if m.schedule == "" || m.schedule == "off" {
		return false, nil
	}

	id, err := m.cron.AddFunc(m.schedule, m.scheduledRun)
	if err != nil {
		return false, fmt.Errorf("invalid maintenance schedule %q: %w", m.schedule, err)
	}
	m.entryID = id
	m.cron.Start()
	m.running = true

	log.Info().Str("schedule", m.schedule).Msg("Database maintenance scheduled")
	return true, nil
}

// Stop stops the scheduler and waits for a running job to finish
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	m.mu.Unlock()

	ctx := m.cron.Stop()
	<-ctx.Done()

	event := log.Debug()
	if last, err := m.LastRun(); !last.IsZero() {
		event = event.Time("last_run", last).AnErr("last_error", err)
	}
	event.Msg("Database maintenance stopped")
}

// NextRun returns the next scheduled run, or nil when not scheduled
func (m *Manager) NextRun() *time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running || m.entryID == 0 {
		return nil
	}
	next := m.cron.Entry(m.entryID).Next
	if next.IsZero() {
		return nil
	}
	return &next
}

// LastRun returns the time and result of the most recent run
func (m *Manager) LastRun() (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastRun, m.lastErr
}

// RunNow optimizes the database and truncates its WAL file
func (m *Manager) RunNow(ctx context.Context) error {
	start := time.Now()

	err := errors.Join(m.store.Optimize(ctx), m.store.Checkpoint(ctx))

	m.mu.Lock()
	m.lastRun = start
	m.lastErr = err
	m.mu.Unlock()

	if err != nil {
		return err
	}
	log.Debug().Dur("duration", time.Since(start)).Msg("Database maintenance complete")
	return nil
}

func (m *Manager) scheduledRun() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	if err := m.RunNow(ctx); err != nil {
		log.Error().Err(err).Msg("Scheduled database maintenance failed")
	}
}
