package monitor

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"email-dispatch-go/internal/config"
	"email-dispatch-go/internal/history"
	"email-dispatch-go/internal/mailer"
)

// Monitor runs the periodic upkeep job: while the SMTP transport is
// unverified it re-attempts verification, and it logs a stats snapshot
// each cycle.
type Monitor struct {
	cron      *cron.Cron
	entryID   cron.EntryID
	config    *config.MonitorConfig
	mailer    *mailer.Mailer
	store     *history.Store
	isRunning bool
	mu        sync.RWMutex
}

// NewMonitor creates a new monitor
func NewMonitor(cfg *config.MonitorConfig, m *mailer.Mailer, store *history.Store) *Monitor {
	return &Monitor{
		cron:   cron.New(cron.WithSeconds()),
		config: cfg,
		mailer: m,
		store:  store,
	}
}

// Start starts the monitor
func (m *Monitor) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.isRunning {
		return fmt.Errorf("monitor is already running")
	}

	schedule := fmt.Sprintf("0 */%d * * * *", m.config.IntervalMinutes)

	entryID, err := m.cron.AddFunc(schedule, m.tick)
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	m.entryID = entryID
	m.cron.Start()
	m.isRunning = true

	logrus.Infof("Monitor started with interval: %d minutes", m.config.IntervalMinutes)
	return nil
}

// Stop stops the monitor
func (m *Monitor) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.isRunning {
		return nil
	}

	ctx := m.cron.Stop()
	select {
	case <-ctx.Done():
		logrus.Info("Monitor stopped gracefully")
	case <-time.After(30 * time.Second):
		logrus.Warn("Monitor stop timeout, forcing shutdown")
	}

	m.cron.Remove(m.entryID)
	m.isRunning = false
	return nil
}

// IsRunning returns whether the monitor is running
func (m *Monitor) IsRunning() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.isRunning
}

func (m *Monitor) tick() {
	if m.mailer != nil && !m.mailer.Verified() {
		if err := m.mailer.Verify(); err != nil {
			logrus.Warnf("SMTP transport still unverified: %v", err)
		}
	}

	stats := m.store.Stats()
	logrus.Infof("History snapshot: %d retained, %d sent, %d failed, %d pending",
		m.store.Size(), stats.TotalSent, stats.TotalFailed, stats.TotalPending)
}
