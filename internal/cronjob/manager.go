// Package cronjob schedules recurring background jobs.
package cronjob

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"capstonehub/internal/middleware"

	"github.com/robfig/cron/v3"
)

// Manager wraps a cron scheduler with named job registration.
type Manager struct {
	cron    *cron.Cron
	mu      sync.RWMutex
	entries map[string]cron.EntryID
}

// NewManager creates a Manager in the local timezone.
func NewManager() *Manager {
	return &Manager{
		cron:    cron.New(cron.WithLocation(time.Local)),
		entries: make(map[string]cron.EntryID),
	}
}

// Register schedules fn under name using a cron spec (standard five-field
// syntax or descriptors like @daily). Registering an existing name replaces
// the previous schedule.
func (m *Manager) Register(name, spec string, fn func()) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.entries[name]; ok {
		m.cron.Remove(old)
	}

	id, err := m.cron.AddFunc(spec, func() {
		start := time.Now()
		middleware.Logger.Info("Cron job started", slog.String("job", name))
		fn()
		middleware.Logger.Info("Cron job finished",
			slog.String("job", name),
			slog.Duration("elapsed", time.Since(start)),
		)
	})
	if err != nil {
		return fmt.Errorf("register cron job %q with spec %q: %w", name, spec, err)
	}

	m.entries[name] = id
	middleware.Logger.Info("Cron job registered", slog.String("job", name), slog.String("spec", spec))
	return nil
}

// Start launches the scheduler in its own goroutine.
func (m *Manager) Start() {
	m.cron.Start()
}

// Stop halts scheduling and waits for running jobs to complete.
func (m *Manager) Stop() {
	ctx := m.cron.Stop()
	<-ctx.Done()
}

// Jobs returns the names of all registered jobs.
func (m *Manager) Jobs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.entries))
	for name := range m.entries {
		names = append(names, name)
	}
	return names
}
