package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"xivttw/internal/repositories"
)

// MonitorReport summarises one sweep of the session store.
type MonitorReport struct {
	Active  int
	Expired int
	Warned  int
}

// SessionMonitor periodically expires sessions and warns once per session
// when the end of its lifetime is near.
type SessionMonitor struct {
	log      *slog.Logger
	sessions repositories.SessionRepository
	interval time.Duration
	warning  time.Duration
	now      func() time.Time

	mu     sync.Mutex
	warned map[string]struct{}
}

// NewSessionMonitor creates a new SessionMonitor.
func NewSessionMonitor(log *slog.Logger, sessions repositories.SessionRepository, interval, warning time.Duration, now func() time.Time) *SessionMonitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if now == nil {
		now = time.Now
	}
	return &SessionMonitor{
		log:      log,
		sessions: sessions,
		interval: interval,
		warning:  warning,
		now:      now,
		warned:   make(map[string]struct{}),
	}
}

// Run sweeps until ctx is cancelled.
func (m *SessionMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.log.Info("session monitor started", slog.Duration("interval", m.interval))
	for {
		select {
		case <-ctx.Done():
			m.log.Info("session monitor stopped")
			return
		case <-ticker.C:
			m.CheckOnce(ctx)
		}
	}
}

// CheckOnce performs a single sweep.
func (m *SessionMonitor) CheckOnce(ctx context.Context) MonitorReport {
	const op = "services.SessionMonitor.CheckOnce"
	logger := m.log.With(slog.String("op", op))

	var report MonitorReport
	list, err := m.sessions.List(ctx)
	if err != nil {
		logger.Error("failed to list sessions", slog.Any("error", err))
		return report
	}

	now := m.now()
	seen := make(map[string]struct{}, len(list))

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range list {
		if s.Expired(now) {
			if err := m.sessions.Delete(ctx, s.ID); err != nil {
				logger.Error("failed to delete expired session", slog.String("user_id", s.UserID), slog.Any("error", err))
				continue
			}
			logger.Info("session expired, forcing logout", slog.String("user_id", s.UserID))
			report.Expired++
			continue
		}
		seen[s.ID] = struct{}{}
		report.Active++

		remaining := s.ExpiresAt.Sub(now)
		if remaining > m.warning {
			continue
		}
		if _, done := m.warned[s.ID]; done {
			continue
		}
		m.warned[s.ID] = struct{}{}
		report.Warned++
		logger.Warn("session expiring soon",
			slog.String("user_id", s.UserID),
			slog.Duration("remaining", remaining.Truncate(time.Second)),
		)
	}
	for id := range m.warned {
		if _, ok := seen[id]; !ok {
			delete(m.warned, id)
		}
	}
	return report
}
