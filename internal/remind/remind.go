// Package remind schedules digest delivery. The cron specs for daily and
// evening come from the settings row; weekly and monthly run at fixed times.
package remind

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/sadopc/steward/internal/digest"
	"github.com/sadopc/steward/internal/store"
)

const (
	weeklySpec  = "0 20 * * 0" // Sunday 20:00
	monthlySpec = "0 9 1 * *"  // first of the month 09:00
)

// Handler receives computed digest payloads. Nil fields are simply not
// scheduled.
type Handler struct {
	Daily   func(*digest.Daily)
	Evening func(*digest.Evening)
	Weekly  func(*digest.Weekly)
	Monthly func(*digest.Monthly)
}

// Scheduler runs the digest jobs in the user's timezone. Restart after a
// settings change to pick up new times.
type Scheduler struct {
	store   *store.Store
	handler Handler
	log     *slog.Logger

	mu   sync.Mutex
	cron *cron.Cron
}

func New(s *store.Store, handler Handler, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Scheduler{store: s, handler: handler, log: log}
}

// Start reads the settings row and launches the cron jobs. Calling Start on a
// running scheduler replaces the schedule.
func (s *Scheduler) Start() error {
	settings, err := s.store.GetSettings()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	loc, err := time.LoadLocation(settings.Timezone)
	if err != nil {
		s.log.Warn("bad timezone in settings, using UTC", "tz", settings.Timezone)
		loc = time.UTC
	}
	engine := digest.New(s.store, loc)

	c := cron.New(cron.WithLocation(loc))

	if s.handler.Daily != nil && settings.DailySummaryEnabled {
		spec, err := clockSpec(settings.DailySummaryTime)
		if err != nil {
			return fmt.Errorf("daily summary time: %w", err)
		}
		c.AddFunc(spec, func() { s.runDaily(engine) })
	}
	if s.handler.Evening != nil && settings.EveningReminderEnabled {
		spec, err := clockSpec(settings.EveningReminderTime)
		if err != nil {
			return fmt.Errorf("evening reminder time: %w", err)
		}
		c.AddFunc(spec, func() { s.runEvening(engine) })
	}
	if s.handler.Weekly != nil {
		c.AddFunc(weeklySpec, func() { s.runWeekly(engine) })
	}
	if s.handler.Monthly != nil {
		c.AddFunc(monthlySpec, func() { s.runMonthly(engine) })
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		s.cron.Stop()
	}
	s.cron = c
	c.Start()
	return nil
}

// Stop halts the schedule. Jobs already running finish on their own.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		s.cron.Stop()
		s.cron = nil
	}
}

func (s *Scheduler) runDaily(engine *digest.Engine) {
	payload, err := engine.Daily()
	if err != nil {
		s.log.Error("daily digest failed", "err", err)
		return
	}
	s.handler.Daily(payload)
}

func (s *Scheduler) runEvening(engine *digest.Engine) {
	payload, err := engine.Evening()
	if err != nil {
		s.log.Error("evening digest failed", "err", err)
		return
	}
	if payload.Empty {
		return
	}
	s.handler.Evening(payload)
}

func (s *Scheduler) runWeekly(engine *digest.Engine) {
	payload, err := engine.Weekly()
	if err != nil {
		s.log.Error("weekly digest failed", "err", err)
		return
	}
	s.handler.Weekly(payload)
}

func (s *Scheduler) runMonthly(engine *digest.Engine) {
	payload, err := engine.Monthly()
	if err != nil {
		s.log.Error("monthly digest failed", "err", err)
		return
	}
	s.handler.Monthly(payload)
}

// clockSpec turns an "HH:MM" settings value into a daily cron spec.
func clockSpec(hhmm string) (string, error) {
	t, err := time.Parse("15:04", hhmm)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", hhmm, err)
	}
	return fmt.Sprintf("%d %d * * *", t.Minute(), t.Hour()), nil
}
