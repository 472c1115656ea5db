// ABOUTME: Cron-driven scheduler that re-checks reminders on a configured schedule.
// ABOUTME: Each reminder is delivered once per process; delivery is a caller-supplied func.
package reminders

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/harperreed/cycles/internal/logger"
	"github.com/harperreed/cycles/internal/models"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ParseSchedule parses a standard five-field cron expression (or a
// descriptor such as "@daily").
func ParseSchedule(spec string) (cron.Schedule, error) {
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("parse reminder schedule %q: %w", spec, err)
	}
	return sched, nil
}

// NextRuns returns the next n activation times of spec after from.
func NextRuns(spec string, from time.Time, n int) ([]time.Time, error) {
	sched, err := ParseSchedule(spec)
	if err != nil {
		return nil, err
	}
	out := make([]time.Time, 0, n)
	t := from
	for i := 0; i < n; i++ {
		t = sched.Next(t)
		out = append(out, t)
	}
	return out, nil
}

// SnapshotFunc loads the current snapshot for a check.
type SnapshotFunc func(ctx context.Context) (*models.Snapshot, error)

// DeliverFunc hands a reminder to the user.
type DeliverFunc func(Reminder)

// Scheduler runs reminder checks on a cron schedule.
type Scheduler struct {
	cronEngine *cron.Cron
	spec       string
	leadDays   int
	load       SnapshotFunc
	deliver    DeliverFunc
	now        func() time.Time

	mu   sync.Mutex
	sent map[string]bool
}

// NewScheduler validates spec and prepares a scheduler in local time.
func NewScheduler(spec string, leadDays int, load SnapshotFunc, deliver DeliverFunc) (*Scheduler, error) {
	if _, err := ParseSchedule(spec); err != nil {
		return nil, err
	}
	return &Scheduler{
		cronEngine: cron.New(cron.WithLocation(time.Local)),
		spec:       spec,
		leadDays:   leadDays,
		load:       load,
		deliver:    deliver,
		now:        time.Now,
		sent:       make(map[string]bool),
	}, nil
}

// Check runs one reminder pass and returns how many new reminders were
// delivered. Reminders already delivered by this scheduler are skipped.
func (s *Scheduler) Check(ctx context.Context) (int, error) {
	snap, err := s.load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load snapshot: %w", err)
	}
	today := models.DateOf(s.now())

	s.mu.Lock()
	defer s.mu.Unlock()
	delivered := 0
	for _, r := range Due(*snap, today, s.leadDays) {
		key := r.Key()
		if s.sent[key] {
			continue
		}
		s.sent[key] = true
		s.deliver(r)
		delivered++
	}
	logger.Log.WithFields(logrus.Fields{
		"date":      today.String(),
		"delivered": delivered,
	}).Debug("reminder check finished")
	return delivered, nil
}

// Run checks once immediately, then on every schedule activation until ctx
// is canceled. Running jobs are allowed to finish before it returns.
func (s *Scheduler) Run(ctx context.Context) error {
	if _, err := s.Check(ctx); err != nil {
		logger.Log.WithError(err).Warn("reminder check failed")
	}

	_, err := s.cronEngine.AddFunc(s.spec, func() {
		jobCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		if _, err := s.Check(jobCtx); err != nil {
			logger.Log.WithError(err).Warn("reminder check failed")
		}
	})
	if err != nil {
		return fmt.Errorf("schedule reminders: %w", err)
	}

	s.cronEngine.Start()
	logger.Log.WithField("schedule", s.spec).Info("reminder scheduler started")

	<-ctx.Done()
	stopped := s.cronEngine.Stop()
	<-stopped.Done()
	logger.Log.Info("reminder scheduler stopped")
	return nil
}
