// Package scheduler runs named jobs on fixed intervals or at a daily wall-clock time
// from a single polling loop.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"ContentCurator/internal/logging"
	"ContentCurator/internal/ports"
)

const defaultPollInterval = time.Second

// JobObserver is notified after every job run.
type JobObserver interface {
	ObserveJob(name string, duration time.Duration, err error)
}

// Options tunes a Loop. Zero values fall back to a 1s poll in UTC.
type Options struct {
	PollInterval time.Duration
	Location     *time.Location
	Logger       *slog.Logger
	Observer     JobObserver
}

type job struct {
	name     string
	interval time.Duration
	daily    bool
	hour     int
	minute   int
	next     time.Time
	run      func(context.Context) error
}

// Loop polls registered jobs and runs the due ones in registration order.
// Jobs run on the polling goroutine, so they never overlap.
type Loop struct {
	clock    Clock
	poll     time.Duration
	loc      *time.Location
	logger   *slog.Logger
	observer JobObserver

	mu   sync.Mutex
	jobs []*job
}

var _ ports.Scheduler = (*Loop)(nil)

// NewLoop builds a loop on clock. A nil clock means the system clock.
func NewLoop(clock Clock, opts Options) *Loop {
	if clock == nil {
		clock = RealClock{}
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Loop{
		clock:    clock,
		poll:     opts.PollInterval,
		loc:      opts.Location,
		logger:   logging.OrDiscard(opts.Logger).With("component", "scheduler"),
		observer: opts.Observer,
	}
}

// Every registers a job that first runs one interval from now.
func (l *Loop) Every(name string, interval time.Duration, run func(context.Context) error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.jobs = append(l.jobs, &job{
		name:     name,
		interval: interval,
		next:     l.clock.Now().Add(interval),
		run:      run,
	})
}

// DailyAt registers a job that runs once a day at clock ("HH:MM") in the loop's location.
func (l *Loop) DailyAt(name, clock string, run func(context.Context) error) error {
	hour, minute, err := ParseClock(clock)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	j := &job{name: name, daily: true, hour: hour, minute: minute, run: run}
	j.next = l.nextDaily(j, l.clock.Now())
	l.jobs = append(l.jobs, j)
	return nil
}

// NextRun reports when the named job is due next.
func (l *Loop) NextRun(name string) (time.Time, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, j := range l.jobs {
		if j.name == name {
			return j.next, true
		}
	}
	return time.Time{}, false
}

// RunPending runs every due job and returns how many ran.
// Job errors are logged and observed, never returned.
func (l *Loop) RunPending(ctx context.Context) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	ran := 0
	for _, j := range l.jobs {
		if ctx.Err() != nil {
			return ran
		}
		if l.clock.Now().Before(j.next) {
			continue
		}

		started := l.clock.Now()
		err := j.run(ctx)
		finished := l.clock.Now()
		ran++

		if err != nil {
			l.logger.Error("job failed", "job", j.name, "err", err)
		} else {
			l.logger.Info("job finished", "job", j.name, "took", finished.Sub(started))
		}
		if l.observer != nil {
			l.observer.ObserveJob(j.name, finished.Sub(started), err)
		}

		if j.daily {
			j.next = l.nextDaily(j, finished)
		} else {
			j.next = finished.Add(j.interval)
		}
	}
	return ran
}

// Run polls until ctx is done and returns the context error.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Info("scheduler started", "poll", l.poll, "location", l.loc.String())
	for {
		l.RunPending(ctx)
		if err := l.clock.Sleep(ctx, l.poll); err != nil {
			l.logger.Info("scheduler stopped")
			return err
		}
		if err := ctx.Err(); err != nil {
			l.logger.Info("scheduler stopped")
			return err
		}
	}
}

func (l *Loop) nextDaily(j *job, now time.Time) time.Time {
	local := now.In(l.loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), j.hour, j.minute, 0, 0, l.loc)
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// ParseClock parses a 24h "HH:MM" wall-clock time.
func ParseClock(clock string) (hour, minute int, err error) {
	h, m, ok := strings.Cut(strings.TrimSpace(clock), ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid clock %q: want HH:MM", clock)
	}
	hour, errH := strconv.Atoi(h)
	minute, errM := strconv.Atoi(m)
	if err := errors.Join(errH, errM); err != nil {
		return 0, 0, fmt.Errorf("invalid clock %q: %w", clock, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid clock %q: out of range", clock)
	}
	return hour, minute, nil
}
