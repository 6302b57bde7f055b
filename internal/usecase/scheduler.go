package usecase

import (
	"context"
	"errors"
	"time"

	"ContentCurator/internal/ports"
)

// Job names registered with the scheduler driver.
const (
	RefreshJobName      = "refresh"
	NotificationJobName = "notify"
)

// SchedulePlan says when each job runs.
type SchedulePlan struct {
	RefreshEvery time.Duration
	NotifyAt     string
}

// Scheduler wires the polling driver with the pipeline and notification use cases.
type Scheduler struct {
	driver        ports.Scheduler
	pipeline      *Pipeline
	notifications *NotificationJob
	plan          SchedulePlan
}

// NewScheduler returns a helper that registers and runs the recurring jobs.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, notifications *NotificationJob, plan SchedulePlan) *Scheduler {
	return &Scheduler{driver: driver, pipeline: pipeline, notifications: notifications, plan: plan}
}

// Register adds the refresh and notification jobs to the driver.
func (s *Scheduler) Register() error {
	if s.driver == nil || s.pipeline == nil || s.notifications == nil {
		return errors.New("scheduler misconfigured")
	}
	if s.plan.RefreshEvery <= 0 {
		return errors.New("refresh interval must be positive")
	}

	s.driver.Every(RefreshJobName, s.plan.RefreshEvery, func(ctx context.Context) error {
		_, err := s.pipeline.Run(ctx)
		return err
	})
	return s.driver.DailyAt(NotificationJobName, s.plan.NotifyAt, s.notifications.Run)
}

// Start registers the jobs and blocks in the driver loop until ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	if err := s.Register(); err != nil {
		return err
	}
	return s.driver.Run(ctx)
}
