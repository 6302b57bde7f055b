package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ContentCurator/internal/logging"
	"ContentCurator/internal/ports"
)

// NotificationRecorder receives the outcome of every delivery attempt.
type NotificationRecorder interface {
	RecordNotification(channel string, err error)
}

// NotificationDeps wires the notification job.
type NotificationDeps struct {
	Store       ports.ArticleStore
	Recommender Recommender
	Notifier    ports.Notifier
	Channel     string
	Metrics     NotificationRecorder
	Logger      *slog.Logger
}

// NotificationJob sends the current recommendations through the configured notifier.
type NotificationJob struct {
	store       ports.ArticleStore
	recommender Recommender
	notifier    ports.Notifier
	channel     string
	metrics     NotificationRecorder
	logger      *slog.Logger
}

// NewNotificationJob builds the job.
func NewNotificationJob(deps NotificationDeps) *NotificationJob {
	return &NotificationJob{
		store:       deps.Store,
		recommender: deps.Recommender,
		notifier:    deps.Notifier,
		channel:     deps.Channel,
		metrics:     deps.Metrics,
		logger:      logging.OrDiscard(deps.Logger).With("component", "notification", "channel", deps.Channel),
	}
}

// Run delivers one digest. An empty recommendation list sends nothing.
func (j *NotificationJob) Run(ctx context.Context) error {
	if j.store == nil || j.notifier == nil {
		return errors.New("notification job misconfigured")
	}

	recs, err := j.recommender.RecommendStore(ctx, j.store)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		j.logger.Info("no recommendations, notification skipped")
		return nil
	}

	err = j.notifier.Notify(ctx, recs)
	if j.metrics != nil {
		j.metrics.RecordNotification(j.channel, err)
	}
	if err != nil {
		return fmt.Errorf("notify via %s: %w", j.channel, err)
	}

	j.logger.Info("notification sent", "articles", len(recs))
	return nil
}
