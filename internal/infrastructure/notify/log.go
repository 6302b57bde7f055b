package notify

import (
	"context"
	"log/slog"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/logging"
	"ContentCurator/internal/ports"
)

// LogNotifier writes the digest to the application log.
type LogNotifier struct {
	logger *slog.Logger
}

var _ ports.Notifier = (*LogNotifier)(nil)

// NewLogNotifier logs through logger, or drops everything when logger is nil.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logging.OrDiscard(logger).With("component", "notify", "channel", "log")}
}

// Notify logs the digest at info level.
func (n *LogNotifier) Notify(ctx context.Context, articles []domain.Article) error {
	n.logger.InfoContext(ctx, Subject, "articles", len(articles), "body", FormatMessage(articles))
	return nil
}
