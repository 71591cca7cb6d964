// Package messaging announces saved mind map documents to other systems.
package messaging

import (
	"context"

	"go.uber.org/zap"

	"pgy3-backend/application/ports"
)

// LogNotifier only logs saves. It is used when no event bus is configured.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) DocumentSaved(_ context.Context, event ports.DocumentSaved) error {
	n.logger.Debug("Document saved",
		zap.String("reason", event.Reason),
		zap.Time("saved_at", event.SavedAt),
	)
	return nil
}
