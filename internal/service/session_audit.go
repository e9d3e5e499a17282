package service

import (
	"context"

	"ai-quiz-runner/internal/pkg/logger"
	"ai-quiz-runner/pkg/events"
)

// NewSessionAuditHandler logs session lifecycle events read back from the
// event bus, giving a durable audit trail independent of the request path.
func NewSessionAuditHandler(log logger.ILogger) func(ctx context.Context, event events.Event) error {
	return func(ctx context.Context, event events.Event) error {
		details := map[string]interface{}{"occurred_at": event.Timestamp()}
		for k, v := range event.Payload() {
			details[k] = v
		}
		log.Info("AUDIT", event.EventType(), details)
		return nil
	}
}
