package service

import (
	"context"

	"ai-quiz-runner/internal/pkg/logger"
	"ai-quiz-runner/pkg/events"
)

// EventPublisher sends lifecycle events outside the process (NATS when configured).
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// emitEvent is fire-and-forget: a missing or failing bus never fails a request.
func emitEvent(ctx context.Context, pub EventPublisher, log logger.ILogger, event events.Event) {
	if pub == nil {
		return
	}
	if err := pub.Publish(ctx, event); err != nil {
		log.Warn("EVENTS", "Failed to publish event", map[string]interface{}{
			"type":  event.EventType(),
			"error": err.Error(),
		})
	}
}
