package contract

import (
	"context"

	"ai-quiz-runner/internal/entity"
)

// IAiConfigRepository stores the single AI configuration row.
type IAiConfigRepository interface {
	// Find returns nil, nil when nothing is configured.
	Find(ctx context.Context) (*entity.AiConfig, error)
	Save(ctx context.Context, config *entity.AiConfig) error
	Delete(ctx context.Context) (bool, error)
}
