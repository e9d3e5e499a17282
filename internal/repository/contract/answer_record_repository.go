package contract

import (
	"context"

	"ai-quiz-runner/internal/entity"
	"ai-quiz-runner/internal/repository/specification"
)

type AnswerRecordRepository interface {
	Create(ctx context.Context, record *entity.AnswerRecord) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AnswerRecord, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
}
