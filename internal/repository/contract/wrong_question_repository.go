package contract

import (
	"context"

	"ai-quiz-runner/internal/entity"
	"ai-quiz-runner/internal/repository/specification"
)

type WrongQuestionRepository interface {
	// Save inserts or replaces the entry keyed by its question identifier.
	Save(ctx context.Context, wq *entity.WrongQuestion) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.WrongQuestion, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.WrongQuestion, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	Delete(ctx context.Context, identifier string) (bool, error)
	DeleteAll(ctx context.Context) (int64, error)
}
