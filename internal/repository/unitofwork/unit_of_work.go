package unitofwork

import (
	"context"

	"ai-quiz-runner/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	AnswerRecordRepository() contract.AnswerRecordRepository
	WrongQuestionRepository() contract.WrongQuestionRepository
	AiConfigRepository() contract.IAiConfigRepository
}
