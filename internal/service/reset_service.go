package service

import (
	"context"

	"ai-quiz-runner/internal/pkg/logger"
	"ai-quiz-runner/internal/repository/contract"
	"ai-quiz-runner/pkg/events"
)

const resetModule = "RESET"

type IResetService interface {
	// Reset clears sessions, history, the wrong-question book and uploads.
	// The AI configuration is kept.
	Reset(ctx context.Context) error
}

type resetService struct {
	sessions  contract.SessionRepository
	history   IHistoryService
	wrongBook IWrongQuestionService
	knowledge IKnowledgeService
	events    EventPublisher
	logger    logger.ILogger
}

func NewResetService(
	sessions contract.SessionRepository,
	history IHistoryService,
	wrongBook IWrongQuestionService,
	knowledge IKnowledgeService,
	eventPublisher EventPublisher,
	log logger.ILogger,
) IResetService {
	return &resetService{
		sessions:  sessions,
		history:   history,
		wrongBook: wrongBook,
		knowledge: knowledge,
		events:    eventPublisher,
		logger:    log,
	}
}

func (s *resetService) Reset(ctx context.Context) error {
	if err := s.sessions.Clear(ctx); err != nil {
		return err
	}
	records, err := s.history.Clear(ctx)
	if err != nil {
		return err
	}
	wrong, err := s.wrongBook.Clear(ctx)
	if err != nil {
		return err
	}
	files, err := s.knowledge.Clear(ctx)
	if err != nil {
		return err
	}

	s.logger.Info(resetModule, "All quiz data cleared, AI configuration kept", map[string]interface{}{
		"answer_records":  records,
		"wrong_questions": wrong.DeletedCount,
		"uploads":         files,
	})
	emitEvent(ctx, s.events, s.logger, events.DataReset())
	return nil
}
