package service

import (
	"context"
	"encoding/json"

	"ai-quiz-runner/internal/dto"
	"ai-quiz-runner/internal/entity"
	"ai-quiz-runner/internal/pkg/logger"
	"ai-quiz-runner/internal/repository/specification"
	"ai-quiz-runner/internal/repository/unitofwork"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

const consumerModule = "CONSUMER"

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService persists recorded answers: one history row per answer, and
// the wrong-question book upserted on a miss or cleared on a hit.
type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		uowFactory: uowFactory,
		logger:     log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.AnswerRecordedMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error(consumerModule, "Failed to unmarshal message", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		msg.Ack() // invalid payloads are never retried
		return
	}

	if err := cs.record(ctx, &payload); err != nil {
		cs.logger.Error(consumerModule, "Failed to record answer", map[string]interface{}{
			"session_id": payload.SessionId,
			"identifier": payload.Question.Identifier,
			"error":      err.Error(),
		})
		msg.Nack()
		return
	}

	cs.logger.Debug(consumerModule, "Answer recorded", map[string]interface{}{
		"session_id": payload.SessionId,
		"identifier": payload.Question.Identifier,
		"is_correct": payload.IsCorrect,
	})
	msg.Ack()
}

func (cs *consumerService) record(ctx context.Context, p *dto.AnswerRecordedMessage) error {
	uow := cs.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	err := uow.AnswerRecordRepository().Create(ctx, &entity.AnswerRecord{
		Id:               uuid.New(),
		SessionId:        p.SessionId,
		Question:         p.Question,
		UserAnswer:       p.UserAnswer,
		IsCorrect:        p.IsCorrect,
		PlainExplanation: p.PlainExplanation,
		KnowledgeFile:    p.KnowledgeFile,
		Mode:             p.Mode,
		AnsweredAt:       p.AnsweredAt.UTC(),
	})
	if err != nil {
		return err
	}

	wrongRepo := uow.WrongQuestionRepository()
	if p.IsCorrect {
		if _, err := wrongRepo.Delete(ctx, p.Question.Identifier); err != nil {
			return err
		}
	} else {
		existing, err := wrongRepo.FindOne(ctx, specification.ByIdentifier{Identifier: p.Question.Identifier})
		if err != nil {
			return err
		}
		count := 1
		if existing != nil {
			count = existing.WrongCount + 1
		}
		err = wrongRepo.Save(ctx, &entity.WrongQuestion{
			Question:             p.Question,
			LastPlainExplanation: p.PlainExplanation,
			LastWrongAt:          p.AnsweredAt.UTC(),
			WrongCount:           count,
		})
		if err != nil {
			return err
		}
	}

	return uow.Commit()
}
