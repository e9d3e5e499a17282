package mapper

import (
	"encoding/json"
	"fmt"

	"ai-quiz-runner/internal/entity"
	"ai-quiz-runner/internal/model"
	"ai-quiz-runner/pkg/question"

	"gorm.io/datatypes"
)

type AnswerRecordMapper struct{}

func NewAnswerRecordMapper() *AnswerRecordMapper {
	return &AnswerRecordMapper{}
}

func (m *AnswerRecordMapper) ToEntity(r *model.AnswerRecord) (*entity.AnswerRecord, error) {
	if r == nil {
		return nil, nil
	}
	q, err := decodeQuestion(r.Question)
	if err != nil {
		return nil, fmt.Errorf("answer record %s: %w", r.Id, err)
	}
	return &entity.AnswerRecord{
		Id:               r.Id,
		SessionId:        r.SessionId,
		Question:         q,
		UserAnswer:       r.UserAnswer,
		IsCorrect:        r.IsCorrect,
		PlainExplanation: r.PlainExplanation,
		KnowledgeFile:    r.KnowledgeFile,
		Mode:             r.Mode,
		AnsweredAt:       r.AnsweredAt,
	}, nil
}

func (m *AnswerRecordMapper) ToModel(r *entity.AnswerRecord) (*model.AnswerRecord, error) {
	if r == nil {
		return nil, nil
	}
	raw, err := json.Marshal(r.Question)
	if err != nil {
		return nil, err
	}
	return &model.AnswerRecord{
		Id:                 r.Id,
		SessionId:          r.SessionId,
		QuestionIdentifier: r.Question.Identifier,
		QuestionType:       string(r.Question.Type),
		Question:           datatypes.JSON(raw),
		UserAnswer:         r.UserAnswer,
		IsCorrect:          r.IsCorrect,
		PlainExplanation:   r.PlainExplanation,
		KnowledgeFile:      r.KnowledgeFile,
		Mode:               r.Mode,
		AnsweredAt:         r.AnsweredAt,
	}, nil
}

func (m *AnswerRecordMapper) ToEntities(records []*model.AnswerRecord) ([]*entity.AnswerRecord, error) {
	entities := make([]*entity.AnswerRecord, 0, len(records))
	for _, r := range records {
		e, err := m.ToEntity(r)
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	return entities, nil
}

func decodeQuestion(raw datatypes.JSON) (question.Question, error) {
	var q question.Question
	if len(raw) == 0 {
		return q, fmt.Errorf("empty question payload")
	}
	if err := json.Unmarshal(raw, &q); err != nil {
		return q, fmt.Errorf("decode question: %w", err)
	}
	return q, nil
}
