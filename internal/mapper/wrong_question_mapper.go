package mapper

import (
	"encoding/json"
	"fmt"

	"ai-quiz-runner/internal/entity"
	"ai-quiz-runner/internal/model"

	"gorm.io/datatypes"
)

type WrongQuestionMapper struct{}

func NewWrongQuestionMapper() *WrongQuestionMapper {
	return &WrongQuestionMapper{}
}

func (m *WrongQuestionMapper) ToEntity(w *model.WrongQuestion) (*entity.WrongQuestion, error) {
	if w == nil {
		return nil, nil
	}
	q, err := decodeQuestion(w.Question)
	if err != nil {
		return nil, fmt.Errorf("wrong question %s: %w", w.Identifier, err)
	}
	return &entity.WrongQuestion{
		Question:             q,
		LastPlainExplanation: w.LastPlainExplanation,
		LastWrongAt:          w.LastWrongAt,
		WrongCount:           w.WrongCount,
	}, nil
}

func (m *WrongQuestionMapper) ToModel(w *entity.WrongQuestion) (*model.WrongQuestion, error) {
	if w == nil {
		return nil, nil
	}
	raw, err := json.Marshal(w.Question)
	if err != nil {
		return nil, err
	}
	return &model.WrongQuestion{
		Identifier:           w.Question.Identifier,
		QuestionType:         string(w.Question.Type),
		Question:             datatypes.JSON(raw),
		LastPlainExplanation: w.LastPlainExplanation,
		LastWrongAt:          w.LastWrongAt,
		WrongCount:           w.WrongCount,
	}, nil
}

func (m *WrongQuestionMapper) ToEntities(rows []*model.WrongQuestion) ([]*entity.WrongQuestion, error) {
	entities := make([]*entity.WrongQuestion, 0, len(rows))
	for _, w := range rows {
		e, err := m.ToEntity(w)
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	return entities, nil
}
