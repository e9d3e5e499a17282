package implementation

import (
	"context"
	"errors"

	"ai-quiz-runner/internal/entity"
	"ai-quiz-runner/internal/mapper"
	"ai-quiz-runner/internal/model"
	"ai-quiz-runner/internal/repository/contract"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type aiConfigRepository struct {
	db     *gorm.DB
	mapper *mapper.AiConfigMapper
}

// NewAiConfigRepository creates a new AI config repository
func NewAiConfigRepository(db *gorm.DB) contract.IAiConfigRepository {
	return &aiConfigRepository{db: db, mapper: mapper.NewAiConfigMapper()}
}

func (r *aiConfigRepository) Find(ctx context.Context) (*entity.AiConfig, error) {
	var m model.AiConfig
	if err := r.db.WithContext(ctx).Where("id = ?", model.AiConfigSingletonId).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *aiConfigRepository) Save(ctx context.Context, config *entity.AiConfig) error {
	m := r.mapper.ToModel(config)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"url", "api_key", "model", "timeout_seconds", "dev_document", "enable_ai_grading", "updated_at"}),
	}).Create(m).Error
	if err != nil {
		return err
	}
	*config = *r.mapper.ToEntity(m)
	return nil
}

func (r *aiConfigRepository) Delete(ctx context.Context) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", model.AiConfigSingletonId).Delete(&model.AiConfig{})
	return res.RowsAffected > 0, res.Error
}
