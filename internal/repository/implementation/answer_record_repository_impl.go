package implementation

import (
	"context"

	"ai-quiz-runner/internal/entity"
	"ai-quiz-runner/internal/mapper"
	"ai-quiz-runner/internal/model"
	"ai-quiz-runner/internal/repository/contract"
	"ai-quiz-runner/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AnswerRecordRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AnswerRecordMapper
}

func NewAnswerRecordRepository(db *gorm.DB) contract.AnswerRecordRepository {
	return &AnswerRecordRepositoryImpl{
		db:     db,
		mapper: mapper.NewAnswerRecordMapper(),
	}
}

func (r *AnswerRecordRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *AnswerRecordRepositoryImpl) Create(ctx context.Context, record *entity.AnswerRecord) error {
	if record.Id == uuid.Nil {
		record.Id = uuid.New()
	}
	m, err := r.mapper.ToModel(record)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *AnswerRecordRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AnswerRecord, error) {
	var models []*model.AnswerRecord
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models)
}

func (r *AnswerRecordRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.AnswerRecord{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *AnswerRecordRepositoryImpl) DeleteAll(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.AnswerRecord{})
	return res.RowsAffected, res.Error
}
