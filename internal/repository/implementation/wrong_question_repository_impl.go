package implementation

import (
	"context"
	"errors"

	"ai-quiz-runner/internal/entity"
	"ai-quiz-runner/internal/mapper"
	"ai-quiz-runner/internal/model"
	"ai-quiz-runner/internal/repository/contract"
	"ai-quiz-runner/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WrongQuestionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.WrongQuestionMapper
}

func NewWrongQuestionRepository(db *gorm.DB) contract.WrongQuestionRepository {
	return &WrongQuestionRepositoryImpl{
		db:     db,
		mapper: mapper.NewWrongQuestionMapper(),
	}
}

func (r *WrongQuestionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *WrongQuestionRepositoryImpl) Save(ctx context.Context, wq *entity.WrongQuestion) error {
	m, err := r.mapper.ToModel(wq)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "identifier"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"question_type", "question", "last_plain_explanation", "last_wrong_at", "wrong_count", "updated_at",
		}),
	}).Create(m).Error
}

func (r *WrongQuestionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.WrongQuestion, error) {
	var m model.WrongQuestion
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m)
}

func (r *WrongQuestionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.WrongQuestion, error) {
	var models []*model.WrongQuestion
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models)
}

func (r *WrongQuestionRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.WrongQuestion{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *WrongQuestionRepositoryImpl) Delete(ctx context.Context, identifier string) (bool, error) {
	res := r.db.WithContext(ctx).Where("identifier = ?", identifier).Delete(&model.WrongQuestion{})
	return res.RowsAffected > 0, res.Error
}

func (r *WrongQuestionRepositoryImpl) DeleteAll(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&model.WrongQuestion{})
	return res.RowsAffected, res.Error
}
