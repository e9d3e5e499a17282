package specification

import (
	"time"

	"gorm.io/gorm"
)

type BySessionID struct {
	SessionID string
}

func (s BySessionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionID)
}

type ByQuestionType struct {
	Type string
}

func (s ByQuestionType) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("question_type = ?", s.Type)
}

// ByQuestionTypes matches any of the given types; an empty list matches all.
type ByQuestionTypes struct {
	Types []string
}

func (s ByQuestionTypes) Apply(db *gorm.DB) *gorm.DB {
	if len(s.Types) == 0 {
		return db
	}
	return db.Where("question_type IN ?", s.Types)
}

type ByCorrectness struct {
	IsCorrect bool
}

func (s ByCorrectness) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_correct = ?", s.IsCorrect)
}

// AnsweredBetween bounds answered_at inclusively; nil ends are open.
type AnsweredBetween struct {
	From *time.Time
	To   *time.Time
}

func (s AnsweredBetween) Apply(db *gorm.DB) *gorm.DB {
	if s.From != nil {
		db = db.Where("answered_at >= ?", s.From.UTC())
	}
	if s.To != nil {
		db = db.Where("answered_at <= ?", s.To.UTC())
	}
	return db
}

type ByIdentifier struct {
	Identifier string
}

func (s ByIdentifier) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("identifier = ?", s.Identifier)
}
