package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AnswerRecord struct {
	Id                 uuid.UUID      `gorm:"type:uuid;primaryKey"`
	SessionId          string         `gorm:"type:varchar(64);not null;index"`
	QuestionIdentifier string         `gorm:"type:varchar(255);not null;index"`
	QuestionType       string         `gorm:"type:varchar(20);not null;index"`
	Question           datatypes.JSON `gorm:"not null"`
	UserAnswer         string         `gorm:"type:text"`
	IsCorrect          bool           `gorm:"not null;index"`
	PlainExplanation   string         `gorm:"type:text"`
	KnowledgeFile      string         `gorm:"type:varchar(500)"`
	Mode               string         `gorm:"type:varchar(40)"`
	AnsweredAt         time.Time      `gorm:"not null;index"`
	CreatedAt          time.Time      `gorm:"autoCreateTime"`
}

func (AnswerRecord) TableName() string {
	return "answer_records"
}

