package model

import (
	"time"

	"gorm.io/datatypes"
)

type WrongQuestion struct {
	Identifier           string         `gorm:"type:varchar(255);primaryKey"`
	QuestionType         string         `gorm:"type:varchar(20);not null;index"`
	Question             datatypes.JSON `gorm:"not null"`
	LastPlainExplanation string         `gorm:"type:text"`
	LastWrongAt          time.Time      `gorm:"not null;index"`
	WrongCount           int            `gorm:"not null;default:1;index"`
	CreatedAt            time.Time      `gorm:"autoCreateTime"`
	UpdatedAt            time.Time      `gorm:"autoUpdateTime"`
}

func (WrongQuestion) TableName() string {
	return "wrong_questions"
}
