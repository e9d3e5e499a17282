package model

import "time"

// AiConfigSingletonId is the primary key of the only ai_configs row.
const AiConfigSingletonId = 1

// AiConfig stores the remote model endpoint used for question generation
// and, when enabled, for grading open answers.
type AiConfig struct {
	Id              uint      `gorm:"primaryKey;autoIncrement:false"`
	Url             string    `gorm:"type:varchar(500);not null"`
	ApiKey          string    `gorm:"type:text;not null"`
	Model           string    `gorm:"type:varchar(200);not null"`
	TimeoutSeconds  float64   `gorm:"not null;default:10"`
	DevDocument     string    `gorm:"type:text"`
	EnableAiGrading bool      `gorm:"not null;default:false"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`
}

func (AiConfig) TableName() string {
	return "ai_configs"
}
