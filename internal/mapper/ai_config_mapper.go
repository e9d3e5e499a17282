package mapper

import (
	"ai-quiz-runner/internal/entity"
	"ai-quiz-runner/internal/model"
)

type AiConfigMapper struct{}

func NewAiConfigMapper() *AiConfigMapper {
	return &AiConfigMapper{}
}

func (m *AiConfigMapper) ToEntity(c *model.AiConfig) *entity.AiConfig {
	if c == nil {
		return nil
	}
	return &entity.AiConfig{
		Url:             c.Url,
		Key:             c.ApiKey,
		Model:           c.Model,
		TimeoutSeconds:  c.TimeoutSeconds,
		DevDocument:     c.DevDocument,
		EnableAiGrading: c.EnableAiGrading,
		UpdatedAt:       c.UpdatedAt,
	}
}

func (m *AiConfigMapper) ToModel(c *entity.AiConfig) *model.AiConfig {
	if c == nil {
		return nil
	}
	timeout := c.TimeoutSeconds
	if timeout <= 0 {
		timeout = entity.DefaultAiTimeoutSeconds
	}
	return &model.AiConfig{
		Id:              model.AiConfigSingletonId,
		Url:             c.Url,
		ApiKey:          c.Key,
		Model:           c.Model,
		TimeoutSeconds:  timeout,
		DevDocument:     c.DevDocument,
		EnableAiGrading: c.EnableAiGrading,
		UpdatedAt:       c.UpdatedAt,
	}
}
