package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ai-quiz-runner/internal/config"
	"ai-quiz-runner/internal/dto"
	"ai-quiz-runner/internal/entity"
	"ai-quiz-runner/internal/pkg/logger"
	"ai-quiz-runner/internal/repository/unitofwork"
	"ai-quiz-runner/pkg/generator"
	"ai-quiz-runner/pkg/grading"
	"ai-quiz-runner/pkg/llm"
	"ai-quiz-runner/pkg/llm/factory"
)

const aiConfigModule = "AI_CONFIG"

type IAiConfigService interface {
	// Get returns nil when nothing is stored.
	Get(ctx context.Context) (*dto.AiConfigResponse, error)
	Save(ctx context.Context, req *dto.AiConfigRequest) (*dto.AiConfigResponse, error)
	Delete(ctx context.Context) error
	Test(ctx context.Context, req *dto.AiConfigRequest) *dto.AiConfigTestResponse
	// Writer returns the AI question writer to try first, or nil when no
	// model is configured. The stored config wins over the environment default.
	Writer(ctx context.Context) (*generator.AIWriter, error)
	// Grader returns the open-answer grader, or nil unless the stored config
	// enables AI grading.
	Grader(ctx context.Context) (*grading.AIGrader, error)
}

// ProviderBuilder builds an LLM provider; tests swap it for a scripted one.
type ProviderBuilder func(providerType, model, baseURL, apiKey string, timeout time.Duration) (llm.LLMProvider, error)

type aiConfigService struct {
	uowFactory unitofwork.RepositoryFactory
	defaults   config.AIConfig
	build      ProviderBuilder
	logger     logger.ILogger
}

func NewAiConfigService(
	uowFactory unitofwork.RepositoryFactory,
	defaults config.AIConfig,
	build ProviderBuilder,
	log logger.ILogger,
) IAiConfigService {
	if build == nil {
		build = factory.NewLLMProvider
	}
	return &aiConfigService{
		uowFactory: uowFactory,
		defaults:   defaults,
		build:      build,
		logger:     log,
	}
}

func (s *aiConfigService) Get(ctx context.Context) (*dto.AiConfigResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	cfg, err := uow.AiConfigRepository().Find(ctx)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, nil
	}
	return toAiConfigResponse(cfg), nil
}

func (s *aiConfigService) Save(ctx context.Context, req *dto.AiConfigRequest) (*dto.AiConfigResponse, error) {
	cfg := &entity.AiConfig{
		Url:             strings.TrimSpace(req.Url),
		Key:             strings.TrimSpace(req.Key),
		Model:           strings.TrimSpace(req.Model),
		TimeoutSeconds:  req.Timeout,
		DevDocument:     req.DevDocument,
		EnableAiGrading: req.EnableAiGrading,
		UpdatedAt:       time.Now().UTC(),
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = entity.DefaultAiTimeoutSeconds
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.AiConfigRepository().Save(ctx, cfg); err != nil {
		return nil, err
	}

	s.logger.Info(aiConfigModule, "AI configuration saved", map[string]interface{}{
		"url":        cfg.Url,
		"model":      cfg.Model,
		"ai_grading": cfg.EnableAiGrading,
	})
	return toAiConfigResponse(cfg), nil
}

func (s *aiConfigService) Delete(ctx context.Context) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	deleted, err := uow.AiConfigRepository().Delete(ctx)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrAiConfigMissing
	}
	s.logger.Info(aiConfigModule, "AI configuration deleted", nil)
	return nil
}

// Test sends a one-line prompt to the endpoint. Failures are reported in the
// response body, never as an error.
func (s *aiConfigService) Test(ctx context.Context, req *dto.AiConfigRequest) *dto.AiConfigTestResponse {
	timeout := time.Duration(entity.DefaultAiTimeoutSeconds * float64(time.Second))
	if req.Timeout > 0 {
		timeout = time.Duration(req.Timeout * float64(time.Second))
	}

	provider, err := s.build(factory.ProviderOpenAI, req.Model, req.Url, req.Key, timeout)
	if err != nil {
		return &dto.AiConfigTestResponse{Ok: false, Message: err.Error()}
	}

	reply, err := provider.Chat(ctx, []llm.Message{
		{Role: llm.RoleUser, Content: "Reply with the single word OK."},
	}, llm.WithMaxTokens(8), llm.WithTemperature(0))
	if err != nil {
		s.logger.Warn(aiConfigModule, "AI connectivity test failed", map[string]interface{}{
			"url":   req.Url,
			"error": err.Error(),
		})
		return &dto.AiConfigTestResponse{Ok: false, Message: err.Error()}
	}
	return &dto.AiConfigTestResponse{
		Ok:      true,
		Message: fmt.Sprintf("connected, model replied: %s", truncate(strings.TrimSpace(reply), 60)),
	}
}

func (s *aiConfigService) Writer(ctx context.Context) (*generator.AIWriter, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	cfg, err := uow.AiConfigRepository().Find(ctx)
	if err != nil {
		return nil, err
	}

	if cfg != nil {
		provider, err := s.build(factory.ProviderOpenAI, cfg.Model, cfg.Url, cfg.Key, cfg.Timeout())
		if err != nil {
			return nil, err
		}
		return generator.NewAIWriter(provider, cfg.DevDocument), nil
	}

	if s.defaults.LLMProvider == "" {
		return nil, nil
	}
	provider, err := s.build(s.defaults.LLMProvider, s.defaults.LLMModel, s.defaults.BaseURL, "", s.defaults.Timeout)
	if err != nil {
		return nil, errors.Join(errors.New("default LLM provider unusable"), err)
	}
	return generator.NewAIWriter(provider, ""), nil
}

func (s *aiConfigService) Grader(ctx context.Context) (*grading.AIGrader, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	cfg, err := uow.AiConfigRepository().Find(ctx)
	if err != nil {
		return nil, err
	}
	if cfg == nil || !cfg.EnableAiGrading {
		return nil, nil
	}
	provider, err := s.build(factory.ProviderOpenAI, cfg.Model, cfg.Url, cfg.Key, cfg.Timeout())
	if err != nil {
		return nil, err
	}
	return grading.NewAIGrader(provider), nil
}

func toAiConfigResponse(cfg *entity.AiConfig) *dto.AiConfigResponse {
	return &dto.AiConfigResponse{
		Url:             cfg.Url,
		Key:             cfg.Key,
		Model:           cfg.Model,
		Timeout:         cfg.TimeoutSeconds,
		DevDocument:     cfg.DevDocument,
		EnableAiGrading: cfg.EnableAiGrading,
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
