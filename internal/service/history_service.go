package service

import (
	"context"
	"sort"

	"ai-quiz-runner/internal/dto"
	"ai-quiz-runner/internal/entity"
	"ai-quiz-runner/internal/repository/specification"
	"ai-quiz-runner/internal/repository/unitofwork"
	"ai-quiz-runner/pkg/question"
)

const (
	DefaultHistoryPageSize = 20
	MaxHistoryPageSize     = 200
	DefaultSessionLimit    = 20
	MaxSessionLimit        = 100
)

type IHistoryService interface {
	List(ctx context.Context, q dto.HistoryQuery) (*dto.HistoryPageResponse, error)
	Sessions(ctx context.Context, limit int) ([]dto.SessionSummaryResponse, error)
	Clear(ctx context.Context) (int64, error)
}

type historyService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewHistoryService(uowFactory unitofwork.RepositoryFactory) IHistoryService {
	return &historyService{uowFactory: uowFactory}
}

func (s *historyService) List(ctx context.Context, q dto.HistoryQuery) (*dto.HistoryPageResponse, error) {
	page, pageSize := clampPage(q.Page, q.PageSize, DefaultHistoryPageSize, MaxHistoryPageSize)

	var filters []specification.Specification
	if q.SessionId != "" {
		filters = append(filters, specification.BySessionID{SessionID: q.SessionId})
	}
	if q.QuestionType != "" {
		t, ok := question.ParseType(q.QuestionType)
		if !ok {
			return nil, badRequest("invalid question type: %s", q.QuestionType)
		}
		filters = append(filters, specification.ByQuestionType{Type: string(t)})
	}
	if q.IsCorrect != nil {
		filters = append(filters, specification.ByCorrectness{IsCorrect: *q.IsCorrect})
	}
	if q.DateFrom != nil || q.DateTo != nil {
		filters = append(filters, specification.AnsweredBetween{From: q.DateFrom, To: q.DateTo})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.AnswerRecordRepository()

	total, err := repo.Count(ctx, filters...)
	if err != nil {
		return nil, err
	}

	records, err := repo.FindAll(ctx, append(filters,
		specification.OrderBy{Field: "answered_at", Desc: true},
		specification.Pagination{Limit: pageSize, Offset: (page - 1) * pageSize},
	)...)
	if err != nil {
		return nil, err
	}

	entries := make([]dto.AnswerRecordResponse, 0, len(records))
	for _, r := range records {
		entries = append(entries, toAnswerRecordResponse(r))
	}
	return &dto.HistoryPageResponse{
		Entries:    entries,
		Pagination: dto.NewPagination(total, page, pageSize),
	}, nil
}

// Sessions summarises the most recently active sessions, newest first.
func (s *historyService) Sessions(ctx context.Context, limit int) ([]dto.SessionSummaryResponse, error) {
	if limit <= 0 {
		limit = DefaultSessionLimit
	}
	if limit > MaxSessionLimit {
		limit = MaxSessionLimit
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	records, err := uow.AnswerRecordRepository().FindAll(ctx, specification.OrderBy{Field: "answered_at"})
	if err != nil {
		return nil, err
	}

	byID := map[string]*entity.SessionSummary{}
	var order []*entity.SessionSummary
	for _, r := range records {
		sum, ok := byID[r.SessionId]
		if !ok {
			sum = &entity.SessionSummary{
				SessionId:     r.SessionId,
				StartedAt:     r.AnsweredAt,
				KnowledgeFile: r.KnowledgeFile,
				Mode:          r.Mode,
			}
			byID[r.SessionId] = sum
			order = append(order, sum)
		}
		sum.LatestAt = r.AnsweredAt
		sum.TotalAnswers++
		if r.IsCorrect {
			sum.CorrectAnswers++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return order[i].LatestAt.After(order[j].LatestAt)
	})
	if len(order) > limit {
		order = order[:limit]
	}

	out := make([]dto.SessionSummaryResponse, 0, len(order))
	for _, sum := range order {
		out = append(out, dto.SessionSummaryResponse{
			SessionId:      sum.SessionId,
			StartedAt:      sum.StartedAt,
			LatestAt:       sum.LatestAt,
			TotalAnswers:   sum.TotalAnswers,
			CorrectAnswers: sum.CorrectAnswers,
			Accuracy:       sum.Accuracy(),
			KnowledgeFile:  sum.KnowledgeFile,
			Mode:           sum.Mode,
		})
	}
	return out, nil
}

func (s *historyService) Clear(ctx context.Context) (int64, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.AnswerRecordRepository().DeleteAll(ctx)
}

func toAnswerRecordResponse(r *entity.AnswerRecord) dto.AnswerRecordResponse {
	res := dto.AnswerRecordResponse{
		Id:               r.Id.String(),
		Timestamp:        r.AnsweredAt,
		SessionId:        r.SessionId,
		Question:         r.Question,
		UserAnswer:       r.UserAnswer,
		IsCorrect:        r.IsCorrect,
		PlainExplanation: r.PlainExplanation,
	}
	if r.KnowledgeFile != "" || r.Mode != "" {
		res.SessionContext = &dto.SessionContext{KnowledgeFile: r.KnowledgeFile, Mode: r.Mode}
	}
	return res
}

func clampPage(page, pageSize, def, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = def
	}
	if pageSize > limit {
		pageSize = limit
	}
	return page, pageSize
}
