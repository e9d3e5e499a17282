package service

import (
	"context"
	"sort"

	"ai-quiz-runner/internal/dto"
	"ai-quiz-runner/internal/entity"
	"ai-quiz-runner/internal/pkg/logger"
	"ai-quiz-runner/internal/repository/specification"
	"ai-quiz-runner/internal/repository/unitofwork"
	"ai-quiz-runner/pkg/question"
)

const (
	wrongBookModule       = "WRONG_BOOK"
	DefaultWrongPageSize  = 20
	MaxWrongPageSize      = 200
	weakestTopicsReported = 5
)

var wrongSortColumns = map[string]string{
	"last_wrong_at": "last_wrong_at",
	"wrong_count":   "wrong_count",
	"identifier":    "identifier",
}

type IWrongQuestionService interface {
	List(ctx context.Context, q dto.WrongQuestionQuery) (*dto.WrongQuestionPageResponse, error)
	Stats(ctx context.Context) (*dto.WrongStatsResponse, error)
	Get(ctx context.Context, identifier string) (*dto.WrongQuestionResponse, error)
	Delete(ctx context.Context, identifier string) error
	Clear(ctx context.Context) (*dto.ClearWrongQuestionsResponse, error)
}

type wrongQuestionService struct {
	uowFactory unitofwork.RepositoryFactory
	logger     logger.ILogger
}

func NewWrongQuestionService(uowFactory unitofwork.RepositoryFactory, log logger.ILogger) IWrongQuestionService {
	return &wrongQuestionService{uowFactory: uowFactory, logger: log}
}

func (s *wrongQuestionService) List(ctx context.Context, q dto.WrongQuestionQuery) (*dto.WrongQuestionPageResponse, error) {
	page, pageSize := clampPage(q.Page, q.PageSize, DefaultWrongPageSize, MaxWrongPageSize)

	sortBy := q.SortBy
	if sortBy == "" {
		sortBy = "last_wrong_at"
	}
	column, ok := wrongSortColumns[sortBy]
	if !ok {
		return nil, badRequest("invalid sort_by: %s", q.SortBy)
	}
	var desc bool
	switch q.Order {
	case "", "desc":
		desc = true
	case "asc":
		desc = false
	default:
		return nil, badRequest("invalid order: %s", q.Order)
	}

	var filters []specification.Specification
	if q.QuestionType != "" {
		t, ok := question.ParseType(q.QuestionType)
		if !ok {
			return nil, badRequest("invalid question type: %s", q.QuestionType)
		}
		filters = append(filters, specification.ByQuestionType{Type: string(t)})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.WrongQuestionRepository()

	total, err := repo.Count(ctx, filters...)
	if err != nil {
		return nil, err
	}
	rows, err := repo.FindAll(ctx, append(filters,
		specification.OrderBy{Field: column, Desc: desc},
		specification.OrderBy{Field: "identifier"},
		specification.Pagination{Limit: pageSize, Offset: (page - 1) * pageSize},
	)...)
	if err != nil {
		return nil, err
	}

	items := make([]dto.WrongQuestionResponse, 0, len(rows))
	for _, w := range rows {
		items = append(items, toWrongQuestionResponse(w))
	}
	return &dto.WrongQuestionPageResponse{
		Questions:  items,
		Pagination: dto.NewPagination(total, page, pageSize),
	}, nil
}

// Stats counts entries per type and per topic; topics are the identifier
// prefix before the first "-".
func (s *wrongQuestionService) Stats(ctx context.Context) (*dto.WrongStatsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	rows, err := uow.WrongQuestionRepository().FindAll(ctx)
	if err != nil {
		return nil, err
	}

	stats := entity.WrongStats{TotalWrong: len(rows), ByType: map[question.Type]int{}}
	topics := map[string]int{}
	for _, w := range rows {
		stats.ByType[w.Question.Type]++
		topics[w.Question.Topic()]++
	}
	for topic, n := range topics {
		stats.WeakestTopics = append(stats.WeakestTopics, entity.TopicCount{Topic: topic, Count: n})
	}
	sort.Slice(stats.WeakestTopics, func(i, j int) bool {
		a, b := stats.WeakestTopics[i], stats.WeakestTopics[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Topic < b.Topic
	})
	if len(stats.WeakestTopics) > weakestTopicsReported {
		stats.WeakestTopics = stats.WeakestTopics[:weakestTopicsReported]
	}

	res := &dto.WrongStatsResponse{
		TotalWrong:    stats.TotalWrong,
		ByType:        make(map[string]int, len(stats.ByType)),
		WeakestTopics: make([]dto.TopicCount, 0, len(stats.WeakestTopics)),
	}
	for t, n := range stats.ByType {
		res.ByType[string(t)] = n
	}
	for _, tc := range stats.WeakestTopics {
		res.WeakestTopics = append(res.WeakestTopics, dto.TopicCount{Topic: tc.Topic, Count: tc.Count})
	}
	return res, nil
}

func (s *wrongQuestionService) Get(ctx context.Context, identifier string) (*dto.WrongQuestionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	w, err := uow.WrongQuestionRepository().FindOne(ctx, specification.ByIdentifier{Identifier: identifier})
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, ErrWrongQuestionMissing
	}
	res := toWrongQuestionResponse(w)
	return &res, nil
}

func (s *wrongQuestionService) Delete(ctx context.Context, identifier string) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	deleted, err := uow.WrongQuestionRepository().Delete(ctx, identifier)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrWrongQuestionMissing
	}
	return nil
}

func (s *wrongQuestionService) Clear(ctx context.Context) (*dto.ClearWrongQuestionsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	n, err := uow.WrongQuestionRepository().DeleteAll(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Info(wrongBookModule, "Wrong-question book cleared", map[string]interface{}{"deleted": n})
	return &dto.ClearWrongQuestionsResponse{DeletedCount: n}, nil
}

func toWrongQuestionResponse(w *entity.WrongQuestion) dto.WrongQuestionResponse {
	return dto.WrongQuestionResponse{
		Question:             w.Question,
		LastPlainExplanation: w.LastPlainExplanation,
		LastWrongAt:          w.LastWrongAt,
		WrongCount:           w.WrongCount,
	}
}
