package service

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sort"
	"sync"
	"time"

	"ai-quiz-runner/internal/dto"
	"ai-quiz-runner/internal/pkg/logger"
	"ai-quiz-runner/internal/repository/contract"
	"ai-quiz-runner/internal/repository/specification"
	"ai-quiz-runner/internal/repository/unitofwork"
	"ai-quiz-runner/pkg/events"
	"ai-quiz-runner/pkg/generator"
	"ai-quiz-runner/pkg/grading"
	"ai-quiz-runner/pkg/question"
	"ai-quiz-runner/pkg/store"

	"github.com/google/uuid"
)

const (
	quizModule   = "QUIZ"
	defaultCount = 10

	SourceAI        = "ai"
	SourceLocal     = "local"
	SourceWrongBook = "wrong_book"
)

type IQuizService interface {
	Generate(ctx context.Context, req *dto.GenerateQuestionsRequest) (*dto.GenerateQuestionsResponse, error)
	Practice(ctx context.Context, req *dto.PracticeRequest) (*dto.GenerateQuestionsResponse, error)
	NextQuestion(ctx context.Context, req *dto.SessionRequest) (*dto.NextQuestionResponse, error)
	SubmitAnswer(ctx context.Context, req *dto.SubmitAnswerRequest) (*dto.SubmitAnswerResponse, error)
	Status(ctx context.Context, sessionID string) (*dto.SessionStatusResponse, error)
}

type quizService struct {
	// mu serialises read-modify-write cycles on live sessions.
	mu               sync.Mutex
	sessions         contract.SessionRepository
	uowFactory       unitofwork.RepositoryFactory
	knowledge        IKnowledgeService
	aiConfig         IAiConfigService
	publisherService IPublisherService
	events           EventPublisher
	logger           logger.ILogger
	now              func() time.Time
}

func NewQuizService(
	sessions contract.SessionRepository,
	uowFactory unitofwork.RepositoryFactory,
	knowledgeService IKnowledgeService,
	aiConfigService IAiConfigService,
	publisherService IPublisherService,
	eventPublisher EventPublisher,
	log logger.ILogger,
) IQuizService {
	return &quizService{
		sessions:         sessions,
		uowFactory:       uowFactory,
		knowledge:        knowledgeService,
		aiConfig:         aiConfigService,
		publisherService: publisherService,
		events:           eventPublisher,
		logger:           log,
		now:              time.Now,
	}
}

func (s *quizService) Generate(ctx context.Context, req *dto.GenerateQuestionsRequest) (*dto.GenerateQuestionsResponse, error) {
	entries, err := s.knowledge.Load(ctx, req.Filepath)
	if err != nil {
		return nil, err
	}

	types := question.ParseTypes(req.Types)
	if len(types) == 0 {
		types = question.AllTypes
	}
	count := req.Count
	if count <= 0 {
		count = defaultCount
	}
	mode := req.Mode
	if mode == "" {
		mode = store.ModeSequential
	}

	var qs []question.Question
	source := SourceLocal

	writer, err := s.aiConfig.Writer(ctx)
	if err != nil {
		s.logger.Warn(quizModule, "AI writer unavailable, using local generator", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if writer != nil {
		aiQuestions, err := writer.Generate(ctx, entries, count, types)
		if err != nil {
			s.logger.Warn(quizModule, "AI generation failed, using local generator", map[string]interface{}{
				"error": err.Error(),
			})
		} else if len(aiQuestions) > 0 {
			qs = generator.Arrange(aiQuestions, mode, count, seededRand(req.Seed))
			source = SourceAI
		}
	}
	if len(qs) == 0 {
		qs = generator.Generate(entries, generator.Options{
			Types: types,
			Count: count,
			Mode:  mode,
			Seed:  req.Seed,
		})
	}
	if len(qs) == 0 {
		return nil, ErrNoQuestions
	}

	session := &store.Session{
		ID:            uuid.NewString(),
		Questions:     qs,
		QuestionTypes: types,
		KnowledgeFile: req.Filepath,
		Mode:          mode,
		CreatedAt:     s.now().UTC(),
	}
	return s.start(ctx, session, source)
}

func (s *quizService) Practice(ctx context.Context, req *dto.PracticeRequest) (*dto.GenerateQuestionsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.WrongQuestionRepository()

	total, err := repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return nil, ErrNoWrongQuestions
	}

	types := question.ParseTypes(req.QuestionTypes)
	typeNames := make([]string, len(types))
	for i, t := range types {
		typeNames[i] = string(t)
	}
	if len(req.QuestionTypes) > 0 && len(types) == 0 {
		return nil, ErrNoMatchingWrong
	}

	wrong, err := repo.FindAll(ctx,
		specification.ByQuestionTypes{Types: typeNames},
		specification.OrderBy{Field: "last_wrong_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}
	if len(wrong) == 0 {
		return nil, ErrNoMatchingWrong
	}

	qs := make([]question.Question, len(wrong))
	for i, w := range wrong {
		qs[i] = w.Question
	}
	mode := req.Mode
	if mode == "" {
		mode = store.ModeRandom
	}
	qs = generator.Arrange(qs, mode, req.Count, nil)

	session := &store.Session{
		ID:            uuid.NewString(),
		Questions:     qs,
		QuestionTypes: types,
		Mode:          store.ModePractice,
		CreatedAt:     s.now().UTC(),
	}
	return s.start(ctx, session, SourceWrongBook)
}

func (s *quizService) start(ctx context.Context, session *store.Session, source string) (*dto.GenerateQuestionsResponse, error) {
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info(quizModule, "Session created", map[string]interface{}{
		"session_id": session.ID,
		"total":      session.Total(),
		"mode":       session.Mode,
		"source":     source,
	})
	emitEvent(ctx, s.events, s.logger, events.SessionStarted(session.ID, session.Mode, session.Total(), source))

	return &dto.GenerateQuestionsResponse{
		SessionId:     session.ID,
		TotalCount:    session.Total(),
		QuestionTypes: presentTypes(session.Questions),
		Mode:          session.Mode,
		Source:        source,
	}, nil
}

func (s *quizService) load(ctx context.Context, sessionID string) (*store.Session, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *quizService) NextQuestion(ctx context.Context, req *dto.SessionRequest) (*dto.NextQuestionResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.load(ctx, req.SessionId)
	if err != nil {
		return nil, err
	}

	if req.Skip && !session.Finished() {
		skipped, _ := session.Current()
		session.Advance()
		if err := s.sessions.Save(ctx, session); err != nil {
			return nil, err
		}
		s.logger.Debug(quizModule, "Question skipped", map[string]interface{}{
			"session_id": session.ID,
			"identifier": skipped.Identifier,
		})
		if session.Finished() {
			s.emitFinished(ctx, session)
		}
	}

	if session.Finished() {
		correct := session.CorrectCount
		return &dto.NextQuestionResponse{
			Finished:     true,
			TotalCount:   session.Total(),
			CorrectCount: &correct,
		}, nil
	}

	q, _ := session.Current()
	position := session.CurrentIndex + 1
	nextAvailable := position < session.Total()
	return &dto.NextQuestionResponse{
		Finished:      false,
		Question:      &q,
		CurrentIndex:  position,
		TotalCount:    session.Total(),
		NextAvailable: &nextAvailable,
	}, nil
}

func (s *quizService) SubmitAnswer(ctx context.Context, req *dto.SubmitAnswerRequest) (*dto.SubmitAnswerResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.load(ctx, req.SessionId)
	if err != nil {
		return nil, err
	}
	q, ok := session.Current()
	if !ok {
		return nil, ErrSessionFinished
	}

	result := s.grade(ctx, q, req.Answer)
	session.Record(result.IsCorrect)
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	s.publishAnswer(ctx, session, q, req.Answer, result)
	emitEvent(ctx, s.events, s.logger, events.AnswerRecorded(session.ID, q.Identifier, result.IsCorrect))
	if session.Finished() {
		s.emitFinished(ctx, session)
	}

	return &dto.SubmitAnswerResponse{
		IsCorrect:     result.IsCorrect,
		Explanation:   result.Explanation,
		CorrectAnswer: q.CorrectAnswer(),
		NextAvailable: !session.Finished(),
	}, nil
}

// grade uses the AI grader for cloze and QA when it is enabled and keyword
// matching otherwise or when the model fails.
func (s *quizService) grade(ctx context.Context, q question.Question, answer string) grading.Result {
	if q.Type != question.Cloze && q.Type != question.QA {
		return grading.Grade(q, answer)
	}
	grader, err := s.aiConfig.Grader(ctx)
	if err != nil {
		s.logger.Warn(quizModule, "AI grader unavailable, using keyword grading", map[string]interface{}{
			"error": err.Error(),
		})
	}
	result, err := grader.Grade(ctx, q, answer)
	if err != nil && !errors.Is(err, grading.ErrNotGradeable) {
		s.logger.Warn(quizModule, "AI grading failed, using keyword grading", map[string]interface{}{
			"identifier": q.Identifier,
			"error":      err.Error(),
		})
	}
	return result
}

// publishAnswer hands the graded answer to the consumer, which writes the
// history row and updates the wrong-question book.
func (s *quizService) publishAnswer(ctx context.Context, session *store.Session, q question.Question, answer string, result grading.Result) {
	payload, err := json.Marshal(dto.AnswerRecordedMessage{
		SessionId:        session.ID,
		Question:         q,
		UserAnswer:       answer,
		IsCorrect:        result.IsCorrect,
		PlainExplanation: result.Explanation,
		KnowledgeFile:    session.KnowledgeFile,
		Mode:             session.Mode,
		AnsweredAt:       s.now().UTC(),
	})
	if err == nil {
		err = s.publisherService.Publish(ctx, payload)
	}
	if err != nil {
		s.logger.Error(quizModule, "Failed to publish recorded answer", map[string]interface{}{
			"session_id": session.ID,
			"identifier": q.Identifier,
			"error":      err.Error(),
		})
	}
}

func (s *quizService) emitFinished(ctx context.Context, session *store.Session) {
	s.logger.Info(quizModule, "Session finished", map[string]interface{}{
		"session_id": session.ID,
		"answered":   session.AnsweredCount,
		"correct":    session.CorrectCount,
		"total":      session.Total(),
	})
	emitEvent(ctx, s.events, s.logger,
		events.SessionFinished(session.ID, session.AnsweredCount, session.CorrectCount, session.Total()))
}

func (s *quizService) Status(ctx context.Context, sessionID string) (*dto.SessionStatusResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return &dto.SessionStatusResponse{
		SessionId:     session.ID,
		CurrentIndex:  session.CurrentIndex,
		AnsweredCount: session.AnsweredCount,
		TotalCount:    session.Total(),
		CorrectCount:  session.CorrectCount,
		Finished:      session.Finished(),
	}, nil
}

func presentTypes(qs []question.Question) []string {
	seen := map[question.Type]bool{}
	var out []string
	for _, q := range qs {
		if !seen[q.Type] {
			seen[q.Type] = true
			out = append(out, string(q.Type))
		}
	}
	sort.Strings(out)
	return out
}

func seededRand(seed *int64) *rand.Rand {
	if seed == nil {
		return nil
	}
	return rand.New(rand.NewSource(*seed))
}
