package service

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"ai-quiz-runner/internal/config"
	"ai-quiz-runner/internal/dto"
	"ai-quiz-runner/internal/model"
	"ai-quiz-runner/internal/pkg/logger"
	"ai-quiz-runner/internal/repository/memory"
	"ai-quiz-runner/internal/repository/unitofwork"
	"ai-quiz-runner/pkg/database"
	"ai-quiz-runner/pkg/events"
	"ai-quiz-runner/pkg/llm"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const serviceKnowledge = `TCP
TCP delivers a reliable ordered byte stream. A three-way handshake opens every connection.

UDP
UDP sends independent datagrams without delivery guarantees. It has no congestion control at all.

DNS
DNS resolves host names into IP addresses. Resolvers cache answers for the record TTL.
`

const aiReply = `[
  {"id": "ai-1", "component": "TCP", "type": "single", "prompt": "Which protocol is reliable?", "options": ["UDP", "TCP"], "answer": 1},
  {"id": "ai-2", "component": "UDP", "type": "cloze", "prompt": "UDP sends ____", "answer": "datagrams"}
]`

type scriptedLLM struct {
	reply string
	err   error
}

func (p *scriptedLLM) Chat(context.Context, []llm.Message, ...llm.Option) (string, error) {
	return p.reply, p.err
}

func (p *scriptedLLM) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, nil, opts...)
}

type capturedPublisher struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (c *capturedPublisher) Publish(_ context.Context, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.payloads = append(c.payloads, payload)
	return nil
}

type capturedEvents struct {
	mu    sync.Mutex
	types []string
}

func (c *capturedEvents) Publish(_ context.Context, event events.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.types = append(c.types, event.EventType())
	return nil
}

type quizFixture struct {
	quiz      IQuizService
	aiConfig  IAiConfigService
	published *capturedPublisher
	events    *capturedEvents
	knowledge string
	provider  *scriptedLLM
}

func newQuizFixture(t *testing.T) *quizFixture {
	t.Helper()
	dir := t.TempDir()

	db, err := database.NewGormDB(database.GormConfig{Driver: database.DriverSQLite, DSN: filepath.Join(dir, "svc.db"), Quiet: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))
	uow := unitofwork.NewRepositoryFactory(db)
	log := logger.NewNopLogger()

	path := filepath.Join(dir, "network.txt")
	require.NoError(t, os.WriteFile(path, []byte(serviceKnowledge), 0o644))

	f := &quizFixture{
		published: &capturedPublisher{},
		events:    &capturedEvents{},
		knowledge: path,
		provider:  &scriptedLLM{reply: aiReply},
	}
	build := func(providerType, model, baseURL, apiKey string, timeout time.Duration) (llm.LLMProvider, error) {
		return f.provider, nil
	}
	f.aiConfig = NewAiConfigService(uow, config.AIConfig{}, build, log)
	f.quiz = NewQuizService(
		memory.NewSessionRepository(time.Hour),
		uow,
		NewKnowledgeService(filepath.Join(dir, "uploads"), 0, log),
		f.aiConfig,
		f.published,
		f.events,
		log,
	)
	return f
}

func TestQuizService_GenerateLocal(t *testing.T) {
	f := newQuizFixture(t)
	ctx := context.Background()
	seed := int64(11)

	res, err := f.quiz.Generate(ctx, &dto.GenerateQuestionsRequest{Filepath: f.knowledge, Types: []string{"cloze", "qa"}, Seed: &seed})
	require.NoError(t, err)
	assert.Equal(t, SourceLocal, res.Source)
	assert.Equal(t, "sequential", res.Mode)
	assert.LessOrEqual(t, res.TotalCount, defaultCount)
	assert.Subset(t, []string{"CLOZE", "QA"}, res.QuestionTypes)
	assert.Equal(t, []string{events.TypeSessionStarted}, f.events.types)
}

func TestQuizService_GenerateWithAI(t *testing.T) {
	f := newQuizFixture(t)
	ctx := context.Background()

	_, err := f.aiConfig.Save(ctx, &dto.AiConfigRequest{Url: "http://model.local/v1/chat/completions", Key: "k", Model: "m"})
	require.NoError(t, err)

	res, err := f.quiz.Generate(ctx, &dto.GenerateQuestionsRequest{Filepath: f.knowledge, Count: 5})
	require.NoError(t, err)
	assert.Equal(t, SourceAI, res.Source)
	assert.Equal(t, 2, res.TotalCount)

	next, err := f.quiz.NextQuestion(ctx, &dto.SessionRequest{SessionId: res.SessionId})
	require.NoError(t, err)
	assert.Equal(t, "ai-1", next.Question.Identifier)

	verdict, err := f.quiz.SubmitAnswer(ctx, &dto.SubmitAnswerRequest{SessionId: res.SessionId, Answer: "b"})
	require.NoError(t, err)
	assert.True(t, verdict.IsCorrect)
	assert.True(t, verdict.NextAvailable)

	verdict, err = f.quiz.SubmitAnswer(ctx, &dto.SubmitAnswerRequest{SessionId: res.SessionId, Answer: "packets"})
	require.NoError(t, err)
	assert.False(t, verdict.IsCorrect)
	assert.False(t, verdict.NextAvailable)
	assert.Equal(t, "datagrams", verdict.CorrectAnswer)

	_, err = f.quiz.SubmitAnswer(ctx, &dto.SubmitAnswerRequest{SessionId: res.SessionId, Answer: "x"})
	assert.ErrorIs(t, err, ErrSessionFinished)

	require.Len(t, f.published.payloads, 2)
	var msg dto.AnswerRecordedMessage
	require.NoError(t, json.Unmarshal(f.published.payloads[1], &msg))
	assert.Equal(t, "ai-2", msg.Question.Identifier)
	assert.Equal(t, "packets", msg.UserAnswer)
	assert.Equal(t, f.knowledge, msg.KnowledgeFile)
	assert.False(t, msg.IsCorrect)

	assert.Equal(t, []string{
		events.TypeSessionStarted,
		events.TypeAnswerRecorded,
		events.TypeAnswerRecorded,
		events.TypeSessionFinished,
	}, f.events.types)

	status, err := f.quiz.Status(ctx, res.SessionId)
	require.NoError(t, err)
	assert.Equal(t, 2, status.AnsweredCount)
	assert.Equal(t, 1, status.CorrectCount)
	assert.True(t, status.Finished)
}

func TestQuizService_AIFailureFallsBack(t *testing.T) {
	f := newQuizFixture(t)
	ctx := context.Background()
	f.provider.err = errors.New("connection refused")

	_, err := f.aiConfig.Save(ctx, &dto.AiConfigRequest{Url: "http://model.local/v1/chat/completions", Key: "k", Model: "m"})
	require.NoError(t, err)

	res, err := f.quiz.Generate(ctx, &dto.GenerateQuestionsRequest{Filepath: f.knowledge, Types: []string{"single"}})
	require.NoError(t, err)
	assert.Equal(t, SourceLocal, res.Source)
	assert.Equal(t, []string{"SINGLE_CHOICE"}, res.QuestionTypes)
}

func TestQuizService_AIGrading(t *testing.T) {
	tests := []struct {
		name        string
		reply       string
		err         error
		wantCorrect bool
		wantExp     string
	}{
		{
			name:        "model accepts a paraphrase",
			reply:       `{"is_correct": true, "score": 85, "explanation": "Packets carries the meaning here."}`,
			wantCorrect: true,
			wantExp:     "AI score 85/100",
		},
		{
			name:    "model failure uses keyword grading",
			err:     errors.New("connection refused"),
			wantExp: "Reference answer: datagrams",
		},
		{
			name:    "unparseable verdict uses keyword grading",
			reply:   "sure, looks fine",
			wantExp: "Reference answer: datagrams",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newQuizFixture(t)
			ctx := context.Background()

			saved, err := f.aiConfig.Save(ctx, &dto.AiConfigRequest{
				Url: "http://model.local/v1/chat/completions", Key: "k", Model: "m", EnableAiGrading: true,
			})
			require.NoError(t, err)
			assert.True(t, saved.EnableAiGrading)
			stored, err := f.aiConfig.Get(ctx)
			require.NoError(t, err)
			assert.True(t, stored.EnableAiGrading)

			res, err := f.quiz.Generate(ctx, &dto.GenerateQuestionsRequest{Filepath: f.knowledge, Count: 5})
			require.NoError(t, err)
			require.Equal(t, SourceAI, res.Source)

			f.provider.reply, f.provider.err = tt.reply, tt.err

			verdict, err := f.quiz.SubmitAnswer(ctx, &dto.SubmitAnswerRequest{SessionId: res.SessionId, Answer: "b"})
			require.NoError(t, err)
			assert.True(t, verdict.IsCorrect)

			verdict, err = f.quiz.SubmitAnswer(ctx, &dto.SubmitAnswerRequest{SessionId: res.SessionId, Answer: "packets"})
			require.NoError(t, err)
			assert.Equal(t, tt.wantCorrect, verdict.IsCorrect)
			assert.Contains(t, verdict.Explanation, tt.wantExp)
			assert.Equal(t, "datagrams", verdict.CorrectAnswer)

			var msg dto.AnswerRecordedMessage
			require.Len(t, f.published.payloads, 2)
			require.NoError(t, json.Unmarshal(f.published.payloads[1], &msg))
			assert.Equal(t, tt.wantCorrect, msg.IsCorrect)
		})
	}
}

func TestAiConfigService_GraderNeedsOptIn(t *testing.T) {
	f := newQuizFixture(t)
	ctx := context.Background()
	req := &dto.AiConfigRequest{Url: "http://model.local/v1/chat/completions", Key: "k", Model: "m"}

	g, err := f.aiConfig.Grader(ctx)
	require.NoError(t, err)
	assert.Nil(t, g)

	_, err = f.aiConfig.Save(ctx, req)
	require.NoError(t, err)
	g, err = f.aiConfig.Grader(ctx)
	require.NoError(t, err)
	assert.Nil(t, g)

	req.EnableAiGrading = true
	_, err = f.aiConfig.Save(ctx, req)
	require.NoError(t, err)
	g, err = f.aiConfig.Grader(ctx)
	require.NoError(t, err)
	assert.NotNil(t, g)
}

func TestQuizService_Skip(t *testing.T) {
	f := newQuizFixture(t)
	ctx := context.Background()
	seed := int64(2)

	res, err := f.quiz.Generate(ctx, &dto.GenerateQuestionsRequest{Filepath: f.knowledge, Types: []string{"single"}, Count: 2, Seed: &seed})
	require.NoError(t, err)
	require.Equal(t, 2, res.TotalCount)

	next, err := f.quiz.NextQuestion(ctx, &dto.SessionRequest{SessionId: res.SessionId, Skip: true})
	require.NoError(t, err)
	assert.Equal(t, 2, next.CurrentIndex)
	assert.False(t, *next.NextAvailable)

	next, err = f.quiz.NextQuestion(ctx, &dto.SessionRequest{SessionId: res.SessionId, Skip: true})
	require.NoError(t, err)
	assert.True(t, next.Finished)
	assert.Equal(t, 0, *next.CorrectCount)
	assert.Nil(t, next.Question)

	status, err := f.quiz.Status(ctx, res.SessionId)
	require.NoError(t, err)
	assert.Zero(t, status.AnsweredCount)
	assert.Empty(t, f.published.payloads)
}

func TestQuizService_Errors(t *testing.T) {
	f := newQuizFixture(t)
	ctx := context.Background()

	_, err := f.quiz.Generate(ctx, &dto.GenerateQuestionsRequest{Filepath: filepath.Join(t.TempDir(), "missing.md")})
	assert.ErrorIs(t, err, ErrKnowledgeNotFound)

	_, err = f.quiz.NextQuestion(ctx, &dto.SessionRequest{SessionId: "unknown"})
	var fe *fiber.Error
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, fiber.StatusNotFound, fe.Code)

	_, err = f.quiz.Practice(ctx, &dto.PracticeRequest{})
	assert.ErrorIs(t, err, ErrNoWrongQuestions)
}

func TestAiConfigService_Test(t *testing.T) {
	f := newQuizFixture(t)
	ctx := context.Background()
	req := &dto.AiConfigRequest{Url: "http://model.local/v1/chat/completions", Key: "k", Model: "m"}

	f.provider.reply = " OK "
	res := f.aiConfig.Test(ctx, req)
	assert.True(t, res.Ok)
	assert.Contains(t, res.Message, "OK")

	f.provider.err = errors.New("401 unauthorized")
	res = f.aiConfig.Test(ctx, req)
	assert.False(t, res.Ok)
	assert.Equal(t, "401 unauthorized", res.Message)

	assert.ErrorIs(t, f.aiConfig.Delete(ctx), ErrAiConfigMissing)
}
