package implementation

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"ai-quiz-runner/internal/entity"
	"ai-quiz-runner/internal/model"
	"ai-quiz-runner/internal/repository/specification"
	"ai-quiz-runner/pkg/database"
	"ai-quiz-runner/pkg/question"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewGormDB(database.GormConfig{
		Driver: database.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "repo.db"),
		Quiet:  true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(model.All()...))
	return db
}

func singleChoice(id string) question.Question {
	return question.Question{
		Identifier:     id,
		Type:           question.SingleChoice,
		Prompt:         "Which statement about TCP is correct?",
		Options:        []string{"It is connectionless.", "It is reliable."},
		CorrectOptions: []int{1},
		AnswerText:     "It is reliable.",
	}
}

func TestAnswerRecordRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewAnswerRecordRepository(newTestDB(t))

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	records := []*entity.AnswerRecord{
		{Id: uuid.New(), SessionId: "s1", Question: singleChoice("TCP-SC-1"), UserAnswer: "B", IsCorrect: true, AnsweredAt: base, Mode: "sequential"},
		{Id: uuid.New(), SessionId: "s1", Question: singleChoice("TCP-SC-2"), UserAnswer: "A", IsCorrect: false, AnsweredAt: base.Add(time.Minute)},
		{Id: uuid.New(), SessionId: "s2", Question: question.Question{Identifier: "DNS-QA-1", Type: question.QA, Prompt: "Explain DNS"}, UserAnswer: "names", AnsweredAt: base.Add(48 * time.Hour)},
	}
	for _, r := range records {
		require.NoError(t, repo.Create(ctx, r))
	}

	tests := []struct {
		name  string
		specs []specification.Specification
		want  []string
	}{
		{"all newest first", []specification.Specification{specification.OrderBy{Field: "answered_at", Desc: true}}, []string{"DNS-QA-1", "TCP-SC-2", "TCP-SC-1"}},
		{"by session", []specification.Specification{specification.BySessionID{SessionID: "s1"}, specification.OrderBy{Field: "answered_at"}}, []string{"TCP-SC-1", "TCP-SC-2"}},
		{"by type", []specification.Specification{specification.ByQuestionType{Type: string(question.QA)}}, []string{"DNS-QA-1"}},
		{"correct only", []specification.Specification{specification.ByCorrectness{IsCorrect: true}}, []string{"TCP-SC-1"}},
		{"date window", []specification.Specification{specification.AnsweredBetween{From: ptr(base.Add(time.Second)), To: ptr(base.Add(time.Hour))}}, []string{"TCP-SC-2"}},
		{"paged", []specification.Specification{specification.OrderBy{Field: "answered_at"}, specification.Pagination{Limit: 1, Offset: 1}}, []string{"TCP-SC-2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.FindAll(ctx, tt.specs...)
			require.NoError(t, err)
			ids := make([]string, len(got))
			for i, r := range got {
				ids[i] = r.Question.Identifier
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	got, err := repo.FindAll(ctx, specification.BySessionID{SessionID: "s1"}, specification.ByCorrectness{IsCorrect: true})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []int{1}, got[0].Question.CorrectOptions)
	assert.Equal(t, "sequential", got[0].Mode)
	assert.True(t, got[0].AnsweredAt.Equal(base))

	n, err := repo.Count(ctx, specification.BySessionID{SessionID: "s1"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	deleted, err := repo.DeleteAll(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, deleted)
	n, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestWrongQuestionRepository_Upsert(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewWrongQuestionRepository(db)

	first := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Save(ctx, &entity.WrongQuestion{
		Question: singleChoice("TCP-SC-1"), LastPlainExplanation: "first miss", LastWrongAt: first, WrongCount: 1,
	}))

	var before model.WrongQuestion
	require.NoError(t, db.First(&before, "identifier = ?", "TCP-SC-1").Error)

	require.NoError(t, repo.Save(ctx, &entity.WrongQuestion{
		Question: singleChoice("TCP-SC-1"), LastPlainExplanation: "second miss", LastWrongAt: first.Add(time.Hour), WrongCount: 2,
	}))

	got, err := repo.FindOne(ctx, specification.ByIdentifier{Identifier: "TCP-SC-1"})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.WrongCount)
	assert.Equal(t, "second miss", got.LastPlainExplanation)
	assert.True(t, got.LastWrongAt.Equal(first.Add(time.Hour)))

	var after model.WrongQuestion
	require.NoError(t, db.First(&after, "identifier = ?", "TCP-SC-1").Error)
	assert.True(t, before.CreatedAt.Equal(after.CreatedAt), "upsert must keep created_at")

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	missing, err := repo.FindOne(ctx, specification.ByIdentifier{Identifier: "nope"})
	require.NoError(t, err)
	assert.Nil(t, missing)

	ok, err := repo.Delete(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = repo.Delete(ctx, "TCP-SC-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAiConfigRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewAiConfigRepository(newTestDB(t))

	got, err := repo.Find(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, repo.Save(ctx, &entity.AiConfig{Url: "http://a/v1/chat/completions", Model: "m1", TimeoutSeconds: 5}))
	require.NoError(t, repo.Save(ctx, &entity.AiConfig{Url: "http://b/v1/chat/completions", Model: "m2"}))

	got, err = repo.Find(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "http://b/v1/chat/completions", got.Url)
	assert.Equal(t, "m2", got.Model)
	assert.Equal(t, entity.DefaultAiTimeoutSeconds, got.TimeoutSeconds)

	ok, err := repo.Delete(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.Delete(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func ptr[T any](v T) *T {
	return &v
}
