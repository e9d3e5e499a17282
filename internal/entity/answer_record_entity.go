package entity

import (
	"time"

	"ai-quiz-runner/pkg/question"

	"github.com/google/uuid"
)

// AnswerRecord is one graded submission. Records are append-only.
type AnswerRecord struct {
	Id               uuid.UUID
	SessionId        string
	Question         question.Question
	UserAnswer       string
	IsCorrect        bool
	PlainExplanation string
	KnowledgeFile    string
	Mode             string
	AnsweredAt       time.Time
}

type SessionSummary struct {
	SessionId      string
	StartedAt      time.Time
	LatestAt       time.Time
	TotalAnswers   int
	CorrectAnswers int
	KnowledgeFile  string
	Mode           string
}

func (s *SessionSummary) Accuracy() float64 {
	if s.TotalAnswers == 0 {
		return 0
	}
	return float64(s.CorrectAnswers) / float64(s.TotalAnswers)
}
