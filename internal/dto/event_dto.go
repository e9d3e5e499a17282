package dto

import (
	"time"

	"ai-quiz-runner/pkg/question"
)

// AnswerRecordedMessage is published on the in-process bus after each graded submission.
type AnswerRecordedMessage struct {
	SessionId        string            `json:"session_id"`
	Question         question.Question `json:"question"`
	UserAnswer       string            `json:"user_answer"`
	IsCorrect        bool              `json:"is_correct"`
	PlainExplanation string            `json:"plain_explanation"`
	KnowledgeFile    string            `json:"knowledge_file,omitempty"`
	Mode             string            `json:"mode,omitempty"`
	AnsweredAt       time.Time         `json:"answered_at"`
}
