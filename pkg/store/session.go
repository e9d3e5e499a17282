package store

import (
	"time"

	"ai-quiz-runner/pkg/question"
)

// Session modes. Random and sequential describe question order; practice
// sessions replay the wrong-question book.
const (
	ModeSequential = "sequential"
	ModeRandom     = "random"
	ModePractice   = "wrong_question_practice"
)

// Session is the server-side state of one quiz run. CurrentIndex is the
// 0-based index of the question the client is expected to answer next.
type Session struct {
	ID            string              `json:"id"`
	Questions     []question.Question `json:"questions"`
	QuestionTypes []question.Type     `json:"question_types"`
	CurrentIndex  int                 `json:"current_index"`
	AnsweredCount int                 `json:"answered_count"`
	CorrectCount  int                 `json:"correct_count"`
	KnowledgeFile string              `json:"knowledge_file,omitempty"`
	Mode          string              `json:"mode"`
	CreatedAt     time.Time           `json:"created_at"`
}

func (s *Session) Total() int {
	return len(s.Questions)
}

func (s *Session) Finished() bool {
	return s.CurrentIndex >= len(s.Questions)
}

// Current returns the question awaiting an answer.
func (s *Session) Current() (question.Question, bool) {
	if s.Finished() {
		return question.Question{}, false
	}
	return s.Questions[s.CurrentIndex], true
}

// Record scores the current question and moves past it.
func (s *Session) Record(correct bool) {
	s.AnsweredCount++
	if correct {
		s.CorrectCount++
	}
	s.Advance()
}

// Advance moves past the current question without scoring it.
func (s *Session) Advance() {
	if !s.Finished() {
		s.CurrentIndex++
	}
}
