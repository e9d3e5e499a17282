package navigator

import (
	"context"

	"ai-quiz-runner/pkg/kvstore"
)

type QuestionType string

const (
	SingleChoice QuestionType = "SINGLE_CHOICE"
	MultiChoice  QuestionType = "MULTI_CHOICE"
	Cloze        QuestionType = "CLOZE"
	QA           QuestionType = "QA"
)

func (t QuestionType) IsChoice() bool {
	return t == SingleChoice || t == MultiChoice
}

// Question is immutable once it lands in the cache.
type Question struct {
	Identifier     string
	Type           QuestionType
	Prompt         string
	Options        []string
	CorrectOptions []int
	Explanation    string
}

type Feedback struct {
	Explanation   string
	CorrectAnswer string
}

// Entry is one fetched question plus the user's interaction with it.
type Entry struct {
	Position        int // 1-based, as reported by the server
	Question        Question
	Answered        bool
	Skipped         bool
	UserAnswer      *string
	SelectedOptions []int
	IsCorrect       *bool
	Feedback        *Feedback
	NextAvailable   bool
}

// Closed reports whether the entry is terminal (answered or skipped) and must render read-only.
func (e Entry) Closed() bool {
	return e.Answered || e.Skipped
}

func (e Entry) clone() Entry {
	out := e
	out.Question.Options = append([]string(nil), e.Question.Options...)
	out.Question.CorrectOptions = append([]int(nil), e.Question.CorrectOptions...)
	out.SelectedOptions = append([]int(nil), e.SelectedOptions...)
	if e.UserAnswer != nil {
		v := *e.UserAnswer
		out.UserAnswer = &v
	}
	if e.IsCorrect != nil {
		v := *e.IsCorrect
		out.IsCorrect = &v
	}
	if e.Feedback != nil {
		v := *e.Feedback
		out.Feedback = &v
	}
	return out
}

// Session mirrors the server-side aggregate. The server owns these numbers.
type Session struct {
	ID            string
	TotalCount    int
	AnsweredCount int
	CorrectCount  int
	Finished      bool
}

// ScorePercent is correct/total rounded to the nearest integer, 0 when total is 0.
func (s Session) ScorePercent() int {
	if s.TotalCount <= 0 {
		return 0
	}
	return (s.CorrectCount*100 + s.TotalCount/2) / s.TotalCount
}

// AccuracyPercent is correct/answered rounded to the nearest integer.
func (s Session) AccuracyPercent() int {
	if s.AnsweredCount <= 0 {
		return 0
	}
	return (s.CorrectCount*100 + s.AnsweredCount/2) / s.AnsweredCount
}

type State int

const (
	NoSession State = iota
	Active
	Finished
)

func (s State) String() string {
	switch s {
	case NoSession:
		return "no_session"
	case Active:
		return "active"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// Phase is the network phase of the navigator. Only one request may be out at a time.
type Phase int

const (
	Idle Phase = iota
	Fetching
	Submitting
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Fetching:
		return "fetching"
	case Submitting:
		return "submitting"
	default:
		return "unknown"
	}
}

type GenerateOptions struct {
	Types []string // single, multi, cloze, qa
	Count int
	Mode  string // sequential or random
	Seed  *int64
	// Practice draws the session from the wrong-question book instead of the
	// uploaded knowledge.
	Practice bool
}

// --- Remote Session Service boundary ---

type GenerateRequest struct {
	Filepath string
	Types    []string
	Count    int
	Mode     string
	Seed     *int64
	Practice bool
}

type GenerateResult struct {
	SessionID  string
	TotalCount int
}

type NextResult struct {
	Finished      bool
	Question      *Question
	CurrentIndex  int // 1-based position of Question, 0 if unknown
	TotalCount    int // 0 if not reported
	CorrectCount  *int
	NextAvailable *bool
}

type Verdict struct {
	IsCorrect     bool
	Explanation   string
	CorrectAnswer string
	NextAvailable bool
}

type Status struct {
	CurrentIndex  int
	AnsweredCount *int
	TotalCount    int
	CorrectCount  int
	Finished      bool
}

type UploadResult struct {
	Filename   string
	Filepath   string
	EntryCount int
}

// SessionService is the remote, server-authoritative side of a quiz session.
type SessionService interface {
	UploadKnowledge(ctx context.Context, filename string, content []byte) (UploadResult, error)
	Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error)
	NextQuestion(ctx context.Context, sessionID string, skip bool) (NextResult, error)
	SubmitAnswer(ctx context.Context, sessionID, answer string) (Verdict, error)
	SessionStatus(ctx context.Context, sessionID string) (Status, error)
	ResetData(ctx context.Context) error
}

// Persistence is the subset of the client store the navigator writes through.
type Persistence interface {
	SessionID(ctx context.Context) (string, bool, error)
	SaveSessionID(ctx context.Context, id string) error
	ClearSessionID(ctx context.Context) error
	KnowledgeLock(ctx context.Context) (*kvstore.KnowledgeLock, error)
	SaveKnowledgeLock(ctx context.Context, lock kvstore.KnowledgeLock) error
	ClearKnowledgeLock(ctx context.Context) error
}

var _ Persistence = (*kvstore.Store)(nil)
