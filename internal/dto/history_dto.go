package dto

import (
	"time"

	"ai-quiz-runner/pkg/question"
)

type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

func NewPagination(total int64, page, pageSize int) Pagination {
	pages := 0
	if pageSize > 0 {
		pages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return Pagination{Total: int(total), Page: page, PageSize: pageSize, TotalPages: pages}
}

// HistoryQuery is parsed from query parameters; nil pointers mean no filter.
type HistoryQuery struct {
	Page         int
	PageSize     int
	SessionId    string
	QuestionType string
	IsCorrect    *bool
	DateFrom     *time.Time
	DateTo       *time.Time
}

type SessionContext struct {
	KnowledgeFile string `json:"knowledge_file,omitempty"`
	Mode          string `json:"mode,omitempty"`
}

type AnswerRecordResponse struct {
	Id               string            `json:"id"`
	Timestamp        time.Time         `json:"timestamp"`
	SessionId        string            `json:"session_id"`
	Question         question.Question `json:"question"`
	UserAnswer       string            `json:"user_answer"`
	IsCorrect        bool              `json:"is_correct"`
	PlainExplanation string            `json:"plain_explanation"`
	SessionContext   *SessionContext   `json:"session_context,omitempty"`
}

type HistoryPageResponse struct {
	Entries    []AnswerRecordResponse `json:"entries"`
	Pagination Pagination             `json:"pagination"`
}

type SessionSummaryResponse struct {
	SessionId      string    `json:"session_id"`
	StartedAt      time.Time `json:"started_at"`
	LatestAt       time.Time `json:"latest_at"`
	TotalAnswers   int       `json:"total_answers"`
	CorrectAnswers int       `json:"correct_answers"`
	Accuracy       float64   `json:"accuracy"`
	KnowledgeFile  string    `json:"knowledge_file,omitempty"`
	Mode           string    `json:"mode,omitempty"`
}
