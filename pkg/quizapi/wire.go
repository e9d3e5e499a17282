package quizapi

import (
	"time"

	"ai-quiz-runner/pkg/navigator"
)

// Question is the wire form of a generated question.
type Question struct {
	Identifier     string   `json:"identifier"`
	QuestionType   string   `json:"question_type"`
	Prompt         string   `json:"prompt"`
	Options        []string `json:"options,omitempty"`
	CorrectOptions []int    `json:"correct_options,omitempty"`
	AnswerText     string   `json:"answer_text,omitempty"`
	Explanation    string   `json:"explanation,omitempty"`
	Keywords       []string `json:"keywords,omitempty"`
}

func (q Question) toDomain() navigator.Question {
	return navigator.Question{
		Identifier:     q.Identifier,
		Type:           navigator.QuestionType(q.QuestionType),
		Prompt:         q.Prompt,
		Options:        q.Options,
		CorrectOptions: q.CorrectOptions,
		Explanation:    q.Explanation,
	}
}

type generateRequest struct {
	Filepath string   `json:"filepath"`
	Types    []string `json:"types"`
	Count    int      `json:"count"`
	Mode     string   `json:"mode,omitempty"`
	Seed     *int64   `json:"seed,omitempty"`
}

type practiceRequest struct {
	QuestionTypes []string `json:"question_types,omitempty"`
	Count         int      `json:"count,omitempty"`
	Mode          string   `json:"mode,omitempty"`
}

type generateResponse struct {
	SessionID     string   `json:"session_id"`
	TotalCount    int      `json:"total_count"`
	QuestionTypes []string `json:"question_types"`
	Mode          string   `json:"mode"`
}

type sessionRequest struct {
	SessionID string `json:"session_id"`
	Skip      bool   `json:"skip,omitempty"`
}

type nextResponse struct {
	Finished      bool      `json:"finished"`
	Question      *Question `json:"question"`
	CurrentIndex  int       `json:"current_index"`
	TotalCount    int       `json:"total_count"`
	CorrectCount  *int      `json:"correct_count"`
	NextAvailable *bool     `json:"next_available"`
}

type submitRequest struct {
	SessionID string `json:"session_id"`
	Answer    string `json:"answer"`
}

type submitResponse struct {
	IsCorrect     bool   `json:"is_correct"`
	Explanation   string `json:"explanation"`
	CorrectAnswer string `json:"correct_answer"`
	NextAvailable bool   `json:"next_available"`
}

type statusResponse struct {
	SessionID     string `json:"session_id"`
	CurrentIndex  int    `json:"current_index"`
	AnsweredCount *int   `json:"answered_count"`
	TotalCount    int    `json:"total_count"`
	CorrectCount  int    `json:"correct_count"`
	Finished      bool   `json:"finished"`
}

type PreviewEntry struct {
	Component string `json:"component"`
	Text      string `json:"text"`
}

type uploadResponse struct {
	Filename       string         `json:"filename"`
	Filepath       string         `json:"filepath"`
	EntryCount     int            `json:"entry_count"`
	EntriesPreview []PreviewEntry `json:"entries_preview"`
}

// envelope wraps the non-session endpoints.
type envelope[T any] struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalPages int `json:"total_pages"`
}

type SessionContext struct {
	KnowledgeFile string `json:"knowledge_file,omitempty"`
	Mode          string `json:"mode,omitempty"`
}

type AnswerRecord struct {
	ID               string          `json:"id"`
	Timestamp        time.Time       `json:"timestamp"`
	SessionID        string          `json:"session_id"`
	Question         Question        `json:"question"`
	UserAnswer       string          `json:"user_answer"`
	IsCorrect        bool            `json:"is_correct"`
	PlainExplanation string          `json:"plain_explanation"`
	SessionContext   *SessionContext `json:"session_context,omitempty"`
}

type HistoryPage struct {
	Entries    []AnswerRecord `json:"entries"`
	Pagination Pagination     `json:"pagination"`
}

// HistoryQuery filters answer history. Zero values mean "no filter".
type HistoryQuery struct {
	Page         int
	PageSize     int
	SessionID    string
	QuestionType string
	IsCorrect    *bool
	DateFrom     *time.Time
	DateTo       *time.Time
}

type SessionSummary struct {
	SessionID      string    `json:"session_id"`
	StartedAt      time.Time `json:"started_at"`
	LatestAt       time.Time `json:"latest_at"`
	TotalAnswers   int       `json:"total_answers"`
	CorrectAnswers int       `json:"correct_answers"`
	Accuracy       float64   `json:"accuracy"`
	KnowledgeFile  string    `json:"knowledge_file,omitempty"`
	Mode           string    `json:"mode,omitempty"`
}

type WrongQuestion struct {
	Question             Question  `json:"question"`
	LastPlainExplanation string    `json:"last_plain_explanation"`
	LastWrongAt          time.Time `json:"last_wrong_at"`
	WrongCount           int       `json:"wrong_count"`
}

type WrongPage struct {
	Questions  []WrongQuestion `json:"questions"`
	Pagination Pagination      `json:"pagination"`
}

type WrongQuery struct {
	Page         int
	PageSize     int
	QuestionType string
	SortBy       string // last_wrong_at, wrong_count or identifier
	Order        string // asc or desc
}

type TopicCount struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

type WrongStats struct {
	TotalWrong    int            `json:"total_wrong"`
	ByType        map[string]int `json:"by_type"`
	WeakestTopics []TopicCount   `json:"weakest_topics"`
}

type AIConfig struct {
	URL             string  `json:"url"`
	Key             string  `json:"key"`
	Model           string  `json:"model"`
	Timeout         float64 `json:"timeout"`
	DevDocument     string  `json:"dev_document,omitempty"`
	EnableAIGrading bool    `json:"enable_ai_grading"`
}

type AITestResult struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}
