package dto

import "ai-quiz-runner/pkg/question"

// ============================================================================
// Session DTOs
// ============================================================================

type GenerateQuestionsRequest struct {
	Filepath string   `json:"filepath" validate:"required"`
	Types    []string `json:"types"`
	Count    int      `json:"count" validate:"omitempty,min=1,max=500"`
	Mode     string   `json:"mode" validate:"omitempty,oneof=sequential random"`
	Seed     *int64   `json:"seed,omitempty"`
}

type PracticeRequest struct {
	QuestionTypes []string `json:"question_types"`
	Count         int      `json:"count" validate:"omitempty,min=1,max=500"`
	Mode          string   `json:"mode" validate:"omitempty,oneof=sequential random"`
}

type GenerateQuestionsResponse struct {
	SessionId     string   `json:"session_id"`
	TotalCount    int      `json:"total_count"`
	QuestionTypes []string `json:"question_types"`
	Mode          string   `json:"mode"`
	Source        string   `json:"source,omitempty"`
}

type SessionRequest struct {
	SessionId string `json:"session_id" validate:"required"`
	Skip      bool   `json:"skip,omitempty"`
}

// NextQuestionResponse omits question/current_index once the session is finished.
type NextQuestionResponse struct {
	Finished      bool               `json:"finished"`
	Question      *question.Question `json:"question,omitempty"`
	CurrentIndex  int                `json:"current_index,omitempty"`
	TotalCount    int                `json:"total_count"`
	NextAvailable *bool              `json:"next_available,omitempty"`
	CorrectCount  *int               `json:"correct_count,omitempty"`
}

type SubmitAnswerRequest struct {
	SessionId string `json:"session_id" validate:"required"`
	Answer    string `json:"answer"`
}

type SubmitAnswerResponse struct {
	IsCorrect     bool   `json:"is_correct"`
	Explanation   string `json:"explanation"`
	CorrectAnswer string `json:"correct_answer"`
	NextAvailable bool   `json:"next_available"`
}

type SessionStatusResponse struct {
	SessionId     string `json:"session_id"`
	CurrentIndex  int    `json:"current_index"`
	AnsweredCount int    `json:"answered_count"`
	TotalCount    int    `json:"total_count"`
	CorrectCount  int    `json:"correct_count"`
	Finished      bool   `json:"finished"`
}

// ============================================================================
// Knowledge upload
// ============================================================================

type EntryPreview struct {
	Component string `json:"component"`
	Text      string `json:"text"`
}

type UploadKnowledgeResponse struct {
	Success        bool           `json:"success"`
	Filename       string         `json:"filename"`
	Filepath       string         `json:"filepath"`
	EntryCount     int            `json:"entry_count"`
	EntriesPreview []EntryPreview `json:"entries_preview"`
}
