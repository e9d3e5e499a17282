package dto

import (
	"time"

	"ai-quiz-runner/pkg/question"
)

type WrongQuestionQuery struct {
	Page         int
	PageSize     int
	QuestionType string
	SortBy       string
	Order        string
}

type WrongQuestionResponse struct {
	Question             question.Question `json:"question"`
	LastPlainExplanation string            `json:"last_plain_explanation"`
	LastWrongAt          time.Time         `json:"last_wrong_at"`
	WrongCount           int               `json:"wrong_count"`
}

type WrongQuestionPageResponse struct {
	Questions  []WrongQuestionResponse `json:"questions"`
	Pagination Pagination              `json:"pagination"`
}

type TopicCount struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

type WrongStatsResponse struct {
	TotalWrong    int            `json:"total_wrong"`
	ByType        map[string]int `json:"by_type"`
	WeakestTopics []TopicCount   `json:"weakest_topics"`
}

type ClearWrongQuestionsResponse struct {
	DeletedCount int64 `json:"deleted_count"`
}
