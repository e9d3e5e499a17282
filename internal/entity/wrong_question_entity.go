package entity

import (
	"time"

	"ai-quiz-runner/pkg/question"
)

// WrongQuestion is a wrong-book entry, keyed by the question identifier.
type WrongQuestion struct {
	Question             question.Question
	LastPlainExplanation string
	LastWrongAt          time.Time
	WrongCount           int
}

type TopicCount struct {
	Topic string
	Count int
}

type WrongStats struct {
	TotalWrong    int
	ByType        map[question.Type]int
	WeakestTopics []TopicCount
}
