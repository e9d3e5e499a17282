package grading

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"ai-quiz-runner/pkg/llm"
	"ai-quiz-runner/pkg/question"
)

var (
	ErrNoVerdict    = errors.New("model reply contains no grading verdict")
	ErrNotGradeable = errors.New("question is graded locally")
)

const graderPrompt = "You grade answers to technical exam questions. " +
	"Judge meaning, not wording. Reply with a JSON object and nothing else."

// AIGrader scores cloze and QA answers with a chat model.
type AIGrader struct {
	provider llm.LLMProvider
}

func NewAIGrader(p llm.LLMProvider) *AIGrader {
	return &AIGrader{provider: p}
}

// Grade returns the model's verdict for open answers and falls back to the
// local grader on any failure. The error is the reason the fallback was
// taken; the Result is usable either way. A nil grader grades locally.
func (g *AIGrader) Grade(ctx context.Context, q question.Question, answer string) (Result, error) {
	if g == nil {
		return Grade(q, answer), nil
	}
	res, err := g.Evaluate(ctx, q, answer)
	if err != nil {
		return Grade(q, answer), err
	}
	return res, nil
}

// Evaluate asks the model for a verdict without falling back.
func (g *AIGrader) Evaluate(ctx context.Context, q question.Question, answer string) (Result, error) {
	answer = strings.TrimSpace(answer)
	if q.Type != question.Cloze && q.Type != question.QA {
		return Result{}, ErrNotGradeable
	}
	if q.AnswerText == "" || answer == "" {
		return Result{}, fmt.Errorf("%w: no reference answer or empty answer", ErrNotGradeable)
	}

	reply, err := g.provider.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: graderPrompt},
		{Role: llm.RoleUser, Content: gradingPrompt(q, answer)},
	}, llm.WithTemperature(0))
	if err != nil {
		return Result{}, err
	}

	v, err := parseVerdict(reply)
	if err != nil {
		return Result{}, err
	}

	mark := "Incorrect"
	if v.IsCorrect {
		mark = "Correct"
	}
	exp := fmt.Sprintf("%s. AI score %d/100", mark, int(math.Round(v.Score)))
	if v.Explanation != "" {
		exp += ": " + v.Explanation
	}
	if v.IsCorrect && len(v.MatchedPoints) > 0 {
		exp += " Matched points: " + strings.Join(v.MatchedPoints, ", ") + "."
	}
	return Result{
		IsCorrect:       v.IsCorrect,
		Explanation:     exp,
		MatchedKeywords: v.MatchedPoints,
		Coverage:        v.Score / 100,
		Score:           v.Score,
		ByModel:         true,
	}, nil
}

func gradingPrompt(q question.Question, answer string) string {
	kind := "fill-in-the-blank"
	if q.Type == question.QA {
		kind = "short answer"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Question type: %s\n", kind)
	fmt.Fprintf(&b, "Question: %s\n", q.Prompt)
	fmt.Fprintf(&b, "Reference answer: %s\n", q.AnswerText)
	if len(q.Keywords) > 0 {
		fmt.Fprintf(&b, "Key points: %s\n", strings.Join(q.Keywords, ", "))
	}
	fmt.Fprintf(&b, "Student answer: %s\n\n", answer)
	b.WriteString(`Reply with:
- is_correct: true when the answer carries the meaning of the reference answer
- score: 0 to 100
- explanation: one or two sentences for the student
- matched_points: key points the answer covers
Output strictly valid JSON.`)
	return b.String()
}

type verdict struct {
	IsCorrect     bool
	Score         float64
	Explanation   string
	MatchedPoints []string
}

type rawVerdict struct {
	IsCorrect     interface{} `json:"is_correct"`
	Score         interface{} `json:"score"`
	Explanation   string      `json:"explanation"`
	MatchedPoints []string    `json:"matched_points"`
}

// parseVerdict accepts a bare object or one embedded in prose or a code fence.
func parseVerdict(reply string) (verdict, error) {
	reply = strings.TrimSpace(reply)
	start, end := strings.Index(reply, "{"), strings.LastIndex(reply, "}")
	if start < 0 || end <= start {
		return verdict{}, ErrNoVerdict
	}

	var raw rawVerdict
	if err := json.Unmarshal([]byte(reply[start:end+1]), &raw); err != nil {
		return verdict{}, fmt.Errorf("%w: %v", ErrNoVerdict, err)
	}
	ok, valid := coerceBool(raw.IsCorrect)
	if !valid {
		return verdict{}, fmt.Errorf("%w: is_correct missing", ErrNoVerdict)
	}

	score, valid := coerceScore(raw.Score)
	if !valid {
		score = 0
		if ok {
			score = 100
		}
	}
	var points []string
	for _, p := range raw.MatchedPoints {
		if p = strings.TrimSpace(p); p != "" {
			points = append(points, p)
		}
	}
	return verdict{
		IsCorrect:     ok,
		Score:         score,
		Explanation:   strings.TrimSpace(raw.Explanation),
		MatchedPoints: points,
	}, nil
}

func coerceBool(v interface{}) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		return parsed, err == nil
	}
	return false, false
}

// coerceScore clamps to 0..100; a fraction below 1 is scaled up.
func coerceScore(v interface{}) (float64, bool) {
	var f float64
	switch s := v.(type) {
	case float64:
		f = s
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if f > 0 && f < 1 {
		f *= 100
	}
	return math.Max(0, math.Min(100, f)), true
}
