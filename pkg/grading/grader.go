// Package grading scores a submitted answer against a question locally.
package grading

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"ai-quiz-runner/pkg/question"
)

// KeywordThreshold is the share of keywords an open answer must mention.
const KeywordThreshold = 0.6

type Result struct {
	IsCorrect       bool
	Explanation     string
	MatchedKeywords []string
	Coverage        float64

	// Score and ByModel are set only by AIGrader.
	Score   float64
	ByModel bool
}

func Grade(q question.Question, answer string) Result {
	answer = strings.TrimSpace(answer)
	switch q.Type {
	case question.SingleChoice:
		return gradeSingle(q, answer)
	case question.MultiChoice:
		return gradeMulti(q, answer)
	case question.Cloze:
		return gradeCloze(q, answer)
	case question.QA:
		return gradeOpen(q, answer)
	default:
		return Result{Explanation: fmt.Sprintf("unknown question type %q", q.Type)}
	}
}

func gradeSingle(q question.Question, answer string) Result {
	want := -1
	if len(q.CorrectOptions) > 0 {
		want = q.CorrectOptions[0]
	}
	letter := strings.ToUpper(answer)
	if len(letter) != 1 || letter[0] < 'A' || letter[0] > 'Z' {
		return Result{Explanation: "Answer with a single option letter such as A, B or C."}
	}

	if int(letter[0]-'A') == want {
		return Result{
			IsCorrect:   true,
			Explanation: fmt.Sprintf("Correct. %s: %s", question.Letter(want), optionText(q, want)),
		}
	}
	return Result{
		Explanation: fmt.Sprintf("Incorrect. The answer is %s, you chose %s. %s", question.Letter(want), letter, keyPoint(q)),
	}
}

func gradeMulti(q question.Question, answer string) Result {
	seen := map[int]bool{}
	var got []int
	for _, r := range strings.ToUpper(answer) {
		if r < 'A' || r > 'Z' || seen[int(r-'A')] {
			continue
		}
		seen[int(r-'A')] = true
		got = append(got, int(r-'A'))
	}
	sort.Ints(got)

	want := question.Letters(q.CorrectOptions)
	chosen := question.Letters(got)
	if chosen == want && want != "" {
		return Result{IsCorrect: true, Explanation: "Correct. The answer is " + want + "."}
	}
	return Result{
		Explanation: fmt.Sprintf("Incorrect. The answer is %s, you chose %s. %s", want, chosen, keyPoint(q)),
	}
}

func gradeCloze(q question.Question, answer string) Result {
	given := normalize(answer)
	if given != "" {
		for _, alt := range alternatives(q.AnswerText) {
			if given == normalize(alt) {
				return Result{IsCorrect: true, Explanation: "Correct. Answer: " + q.AnswerText}
			}
		}
		for _, kw := range q.Keywords {
			if n := normalize(kw); n != "" && n == given {
				return Result{IsCorrect: true, Explanation: "Correct. Matched keyword: " + kw}
			}
		}
	}

	hint := q.AnswerText
	if hint == "" && len(q.Keywords) > 0 {
		hint = q.Keywords[0]
	}
	exp := "Incorrect. Reference answer: " + hint
	if q.Explanation != "" {
		exp += ". Source: " + q.Explanation
	}
	return Result{Explanation: exp}
}

func gradeOpen(q question.Question, answer string) Result {
	if answer == "" {
		return Result{Explanation: "The answer is empty."}
	}

	if q.AnswerText != "" && normalize(answer) == normalize(q.AnswerText) {
		return Result{IsCorrect: true, Explanation: "Correct. Matches the reference answer.", Coverage: 1}
	}

	if len(q.Keywords) == 0 {
		if utf8.RuneCountInString(answer) >= 10 {
			return Result{IsCorrect: true, Explanation: "Answer received."}
		}
		return Result{Explanation: "The answer is too short; explain in more detail."}
	}

	lower := strings.ToLower(answer)
	var matched []string
	for _, kw := range q.Keywords {
		if k := strings.ToLower(strings.TrimSpace(kw)); k != "" && strings.Contains(lower, k) {
			matched = append(matched, kw)
		}
	}
	coverage := float64(len(matched)) / float64(len(q.Keywords))
	res := Result{MatchedKeywords: matched, Coverage: coverage}

	percent := int(coverage*100 + 0.5)
	if coverage >= KeywordThreshold {
		res.IsCorrect = true
		res.Explanation = fmt.Sprintf("Correct. Covered %d%% of the key points: %s.", percent, strings.Join(matched, ", "))
		return res
	}
	res.Explanation = fmt.Sprintf("Covered %d%% of the key points. Review: %s.", percent, strings.Join(firstN(q.Keywords, 6), ", "))
	return res
}

// alternatives splits "a|b" or "a/b" reference answers; a lone "m/s" unit is
// not treated as a separator.
func alternatives(ref string) []string {
	if strings.Contains(ref, "|") {
		return strings.Split(ref, "|")
	}
	if strings.Contains(ref, "/") && !strings.Contains(ref, "m/s") {
		return strings.Split(ref, "/")
	}
	return []string{ref}
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "，", ",")
	return strings.Join(strings.Fields(s), "")
}

func optionText(q question.Question, i int) string {
	if i >= 0 && i < len(q.Options) {
		return q.Options[i]
	}
	return ""
}

func keyPoint(q question.Question) string {
	if q.AnswerText != "" {
		return "Key point: " + q.AnswerText
	}
	return q.Explanation
}

func firstN(ss []string, n int) []string {
	if len(ss) > n {
		return ss[:n]
	}
	return ss
}
