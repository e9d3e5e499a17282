// Package generator builds a question bank from knowledge entries without
// any model: choice questions from sentences, cloze from numbers or key
// terms, and open questions from each topic's summary.
package generator

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"ai-quiz-runner/pkg/knowledge"
	"ai-quiz-runner/pkg/question"
)

const (
	ModeSequential = "sequential"
	ModeRandom     = "random"
)

type Options struct {
	Types []question.Type
	Count int
	Mode  string
	Seed  *int64
}

var (
	numericToken = regexp.MustCompile(`\d+(?:\.\d+)?%?(?:m/s|年|次)?`)
	cjkWord      = regexp.MustCompile(`\p{Han}{2,4}`)
	latinWord    = regexp.MustCompile(`[A-Za-z][A-Za-z-]{3,}`)
)

var stopwords = map[string]bool{
	"检查": true, "调整": true, "复位": true, "确认": true, "确保": true, "进行": true,
	"必须": true, "开关": true, "动作": true, "试验": true, "功能": true, "工作": true,
	"安全": true, "装置": true, "设备": true,
	"must": true, "should": true, "with": true, "that": true, "this": true, "from": true,
	"have": true, "when": true, "into": true, "each": true, "than": true, "them": true,
	"they": true, "there": true, "which": true, "where": true, "while": true, "after": true,
	"before": true, "always": true, "check": true, "ensure": true, "make": true,
}

type Generator struct {
	entries []knowledge.Entry
	rng     *rand.Rand
	pool    []sentence
}

type sentence struct {
	component string
	text      string
}

func New(entries []knowledge.Entry, seed *int64) *Generator {
	s := time.Now().UnixNano()
	if seed != nil {
		s = *seed
	}
	g := &Generator{entries: entries, rng: rand.New(rand.NewSource(s))}
	for _, e := range entries {
		for _, st := range e.Sentences {
			st = strings.TrimSpace(st)
			if utf8.RuneCountInString(st) < 8 {
				continue
			}
			g.pool = append(g.pool, sentence{component: e.Component, text: st})
		}
	}
	return g
}

// Generate builds the bank for opts.Types (all types when empty), orders it
// by opts.Mode and caps it at opts.Count.
func Generate(entries []knowledge.Entry, opts Options) []question.Question {
	g := New(entries, opts.Seed)
	bank := g.Bank(opts.Types)
	return Arrange(bank, opts.Mode, opts.Count, g.rng)
}

// Arrange shuffles for random mode and truncates to count (count <= 0 keeps all).
func Arrange(qs []question.Question, mode string, count int, rng *rand.Rand) []question.Question {
	out := append([]question.Question(nil), qs...)
	if mode == ModeRandom {
		if rng == nil {
			rng = rand.New(rand.NewSource(time.Now().UnixNano()))
		}
		rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	}
	if count > 0 && count < len(out) {
		out = out[:count]
	}
	return out
}

func (g *Generator) Bank(types []question.Type) []question.Question {
	if len(types) == 0 {
		types = question.AllTypes
	}
	want := make(map[question.Type]bool, len(types))
	for _, t := range types {
		want[t] = true
	}

	var out []question.Question
	if want[question.SingleChoice] {
		out = append(out, g.SingleChoice()...)
	}
	if want[question.MultiChoice] {
		out = append(out, g.MultiChoice()...)
	}
	if want[question.Cloze] {
		out = append(out, g.Cloze()...)
	}
	if want[question.QA] {
		out = append(out, g.OpenEnded()...)
	}
	return out
}

func (g *Generator) SingleChoice() []question.Question {
	var out []question.Question
	n := 0
	for _, e := range g.entries {
		candidates := longSentences(e.Sentences)
		if len(candidates) == 0 {
			continue
		}
		var distractors []string
		for _, s := range g.pool {
			if s.component != e.Component {
				distractors = append(distractors, s.text)
			}
		}
		if len(distractors) < 3 {
			continue
		}

		correct := candidates[g.rng.Intn(len(candidates))]
		options := append(g.sample(distractors, 3), correct)
		g.rng.Shuffle(len(options), func(i, j int) { options[i], options[j] = options[j], options[i] })

		n++
		out = append(out, question.Question{
			Identifier:     fmt.Sprintf("%s-SC-%d", e.Component, n),
			Type:           question.SingleChoice,
			Prompt:         fmt.Sprintf("Which statement about %s is correct?", e.Component),
			Options:        options,
			CorrectOptions: []int{indexOf(options, correct)},
			AnswerText:     correct,
			Explanation:    e.RawText,
		})
	}
	return out
}

func (g *Generator) MultiChoice() []question.Question {
	var out []question.Question
	n := 0
	for _, e := range g.entries {
		sentences := longSentences(e.Sentences)
		if len(sentences) < 2 {
			continue
		}
		correct := g.sample(sentences, min(3, len(sentences)))

		var candidates []string
		for _, s := range g.pool {
			if indexOf(correct, s.text) < 0 {
				candidates = append(candidates, s.text)
			}
		}
		if len(candidates) < 2 {
			continue
		}
		k := min(max(2, 5-len(correct)), len(candidates))

		options := append(append([]string(nil), correct...), g.sample(candidates, k)...)
		g.rng.Shuffle(len(options), func(i, j int) { options[i], options[j] = options[j], options[i] })

		idx := make([]int, 0, len(correct))
		for i, o := range options {
			if indexOf(correct, o) >= 0 {
				idx = append(idx, i)
			}
		}

		n++
		out = append(out, question.Question{
			Identifier:     fmt.Sprintf("%s-MC-%d", e.Component, n),
			Type:           question.MultiChoice,
			Prompt:         fmt.Sprintf("Which statements about %s are correct? (select all)", e.Component),
			Options:        options,
			CorrectOptions: idx,
			AnswerText:     strings.Join(correct, "; "),
			Explanation:    e.RawText,
		})
	}
	return out
}

func (g *Generator) Cloze() []question.Question {
	var out []question.Question
	n := 0
	for _, e := range g.entries {
		for _, s := range e.Sentences {
			prompt, answer, ok := makeCloze(s, e.Component)
			if !ok {
				continue
			}
			n++
			out = append(out, question.Question{
				Identifier:  fmt.Sprintf("%s-CZ-%d", e.Component, n),
				Type:        question.Cloze,
				Prompt:      "Fill in the blank: " + prompt,
				AnswerText:  answer,
				Explanation: s,
			})
			break
		}
	}
	return out
}

func (g *Generator) OpenEnded() []question.Question {
	out := make([]question.Question, 0, len(g.entries))
	for i, e := range g.entries {
		ref := e.Sentences
		if len(ref) > 3 {
			ref = ref[:3]
		}
		out = append(out, question.Question{
			Identifier:  fmt.Sprintf("%s-QA-%d", e.Component, i+1),
			Type:        question.QA,
			Prompt:      fmt.Sprintf("Summarize the key checks or requirements for %s.", e.Component),
			AnswerText:  strings.Join(ref, "; "),
			Explanation: e.RawText,
			Keywords:    Keywords(e),
		})
	}
	return out
}

// sample picks k distinct elements of src in random order.
func (g *Generator) sample(src []string, k int) []string {
	perm := g.rng.Perm(len(src))
	out := make([]string, 0, k)
	for _, i := range perm[:k] {
		out = append(out, src[i])
	}
	return out
}

func makeCloze(s, component string) (string, string, bool) {
	s = strings.TrimSpace(s)
	if loc := numericToken.FindStringIndex(s); loc != nil {
		return s[:loc[0]] + "____" + s[loc[1]:], s[loc[0]:loc[1]], true
	}
	if component != "" && strings.Contains(s, component) {
		return strings.Replace(s, component, "____", 1), component, true
	}
	if ts := terms(s); len(ts) > 0 {
		return strings.Replace(s, ts[0], "____", 1), ts[0], true
	}
	return "", "", false
}

// Keywords lists the topic plus up to eight numbers and key terms of e,
// used to grade open answers by coverage.
func Keywords(e knowledge.Entry) []string {
	var kw []string
	seen := map[string]bool{e.Component: true}
	add := func(w string) {
		if !seen[w] && len(kw) < 8 {
			seen[w] = true
			kw = append(kw, w)
		}
	}
	for _, num := range numericToken.FindAllString(e.RawText, -1) {
		add(num)
	}
	for _, w := range terms(e.RawText) {
		add(w)
	}
	return append([]string{e.Component}, kw...)
}

func terms(s string) []string {
	var out []string
	for _, w := range cjkWord.FindAllString(s, -1) {
		if !stopwords[w] {
			out = append(out, w)
		}
	}
	for _, w := range latinWord.FindAllString(s, -1) {
		if !stopwords[strings.ToLower(w)] {
			out = append(out, w)
		}
	}
	return out
}

func longSentences(ss []string) []string {
	var out []string
	for _, s := range ss {
		if s = strings.TrimSpace(s); utf8.RuneCountInString(s) >= 10 {
			out = append(out, s)
		}
	}
	return out
}

func indexOf(ss []string, s string) int {
	for i, v := range ss {
		if v == s {
			return i
		}
	}
	return -1
}
