package generator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"ai-quiz-runner/pkg/knowledge"
	"ai-quiz-runner/pkg/llm"
	"ai-quiz-runner/pkg/question"
)

var ErrNoJSON = errors.New("model reply contains no question JSON")

const systemPrompt = "You write exam questions for technical training. " +
	"Use only the knowledge points provided. Reply with a JSON array and nothing else."

// AIWriter asks a chat model for questions and keeps the ones that parse.
type AIWriter struct {
	provider    llm.LLMProvider
	devDocument string
}

func NewAIWriter(p llm.LLMProvider, devDocument string) *AIWriter {
	return &AIWriter{provider: p, devDocument: devDocument}
}

func (w *AIWriter) Generate(ctx context.Context, entries []knowledge.Entry, count int, types []question.Type) ([]question.Question, error) {
	if count <= 0 {
		return nil, nil
	}
	if len(types) == 0 {
		types = question.AllTypes
	}

	reply, err := w.provider.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: systemPrompt},
		{Role: llm.RoleUser, Content: w.prompt(entries, count, types)},
	}, llm.WithTemperature(0.7))
	if err != nil {
		return nil, err
	}

	raw, err := parseReply(reply)
	if err != nil {
		return nil, err
	}

	allowed := make(map[question.Type]bool, len(types))
	for _, t := range types {
		allowed[t] = true
	}
	var out []question.Question
	for i, r := range raw {
		q, ok := r.build(i + 1)
		if !ok || !allowed[q.Type] {
			continue
		}
		out = append(out, q)
		if len(out) >= count {
			break
		}
	}
	return out, nil
}

func (w *AIWriter) prompt(entries []knowledge.Entry, count int, types []question.Type) string {
	labels := make([]string, 0, len(types))
	for _, t := range types {
		labels = append(labels, t.Alias())
	}
	sort.Strings(labels)

	var b strings.Builder
	b.WriteString("Knowledge points:\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "- %s: %s\n", e.Component, e.RawText)
	}
	if w.devDocument != "" {
		fmt.Fprintf(&b, "\nReference document: %s\n", w.devDocument)
	}
	fmt.Fprintf(&b, "\nWrite %d questions. Allowed types: %s.\n", count, strings.Join(labels, ", "))
	b.WriteString(`Each array element has:
- id: unique identifier string
- component: the topic the question is about
- type: single, multi, cloze or qa
- prompt: the question text
- options: answer options (single/multi only)
- answer: option index for single, index array for multi, text for cloze/qa
- explanation: reference explanation or source
- keywords: optional key terms for qa
Output strictly valid JSON.`)
	return b.String()
}

type rawQuestion struct {
	ID          interface{} `json:"id"`
	Component   string      `json:"component"`
	Type        string      `json:"type"`
	Prompt      string      `json:"prompt"`
	Options     []string    `json:"options"`
	Answer      interface{} `json:"answer"`
	Explanation string      `json:"explanation"`
	Keywords    interface{} `json:"keywords"`
}

// parseReply extracts the question array from a model reply, accepting a
// bare array, {"questions": [...]}, or JSON embedded in surrounding prose.
func parseReply(reply string) ([]rawQuestion, error) {
	reply = strings.TrimSpace(reply)
	data := []byte(reply)
	if !json.Valid(data) {
		block, ok := jsonBlock(reply)
		if !ok {
			return nil, ErrNoJSON
		}
		data = []byte(block)
	}

	var list []rawQuestion
	if err := json.Unmarshal(data, &list); err != nil {
		var wrapped struct {
			Questions []rawQuestion `json:"questions"`
		}
		if err2 := json.Unmarshal(data, &wrapped); err2 != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoJSON, err)
		}
		list = wrapped.Questions
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("%w: empty question array", ErrNoJSON)
	}
	return list, nil
}

func jsonBlock(text string) (string, bool) {
	for _, pair := range [][2]string{{"[", "]"}, {"{", "}"}} {
		start := strings.Index(text, pair[0])
		end := strings.LastIndex(text, pair[1])
		if start >= 0 && end > start {
			return text[start : end+1], true
		}
	}
	return "", false
}

func (r rawQuestion) build(fallback int) (question.Question, bool) {
	typ, ok := question.ParseType(r.Type)
	prompt := strings.TrimSpace(r.Prompt)
	if !ok || prompt == "" {
		return question.Question{}, false
	}
	component := strings.TrimSpace(r.Component)
	if component == "" {
		component = "AI"
	}
	id := strings.TrimSpace(fmt.Sprint(r.ID))
	if r.ID == nil || id == "" {
		id = fmt.Sprintf("AI-%s-%d", component, fallback)
	}

	q := question.Question{
		Identifier:  id,
		Type:        typ,
		Prompt:      prompt,
		Explanation: strings.TrimSpace(r.Explanation),
	}

	if typ.IsChoice() {
		for _, o := range r.Options {
			if o = strings.TrimSpace(o); o != "" {
				q.Options = append(q.Options, o)
			}
		}
		if len(q.Options) == 0 {
			return question.Question{}, false
		}
		idx := validIndexes(coerceIndexes(r.Answer), len(q.Options))
		if len(idx) == 0 {
			return question.Question{}, false
		}
		if typ == question.SingleChoice {
			idx = idx[:1]
		}
		q.CorrectOptions = idx
		texts := make([]string, len(idx))
		for i, j := range idx {
			texts[i] = q.Options[j]
		}
		q.AnswerText = strings.Join(texts, "; ")
		return q, true
	}

	q.AnswerText = answerText(r.Answer)
	if typ == question.Cloze && q.AnswerText == "" {
		return question.Question{}, false
	}
	q.Keywords = keywordList(r.Keywords, component)
	return q, true
}

// coerceIndexes accepts 2, "2", "C", "AC", [0, 2] and ["A", "C"].
func coerceIndexes(v interface{}) []int {
	switch a := v.(type) {
	case float64:
		return []int{int(a)}
	case string:
		a = strings.TrimSpace(a)
		if n, err := strconv.Atoi(a); err == nil {
			return []int{n}
		}
		var out []int
		for _, r := range strings.ToUpper(a) {
			if r >= 'A' && r <= 'Z' {
				out = append(out, int(r-'A'))
			}
		}
		return out
	case []interface{}:
		var out []int
		for _, item := range a {
			out = append(out, coerceIndexes(item)...)
		}
		return out
	}
	return nil
}

func validIndexes(idx []int, n int) []int {
	seen := map[int]bool{}
	var out []int
	for _, i := range idx {
		if i >= 0 && i < n && !seen[i] {
			seen[i] = true
			out = append(out, i)
		}
	}
	sort.Ints(out)
	return out
}

func answerText(v interface{}) string {
	switch a := v.(type) {
	case nil:
		return ""
	case []interface{}:
		var parts []string
		for _, p := range a {
			if s := strings.TrimSpace(fmt.Sprint(p)); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "; ")
	default:
		return strings.TrimSpace(fmt.Sprint(a))
	}
}

func keywordList(v interface{}, component string) []string {
	var out []string
	switch k := v.(type) {
	case []interface{}:
		for _, item := range k {
			if s := strings.TrimSpace(fmt.Sprint(item)); s != "" {
				out = append(out, s)
			}
		}
	case string:
		for _, s := range strings.FieldsFunc(k, func(r rune) bool { return r == ',' || r == '，' }) {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	if len(out) == 0 && component != "AI" {
		out = []string{component}
	}
	if len(out) > 8 {
		out = out[:8]
	}
	return out
}
