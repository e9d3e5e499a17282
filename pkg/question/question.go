// Package question holds the server-side question model shared by the
// generators, the grader and the session stores.
package question

import (
	"sort"
	"strings"
)

type Type string

const (
	SingleChoice Type = "SINGLE_CHOICE"
	MultiChoice  Type = "MULTI_CHOICE"
	Cloze        Type = "CLOZE"
	QA           Type = "QA"
)

// AllTypes is the default type filter, in generation order.
var AllTypes = []Type{SingleChoice, MultiChoice, Cloze, QA}

var aliases = map[string]Type{
	"single": SingleChoice,
	"multi":  MultiChoice,
	"cloze":  Cloze,
	"qa":     QA,
}

// ParseType accepts both the short aliases used by generate requests
// ("single", "multi", "cloze", "qa") and the canonical names.
func ParseType(s string) (Type, bool) {
	s = strings.TrimSpace(s)
	if t, ok := aliases[strings.ToLower(s)]; ok {
		return t, true
	}
	switch t := Type(strings.ToUpper(s)); t {
	case SingleChoice, MultiChoice, Cloze, QA:
		return t, true
	}
	return "", false
}

// ParseTypes drops unknown names; an empty result means "every type".
func ParseTypes(names []string) []Type {
	out := make([]Type, 0, len(names))
	seen := make(map[Type]bool, len(names))
	for _, n := range names {
		t, ok := ParseType(n)
		if !ok || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// Alias is the short name of t used in prompts and generate requests.
func (t Type) Alias() string {
	for alias, typ := range aliases {
		if typ == t {
			return alias
		}
	}
	return strings.ToLower(string(t))
}

func (t Type) IsChoice() bool {
	return t == SingleChoice || t == MultiChoice
}

type Question struct {
	Identifier     string   `json:"identifier"`
	Type           Type     `json:"question_type"`
	Prompt         string   `json:"prompt"`
	Options        []string `json:"options,omitempty"`
	CorrectOptions []int    `json:"correct_options,omitempty"`
	AnswerText     string   `json:"answer_text,omitempty"`
	Explanation    string   `json:"explanation,omitempty"`
	Keywords       []string `json:"keywords,omitempty"`
}

// Letter maps a 0-based option index to its answer letter.
func Letter(i int) string {
	return string(rune('A' + i))
}

// Letters renders option indexes as a sorted letter string ("AC").
func Letters(indices []int) string {
	sorted := append([]int(nil), indices...)
	sort.Ints(sorted)
	var b strings.Builder
	for _, i := range sorted {
		b.WriteString(Letter(i))
	}
	return b.String()
}

// CorrectAnswer is the human-readable reference answer returned after a submit.
func (q Question) CorrectAnswer() string {
	switch q.Type {
	case SingleChoice:
		if len(q.CorrectOptions) > 0 {
			idx := q.CorrectOptions[0]
			if idx >= 0 && idx < len(q.Options) {
				return Letter(idx) + ". " + q.Options[idx]
			}
		}
	case MultiChoice:
		return Letters(q.CorrectOptions)
	case Cloze, QA:
		if q.AnswerText != "" {
			return q.AnswerText
		}
		return strings.Join(q.Keywords, ", ")
	}
	return ""
}

// Uncategorized is the topic of identifiers without a "topic-" prefix.
const Uncategorized = "uncategorized"

// Topic is the identifier prefix before the first "-".
func (q Question) Topic() string {
	if i := strings.Index(q.Identifier, "-"); i > 0 {
		return q.Identifier[:i]
	}
	return Uncategorized
}
