package question

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		in   string
		want Type
		ok   bool
	}{
		{"single", SingleChoice, true},
		{"MULTI", MultiChoice, true},
		{"CLOZE", Cloze, true},
		{" qa ", QA, true},
		{"SINGLE_CHOICE", SingleChoice, true},
		{"essay", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseType(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTypes_DedupesAndDropsUnknown(t *testing.T) {
	got := ParseTypes([]string{"qa", "QA", "essay", "single"})
	assert.Equal(t, []Type{QA, SingleChoice}, got)
}

func TestCorrectAnswer(t *testing.T) {
	single := Question{Type: SingleChoice, Options: []string{"TCP", "UDP"}, CorrectOptions: []int{1}}
	multi := Question{Type: MultiChoice, Options: []string{"a", "b", "c"}, CorrectOptions: []int{2, 0}}
	cloze := Question{Type: Cloze, AnswerText: "443"}
	qa := Question{Type: QA, Keywords: []string{"handshake", "ack"}}

	assert.Equal(t, "B. UDP", single.CorrectAnswer())
	assert.Equal(t, "AC", multi.CorrectAnswer())
	assert.Equal(t, "443", cloze.CorrectAnswer())
	assert.Equal(t, "handshake, ack", qa.CorrectAnswer())
}

func TestTopic(t *testing.T) {
	assert.Equal(t, "Brakes", Question{Identifier: "Brakes-SC-1"}.Topic())
	assert.Equal(t, Uncategorized, Question{Identifier: "standalone"}.Topic())
	assert.Equal(t, Uncategorized, Question{Identifier: "-leading"}.Topic())
}
