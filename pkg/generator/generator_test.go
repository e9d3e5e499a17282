package generator

import (
	"testing"

	"ai-quiz-runner/pkg/knowledge"
	"ai-quiz-runner/pkg/question"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func networkEntries(t *testing.T) []knowledge.Entry {
	t.Helper()
	doc := `| Topic | Notes |
| --- | --- |
| TCP | TCP delivers a reliable ordered byte stream. The handshake uses three segments. Retransmission starts after 200 ms. |
| UDP | UDP sends independent datagrams without setup. Applications handle loss themselves. |
| DNS | DNS resolves names to addresses over port 53. Resolvers cache answers until the TTL expires. |
`
	entries, err := knowledge.Parse(".md", []byte(doc))
	require.NoError(t, err)
	require.Len(t, entries, 3)
	return entries
}

func TestBank_AllTypes(t *testing.T) {
	seed := int64(7)
	g := New(networkEntries(t), &seed)

	bank := g.Bank(nil)
	counts := map[question.Type]int{}
	for _, q := range bank {
		counts[q.Type]++
	}
	assert.Equal(t, 3, counts[question.SingleChoice])
	assert.Equal(t, 3, counts[question.MultiChoice])
	assert.Equal(t, 3, counts[question.Cloze])
	assert.Equal(t, 3, counts[question.QA])
}

func TestSingleChoice_CorrectOptionPointsAtAnswer(t *testing.T) {
	seed := int64(1)
	for _, q := range New(networkEntries(t), &seed).SingleChoice() {
		require.Len(t, q.Options, 4)
		require.Len(t, q.CorrectOptions, 1)
		assert.Equal(t, q.AnswerText, q.Options[q.CorrectOptions[0]])
		assert.Contains(t, q.Identifier, "-SC-")
	}
}

func TestMultiChoice_CorrectOptionsAreSorted(t *testing.T) {
	seed := int64(3)
	for _, q := range New(networkEntries(t), &seed).MultiChoice() {
		require.GreaterOrEqual(t, len(q.CorrectOptions), 2)
		for i := 1; i < len(q.CorrectOptions); i++ {
			assert.Less(t, q.CorrectOptions[i-1], q.CorrectOptions[i])
		}
		for _, idx := range q.CorrectOptions {
			assert.Contains(t, q.AnswerText, q.Options[idx])
		}
	}
}

func TestMakeCloze(t *testing.T) {
	tests := []struct {
		name, sentence, component string
		wantPrompt, wantAnswer    string
	}{
		{"number first", "Retransmission starts after 200 ms.", "TCP", "Retransmission starts after ____ ms.", "200"},
		{"component", "TCP delivers a stream.", "TCP", "____ delivers a stream.", "TCP"},
		{"key term", "Resolvers cache answers.", "DNS", "____ cache answers.", "Resolvers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompt, answer, ok := makeCloze(tt.sentence, tt.component)
			require.True(t, ok)
			assert.Equal(t, tt.wantPrompt, prompt)
			assert.Equal(t, tt.wantAnswer, answer)
		})
	}

	_, _, ok := makeCloze("a b c", "X")
	assert.False(t, ok)
}

func TestGenerate_SeededRandomIsReproducible(t *testing.T) {
	seed := int64(42)
	opts := Options{Types: []question.Type{question.QA, question.Cloze}, Count: 4, Mode: ModeRandom, Seed: &seed}

	first := Generate(networkEntries(t), opts)
	second := Generate(networkEntries(t), opts)

	require.Len(t, first, 4)
	assert.Equal(t, first, second)
	for _, q := range first {
		assert.Contains(t, []question.Type{question.QA, question.Cloze}, q.Type)
	}
}

func TestGenerate_SequentialKeepsBankOrder(t *testing.T) {
	qs := Generate(networkEntries(t), Options{Types: []question.Type{question.QA}, Mode: ModeSequential})
	require.Len(t, qs, 3)
	assert.Equal(t, "TCP-QA-1", qs[0].Identifier)
	assert.Equal(t, "DNS-QA-3", qs[2].Identifier)
	assert.Equal(t, "TCP", qs[0].Keywords[0])
}
