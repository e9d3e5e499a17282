package grading

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"ai-quiz-runner/pkg/llm/ollama"
	"ai-quiz-runner/pkg/question"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ollamaServer answers every chat call with content, or with status when it
// is not 200, and counts the calls it served.
func ollamaServer(t *testing.T, status int, content string) (*AIGrader, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/api/chat", r.URL.Path)
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte("model unavailable"))
			return
		}
		body, err := json.Marshal(map[string]interface{}{
			"model":   "llama3",
			"message": map[string]string{"role": "assistant", "content": content},
			"done":    true,
		})
		assert.NoError(t, err)
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return NewAIGrader(ollama.NewOllamaProvider(srv.URL, "llama3", time.Second)), &calls
}

func TestAIGrader_Grade(t *testing.T) {
	cloze := question.Question{Type: question.Cloze, Prompt: "UDP sends ____", AnswerText: "datagrams"}
	qa := question.Question{
		Type:       question.QA,
		Prompt:     "Describe the TCP handshake.",
		AnswerText: "SYN, SYN-ACK, ACK",
		Keywords:   []string{"SYN", "ACK", "handshake"},
	}

	tests := []struct {
		name        string
		q           question.Question
		answer      string
		status      int
		reply       string
		wantCorrect bool
		wantModel   bool
		wantScore   float64
		wantErr     bool
		wantExp     string
	}{
		{
			name: "semantic match on cloze", q: cloze, answer: "self-contained packets", status: 200,
			reply:       `{"is_correct": true, "score": 90, "explanation": "Datagrams are self-contained packets."}`,
			wantCorrect: true, wantModel: true, wantScore: 90, wantExp: "AI score 90/100",
		},
		{
			name: "fenced reply with matched points", q: qa, answer: "client sends syn, server answers", status: 200,
			reply:       "```json\n{\"is_correct\": \"true\", \"score\": \"0.75\", \"explanation\": \"Mostly there.\", \"matched_points\": [\"SYN\", \" \"]}\n```",
			wantCorrect: true, wantModel: true, wantScore: 75, wantExp: "Matched points: SYN.",
		},
		{
			name: "model says wrong", q: qa, answer: "it uses UDP", status: 200,
			reply:     `{"is_correct": false, "score": 10, "explanation": "Wrong protocol."}`,
			wantModel: true, wantScore: 10, wantExp: "Incorrect. AI score 10/100: Wrong protocol.",
		},
		{
			name: "missing score follows verdict", q: cloze, answer: "packets", status: 200,
			reply:       `{"is_correct": true}`,
			wantCorrect: true, wantModel: true, wantScore: 100,
		},
		{
			name: "no json falls back to local", q: cloze, answer: "datagrams", status: 200,
			reply:       "Looks right to me.",
			wantCorrect: true, wantErr: true, wantExp: "Answer: datagrams",
		},
		{
			name: "missing verdict falls back to local", q: cloze, answer: "packets", status: 200,
			reply:   `{"score": 80}`,
			wantErr: true, wantExp: "Reference answer: datagrams",
		},
		{
			name: "http failure falls back to local", q: qa, answer: "handshake with SYN and ACK", status: 500,
			wantCorrect: true, wantErr: true, wantExp: "key points",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, calls := ollamaServer(t, tt.status, tt.reply)

			res, err := g.Grade(context.Background(), tt.q, tt.answer)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.wantCorrect, res.IsCorrect)
			assert.Equal(t, tt.wantModel, res.ByModel)
			if tt.wantModel {
				assert.InDelta(t, tt.wantScore, res.Score, 1e-9)
			}
			if tt.wantExp != "" {
				assert.Contains(t, res.Explanation, tt.wantExp)
			}
			assert.EqualValues(t, 1, atomic.LoadInt32(calls))
		})
	}
}

func TestAIGrader_LocalOnlyCases(t *testing.T) {
	single := question.Question{Type: question.SingleChoice, Options: []string{"TCP", "UDP"}, CorrectOptions: []int{1}}
	noReference := question.Question{Type: question.QA, Keywords: []string{"SYN"}}
	cloze := question.Question{Type: question.Cloze, AnswerText: "datagrams"}

	tests := []struct {
		name   string
		q      question.Question
		answer string
	}{
		{"choice question", single, "B"},
		{"no reference answer", noReference, "SYN first"},
		{"empty answer", cloze, "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, calls := ollamaServer(t, 200, `{"is_correct": true, "score": 100}`)

			res, err := g.Grade(context.Background(), tt.q, tt.answer)
			assert.ErrorIs(t, err, ErrNotGradeable)
			assert.Equal(t, Grade(tt.q, tt.answer), res)
			assert.Zero(t, atomic.LoadInt32(calls))
		})
	}
}

func TestAIGrader_NilGradesLocally(t *testing.T) {
	var g *AIGrader
	q := question.Question{Type: question.Cloze, AnswerText: "datagrams"}

	res, err := g.Grade(context.Background(), q, "Datagrams")
	require.NoError(t, err)
	assert.True(t, res.IsCorrect)
	assert.False(t, res.ByModel)
}

func TestAIGrader_PromptCarriesReference(t *testing.T) {
	var got struct {
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
		Options struct {
			Temperature float64 `json:"temperature"`
		} `json:"options"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"{\"is_correct\":true,\"score\":95}"},"done":true}`))
	}))
	defer srv.Close()

	g := NewAIGrader(ollama.NewOllamaProvider(srv.URL, "llama3", time.Second))
	q := question.Question{Type: question.QA, Prompt: "Why ACK?", AnswerText: "to confirm receipt", Keywords: []string{"confirm"}}
	_, err := g.Evaluate(context.Background(), q, "it confirms data arrived")
	require.NoError(t, err)

	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	user := got.Messages[1].Content
	for _, want := range []string{"short answer", "Why ACK?", "to confirm receipt", "Key points: confirm", "it confirms data arrived"} {
		assert.True(t, strings.Contains(user, want), "prompt lacks %q", want)
	}
	assert.Zero(t, got.Options.Temperature)
}
