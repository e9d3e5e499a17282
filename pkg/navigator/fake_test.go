package navigator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"ai-quiz-runner/pkg/kvstore"

	"github.com/stretchr/testify/require"
)

type statusError struct{ code int }

func (e statusError) Error() string   { return fmt.Sprintf("request failed (%d)", e.code) }
func (e statusError) StatusCode() int { return e.code }

var errConnRefused = errors.New("dial tcp 127.0.0.1:5001: connect: connection refused")

// fakeServer keeps one session the way the real service does: a fixed list of
// questions and a server-side index that advances on submit and skip.
type fakeServer struct {
	mu        sync.Mutex
	questions []Question
	sessionID string
	index     int
	correct   int
	answered  int
	calls     map[string]int

	nextErr   error
	submitErr error
	statusErr error
	// number of NextQuestion calls answered with an empty body
	blankNext int

	// when set, NextQuestion signals entered and waits on release
	entered chan struct{}
	release chan struct{}
}

func newFakeServer(questions ...Question) *fakeServer {
	return &fakeServer{questions: questions, calls: map[string]int{}}
}

func (f *fakeServer) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeServer) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeServer) gate() {
	f.mu.Lock()
	f.entered = make(chan struct{}, 1)
	f.release = make(chan struct{})
	f.mu.Unlock()
}

func (f *fakeServer) UploadKnowledge(_ context.Context, filename string, content []byte) (UploadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["upload"]++
	return UploadResult{Filename: filename, Filepath: "uploads/" + filename, EntryCount: strings.Count(string(content), "\n") + 1}, nil
}

func (f *fakeServer) Generate(_ context.Context, req GenerateRequest) (GenerateResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["generate"]++
	if req.Count < len(f.questions) {
		f.questions = f.questions[:req.Count]
	}
	f.sessionID = fmt.Sprintf("sess-%d", f.calls["generate"])
	f.index, f.correct, f.answered = 0, 0, 0
	return GenerateResult{SessionID: f.sessionID, TotalCount: len(f.questions)}, nil
}

func (f *fakeServer) NextQuestion(_ context.Context, sessionID string, skip bool) (NextResult, error) {
	f.mu.Lock()
	f.calls["next"]++
	entered, release := f.entered, f.release
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
		<-release
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.nextErr != nil {
		return NextResult{}, f.nextErr
	}
	if f.blankNext > 0 {
		f.blankNext--
		return NextResult{}, nil
	}
	if sessionID != f.sessionID {
		return NextResult{}, statusError{code: 404}
	}
	if skip && f.index < len(f.questions) {
		f.index++
	}
	if f.index >= len(f.questions) {
		correct := f.correct
		return NextResult{Finished: true, CorrectCount: &correct, TotalCount: len(f.questions)}, nil
	}
	q := f.questions[f.index]
	return NextResult{Question: &q, CurrentIndex: f.index + 1, TotalCount: len(f.questions)}, nil
}

func (f *fakeServer) SubmitAnswer(_ context.Context, sessionID, answer string) (Verdict, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["submit"]++
	if f.submitErr != nil {
		return Verdict{}, f.submitErr
	}
	if sessionID != f.sessionID {
		return Verdict{}, statusError{code: 404}
	}
	q := f.questions[f.index]
	want := expectedAnswer(q)
	ok := strings.EqualFold(answer, want)
	if ok {
		f.correct++
	}
	f.answered++
	f.index++
	return Verdict{
		IsCorrect:     ok,
		Explanation:   q.Explanation,
		CorrectAnswer: want,
		NextAvailable: f.index < len(f.questions),
	}, nil
}

func (f *fakeServer) SessionStatus(_ context.Context, sessionID string) (Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["status"]++
	if f.statusErr != nil {
		return Status{}, f.statusErr
	}
	if sessionID != f.sessionID {
		return Status{}, statusError{code: 404}
	}
	answered := f.answered
	return Status{
		CurrentIndex:  f.index,
		AnsweredCount: &answered,
		TotalCount:    len(f.questions),
		CorrectCount:  f.correct,
		Finished:      f.index >= len(f.questions),
	}, nil
}

func (f *fakeServer) ResetData(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["reset"]++
	f.sessionID = ""
	return nil
}

func expectedAnswer(q Question) string {
	if q.Type.IsChoice() {
		var b strings.Builder
		for _, i := range q.CorrectOptions {
			b.WriteString(OptionLetter(i))
		}
		return b.String()
	}
	return q.Explanation
}

func choiceQuestion(id string, correct int) Question {
	return Question{
		Identifier:     id,
		Type:           SingleChoice,
		Prompt:         "Which layer does " + id + " belong to?",
		Options:        []string{"Link", "Network", "Transport", "Application"},
		CorrectOptions: []int{correct},
		Explanation:    id + " lives on layer " + OptionLetter(correct),
	}
}

func threeQuestions() []Question {
	return []Question{
		choiceQuestion("q1", 1),
		choiceQuestion("q2", 2),
		{Identifier: "q3", Type: QA, Prompt: "Name the handshake.", Explanation: "three-way"},
	}
}

type fixture struct {
	nav    *Navigator
	server *fakeServer
	store  *kvstore.Store
}

func newFixture(t *testing.T, questions ...Question) *fixture {
	t.Helper()
	store := kvstore.New(kvstore.NewMemoryBackend())
	require.NoError(t, store.SaveKnowledgeLock(context.Background(), kvstore.KnowledgeLock{
		Filepath:   "uploads/net.md",
		Filename:   "net.md",
		EntryCount: 12,
		UploadedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}))
	server := newFakeServer(questions...)
	return &fixture{nav: New(server, store, nil), server: server, store: store}
}

func (fx *fixture) generate(t *testing.T, count int) Snapshot {
	t.Helper()
	snap, err := fx.nav.Generate(context.Background(), GenerateOptions{Types: []string{"single", "qa"}, Count: count, Mode: "sequential"})
	require.NoError(t, err)
	return snap
}

func (fx *fixture) answerCorrectly(t *testing.T) Snapshot {
	t.Helper()
	snap := fx.nav.Snapshot()
	require.NotNil(t, snap.Current)
	q := snap.Current.Question
	if q.Type.IsChoice() {
		for _, i := range q.CorrectOptions {
			_, err := fx.nav.SelectOption(i)
			require.NoError(t, err)
		}
		snap, err := fx.nav.Submit(context.Background(), "")
		require.NoError(t, err)
		return snap
	}
	snap, err := fx.nav.Submit(context.Background(), q.Explanation)
	require.NoError(t, err)
	return snap
}
