package navigator

import (
	"context"
	"fmt"

	"ai-quiz-runner/pkg/kvstore"
)

// Snapshot is everything a front end needs to render one frame. It is a copy;
// mutating it has no effect on the navigator.
type Snapshot struct {
	State     State
	Phase     Phase
	Session   Session
	Knowledge *kvstore.KnowledgeLock
	Cursor    int
	Frontier  int
	Current   *Entry

	CanGoBack    bool
	CanGoForward bool
	CanSkip      bool
	CanSubmit    bool
	CanUpload    bool
	CanGenerate  bool
	// MaxJump is the highest 1-based position Jump accepts right now.
	MaxJump int
}

// Position is the 1-based position of the displayed entry, 0 when none.
func (s Snapshot) Position() int {
	if s.Current == nil {
		return 0
	}
	return s.Current.Position
}

func (n *Navigator) Snapshot() Snapshot {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.snapshot()
}

// snapshot projects the current state. Caller holds mu.
func (n *Navigator) snapshot() Snapshot {
	s := Snapshot{
		State:    n.state,
		Phase:    n.phase,
		Session:  n.session,
		Cursor:   n.cache.Cursor(),
		Frontier: n.cache.Frontier(),
	}
	if n.knowledge != nil {
		k := *n.knowledge
		s.Knowledge = &k
	}
	if cur, ok := n.cache.Current(); ok {
		s.Current = &cur
	}

	idle := n.phase == Idle
	atTail := s.Cursor == s.Frontier-1
	fetchable := n.state == Active && n.canFetchNext() == nil

	s.CanUpload = s.Knowledge == nil
	s.CanGenerate = idle && s.Knowledge != nil
	if n.state == NoSession {
		return s
	}

	s.CanGoBack = s.Cursor > 0
	s.CanGoForward = !atTail || (fetchable && idle)
	s.MaxJump = s.Frontier
	if fetchable && idle {
		s.MaxJump++
	}
	if n.state == Active && s.Current != nil && !s.Current.Closed() && atTail && idle {
		s.CanSubmit = true
		s.CanSkip = true
	}
	return s
}

// Intent is a user action fed to Dispatch.
type Intent interface {
	intent()
}

type (
	IntentResume struct{}
	IntentUpload struct {
		Filename string
		Content  []byte
	}
	IntentGenerate struct{ Options GenerateOptions }
	IntentBack     struct{}
	IntentForward  struct{}
	IntentSkip     struct{}
	IntentJump     struct{ Target int }
	IntentSelect   struct{ Option int }
	IntentClear    struct{}
	IntentSubmit   struct{ Text string }
	IntentRestart  struct{}
	IntentReset    struct{}
)

func (IntentResume) intent()   {}
func (IntentUpload) intent()   {}
func (IntentGenerate) intent() {}
func (IntentBack) intent()     {}
func (IntentForward) intent()  {}
func (IntentSkip) intent()     {}
func (IntentJump) intent()     {}
func (IntentSelect) intent()   {}
func (IntentClear) intent()    {}
func (IntentSubmit) intent()   {}
func (IntentRestart) intent()  {}
func (IntentReset) intent()    {}

// Dispatch is the single entry point for front ends: it validates and applies
// one intent and returns the resulting frame.
func (n *Navigator) Dispatch(ctx context.Context, in Intent) (Snapshot, error) {
	switch v := in.(type) {
	case IntentResume:
		return n.Resume(ctx)
	case IntentUpload:
		return n.Upload(ctx, v.Filename, v.Content)
	case IntentGenerate:
		return n.Generate(ctx, v.Options)
	case IntentBack:
		return n.GoBack()
	case IntentForward:
		return n.GoForward(ctx)
	case IntentSkip:
		return n.Skip(ctx)
	case IntentJump:
		return n.Jump(ctx, v.Target)
	case IntentSelect:
		return n.SelectOption(v.Option)
	case IntentClear:
		return n.ClearSelection()
	case IntentSubmit:
		return n.Submit(ctx, v.Text)
	case IntentRestart:
		return n.Restart(ctx)
	case IntentReset:
		return n.Reset(ctx)
	default:
		return n.Snapshot(), fmt.Errorf("%w: unknown intent %T", ErrValidation, in)
	}
}
