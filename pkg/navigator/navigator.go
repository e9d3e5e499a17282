// Package navigator walks a user through a server-authoritative quiz session.
// It caches every fetched question so back and forward moves inside the
// history never touch the network, and it allows at most one outstanding
// request at a time.
package navigator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ai-quiz-runner/internal/pkg/logger"
	"ai-quiz-runner/pkg/kvstore"
)

const logModule = "Navigator"

// Navigator owns the session context. Every transition goes through its
// methods; the mutex is never held across a network call.
type Navigator struct {
	mu sync.Mutex

	svc    SessionService
	store  Persistence
	logger logger.ILogger
	now    func() time.Time

	state     State
	phase     Phase
	epoch     uint64
	session   Session
	cache     *Cache
	knowledge *kvstore.KnowledgeLock
}

func New(svc SessionService, store Persistence, log logger.ILogger) *Navigator {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Navigator{
		svc:    svc,
		store:  store,
		logger: log,
		now:    time.Now,
		cache:  NewCache(),
	}
}

// ticket binds a network completion to the session generation that issued it.
type ticket struct {
	epoch       uint64
	anchor      int // index of the tail when the request was issued, -1 on empty
	issueCursor int
}

// begin moves the navigator out of Idle. Caller holds mu.
func (n *Navigator) begin(p Phase) (ticket, error) {
	switch n.phase {
	case Fetching:
		return ticket{}, ErrFetchInFlight
	case Submitting:
		return ticket{}, ErrSubmitInFlight
	}
	n.phase = p
	return ticket{
		epoch:       n.epoch,
		anchor:      n.cache.Len() - 1,
		issueCursor: n.cache.Cursor(),
	}, nil
}

// settle reports whether a completion still belongs to the live session and,
// if so, returns the navigator to Idle. Caller holds mu.
func (n *Navigator) settle(t ticket) bool {
	if t.epoch != n.epoch {
		return false
	}
	n.phase = Idle
	return true
}

// bump invalidates every outstanding request. Caller holds mu.
func (n *Navigator) bump() {
	n.epoch++
	n.phase = Idle
}

// enterNoSession drops the session, its cache and the persisted id. Caller holds mu.
func (n *Navigator) enterNoSession(ctx context.Context) error {
	n.bump()
	n.state = NoSession
	n.session = Session{}
	n.cache.Reset()
	if err := n.store.ClearSessionID(ctx); err != nil {
		n.logger.Error(logModule, "Failed to clear persisted session id", map[string]interface{}{"error": err.Error()})
		return err
	}
	return nil
}

// finish marks the session finished. The cache stays readable for review.
func (n *Navigator) finish() {
	n.state = Finished
	n.session.Finished = true
	n.logger.Info(logModule, "Session finished", map[string]interface{}{
		"session_id":    n.session.ID,
		"correct_count": n.session.CorrectCount,
		"total_count":   n.session.TotalCount,
	})
}

// canFetchNext reports whether the tail admits a forward fetch. Caller holds mu.
func (n *Navigator) canFetchNext() error {
	switch n.state {
	case NoSession:
		return ErrNoSession
	case Finished:
		return ErrSessionFinished
	}
	tail, ok := n.cache.Tail()
	if !ok {
		return nil
	}
	if !tail.Answered {
		return ErrUnanswered
	}
	if !tail.NextAvailable {
		return ErrNotYetGenerated
	}
	return nil
}

// fetch issues one next-question call and merges the result. It is entered
// with mu held and returns with mu held; mu is released around the call.
func (n *Navigator) fetch(ctx context.Context, t ticket, skip bool) error {
	sid := n.session.ID
	op := opNext
	if skip {
		op = opSkip
	}

	n.mu.Unlock()
	res, err := n.svc.NextQuestion(ctx, sid, skip)
	n.mu.Lock()

	if !n.settle(t) {
		n.logger.Debug(logModule, "Discarding superseded fetch", map[string]interface{}{"session_id": sid})
		return ErrSuperseded
	}
	if err != nil {
		return n.remoteFailure(ctx, op, err)
	}
	return n.applyNext(t, res, skip)
}

// remoteFailure classifies a session-scoped failure and drops the session when
// the server no longer knows it. Caller holds mu.
func (n *Navigator) remoteFailure(ctx context.Context, op string, err error) error {
	kind := classify(op, err, true)
	if errors.Is(kind, ErrInvalidSession) {
		n.logger.Warn(logModule, "Server rejected session", map[string]interface{}{
			"session_id": n.session.ID,
			"error":      err.Error(),
		})
		if clearErr := n.enterNoSession(ctx); clearErr != nil {
			return errors.Join(kind, clearErr)
		}
		return kind
	}
	n.logger.Warn(logModule, fmt.Sprintf("%s failed", op), map[string]interface{}{"error": err.Error()})
	return kind
}

func (n *Navigator) applyNext(t ticket, res NextResult, skip bool) error {
	op := opNext
	if skip {
		op = opSkip
	}
	if !res.Finished && res.Question == nil {
		return fmt.Errorf("%s: %w: response carries neither a question nor finished", op, ErrNetworkFailure)
	}

	if skip && t.anchor >= 0 {
		_ = n.cache.update(t.anchor, func(e *Entry) {
			e.Skipped = true
			e.SelectedOptions = nil
		})
	}
	if res.TotalCount > 0 {
		n.session.TotalCount = res.TotalCount
	}
	if res.CorrectCount != nil {
		n.session.CorrectCount = *res.CorrectCount
	}

	if res.Finished {
		n.finish()
		return nil
	}

	position := res.CurrentIndex
	if position <= 0 {
		position = 1
		if t.anchor >= 0 {
			if tail, ok := n.cache.Tail(); ok {
				position = tail.Position + 1
			}
		}
	}
	entry := Entry{Position: position, Question: *res.Question}
	if res.NextAvailable != nil {
		entry.NextAvailable = *res.NextAvailable
	} else {
		entry.NextAvailable = n.session.TotalCount == 0 || position < n.session.TotalCount
	}

	userCursor := n.cache.Cursor()
	if t.anchor >= 0 {
		_ = n.cache.MoveCursor(t.anchor)
	}
	if err := n.cache.Append(entry); err != nil {
		n.logger.Warn(logModule, "Cache out of step with server, resyncing", map[string]interface{}{
			"session_id": n.session.ID,
			"position":   position,
			"error":      err.Error(),
		})
		n.cache.Reset()
		return n.cache.Append(entry)
	}

	// the user moved while the request was out; leave them where they are
	if userCursor != t.issueCursor && userCursor >= 0 {
		_ = n.cache.MoveCursor(userCursor)
	}
	return nil
}

// --- navigation ---

// GoBack moves the cursor one entry back. It never touches the network.
func (n *Navigator) GoBack() (Snapshot, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.state == NoSession {
		return n.snapshot(), ErrNoSession
	}
	if n.cache.Cursor() <= 0 {
		return n.snapshot(), fmt.Errorf("%w: already at the first question", ErrOutOfRange)
	}
	err := n.cache.MoveCursor(n.cache.Cursor() - 1)
	return n.snapshot(), err
}

// GoForward moves onto the next cached entry, or fetches the next question
// when the cursor sits on an answered tail.
func (n *Navigator) GoForward(ctx context.Context) (Snapshot, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.state == NoSession {
		return n.snapshot(), ErrNoSession
	}
	if c := n.cache.Cursor(); c < n.cache.Len()-1 {
		err := n.cache.MoveCursor(c + 1)
		return n.snapshot(), err
	}

	if err := n.canFetchNext(); err != nil {
		return n.snapshot(), err
	}
	t, err := n.begin(Fetching)
	if err != nil {
		return n.snapshot(), err
	}
	err = n.fetch(ctx, t, false)
	return n.snapshot(), err
}

// Skip abandons the unanswered tail and fetches the question after it.
func (n *Navigator) Skip(ctx context.Context) (Snapshot, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch n.state {
	case NoSession:
		return n.snapshot(), ErrNoSession
	case Finished:
		return n.snapshot(), ErrSessionFinished
	}
	tail, ok := n.cache.Tail()
	if !ok {
		return n.snapshot(), fmt.Errorf("%w: nothing to skip", ErrOutOfRange)
	}
	if n.cache.Cursor() != n.cache.Len()-1 {
		return n.snapshot(), ErrNotCurrent
	}
	if tail.Closed() {
		return n.snapshot(), ErrAlreadyAnswered
	}

	t, err := n.begin(Fetching)
	if err != nil {
		return n.snapshot(), err
	}
	err = n.fetch(ctx, t, true)
	return n.snapshot(), err
}

// Jump moves to the 1-based position target. Cached positions are a pointer
// move; the position right after the frontier is a forward fetch.
func (n *Navigator) Jump(ctx context.Context, target int) (Snapshot, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.state == NoSession {
		return n.snapshot(), ErrNoSession
	}
	length := n.cache.Len()
	switch {
	case target < 1:
		return n.snapshot(), fmt.Errorf("%w: position %d", ErrOutOfRange, target)
	case target <= length:
		err := n.cache.MoveCursor(target - 1)
		return n.snapshot(), err
	case target > length+1:
		return n.snapshot(), fmt.Errorf("%w: position %d, frontier %d", ErrNotYetGenerated, target, length)
	}

	if err := n.canFetchNext(); err != nil {
		return n.snapshot(), fmt.Errorf("%w: position %d: %v", ErrNotYetGenerated, target, err)
	}
	t, err := n.begin(Fetching)
	if err != nil {
		return n.snapshot(), err
	}
	err = n.fetch(ctx, t, false)
	return n.snapshot(), err
}

// --- session lifecycle ---

// Upload sends a knowledge document and persists the lock. It is rejected
// before any network call while a lock exists.
func (n *Navigator) Upload(ctx context.Context, filename string, content []byte) (Snapshot, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	lock, err := n.store.KnowledgeLock(ctx)
	if err != nil {
		return n.snapshot(), err
	}
	if lock != nil {
		n.knowledge = lock
		return n.snapshot(), fmt.Errorf("%w: %s is in use, reset to upload another file", ErrLockViolation, lock.Filename)
	}
	if len(content) == 0 {
		return n.snapshot(), fmt.Errorf("%w: %s is empty", ErrValidation, filename)
	}

	epoch := n.epoch
	n.mu.Unlock()
	res, err := n.svc.UploadKnowledge(ctx, filename, content)
	n.mu.Lock()

	if err != nil {
		n.logger.Warn(logModule, "Knowledge upload failed", map[string]interface{}{"filename": filename, "error": err.Error()})
		return n.snapshot(), classify(opUpload, err, false)
	}
	if epoch != n.epoch {
		return n.snapshot(), ErrSuperseded
	}

	newLock := kvstore.KnowledgeLock{
		Filepath:   res.Filepath,
		Filename:   res.Filename,
		EntryCount: res.EntryCount,
		UploadedAt: n.now().UTC(),
	}
	if err := n.store.SaveKnowledgeLock(ctx, newLock); err != nil {
		return n.snapshot(), err
	}
	n.knowledge = &newLock
	n.logger.Info(logModule, "Knowledge uploaded", map[string]interface{}{
		"filename": res.Filename,
		"entries":  res.EntryCount,
	})
	return n.snapshot(), nil
}

// Generate asks the server for a new question set over the locked knowledge
// and fetches the first question. A running session is replaced only once the
// server has accepted the new one.
func (n *Navigator) Generate(ctx context.Context, opts GenerateOptions) (Snapshot, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.phase == Fetching {
		return n.snapshot(), ErrFetchInFlight
	}
	if n.phase == Submitting {
		return n.snapshot(), ErrSubmitInFlight
	}
	if n.knowledge == nil {
		lock, err := n.store.KnowledgeLock(ctx)
		if err != nil {
			return n.snapshot(), err
		}
		n.knowledge = lock
	}
	if n.knowledge == nil && !opts.Practice {
		return n.snapshot(), ErrNoKnowledge
	}
	if opts.Count <= 0 {
		return n.snapshot(), fmt.Errorf("%w: count must be positive", ErrValidation)
	}
	if len(opts.Types) == 0 && !opts.Practice {
		return n.snapshot(), fmt.Errorf("%w: choose at least one question type", ErrValidation)
	}

	if n.state == Finished {
		if err := n.enterNoSession(ctx); err != nil {
			return n.snapshot(), err
		}
	}
	t, err := n.begin(Fetching)
	if err != nil {
		return n.snapshot(), err
	}

	req := GenerateRequest{
		Types:    append([]string(nil), opts.Types...),
		Count:    opts.Count,
		Mode:     opts.Mode,
		Seed:     opts.Seed,
		Practice: opts.Practice,
	}
	if n.knowledge != nil {
		req.Filepath = n.knowledge.Filepath
	}
	n.mu.Unlock()
	res, err := n.svc.Generate(ctx, req)
	n.mu.Lock()

	if !n.settle(t) {
		return n.snapshot(), ErrSuperseded
	}
	if err != nil {
		n.logger.Warn(logModule, "Question generation failed", map[string]interface{}{"error": err.Error()})
		return n.snapshot(), classify(opGenerate, err, false)
	}
	if err := n.store.SaveSessionID(ctx, res.SessionID); err != nil {
		return n.snapshot(), err
	}

	if n.state == Active {
		n.logger.Info(logModule, "Replacing active session", map[string]interface{}{"session_id": n.session.ID})
		n.bump()
	}
	n.cache.Reset()
	n.session = Session{ID: res.SessionID, TotalCount: res.TotalCount}
	n.state = Active
	n.logger.Info(logModule, "Session started", map[string]interface{}{
		"session_id":  res.SessionID,
		"total_count": res.TotalCount,
	})

	t, err = n.begin(Fetching)
	if err != nil {
		return n.snapshot(), err
	}
	err = n.fetch(ctx, t, false)
	return n.snapshot(), err
}

// Restart abandons the current session but keeps the knowledge lock.
func (n *Navigator) Restart(ctx context.Context) (Snapshot, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	err := n.enterNoSession(ctx)
	return n.snapshot(), err
}

// Reset wipes server data, then the session and the knowledge lock.
func (n *Navigator) Reset(ctx context.Context) (Snapshot, error) {
	if err := n.svc.ResetData(ctx); err != nil {
		n.mu.Lock()
		defer n.mu.Unlock()
		return n.snapshot(), classify(opReset, err, false)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if err := n.enterNoSession(ctx); err != nil {
		return n.snapshot(), err
	}
	n.knowledge = nil
	if err := n.store.ClearKnowledgeLock(ctx); err != nil {
		return n.snapshot(), err
	}
	n.logger.Info(logModule, "All data reset", nil)
	return n.snapshot(), nil
}

// Entries returns the cached history, oldest first.
func (n *Navigator) Entries() []Entry {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.cache.Entries()
}
