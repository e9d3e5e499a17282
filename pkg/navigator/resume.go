package navigator

import (
	"context"
	"fmt"
)

// Resume rebuilds the session after a cold start from the persisted id and a
// status query. The cache is not replayed: an unfinished session lands in
// Active with a single entry for the server's current question.
func (n *Navigator) Resume(ctx context.Context) (Snapshot, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.state != NoSession {
		return n.snapshot(), ErrSessionActive
	}
	if n.phase != Idle {
		return n.snapshot(), ErrFetchInFlight
	}

	lock, err := n.store.KnowledgeLock(ctx)
	if err != nil {
		return n.snapshot(), err
	}
	n.knowledge = lock

	sid, ok, err := n.store.SessionID(ctx)
	if err != nil {
		return n.snapshot(), err
	}
	if !ok {
		n.logger.Debug(logModule, "No session to resume", nil)
		return n.snapshot(), nil
	}

	t, err := n.begin(Fetching)
	if err != nil {
		return n.snapshot(), err
	}

	n.mu.Unlock()
	status, err := n.svc.SessionStatus(ctx, sid)
	n.mu.Lock()

	if !n.settle(t) {
		return n.snapshot(), ErrSuperseded
	}
	if err != nil {
		kind := classify(opStatus, err, true)
		n.logger.Warn(logModule, "Discarding stored session", map[string]interface{}{
			"session_id": sid,
			"error":      err.Error(),
		})
		if clearErr := n.enterNoSession(ctx); clearErr != nil {
			return n.snapshot(), fmt.Errorf("%w (clearing: %v)", kind, clearErr)
		}
		return n.snapshot(), kind
	}

	answered := status.CurrentIndex
	if status.AnsweredCount != nil {
		answered = *status.AnsweredCount
	}
	n.session = Session{
		ID:            sid,
		TotalCount:    status.TotalCount,
		AnsweredCount: answered,
		CorrectCount:  status.CorrectCount,
		Finished:      status.Finished,
	}
	n.cache.Reset()
	n.logger.Info(logModule, "Session resumed", map[string]interface{}{
		"session_id":     sid,
		"answered_count": answered,
		"total_count":    status.TotalCount,
		"finished":       status.Finished,
	})

	if status.Finished {
		n.finish()
		return n.snapshot(), nil
	}
	n.state = Active

	t, err = n.begin(Fetching)
	if err != nil {
		return n.snapshot(), err
	}
	err = n.fetch(ctx, t, false)
	return n.snapshot(), err
}
