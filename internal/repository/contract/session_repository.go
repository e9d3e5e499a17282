package contract

import (
	"context"

	"ai-quiz-runner/pkg/store"
)

// SessionRepository holds live quiz sessions. Entries expire after the
// configured TTL; Get returns nil, nil for unknown or expired ids.
type SessionRepository interface {
	Save(ctx context.Context, session *store.Session) error
	Get(ctx context.Context, sessionID string) (*store.Session, error)
	Delete(ctx context.Context, sessionID string) error
	Clear(ctx context.Context) error
}
