package navigator

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds. Every error returned by the navigator matches exactly one of these
// with errors.Is, except ErrSuperseded which marks a response that arrived after
// its session was replaced.
var (
	ErrNetworkFailure  = errors.New("network failure")
	ErrInvalidSession  = errors.New("invalid session")
	ErrValidation      = errors.New("validation failure")
	ErrOutOfRange      = errors.New("index out of range")
	ErrNotYetGenerated = errors.New("question not yet generated")
	ErrLockViolation   = errors.New("knowledge lock is active")
	ErrSuperseded      = errors.New("response superseded by a newer session")
)

var (
	ErrNoSession       = fmt.Errorf("%w: no active session", ErrValidation)
	ErrSessionFinished = fmt.Errorf("%w: session already finished", ErrValidation)
	ErrSessionActive   = fmt.Errorf("%w: a session is already running", ErrValidation)
	ErrFetchInFlight   = fmt.Errorf("%w: a fetch is already in flight", ErrValidation)
	ErrSubmitInFlight  = fmt.Errorf("%w: a submission is already in flight", ErrValidation)
	ErrAlreadyAnswered = fmt.Errorf("%w: question already answered", ErrValidation)
	ErrUnanswered      = fmt.Errorf("%w: answer the current question first", ErrValidation)
	ErrEmptyAnswer     = fmt.Errorf("%w: answer is empty", ErrValidation)
	ErrNoKnowledge     = fmt.Errorf("%w: upload a knowledge file first", ErrValidation)
	ErrNotCurrent      = fmt.Errorf("%w: only the latest question can be answered", ErrOutOfRange)
	ErrNonContiguous   = fmt.Errorf("%w: position does not continue the cached history", ErrOutOfRange)
)

// statusCoder is implemented by remote errors that carry an HTTP status.
type statusCoder interface {
	StatusCode() int
}

// classify maps a remote failure onto an error kind. Session-scoped calls
// (status and next-question) treat a rejection of the session as ErrInvalidSession.
func classify(op string, err error, sessionScoped bool) error {
	if err == nil {
		return nil
	}
	var sc statusCoder
	if errors.As(err, &sc) {
		code := sc.StatusCode()
		if sessionScoped && (code == http.StatusNotFound || code == http.StatusGone || op == opStatus) {
			return fmt.Errorf("%s: %w: %w", op, ErrInvalidSession, err)
		}
	}
	return fmt.Errorf("%s: %w: %w", op, ErrNetworkFailure, err)
}

const (
	opUpload   = "upload knowledge"
	opGenerate = "generate questions"
	opNext     = "fetch next question"
	opSkip     = "skip question"
	opSubmit   = "submit answer"
	opStatus   = "session status"
	opReset    = "reset data"
)
