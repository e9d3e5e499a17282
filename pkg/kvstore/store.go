// Package kvstore is the client's durable key-value surface. It outlives a single
// run of the quiz client and holds the active session id and the knowledge lock.
package kvstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Logical keys, stable across restarts.
const (
	KeySessionID = "currentSessionId"
	KeyKnowledge = "currentKnowledge"
)

// KnowledgeLock records the uploaded knowledge document. While present it blocks
// further uploads until an explicit full reset.
type KnowledgeLock struct {
	Filepath   string    `json:"filepath"`
	Filename   string    `json:"filename"`
	EntryCount int       `json:"entryCount"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// Backend is a raw string key-value store. Absent keys report ok=false, not an error.
type Backend interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Store gives typed access to the two logical keys. Every write goes straight to
// the backend; there is no batching and the last write wins.
type Store struct {
	backend Backend
}

func New(backend Backend) *Store {
	return &Store{backend: backend}
}

func (s *Store) SessionID(ctx context.Context) (string, bool, error) {
	id, ok, err := s.backend.Get(ctx, KeySessionID)
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", KeySessionID, err)
	}
	if !ok || id == "" {
		return "", false, nil
	}
	return id, true, nil
}

func (s *Store) SaveSessionID(ctx context.Context, id string) error {
	if id == "" {
		return errors.New("session id must not be empty")
	}
	if err := s.backend.Set(ctx, KeySessionID, id); err != nil {
		return fmt.Errorf("write %s: %w", KeySessionID, err)
	}
	return nil
}

func (s *Store) ClearSessionID(ctx context.Context) error {
	if err := s.backend.Delete(ctx, KeySessionID); err != nil {
		return fmt.Errorf("delete %s: %w", KeySessionID, err)
	}
	return nil
}

// KnowledgeLock returns nil when no lock is stored.
func (s *Store) KnowledgeLock(ctx context.Context) (*KnowledgeLock, error) {
	raw, ok, err := s.backend.Get(ctx, KeyKnowledge)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", KeyKnowledge, err)
	}
	if !ok || raw == "" {
		return nil, nil
	}

	var lock KnowledgeLock
	if err := json.Unmarshal([]byte(raw), &lock); err != nil {
		return nil, fmt.Errorf("decode %s: %w", KeyKnowledge, err)
	}
	return &lock, nil
}

func (s *Store) SaveKnowledgeLock(ctx context.Context, lock KnowledgeLock) error {
	raw, err := json.Marshal(lock)
	if err != nil {
		return fmt.Errorf("encode %s: %w", KeyKnowledge, err)
	}
	if err := s.backend.Set(ctx, KeyKnowledge, string(raw)); err != nil {
		return fmt.Errorf("write %s: %w", KeyKnowledge, err)
	}
	return nil
}

func (s *Store) ClearKnowledgeLock(ctx context.Context) error {
	if err := s.backend.Delete(ctx, KeyKnowledge); err != nil {
		return fmt.Errorf("delete %s: %w", KeyKnowledge, err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.backend.Close()
}
