// Package session tracks render passes submitted through the HTTP bridge.
//
// A session is created when a render request is accepted and updated as the
// pass progresses, so clients can poll for the result instead of holding the
// connection open. Implementations:
//   - memory: In-memory storage for development/testing
//   - file: File-based storage for single-instance deployments
//
// # Usage
//
// Create a session store and track a pass:
//
//	store := session.NewMemoryStore()
//
//	sess := session.New("transmon", "script")
//	store.Set(ctx, sess)
//
//	// ... render in the background, then:
//	sess.Complete(artifact)
//	store.Set(ctx, sess)
//
//	// Client polls:
//	sess, err := store.Get(ctx, id)
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("not found")

	// ErrExpired is returned when a session has exceeded its TTL.
	ErrExpired = errors.New("expired")
)

// Status describes the lifecycle of a render pass.
type Status string

// Render pass states.
const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Default durations.
const (
	// DefaultTTL is how long a finished session stays retrievable.
	DefaultTTL = time.Hour
)

// Session tracks one render pass.
type Session struct {
	ID         string    `json:"id"`
	DesignName string    `json:"design_name"`
	Backend    string    `json:"backend"`
	Status     Status    `json:"status"`
	Error      string    `json:"error,omitempty"`
	Artifact   []byte    `json:"artifact,omitempty"`
	ExpiresAt  time.Time `json:"expires_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// New creates a pending session for a render pass.
func New(designName, backend string) *Session {
	now := time.Now()
	return &Session{
		ID:         uuid.NewString(),
		DesignName: designName,
		Backend:    backend,
		Status:     StatusPending,
		ExpiresAt:  now.Add(DefaultTTL),
		CreatedAt:  now,
	}
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Complete marks the session done and attaches the artifact.
func (s *Session) Complete(artifact []byte) {
	s.Status = StatusDone
	s.Artifact = artifact
}

// Fail marks the session failed with the given error.
func (s *Session) Fail(err error) {
	s.Status = StatusFailed
	if err != nil {
		s.Error = err.Error()
	}
}

// clone returns an independent copy of the session.
func (s *Session) clone() *Session {
	cp := *s
	if s.Artifact != nil {
		cp.Artifact = append([]byte(nil), s.Artifact...)
	}
	return &cp
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist.
	// Returns nil, ErrExpired if the session exists but has expired.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, session *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, sessionID string) error

	// Cleanup removes expired sessions.
	Cleanup(ctx context.Context) error
}

// =============================================================================
// Memory Store
// =============================================================================

// MemoryStore is an in-memory session store for development and testing.
// Sessions are copied on Set and Get, so a caller updating its session
// never shares memory with concurrent readers.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewMemoryStore creates an in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*Session)}
}

// Get retrieves a copy of a session by ID.
func (s *MemoryStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if sess.IsExpired() {
		s.mu.Lock()
		delete(s.sessions, sessionID)
		s.mu.Unlock()
		return nil, ErrExpired
	}
	return sess.clone(), nil
}

// Set stores a copy of the session.
func (s *MemoryStore) Set(ctx context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess.clone()
	return nil
}

// Delete removes a session.
func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// Cleanup removes expired sessions.
func (s *MemoryStore) Cleanup(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, sess := range s.sessions {
		if now.After(sess.ExpiresAt) {
			delete(s.sessions, id)
		}
	}
	return nil
}

var _ Store = (*MemoryStore)(nil)
