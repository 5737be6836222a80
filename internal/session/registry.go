// Package session owns the lifecycle of client sessions: the uuid-keyed
// registry mapping a session identifier to its transport and protocol
// handler, and the SSE transport each session exclusively owns.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fitstack/healthcalc/internal/protocol"
	hcErrors "github.com/fitstack/healthcalc/pkg/errors"
)

// Handler interprets one discrete inbound request and produces exactly one
// response. Implementations must be safe to drop after Close.
type Handler interface {
	Handle(ctx context.Context, req *protocol.Request) *protocol.Response
	Close()
}

// Session binds one client's transport and handler under an opaque
// identifier.
type Session struct {
	ID        string
	Transport *SSETransport
	Handler   Handler
	CreatedAt time.Time

	// Serializes handle-then-push so responses reach the transport in
	// request processing order within the session.
	mu sync.Mutex
}

// Dispatch processes one inbound message and pushes the response down the
// session's transport. A push failure means the stream is gone and is
// returned to the caller, which should destroy the session.
func (s *Session) Dispatch(ctx context.Context, req *protocol.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp := s.Handler.Handle(ctx, req)
	if resp == nil {
		return nil
	}
	return s.Transport.Push("message", resp)
}

// Options configure a Registry.
type Options struct {
	// MaxSessions caps concurrent live sessions; zero means unlimited.
	MaxSessions int

	// NewTransport builds the transport for a freshly created session.
	NewTransport func(sessionID string) *SSETransport

	// NewHandler builds the protocol handler bound to the session.
	NewHandler func(sessionID string) Handler
}

// Registry is the authoritative map of live sessions. All methods are safe
// for concurrent use; mutations are atomic, so no caller ever observes a
// partially inserted or removed entry.
type Registry struct {
	opts     Options
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry.
func NewRegistry(opts Options) *Registry {
	return &Registry{
		opts:     opts,
		sessions: make(map[string]*Session),
	}
}

// Create generates a fresh unguessable identifier, constructs the
// session's transport and handler, and registers the pair. Identifiers are
// never reused within the process lifetime.
func (r *Registry) Create() (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.opts.MaxSessions > 0 && len(r.sessions) >= r.opts.MaxSessions {
		return nil, fmt.Errorf("session limit reached (%d)", r.opts.MaxSessions)
	}

	id := uuid.NewString()
	for _, exists := r.sessions[id]; exists; _, exists = r.sessions[id] {
		id = uuid.NewString()
	}

	s := &Session{
		ID:        id,
		Transport: r.opts.NewTransport(id),
		Handler:   r.opts.NewHandler(id),
		CreatedAt: time.Now(),
	}
	r.sessions[id] = s
	return s, nil
}

// Lookup resolves a session identifier. A miss is a normal condition
// (client retried after disconnect) and fails with ErrUnknownSession.
func (r *Registry) Lookup(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", hcErrors.ErrUnknownSession, id)
	}
	return s, nil
}

// Destroy removes the session, closes its transport, and releases its
// handler. Idempotent: destroying an absent identifier is a no-op.
func (r *Registry) Destroy(id string) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	if !ok {
		return
	}
	s.Transport.Close()
	s.Handler.Close()
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// CloseAll destroys every live session. Used on server shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range sessions {
		s.Transport.Close()
		s.Handler.Close()
	}
}
