package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitstack/healthcalc/internal/protocol"
	hcErrors "github.com/fitstack/healthcalc/pkg/errors"
)

// stubHandler records handled requests and answers with a canned response.
type stubHandler struct {
	sessionID string
	handled   []*protocol.Request
	closed    bool
}

func (s *stubHandler) Handle(_ context.Context, req *protocol.Request) *protocol.Response {
	s.handled = append(s.handled, req)
	resp, _ := protocol.NewResult(req.ID, map[string]any{"session": s.sessionID})
	return resp
}

func (s *stubHandler) Close() { s.closed = true }

func newTestRegistry(maxSessions int) (*Registry, map[string]*stubHandler) {
	handlers := make(map[string]*stubHandler)
	r := NewRegistry(Options{
		MaxSessions: maxSessions,
		NewTransport: func(sessionID string) *SSETransport {
			endpoint := fmt.Sprintf("/mcp/message?session=%s", sessionID)
			return NewSSETransport(sessionID, endpoint, 8, time.Minute)
		},
		NewHandler: func(sessionID string) Handler {
			h := &stubHandler{sessionID: sessionID}
			handlers[sessionID] = h
			return h
		},
	})
	return r, handlers
}

// TestRegistry_CreateLookup verifies lookup succeeds immediately after
// create and the identifier is bound to its own transport and handler.
func TestRegistry_CreateLookup(t *testing.T) {
	r, _ := newTestRegistry(0)

	s, err := r.Create()
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)

	got, err := r.Lookup(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)
	assert.Equal(t, s.ID, got.Transport.SessionID())
	assert.Equal(t, 1, r.Len())
}

// TestRegistry_LookupUnknown verifies a miss is a normal failure, not a
// panic.
func TestRegistry_LookupUnknown(t *testing.T) {
	r, _ := newTestRegistry(0)

	_, err := r.Lookup("doesnotexist")
	assert.True(t, errors.Is(err, hcErrors.ErrUnknownSession))
}

// TestRegistry_Destroy verifies lookup fails immediately after destroy and
// that the transport and handler are released.
func TestRegistry_Destroy(t *testing.T) {
	r, handlers := newTestRegistry(0)

	s, err := r.Create()
	require.NoError(t, err)

	r.Destroy(s.ID)

	_, err = r.Lookup(s.ID)
	assert.True(t, errors.Is(err, hcErrors.ErrUnknownSession))
	assert.Equal(t, 0, r.Len())
	assert.True(t, handlers[s.ID].closed, "handler should be released on destroy")

	select {
	case <-s.Transport.Done():
	default:
		t.Fatal("transport should be closed on destroy")
	}
}

// TestRegistry_DestroyIdempotent verifies destroying an absent identifier
// is a no-op.
func TestRegistry_DestroyIdempotent(t *testing.T) {
	r, _ := newTestRegistry(0)

	s, err := r.Create()
	require.NoError(t, err)

	r.Destroy(s.ID)
	r.Destroy(s.ID)
	r.Destroy("never-existed")
}

// TestRegistry_UniqueIdentifiers verifies identifiers are unique across
// creations, including after destruction.
func TestRegistry_UniqueIdentifiers(t *testing.T) {
	r, _ := newTestRegistry(0)

	seen := make(map[string]bool)
	for range 100 {
		s, err := r.Create()
		require.NoError(t, err)
		assert.False(t, seen[s.ID], "identifier %s reused", s.ID)
		seen[s.ID] = true
		r.Destroy(s.ID)
	}
}

// TestRegistry_MaxSessions verifies the session cap.
func TestRegistry_MaxSessions(t *testing.T) {
	r, _ := newTestRegistry(2)

	a, err := r.Create()
	require.NoError(t, err)
	_, err = r.Create()
	require.NoError(t, err)

	_, err = r.Create()
	assert.Error(t, err)

	// Destroying one frees a slot.
	r.Destroy(a.ID)
	_, err = r.Create()
	assert.NoError(t, err)
}

// TestRegistry_CloseAll verifies shutdown releases every session.
func TestRegistry_CloseAll(t *testing.T) {
	r, handlers := newTestRegistry(0)

	var ids []string
	for range 3 {
		s, err := r.Create()
		require.NoError(t, err)
		ids = append(ids, s.ID)
	}

	r.CloseAll()

	assert.Equal(t, 0, r.Len())
	for _, id := range ids {
		_, err := r.Lookup(id)
		assert.True(t, errors.Is(err, hcErrors.ErrUnknownSession))
		assert.True(t, handlers[id].closed)
	}
}

// TestSession_Dispatch verifies a dispatched message reaches the handler
// and its response is pushed on the session's own transport.
func TestSession_Dispatch(t *testing.T) {
	r, handlers := newTestRegistry(0)

	s, err := r.Create()
	require.NoError(t, err)

	req := &protocol.Request{JSONRPC: "2.0", ID: 1, Method: protocol.MethodListTools}
	require.NoError(t, s.Dispatch(context.Background(), req))

	require.Len(t, handlers[s.ID].handled, 1)
	assert.Equal(t, protocol.MethodListTools, handlers[s.ID].handled[0].Method)

	select {
	case ev := <-s.Transport.outbound:
		assert.Equal(t, "message", ev.Event)
	default:
		t.Fatal("response was not pushed to the transport")
	}
}

// TestSession_Isolation verifies a message sent to one session never
// triggers a push on another session's transport.
func TestSession_Isolation(t *testing.T) {
	r, handlers := newTestRegistry(0)

	a, err := r.Create()
	require.NoError(t, err)
	b, err := r.Create()
	require.NoError(t, err)

	req := &protocol.Request{JSONRPC: "2.0", ID: 1, Method: protocol.MethodListTools}
	require.NoError(t, a.Dispatch(context.Background(), req))

	assert.Len(t, handlers[a.ID].handled, 1)
	assert.Empty(t, handlers[b.ID].handled)

	select {
	case <-b.Transport.outbound:
		t.Fatal("session B received a push for session A's message")
	default:
	}
	select {
	case <-a.Transport.outbound:
	default:
		t.Fatal("session A did not receive its own response")
	}
}

// TestSession_DispatchAfterClose verifies dispatch surfaces the terminal
// transport failure once the stream is gone.
func TestSession_DispatchAfterClose(t *testing.T) {
	r, _ := newTestRegistry(0)

	s, err := r.Create()
	require.NoError(t, err)
	s.Transport.Close()

	req := &protocol.Request{JSONRPC: "2.0", ID: 1, Method: protocol.MethodListTools}
	err = s.Dispatch(context.Background(), req)
	assert.True(t, errors.Is(err, hcErrors.ErrTransportClosed))
}
