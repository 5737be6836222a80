package session

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/sse"

	hcErrors "github.com/fitstack/healthcalc/pkg/errors"
)

// SSETransport delivers discrete, ordered messages from the server to one
// client over a persistent server-sent-events stream. Push submits a
// message; Serve drains the outbound queue onto the HTTP response. Messages
// are delivered in submission order and never silently dropped: once the
// stream is gone, Push fails with ErrTransportClosed.
type SSETransport struct {
	sessionID string
	endpoint  string
	keepAlive time.Duration

	outbound  chan sse.Event
	closed    chan struct{}
	closeOnce sync.Once
}

// NewSSETransport creates a transport for one session. endpoint is the
// message-submission URL (including the session query parameter) announced
// to the client in the initial event.
func NewSSETransport(sessionID, endpoint string, bufferSize int, keepAlive time.Duration) *SSETransport {
	if bufferSize <= 0 {
		bufferSize = 16
	}
	return &SSETransport{
		sessionID: sessionID,
		endpoint:  endpoint,
		keepAlive: keepAlive,
		outbound:  make(chan sse.Event, bufferSize),
		closed:    make(chan struct{}),
	}
}

// SessionID returns the identifier of the owning session.
func (t *SSETransport) SessionID() string {
	return t.sessionID
}

// Push queues one message for delivery. Events queued by successive Push
// calls reach the client in call order. Fails with ErrTransportClosed once
// the stream has ended; the caller must treat that as session-terminal.
func (t *SSETransport) Push(event string, data any) error {
	select {
	case <-t.closed:
		return fmt.Errorf("%w: session %s", hcErrors.ErrTransportClosed, t.sessionID)
	default:
	}

	select {
	case t.outbound <- sse.Event{Event: event, Data: data}:
		return nil
	case <-t.closed:
		return fmt.Errorf("%w: session %s", hcErrors.ErrTransportClosed, t.sessionID)
	}
}

// Done is closed exactly once when the stream ends, whether by client
// disconnect, write failure, or an explicit Close. The registry waits on
// this to reclaim the session.
func (t *SSETransport) Done() <-chan struct{} {
	return t.closed
}

// Close terminates the transport. Idempotent.
func (t *SSETransport) Close() {
	t.closeOnce.Do(func() {
		close(t.closed)
	})
}

// Serve binds the transport to an HTTP response stream and blocks until
// the stream ends. It first emits the endpoint event carrying the session
// identifier so the client can address messages before any protocol
// exchange happens. Returns nil on orderly shutdown, the write error
// otherwise; either way the transport is closed on return.
func (t *SSETransport) Serve(ctx context.Context, w http.ResponseWriter) error {
	defer t.Close()

	flusher, ok := w.(http.Flusher)
	if !ok {
		return fmt.Errorf("response writer does not support streaming")
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := sse.Encode(w, sse.Event{Event: "endpoint", Data: t.endpoint}); err != nil {
		return fmt.Errorf("failed to write endpoint event: %w", err)
	}
	flusher.Flush()

	keepAlive := t.keepAlive
	if keepAlive <= 0 {
		keepAlive = 15 * time.Second
	}
	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.closed:
			// Orderly close: flush anything already queued before the
			// stream goes away.
			for {
				select {
				case ev := <-t.outbound:
					if err := sse.Encode(w, ev); err != nil {
						return fmt.Errorf("failed to write event: %w", err)
					}
					flusher.Flush()
				default:
					return nil
				}
			}
		case ev := <-t.outbound:
			if err := sse.Encode(w, ev); err != nil {
				return fmt.Errorf("failed to write event: %w", err)
			}
			flusher.Flush()
		case <-ticker.C:
			if _, err := io.WriteString(w, ": keep-alive\n\n"); err != nil {
				return fmt.Errorf("failed to write keep-alive: %w", err)
			}
			flusher.Flush()
		}
	}
}
