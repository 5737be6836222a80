package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fitstack/healthcalc/internal/protocol"
	hcErrors "github.com/fitstack/healthcalc/pkg/errors"
)

// Handler is the dispatcher: it routes stream opens to session creation
// and discrete messages to the owning session. It holds no state of its
// own beyond the registry it delegates to.
type Handler struct {
	registry  SessionRegistry
	startTime time.Time
}

func NewHandler(registry SessionRegistry) *Handler {
	return &Handler{
		registry:  registry,
		startTime: time.Now(),
	}
}

// OpenStream creates a new session and binds its transport to the
// connection's response stream. It blocks for the lifetime of the stream;
// the session is destroyed when the stream ends, however it ends.
func (h *Handler) OpenStream(c *gin.Context) {
	s, err := h.registry.Create()
	if err != nil {
		slog.Error("Failed to create session", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    hcErrors.ErrCodeInternal,
				"message": err.Error(),
			},
		})
		return
	}
	defer h.registry.Destroy(s.ID)

	slog.Info("Session opened", "session", s.ID)

	if err := s.Transport.Serve(c.Request.Context(), c.Writer); err != nil {
		slog.Warn("Session stream ended with error", "session", s.ID, "error", err)
	} else {
		slog.Info("Session closed", "session", s.ID)
	}
}

// PostMessage accepts one discrete protocol message addressed to an
// existing session. The response it writes is only the acknowledgment;
// the handler's result is pushed asynchronously over the session's stream.
func (h *Handler) PostMessage(c *gin.Context) {
	sessionID := c.Query("session")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    hcErrors.ErrCodeMissingSessionID,
				"message": "session query parameter is required",
			},
		})
		return
	}

	s, err := h.registry.Lookup(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    hcErrors.ErrCodeUnknownSession,
				"message": err.Error(),
			},
		})
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    hcErrors.ErrCodeValidation,
				"message": "failed to read message body: " + err.Error(),
			},
		})
		return
	}

	req, err := protocol.ParseRequest(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    hcErrors.ErrCodeValidation,
				"message": err.Error(),
			},
		})
		return
	}

	// The eventual result travels over the session's push stream, not this
	// response. A push failure means the stream is gone, which is
	// session-terminal.
	go func() {
		if err := s.Dispatch(context.Background(), req); err != nil {
			if errors.Is(err, hcErrors.ErrTransportClosed) {
				slog.Info("Session transport closed during dispatch", "session", s.ID)
			} else {
				slog.Error("Failed to dispatch message", "session", s.ID, "error", err)
			}
			h.registry.Destroy(s.ID)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{"success": true})
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"uptime":   time.Since(h.startTime).Seconds(),
		"sessions": h.registry.Len(),
	})
}
