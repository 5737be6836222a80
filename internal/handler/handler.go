// Package handler implements the per-session protocol handler: it
// interprets one discrete inbound request and produces exactly one
// response, delegating tool invocation to the computation engine.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/fitstack/healthcalc/internal/catalog"
	"github.com/fitstack/healthcalc/internal/protocol"
	"github.com/fitstack/healthcalc/internal/validator"
	hcErrors "github.com/fitstack/healthcalc/pkg/errors"
)

// Engine is the computation collaborator: a pure function from validated
// arguments to a result payload.
type Engine interface {
	Compute(ctx context.Context, args map[string]any) (any, error)
}

// Handler serves one session. It holds no state beyond the shared
// read-only catalog, so it is safe to create per session without
// synchronization.
type Handler struct {
	sessionID   string
	catalog     *catalog.Catalog
	engine      Engine
	callTimeout time.Duration
}

// New creates a handler for one session. callTimeout bounds each tool
// delegation; zero means 30 seconds.
func New(sessionID string, cat *catalog.Catalog, engine Engine, callTimeout time.Duration) *Handler {
	if callTimeout <= 0 {
		callTimeout = 30 * time.Second
	}
	return &Handler{
		sessionID:   sessionID,
		catalog:     cat,
		engine:      engine,
		callTimeout: callTimeout,
	}
}

// Handle dispatches one request to its method implementation. Recoverable
// failures come back as structured error responses; Handle itself never
// fails, so a bad request cannot take the session down.
func (h *Handler) Handle(ctx context.Context, req *protocol.Request) *protocol.Response {
	switch req.Method {
	case protocol.MethodListTools:
		return h.listTools(req)
	case protocol.MethodListResources:
		return h.listResources(req)
	case protocol.MethodReadResource:
		return h.readResource(req)
	case protocol.MethodCallTool:
		return h.callTool(ctx, req)
	default:
		return protocol.NewError(req.ID, protocol.CodeMethodNotFound,
			fmt.Sprintf("unknown method: %s", req.Method), nil)
	}
}

// Close releases handler-held resources. This handler holds none, but the
// registry calls it unconditionally so handlers that do are released on
// session destruction.
func (h *Handler) Close() {}

func (h *Handler) listTools(req *protocol.Request) *protocol.Response {
	result := struct {
		Tools []*catalog.Tool `json:"tools"`
	}{Tools: h.catalog.Tools()}
	return h.result(req.ID, result)
}

func (h *Handler) listResources(req *protocol.Request) *protocol.Response {
	result := struct {
		Resources []*catalog.Resource `json:"resources"`
	}{Resources: h.catalog.Resources()}
	return h.result(req.ID, result)
}

func (h *Handler) readResource(req *protocol.Request) *protocol.Response {
	var params protocol.ReadResourceParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return protocol.NewError(req.ID, protocol.CodeInvalidParams,
			fmt.Sprintf("invalid resources/read params: %v", err), nil)
	}

	contents, err := h.catalog.ReadResource(params.URI)
	if err != nil {
		return protocol.NewError(req.ID, protocol.CodeResourceError, err.Error(),
			map[string]any{"code": hcErrors.ErrCodeUnknownResource, "uri": params.URI})
	}

	result := struct {
		Contents []*catalog.ResourceContents `json:"contents"`
	}{Contents: []*catalog.ResourceContents{contents}}
	return h.result(req.ID, result)
}

// callToolResult is the wire shape of a successful tools/call response.
type callToolResult struct {
	Content           []contentItem  `json:"content"`
	StructuredContent any            `json:"structuredContent,omitempty"`
	Meta              map[string]any `json:"_meta,omitempty"`
}

type contentItem struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func (h *Handler) callTool(ctx context.Context, req *protocol.Request) *protocol.Response {
	var params protocol.CallToolParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return protocol.NewError(req.ID, protocol.CodeInvalidParams,
			fmt.Sprintf("invalid tools/call params: %v", err), nil)
	}

	if err := validator.ValidateToolName(params.Name); err != nil {
		return protocol.NewError(req.ID, protocol.CodeInvalidParams, err.Error(),
			map[string]any{"code": hcErrors.ErrCodeInvalidArguments})
	}

	tool, err := h.catalog.Tool(params.Name)
	if err != nil {
		return protocol.NewError(req.ID, protocol.CodeInvalidParams, err.Error(),
			map[string]any{"code": hcErrors.ErrCodeUnknownTool, "tool": params.Name})
	}

	// Structural sanitation, then schema validation. Both must pass before
	// the engine sees the arguments.
	if err := validator.SanitizeArguments(params.Arguments); err != nil {
		return protocol.NewError(req.ID, protocol.CodeInvalidParams, err.Error(),
			map[string]any{"code": hcErrors.ErrCodeInvalidArguments, "tool": params.Name})
	}
	if err := tool.ValidateArguments(params.Arguments); err != nil {
		return protocol.NewError(req.ID, protocol.CodeInvalidParams,
			fmt.Sprintf("arguments do not match input schema: %v", err),
			map[string]any{"code": hcErrors.ErrCodeInvalidArguments, "tool": params.Name})
	}

	ctx, cancel := context.WithTimeout(ctx, h.callTimeout)
	defer cancel()

	type outcome struct {
		payload any
		err     error
	}
	done := make(chan outcome, 1)
	go func() {
		payload, err := h.engine.Compute(ctx, params.Arguments)
		done <- outcome{payload: payload, err: err}
	}()

	select {
	case <-ctx.Done():
		slog.Warn("Tool delegation timed out",
			"session", h.sessionID,
			"tool", params.Name,
			"timeout_ms", h.callTimeout.Milliseconds(),
		)
		return protocol.NewError(req.ID, protocol.CodeToolTimeout,
			fmt.Sprintf("tool execution timed out after %dms", h.callTimeout.Milliseconds()),
			map[string]any{"code": hcErrors.ErrCodeToolTimeout, "tool": params.Name})
	case out := <-done:
		if errors.Is(out.err, context.DeadlineExceeded) {
			return protocol.NewError(req.ID, protocol.CodeToolTimeout,
				fmt.Sprintf("tool execution timed out after %dms", h.callTimeout.Milliseconds()),
				map[string]any{"code": hcErrors.ErrCodeToolTimeout, "tool": params.Name})
		}
		if out.err != nil {
			slog.Error("Tool delegation failed",
				"session", h.sessionID,
				"tool", params.Name,
				"argKeys", argKeys(params.Arguments),
				"error", out.err,
			)
			return protocol.NewError(req.ID, protocol.CodeInternalError,
				"tool execution failed",
				map[string]any{"code": hcErrors.ErrCodeToolExecution, "tool": params.Name})
		}

		text, err := json.Marshal(out.payload)
		if err != nil {
			slog.Error("Failed to marshal tool result", "session", h.sessionID, "tool", params.Name, "error", err)
			return protocol.NewError(req.ID, protocol.CodeInternalError,
				"tool execution failed",
				map[string]any{"code": hcErrors.ErrCodeToolExecution, "tool": params.Name})
		}
		return h.result(req.ID, callToolResult{
			Content:           []contentItem{{Type: "text", Text: string(text)}},
			StructuredContent: out.payload,
			Meta:              tool.Meta,
		})
	}
}

func (h *Handler) result(id any, result any) *protocol.Response {
	resp, err := protocol.NewResult(id, result)
	if err != nil {
		slog.Error("Failed to marshal response result", "session", h.sessionID, "error", err)
		return protocol.NewError(id, protocol.CodeInternalError, "internal error",
			map[string]any{"code": hcErrors.ErrCodeInternal})
	}
	return resp
}

// argKeys lists argument names for diagnostics without logging values.
func argKeys(args map[string]any) []string {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
