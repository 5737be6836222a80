// Package protocol defines the discrete message types exchanged between a
// client and one session: JSON-RPC 2.0 framing with one typed variant per
// supported method.
package protocol

import (
	"encoding/json"
	"fmt"
)

// Supported request methods.
const (
	MethodListTools     = "tools/list"
	MethodListResources = "resources/list"
	MethodReadResource  = "resources/read"
	MethodCallTool      = "tools/call"
)

// JSON-RPC error codes used on the wire.
const (
	CodeParseError     = -32700
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
	CodeToolTimeout    = -32001
	CodeResourceError  = -32002
)

// Request is one discrete inbound protocol message.
// ID is `any` because JSON-RPC 2.0 allows string, number, or null.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// CallToolParams are the parameters of a tools/call request.
type CallToolParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ReadResourceParams are the parameters of a resources/read request.
type ReadResourceParams struct {
	URI string `json:"uri"`
}

// Response is one discrete outbound protocol message. Exactly one of
// Result and Error is set.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *ErrorObject    `json:"error,omitempty"`
}

// ErrorObject is the JSON-RPC error member of a failed response.
type ErrorObject struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *ErrorObject) Error() string {
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}

// ParseRequest decodes one discrete message body. It validates framing
// only; method-specific params are decoded by the handler.
func ParseRequest(body []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, fmt.Errorf("malformed message body: %w", err)
	}
	if req.JSONRPC != "2.0" {
		return nil, fmt.Errorf("unsupported jsonrpc version %q", req.JSONRPC)
	}
	if req.Method == "" {
		return nil, fmt.Errorf("message has no method")
	}
	return &req, nil
}

// NewResult builds a success response carrying the marshaled result.
func NewResult(id any, result any) (*Response, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return &Response{JSONRPC: "2.0", ID: id, Result: raw}, nil
}

// NewError builds a failure response.
func NewError(id any, code int, message string, data any) *Response {
	return &Response{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &ErrorObject{Code: code, Message: message, Data: data},
	}
}
