package errors

import "errors"

type ErrorCode string

const (
	ErrCodeValidation       ErrorCode = "VALIDATION_ERROR"
	ErrCodeMissingSessionID ErrorCode = "MISSING_SESSION_ID"
	ErrCodeUnknownSession   ErrorCode = "UNKNOWN_SESSION"
	ErrCodeUnknownTool      ErrorCode = "UNKNOWN_TOOL"
	ErrCodeUnknownResource  ErrorCode = "UNKNOWN_RESOURCE"
	ErrCodeInvalidArguments ErrorCode = "INVALID_ARGUMENTS"
	ErrCodeToolExecution    ErrorCode = "TOOL_EXECUTION_ERROR"
	ErrCodeToolTimeout      ErrorCode = "TOOL_EXECUTION_TIMEOUT"
	ErrCodeTransportClosed  ErrorCode = "TRANSPORT_CLOSED"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
)

var (
	ErrUnknownSession  = errors.New("unknown session")
	ErrUnknownTool     = errors.New("unknown tool")
	ErrUnknownResource = errors.New("unknown resource")
	ErrTransportClosed = errors.New("transport closed")
)
