// Package mcpserver exposes candidate search over the Model Context
// Protocol, so AI clients can query the resume corpus as tools.
package mcpserver

import (
	"errors"
	"fmt"

	sifterr "github.com/talentsift/talentsift/internal/errors"
)

// Custom MCP error codes, alongside the standard JSON-RPC set.
const (
	ErrCodeResumeNotFound = -32001
	ErrCodeStoreFailure   = -32002
	ErrCodeUpstream       = -32003

	ErrCodeInvalidParams = -32602
	ErrCodeInternalError = -32603
)

// MCPError is an MCP protocol error with code and message.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// NewInvalidParamsError creates an invalid-params error.
func NewInvalidParamsError(message string) *MCPError {
	return &MCPError{Code: ErrCodeInvalidParams, Message: message}
}

// MapError converts internal errors to MCP errors.
func MapError(err error) *MCPError {
	if err == nil {
		return nil
	}

	var se *sifterr.SiftError
	if errors.As(err, &se) {
		switch se.Code {
		case sifterr.ErrCodeInvalidQuery, sifterr.ErrCodeInvalidResume:
			return &MCPError{Code: ErrCodeInvalidParams, Message: se.Message}
		case sifterr.ErrCodeResumeNotFound:
			return &MCPError{Code: ErrCodeResumeNotFound, Message: se.Message}
		case sifterr.ErrCodeStoreUnavailable, sifterr.ErrCodeStoreCorrupt:
			return &MCPError{Code: ErrCodeStoreFailure, Message: se.Message}
		case sifterr.ErrCodeUpstreamTimeout, sifterr.ErrCodeUpstreamUnavailable,
			sifterr.ErrCodeEmbeddingFailed, sifterr.ErrCodeRerankFailed:
			return &MCPError{Code: ErrCodeUpstream, Message: se.Message}
		}
	}
	return &MCPError{Code: ErrCodeInternalError, Message: err.Error()}
}
