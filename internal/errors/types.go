// Package errors defines the structured error type shared by linkpage
// packages, along with the error kinds raised while loading the profile
// configuration and propagating cache invalidations.
package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents different categories of errors.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeSecurity   ErrorType = "security"
	ErrorTypeIO         ErrorType = "io"
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeConfig     ErrorType = "config"
	ErrorTypeInternal   ErrorType = "internal"
)

// Common error codes.
const (
	ErrCodeConfigRead            = "ERR_CONFIG_READ"
	ErrCodeConfigParse           = "ERR_CONFIG_PARSE"
	ErrCodeUnauthorized          = "ERR_UNAUTHORIZED"
	ErrCodeInvalidationTransport = "ERR_INVALIDATION_TRANSPORT"
	ErrCodeInvalidPath           = "ERR_INVALID_PATH"
	ErrCodePathTraversal         = "ERR_PATH_TRAVERSAL"
	ErrCodeInternalError         = "ERR_INTERNAL"
)

// AppError is a structured error type with context.
type AppError struct {
	Type        ErrorType
	Code        string
	Message     string
	Cause       error
	Context     map[string]interface{}
	Component   string
	FilePath    string
	Recoverable bool
}

// Error implements the error interface.
func (e *AppError) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}

	if e.Component != "" {
		parts = append(parts, "component:"+e.Component)
	}

	if e.FilePath != "" {
		parts = append(parts, e.FilePath)
	}

	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")

	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is implements error comparison.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithFile records the file the error relates to.
func (e *AppError) WithFile(filePath string) *AppError {
	e.FilePath = filePath

	return e
}

// WithComponent adds component context.
func (e *AppError) WithComponent(component string) *AppError {
	e.Component = component

	return e
}

// Error creation functions

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *AppError {
	return &AppError{
		Type:        ErrorTypeValidation,
		Code:        code,
		Message:     message,
		Recoverable: true,
	}
}

// NewSecurityError creates a security error.
func NewSecurityError(code, message string) *AppError {
	return &AppError{
		Type:        ErrorTypeSecurity,
		Code:        code,
		Message:     message,
		Recoverable: false,
	}
}

// NewIOError creates an I/O error.
func NewIOError(code, message string, cause error) *AppError {
	return &AppError{
		Type:        ErrorTypeIO,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// NewConfigError creates a configuration error.
func NewConfigError(code, message string) *AppError {
	return &AppError{
		Type:        ErrorTypeConfig,
		Code:        code,
		Message:     message,
		Recoverable: false,
	}
}

// NewNetworkError creates a network error.
func NewNetworkError(code, message string, cause error) *AppError {
	return &AppError{
		Type:        ErrorTypeNetwork,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: true,
	}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *AppError {
	return &AppError{
		Type:        ErrorTypeInternal,
		Code:        code,
		Message:     message,
		Cause:       cause,
		Recoverable: false,
	}
}

// Profile configuration and invalidation errors

// NewConfigReadError reports a profile file that is missing or unreadable.
func NewConfigReadError(path string, cause error) *AppError {
	return NewIOError(ErrCodeConfigRead, "cannot read profile configuration", cause).
		WithFile(path)
}

// NewConfigParseError reports a profile file that is not well-formed.
func NewConfigParseError(path string, cause error) *AppError {
	err := NewConfigError(ErrCodeConfigParse, "cannot parse profile configuration").
		WithFile(path)
	err.Cause = cause

	return err
}

// NewAuthorizationError reports a rejected invalidation credential.
func NewAuthorizationError(reason string) *AppError {
	err := NewSecurityError(ErrCodeUnauthorized, "unauthorized: "+reason)
	err.Recoverable = true

	return err
}

// NewInvalidationTransportError reports a failed loopback invalidation call.
func NewInvalidationTransportError(target string, cause error) *AppError {
	return NewNetworkError(ErrCodeInvalidationTransport, "invalidation call failed", cause).
		WithContext("target", target)
}

// Error recovery and handling utilities

// IsRecoverable checks if an error is recoverable.
func IsRecoverable(err error) bool {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Recoverable
	}

	return false
}

// IsSecurityError checks if an error is security-related.
func IsSecurityError(err error) bool {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Type == ErrorTypeSecurity
	}

	return false
}

// IsConfigReadError reports whether err is a profile read failure.
func IsConfigReadError(err error) bool {
	return hasCode(err, ErrCodeConfigRead)
}

// IsConfigParseError reports whether err is a profile parse failure.
func IsConfigParseError(err error) bool {
	return hasCode(err, ErrCodeConfigParse)
}

// IsAuthorizationError reports whether err is a rejected credential.
func IsAuthorizationError(err error) bool {
	return hasCode(err, ErrCodeUnauthorized)
}

// IsInvalidationTransportError reports whether err is a failed invalidation call.
func IsInvalidationTransportError(err error) bool {
	return hasCode(err, ErrCodeInvalidationTransport)
}

func hasCode(err error, code string) bool {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code == code
	}

	return false
}

// ErrorHandler provides centralized error handling.
type ErrorHandler struct {
	logger Logger
}

// Logger interface for error logging.
type Logger interface {
	Error(ctx context.Context, err error, msg string, fields ...interface{})
	Warn(ctx context.Context, err error, msg string, fields ...interface{})
}

// NewErrorHandler creates a new error handler.
func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle logs an error at a level that matches its type. Recoverable
// errors are warnings; everything else is logged as an error.
func (h *ErrorHandler) Handle(ctx context.Context, err error) {
	if err == nil || h.logger == nil {
		return
	}

	var ae *AppError
	if !errors.As(err, &ae) {
		h.logger.Error(ctx, err, "Unhandled error occurred")
		return
	}

	fields := []interface{}{"type", ae.Type, "code", ae.Code}
	if ae.Component != "" {
		fields = append(fields, "component", ae.Component)
	}
	if ae.FilePath != "" {
		fields = append(fields, "file", ae.FilePath)
	}

	switch {
	case IsSecurityError(ae):
		h.logger.Warn(ctx, err, "Security check rejected request", fields...)
	case IsRecoverable(ae):
		h.logger.Warn(ctx, err, "Recoverable error occurred", fields...)
	default:
		h.logger.Error(ctx, err, "Error occurred", fields...)
	}
}

// Helper functions for common errors

// ErrInvalidPath creates a path validation error.
func ErrInvalidPath(path string) *AppError {
	return NewValidationError(ErrCodeInvalidPath, "invalid path: "+path)
}

// ErrPathTraversal creates a path traversal security error.
func ErrPathTraversal(path string) *AppError {
	return NewSecurityError(ErrCodePathTraversal, "path traversal attempt: "+path)
}
