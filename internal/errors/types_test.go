package errors

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppErrorMessage(t *testing.T) {
	err := NewConfigReadError("/srv/config.json", fs.ErrNotExist)

	assert.Equal(t, "[ERR_CONFIG_READ] /srv/config.json cannot read profile configuration: file does not exist", err.Error())
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Equal(t, ErrorTypeIO, err.Type)
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		read      bool
		parse     bool
		auth      bool
		transport bool
	}{
		{name: "read", err: NewConfigReadError("a.json", fs.ErrPermission), read: true},
		{name: "parse", err: NewConfigParseError("a.json", errors.New("unexpected EOF")), parse: true},
		{name: "auth", err: NewAuthorizationError("token mismatch"), auth: true},
		{name: "transport", err: NewInvalidationTransportError("http://localhost:3000", errors.New("refused")), transport: true},
		{name: "wrapped parse", err: fmt.Errorf("startup: %w", NewConfigParseError("a.json", nil)), parse: true},
		{name: "plain", err: errors.New("plain")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.read, IsConfigReadError(tt.err))
			assert.Equal(t, tt.parse, IsConfigParseError(tt.err))
			assert.Equal(t, tt.auth, IsAuthorizationError(tt.err))
			assert.Equal(t, tt.transport, IsInvalidationTransportError(tt.err))
		})
	}
}

func TestAppErrorIs(t *testing.T) {
	err := NewConfigParseError("one.json", errors.New("bad"))
	other := NewConfigParseError("two.json", nil)

	assert.True(t, errors.Is(err, other))
	assert.False(t, errors.Is(err, NewConfigReadError("one.json", nil)))
}

func TestRecoverability(t *testing.T) {
	assert.True(t, IsRecoverable(NewAuthorizationError("missing token")))
	assert.True(t, IsRecoverable(NewInvalidationTransportError("x", nil)))
	assert.False(t, IsRecoverable(NewConfigReadError("x", nil)))
	assert.True(t, IsSecurityError(NewAuthorizationError("missing token")))
}

type recordingLogger struct {
	errors []string
	warns  []string
}

func (l *recordingLogger) Error(_ context.Context, _ error, msg string, _ ...interface{}) {
	l.errors = append(l.errors, msg)
}

func (l *recordingLogger) Warn(_ context.Context, _ error, msg string, _ ...interface{}) {
	l.warns = append(l.warns, msg)
}

func TestErrorHandler(t *testing.T) {
	logger := &recordingLogger{}
	handler := NewErrorHandler(logger)
	ctx := context.Background()

	handler.Handle(ctx, nil)
	handler.Handle(ctx, NewAuthorizationError("bad token"))
	handler.Handle(ctx, NewInvalidationTransportError("x", nil))
	handler.Handle(ctx, NewConfigParseError("x", nil))
	handler.Handle(ctx, errors.New("boom"))

	require.Len(t, logger.warns, 2)
	require.Len(t, logger.errors, 2)
	assert.Equal(t, "Security check rejected request", logger.warns[0])
	assert.Equal(t, "Unhandled error occurred", logger.errors[1])
}

func TestPathErrors(t *testing.T) {
	traversal := ErrPathTraversal("../config.json")
	assert.True(t, IsSecurityError(traversal))
	assert.False(t, IsRecoverable(traversal))
	assert.Equal(t, ErrCodePathTraversal, traversal.Code)

	invalid := ErrInvalidPath("notes.txt")
	assert.False(t, IsSecurityError(invalid))
	assert.True(t, IsRecoverable(invalid))
	assert.Contains(t, invalid.Error(), "notes.txt")

	internal := NewInternalError(ErrCodeInternalError, "cannot render page", errors.New("boom")).WithComponent("/")
	assert.Equal(t, ErrorTypeInternal, internal.Type)
	assert.Equal(t, "[ERR_INTERNAL] component:/ cannot render page: boom", internal.Error())

	logger := &recordingLogger{}
	handler := NewErrorHandler(logger)
	handler.Handle(context.Background(), traversal)
	handler.Handle(context.Background(), internal)
	assert.Equal(t, []string{"Security check rejected request"}, logger.warns)
	assert.Equal(t, []string{"Error occurred"}, logger.errors)
}
