package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainErrorFormat(t *testing.T) {
	err := NewDomainError("VideoBackend.Search", ErrBackendStatus, "HTTP 502")
	want := "VideoBackend.Search: HTTP 502: video backend returned an error"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}

func TestDomainErrorFormatNoDetail(t *testing.T) {
	err := NewDomainError("Config.Load", ErrConfigLoad, "")
	want := "Config.Load: failed to load configuration"
	if err.Error() != want {
		t.Errorf("got %q, want %q", err.Error(), want)
	}
}

func TestDomainErrorUnwrap(t *testing.T) {
	err := NewDomainError("VideoBackend.Search", ErrMalformedResponse, "clip 3 missing url")
	if !errors.Is(err, ErrMalformedResponse) {
		t.Error("errors.Is should match ErrMalformedResponse")
	}
}

func TestDomainErrorAs(t *testing.T) {
	err := NewDomainError("VideoBackend.Search", ErrBackendUnavailable, "dial tcp: refused")
	var de *DomainError
	if !errors.As(err, &de) {
		t.Fatal("errors.As should match *DomainError")
	}
	if de.Op != "VideoBackend.Search" {
		t.Errorf("Op = %q, want %q", de.Op, "VideoBackend.Search")
	}
}

func TestWrapOp(t *testing.T) {
	if WrapOp("op", nil) != nil {
		t.Error("WrapOp(nil) should return nil")
	}
	err := WrapOp("QueryVideos", ErrInvalidInput)
	if !errors.Is(err, ErrInvalidInput) {
		t.Error("wrapped error should match sentinel")
	}
	if got := err.Error(); got != "QueryVideos: invalid input" {
		t.Errorf("got %q", got)
	}
}

func TestIsRetryableError(t *testing.T) {
	assert.True(t, IsRetryableError(ErrBackendUnavailable))
	assert.True(t, IsRetryableError(ErrTimeout))
	assert.True(t, IsRetryableError(ErrRateLimit))
	assert.True(t, IsRetryableError(fmt.Errorf("search: %w", ErrBackendUnavailable)))

	assert.False(t, IsRetryableError(nil))
	assert.False(t, IsRetryableError(ErrInvalidInput))
	assert.False(t, IsRetryableError(ErrBackendStatus))
	assert.False(t, IsRetryableError(ErrMalformedResponse))
}

func TestErrorCodeOf_DirectSentinel(t *testing.T) {
	assert.Equal(t, CodeInvalidInput, ErrorCodeOf(ErrInvalidInput))
	assert.Equal(t, CodeBackendUnavailable, ErrorCodeOf(ErrBackendUnavailable))
	assert.Equal(t, CodeMalformedResponse, ErrorCodeOf(ErrMalformedResponse))
	assert.Equal(t, CodeDecryption, ErrorCodeOf(ErrDecryption))
}

func TestErrorCodeOf_DomainError(t *testing.T) {
	err := NewDomainError("VideoBackend.Search", ErrBackendStatus, "HTTP 503")
	assert.Equal(t, CodeBackendStatus, ErrorCodeOf(err))
}

func TestErrorCodeOf_WrappedError(t *testing.T) {
	err := fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", ErrTimeout))
	assert.Equal(t, CodeTimeout, ErrorCodeOf(err))
}

func TestErrorCodeOf_Unknown(t *testing.T) {
	assert.Equal(t, CodeUnknown, ErrorCodeOf(nil))
	assert.Equal(t, CodeUnknown, ErrorCodeOf(errors.New("some random error")))
}

func TestDomainErrorCode(t *testing.T) {
	assert.Equal(t, CodeMalformedResponse,
		NewDomainError("VideoBackend.Search", ErrMalformedResponse, "").Code())
	assert.Equal(t, CodeUnknown,
		NewDomainError("VideoBackend.Search", errors.New("unmapped"), "").Code())
}
