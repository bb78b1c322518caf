package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidDataset, "dataset has no items: %s", "foo.json")

	if err.Code != ErrCodeInvalidDataset {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidDataset)
	}
	if err.Message != "dataset has no items: foo.json" {
		t.Errorf("Message = %q", err.Message)
	}
	if err.Cause != nil {
		t.Error("New should not set a cause")
	}
	want := "INVALID_DATASET: dataset has no items: foo.json"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestWrap(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Wrap(ErrCodeNetwork, cause, "failed to fetch %s", "http://example.com")

	if err.Cause != cause {
		t.Error("Wrap should preserve the cause")
	}
	if !stderrors.Is(err, cause) {
		t.Error("wrapped error should satisfy errors.Is on the cause")
	}
	want := "NETWORK_ERROR: failed to fetch http://example.com: connection refused"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestIs(t *testing.T) {
	err := New(ErrCodeClusterNotFound, "cluster 42 not found")

	if !Is(err, ErrCodeClusterNotFound) {
		t.Error("Is should match the error's own code")
	}
	if Is(err, ErrCodeNetwork) {
		t.Error("Is should not match a different code")
	}
	if Is(fmt.Errorf("plain"), ErrCodeNetwork) {
		t.Error("Is should not match plain errors")
	}

	// Code survives wrapping in plain errors.
	wrapped := fmt.Errorf("context: %w", err)
	if !Is(wrapped, ErrCodeClusterNotFound) {
		t.Error("Is should unwrap the chain")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeTimeout, "slow")); got != ErrCodeTimeout {
		t.Errorf("GetCode = %v", got)
	}
	if got := GetCode(fmt.Errorf("plain")); got != "" {
		t.Errorf("GetCode on plain error = %v, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeInvalidView, "zoom must be positive, got -1")
	if got := UserMessage(err); got != "zoom must be positive, got -1" {
		t.Errorf("UserMessage = %q", got)
	}
	if got := UserMessage(fmt.Errorf("plain")); got != "plain" {
		t.Errorf("UserMessage on plain error = %q", got)
	}
}
