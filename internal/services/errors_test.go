package services_test

import (
	"errors"
	"testing"

	"curator/internal/services"
)

func TestWrapKeepsSentinelReachable(t *testing.T) {
	cause := errors.New("boom")
	err := services.Wrap(services.ErrNetwork, "download", "fetch model", "transfer interrupted", cause)
	if !errors.Is(err, services.ErrNetwork) {
		t.Fatalf("expected ErrNetwork, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
	want := "network failure: download: fetch model: transfer interrupted: boom"
	if err.Error() != want {
		t.Fatalf("unexpected message %q, want %q", err.Error(), want)
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := services.Wrap(services.ErrNotLoaded, "inference", "generate", "load a model first", nil)
	if !errors.Is(err, services.ErrNotLoaded) {
		t.Fatalf("expected ErrNotLoaded, got %v", err)
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "planner", "", "", nil)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation fallback, got %v", err)
	}
}

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"not found", services.Wrap(services.ErrNotFound, "models", "delete", "missing", nil), false},
		{"validation", services.Wrap(services.ErrValidation, "download", "start", "empty url", nil), false},
		{"network", services.Wrap(services.ErrNetwork, "download", "fetch", "reset", nil), true},
		{"backend", services.Wrap(services.ErrBackendLoad, "inference", "load", "init failed", nil), true},
		{"generate", services.Wrap(services.ErrGenerate, "inference", "generate", "engine exited", nil), true},
	}
	for _, tc := range cases {
		if got := services.IsRetryable(tc.err); got != tc.want {
			t.Errorf("%s: IsRetryable=%v, want %v", tc.name, got, tc.want)
		}
	}
}
