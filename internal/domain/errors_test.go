package domain

import (
	"errors"
	"testing"
)

func TestOpErrorWrapUnwrap(t *testing.T) {
	root := errors.New("root")
	err := &OpError{
		Op:   "yamlexperiment.load",
		Kind: KindInvalidConfig,
		Path: "experiments/bad.yaml",
		Err:  root,
	}

	if !errors.Is(err, root) {
		t.Fatalf("expected errors.Is to match wrapped error")
	}

	var got *OpError
	if !errors.As(err, &got) {
		t.Fatalf("expected errors.As to match OpError")
	}
	if got.Kind != KindInvalidConfig {
		t.Fatalf("expected kind %s", KindInvalidConfig)
	}
}

func TestIsKind(t *testing.T) {
	err := &OpError{Op: "launcher.submit", Kind: KindLaunch}

	if !IsKind(err, KindLaunch) {
		t.Fatalf("expected IsKind to match")
	}
	if IsKind(err, KindNotFound) {
		t.Fatalf("did not expect not_found kind")
	}
	if IsKind(errors.New("plain"), KindLaunch) {
		t.Fatalf("plain errors have no kind")
	}
}
