package apperror

import (
	"errors"
	"fmt"
	"testing"
)

var errSample = New(KindConflict, "SAMPLE", "sample conflict")

func TestErrorIsMatchesOnCode(t *testing.T) {
	specific := errSample.WithMessage("sample conflict on %d", 42)

	if !errors.Is(specific, errSample) {
		t.Fatal("expected copy with message to match sentinel")
	}
	if specific.Error() != "sample conflict on 42" {
		t.Errorf("message = %q", specific.Error())
	}

	wrapped := fmt.Errorf("service: %w", specific)
	if !errors.Is(wrapped, errSample) {
		t.Error("expected wrapped error to match sentinel")
	}
	if errors.Is(wrapped, New(KindConflict, "OTHER", "other")) {
		t.Error("expected different code not to match")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
		code string
	}{
		{"classified", errSample, KindConflict, "SAMPLE"},
		{"wrapped classified", fmt.Errorf("x: %w", errSample), KindConflict, "SAMPLE"},
		{"plain storage error", errors.New("connection reset"), KindTransient, "STORAGE_UNAVAILABLE"},
		{"transient wrapper", Transient(errors.New("deadlock")), KindTransient, "STORAGE_UNAVAILABLE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %s, want %s", got, tt.want)
			}
			if got := CodeOf(tt.err); got != tt.code {
				t.Errorf("CodeOf() = %s, want %s", got, tt.code)
			}
		})
	}
}

func TestTransientKeepsClassifiedErrors(t *testing.T) {
	if Transient(nil) != nil {
		t.Error("Transient(nil) should be nil")
	}
	if got := Transient(errSample); got != errSample {
		t.Errorf("Transient() should return classified errors unchanged, got %v", got)
	}

	cause := errors.New("broken pipe")
	if !errors.Is(Transient(cause), cause) {
		t.Error("Transient() should keep the cause in the chain")
	}
}
