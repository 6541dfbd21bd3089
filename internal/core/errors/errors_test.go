package errors

import (
	"errors"
	"testing"
)

func TestDomainError(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		err := New(CodeConfiguration, "weights do not sum to 1")
		if err.Error() != "[CONFIGURATION_ERROR] weights do not sum to 1" {
			t.Errorf("unexpected message %s", err.Error())
		}
	})

	t.Run("Newf", func(t *testing.T) {
		err := Newf(CodeConfiguration, "detector %q has no weight", "naming")
		if err.Error() != `[CONFIGURATION_ERROR] detector "naming" has no weight` {
			t.Errorf("unexpected message %s", err.Error())
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		original := errors.New("unexpected token")
		err := Wrap(original, CodeParseFailure, "parse failed")
		expected := "[PARSE_FAILURE] parse failed: unexpected token"
		if err.Error() != expected {
			t.Errorf("expected %s, got %s", expected, err.Error())
		}
		if !errors.Is(err, original) {
			t.Error("expected wrapped error to unwrap to original")
		}
	})

	t.Run("IsCode", func(t *testing.T) {
		err := New(CodeValidationError, "invalid input")
		if !IsCode(err, CodeValidationError) {
			t.Error("expected IsCode to return true for CodeValidationError")
		}
		if IsCode(err, CodeNotFound) {
			t.Error("expected IsCode to return false for CodeNotFound")
		}
		if IsCode(errors.New("plain"), CodeInternal) {
			t.Error("expected plain errors to carry no code")
		}
	})

	t.Run("AddContext", func(t *testing.T) {
		err := AddContext(New(CodeDetectorFault, "panic"), CtxDetector, "naming")
		var de *DomainError
		if !errors.As(err, &de) {
			t.Fatal("expected DomainError")
		}
		if de.Context[CtxDetector] != "naming" {
			t.Fatalf("expected detector context, got %v", de.Context)
		}

		plain := AddContext(errors.New("boom"), CtxPath, "a.py")
		if !IsCode(plain, CodeInternal) {
			t.Fatalf("expected plain error to be promoted to internal, got %v", plain)
		}
	})
}
