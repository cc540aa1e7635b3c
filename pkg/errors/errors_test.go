package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAsUnwrapsNestedError(t *testing.T) {
	t.Parallel()

	base := New(CodePayment, "lookup declined")
	wrapped := fmt.Errorf("reconcile: %w", base)

	typed := As(wrapped)
	if typed == nil {
		t.Fatal("expected typed error")
	}
	if typed.Code() != CodePayment {
		t.Fatalf("unexpected code: %s", typed.Code())
	}
}

func TestWrapKeepsCause(t *testing.T) {
	t.Parallel()

	cause := stdErrors.New("connection refused")
	err := Wrap(CodeDependency, cause, "backend unreachable")

	if !stdErrors.Is(err, cause) {
		t.Fatal("expected cause in chain")
	}
	if err.Message() != "backend unreachable" {
		t.Fatalf("unexpected message: %s", err.Message())
	}
}

func TestMetadataForUnknownCodeFallsBack(t *testing.T) {
	t.Parallel()

	meta := MetadataFor(Code("NO_SUCH_CODE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal fallback, got %d", meta.HTTPStatus)
	}
}

func TestFromStatus(t *testing.T) {
	t.Parallel()

	cases := map[int]Code{
		http.StatusUnauthorized:          CodeUnauthorized,
		http.StatusForbidden:             CodeForbidden,
		http.StatusNotFound:              CodeNotFound,
		http.StatusConflict:              CodeConflict,
		http.StatusUnprocessableEntity:   CodePayment,
		http.StatusBadRequest:            CodeValidation,
		http.StatusInternalServerError:   CodeDependency,
		http.StatusServiceUnavailable:    CodeDependency,
		http.StatusTooManyRequests:       CodeValidation,
		http.StatusRequestEntityTooLarge: CodeValidation,
	}
	for status, want := range cases {
		if got := FromStatus(status); got != want {
			t.Fatalf("status %d: expected %s got %s", status, want, got)
		}
	}
}
