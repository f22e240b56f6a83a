package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindNotFound, http.StatusNotFound},
		{KindForbidden, http.StatusForbidden},
		{KindConflict, http.StatusConflict},
		{KindValidation, http.StatusBadRequest},
		{KindUnauthenticated, http.StatusUnauthorized},
		{KindUnavailable, http.StatusServiceUnavailable},
		{KindInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := tt.kind.Status(); got != tt.want {
			t.Errorf("Kind(%d).Status() = %d, want %d", tt.kind, got, tt.want)
		}
	}
}

func TestFrom_WrappedError(t *testing.T) {
	base := Conflict("You have already applied to this job")
	wrapped := fmt.Errorf("apply: %w", base)

	got := From(wrapped)
	if got != base {
		t.Fatalf("From should unwrap to the original *Error")
	}
	if !IsKind(wrapped, KindConflict) {
		t.Error("IsKind should see through wrapping")
	}
}

func TestFrom_PlainErrorBecomesInternal(t *testing.T) {
	cause := errors.New("connection reset")
	got := From(cause)
	if got.Kind != KindInternal {
		t.Fatalf("kind = %d, want internal", got.Kind)
	}
	if !errors.Is(got, cause) {
		t.Error("internal error should wrap the cause")
	}
}
