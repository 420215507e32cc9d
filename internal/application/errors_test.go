package application

import (
	"errors"
	"fmt"
	"testing"

	"github.com/example/mentorship-scheduler/internal/persistence"
	"github.com/example/mentorship-scheduler/internal/scheduler"
)

func TestValidationError_Error(t *testing.T) {
	t.Parallel()

	var err *ValidationError
	if err.Error() != "" {
		t.Fatalf("expected empty string for nil error, got %q", err.Error())
	}

	empty := &ValidationError{}
	if got := empty.Error(); got != "validation failed" {
		t.Fatalf("expected generic message for empty error, got %q", got)
	}

	withFields := &ValidationError{FieldErrors: map[string]string{"field": "invalid"}}
	if got := withFields.Error(); got != "validation failed" {
		t.Fatalf("expected consistent message for populated error, got %q", got)
	}
}

func TestValidationError_HasErrors(t *testing.T) {
	t.Parallel()

	if err := (&ValidationError{}).HasErrors(); err {
		t.Fatalf("expected HasErrors to report false for empty error")
	}

	if err := (&ValidationError{FieldErrors: map[string]string{"field": "bad"}}).HasErrors(); !err {
		t.Fatalf("expected HasErrors to report true when fields are present")
	}
}

func TestValidationError_AddAndMerge(t *testing.T) {
	t.Parallel()

	base := &ValidationError{}
	base.add("first", "value")
	if got := base.FieldErrors["first"]; got != "value" {
		t.Fatalf("expected add to populate map, got %q", got)
	}

	other := &ValidationError{FieldErrors: map[string]string{"second": "another"}}
	base.merge(other)
	if got := base.FieldErrors["second"]; got != "another" {
		t.Fatalf("expected merge to copy field, got %q", got)
	}

	base.merge(nil)
	if len(base.FieldErrors) != 2 {
		t.Fatalf("expected merge with nil to leave fields unchanged")
	}
}

func TestMapStoreError(t *testing.T) {
	t.Parallel()

	if mapStoreError(nil) != nil {
		t.Fatalf("expected nil for nil error")
	}

	cases := []struct {
		name string
		in   error
		want error
	}{
		{name: "not found", in: fmt.Errorf("load: %w", persistence.ErrNotFound), want: ErrNotFound},
		{name: "duplicate", in: persistence.ErrDuplicate, want: ErrAlreadyExists},
		{name: "conflict", in: persistence.ErrConflict, want: ErrInvalidTransition},
		{name: "already mapped", in: ErrNotFound, want: ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := mapStoreError(tc.in); !errors.Is(got, tc.want) {
				t.Fatalf("mapStoreError(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}

	var vErr *ValidationError
	if !errors.As(mapStoreError(persistence.ErrForeignKeyViolation), &vErr) || vErr.FieldErrors["session_id"] == "" {
		t.Fatalf("expected foreign key violation to become a session_id validation error")
	}
	if !errors.As(mapStoreError(persistence.ErrConstraintViolation), &vErr) {
		t.Fatalf("expected constraint violation to become a validation error")
	}

	opaque := errors.New("connection reset")
	if got := mapStoreError(opaque); got != opaque {
		t.Fatalf("expected unknown store errors to pass through, got %v", got)
	}
}

func TestErrInvalidTransitionWrapsScheduler(t *testing.T) {
	t.Parallel()

	if !errors.Is(ErrInvalidTransition, scheduler.ErrInvalidTransition) {
		t.Fatalf("expected application error to wrap scheduler.ErrInvalidTransition")
	}
}
