package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestTranslateError_UniqueViolation_ReturnsDuplicateError(t *testing.T) {
	err := translateError(&pq.Error{Code: "23505", Constraint: ConstraintUsersEmail})

	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("errors.Is(err, ErrDuplicate) = false, err = %v", err)
	}
	constraint, ok := DuplicateConstraint(err)
	if !ok {
		t.Fatal("DuplicateConstraint should report a duplicate")
	}
	if constraint != ConstraintUsersEmail {
		t.Errorf("constraint = %q, want %q", constraint, ConstraintUsersEmail)
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		t.Error("original pq.Error should remain reachable via errors.As")
	}
}

func TestTranslateError_WrappedUniqueViolation(t *testing.T) {
	wrapped := fmt.Errorf("insert: %w", &pq.Error{Code: "23505", Constraint: ConstraintProductsUserName})

	err := fmt.Errorf("failed to insert product: %w", translateError(wrapped))

	constraint, ok := DuplicateConstraint(err)
	if !ok || constraint != ConstraintProductsUserName {
		t.Errorf("DuplicateConstraint = (%q, %v), want (%q, true)", constraint, ok, ConstraintProductsUserName)
	}
}

func TestTranslateError_OtherErrors_Unchanged(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"foreign key violation", &pq.Error{Code: "23503"}},
		{"plain error", errors.New("connection reset")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateError(tt.err)
			if got != tt.err {
				t.Errorf("translateError changed the error: %v", got)
			}
			if errors.Is(got, ErrDuplicate) {
				t.Error("non-unique error should not match ErrDuplicate")
			}
		})
	}
}

func TestDuplicateConstraint_NilError(t *testing.T) {
	if _, ok := DuplicateConstraint(nil); ok {
		t.Error("nil error should not be a duplicate")
	}
}
