package errors

import (
	stderrors "errors"
	"fmt"
	"os"
	"strings"
	"testing"
)

func TestCodePredicates(t *testing.T) {
	cases := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"not found", NotFoundf("campaign %s not found", "c1"), IsNotFound},
		{"conflict", Conflictf("already a member"), IsConflict},
		{"validation", Validationf("name is required"), IsValidation},
		{"io", IO(os.ErrPermission, "write artifact"), IsIO},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if !tc.check(tc.err) {
				t.Fatalf("expected predicate to match %v", tc.err)
			}
			for _, other := range cases {
				if other.name == tc.name {
					continue
				}
				if other.check(tc.err) {
					t.Fatalf("predicate %s matched %v", other.name, tc.err)
				}
			}
		})
	}
}

func TestPredicatesOnWrappedErrors(t *testing.T) {
	err := fmt.Errorf("load campaign: %w", NotFoundf("campaign c1 not found"))
	if !IsNotFound(err) {
		t.Fatal("expected wrapped not-found to match")
	}
}

func TestIOUnwrapsCause(t *testing.T) {
	err := IO(os.ErrPermission, "write %s", "campaign.yaml")
	if !stderrors.Is(err, os.ErrPermission) {
		t.Fatal("expected cause to survive unwrap")
	}
	if !strings.Contains(err.Error(), "campaign.yaml") {
		t.Fatalf("expected message in error text, got %q", err.Error())
	}
	if !strings.Contains(err.Error(), "permission denied") {
		t.Fatalf("expected cause in error text, got %q", err.Error())
	}
}

func TestPredicatesOnForeignError(t *testing.T) {
	if IsNotFound(os.ErrNotExist) {
		t.Fatal("expected foreign error not to match")
	}
}
