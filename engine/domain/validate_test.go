package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestValidatePosting(t *testing.T) {
	cases := []struct {
		name    string
		posting Posting
		want    error
	}{
		{"valid", Posting{Company: "Acme", Description: "Go engineer"}, nil},
		{"missing company", Posting{Description: "Go engineer"}, ErrMissingCompany},
		{"whitespace company", Posting{Company: "  \t", Description: "Go engineer"}, ErrMissingCompany},
		{"missing description", Posting{Company: "Acme"}, ErrMissingDescription},
		{"whitespace description", Posting{Company: "Acme", Description: "   "}, ErrMissingDescription},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePosting(tc.posting)
			if tc.want == nil {
				if err != nil {
					t.Fatalf("got %v", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestValidationErrorUnwrap(t *testing.T) {
	err := NewValidationError("company", "", ErrMissingCompany)
	if !errors.Is(err, ErrMissingCompany) {
		t.Fatal("sentinel should survive wrapping")
	}
	var ve *ValidationError
	if !errors.As(error(err), &ve) || ve.Field != "company" {
		t.Fatalf("got %+v", ve)
	}
	if !strings.Contains(err.Error(), "company") {
		t.Errorf("message should name the field: %s", err.Error())
	}
}

func TestBudgetEmpty(t *testing.T) {
	if !(Budget{}).Empty() {
		t.Error("zero budget should be empty")
	}
	if (Budget{SalaryRange: "$100k"}).Empty() {
		t.Error("salary range counts as a signal")
	}
	if (Budget{HourlyRate: "$50/hour"}).Empty() {
		t.Error("hourly rate counts as a signal")
	}
	if (Budget{EquityMentioned: true}).Empty() {
		t.Error("equity counts as a signal")
	}
}
