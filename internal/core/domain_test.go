package core

import (
	"errors"
	"testing"
)

func TestRecipientValidate(t *testing.T) {
	age := 34
	negative := -1
	cases := []struct {
		name string
		r    Recipient
		ok   bool
	}{
		{"minimal", Recipient{Name: "Sarah"}, true},
		{"full", Recipient{Name: "Sarah", Age: &age, Interests: []string{"yoga"}}, true},
		{"empty name", Recipient{Name: ""}, false},
		{"whitespace name", Recipient{Name: "   "}, false},
		{"negative age", Recipient{Name: "Sarah", Age: &negative}, false},
		{"inverted range", Recipient{Name: "Sarah", Preferences: Preferences{BudgetRange: &BudgetRange{Min: 50, Max: 20}}}, false},
		{"valid range", Recipient{Name: "Sarah", Preferences: Preferences{BudgetRange: &BudgetRange{Min: 20, Max: 50}}}, true},
	}
	for _, tc := range cases {
		err := tc.r.Validate()
		if tc.ok && err != nil {
			t.Fatalf("%s: expected ok, got %v", tc.name, err)
		}
		if !tc.ok {
			if err == nil {
				t.Fatalf("%s: expected error", tc.name)
			}
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("%s: expected validation error, got %v", tc.name, err)
			}
		}
	}
}

func TestOccasionValidate(t *testing.T) {
	good := Occasion{RecipientID: "r1", Type: "birthday", Date: "2026-12-25", ReminderDaysBefore: 14}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Occasion{
		{RecipientID: "", Type: "birthday", Date: "2026-12-25"},
		{RecipientID: "r1", Type: "", Date: "2026-12-25"},
		{RecipientID: "r1", Type: "birthday", Date: ""},
		{RecipientID: "r1", Type: "birthday", Date: "2026-12-25", ReminderDaysBefore: -1},
	}
	for i, o := range bads {
		if err := o.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		err  error
		kind string
	}{
		{Validationf("x"), "validation_error"},
		{NotFoundf("recipient %s", "abc"), "not_found"},
		{Parsef("bad date"), "parse_error"},
		{Computationf("zero-width range"), "computation_error"},
		{errors.New("boom"), "internal_error"},
	}
	for i, tc := range cases {
		if got := Classify(tc.err); got != tc.kind {
			t.Fatalf("case %d: got %q want %q", i, got, tc.kind)
		}
	}
}
