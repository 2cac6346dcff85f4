package validator

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestValidatorKeepsFirstFieldError(t *testing.T) {
	var v Validator

	v.CheckField(false, "name", "first")
	v.CheckField(false, "name", "second")
	v.CheckField(true, "email", "never")

	want := map[string]string{"name": "first"}
	if diff := cmp.Diff(want, v.FieldErrors); diff != "" {
		t.Errorf("FieldErrors mismatch (-want +got):\n%s", diff)
	}
	if v.Valid() {
		t.Error("Valid() = true with a field error recorded")
	}
}

func TestValidatorValid(t *testing.T) {
	var v Validator
	if !v.Valid() {
		t.Fatal("zero Validator should be valid")
	}

	v.CheckField(true, "name", "never")
	if !v.Valid() {
		t.Error("Valid() = false with only passing checks")
	}

	v.AddFieldError("name", "too short")
	if v.Valid() {
		t.Error("Valid() = true with a field error recorded")
	}
}

func TestApply(t *testing.T) {
	rule := Must(MinChars(5), "too short")

	var v Validator
	v.Apply(rule, "name", "Al")
	v.Apply(rule, "other", "Alice")

	want := map[string]string{"name": "too short"}
	if diff := cmp.Diff(want, v.FieldErrors); diff != "" {
		t.Errorf("FieldErrors mismatch (-want +got):\n%s", diff)
	}
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		name  string
		ok    func(string) bool
		value string
		want  bool
	}{
		{"blank", NotBlank, "   ", false},
		{"not blank", NotBlank, " x ", true},
		{"min chars short", MinChars(5), "Al", false},
		{"min chars exact", MinChars(5), "Alice", true},
		{"min chars counts runes", MinChars(5), "Zoë  ", true},
		{"max chars within", MaxChars(5), "Alice", true},
		{"max chars over", MaxChars(5), "Alice!", false},
		{"max chars counts runes", MaxChars(3), "ëëë", true},
		{"contains all", ContainsAll("@", "."), "a@b.com", true},
		{"missing dot", ContainsAll("@", "."), "a@bcom", false},
		{"missing at", ContainsAll("@", "."), "ab.com", false},
		{"number", IsNumber, "12.5", true},
		{"not a number", IsNumber, "twelve", false},
		{"nan rejected", IsNumber, "NaN", false},
		{"inf rejected", IsNumber, "+Inf", false},
		{"negative", NonNegative, "-5", false},
		{"zero", NonNegative, "0", true},
		{"positive", NonNegative, "100", true},
		{"empty", NonNegative, "", false},
		{"at most within", AtMost(1e15), "1e15", true},
		{"at most over", AtMost(1e15), "1.7e308", false},
		{"at most not a number", AtMost(1e15), "abc", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ok(tt.value); got != tt.want {
				t.Errorf("got %v; want %v", got, tt.want)
			}
		})
	}
}

func TestChainReportsFirstFailure(t *testing.T) {
	rule := Chain(
		Must(IsNumber, "not a number"),
		Must(NonNegative, "negative"),
	)

	for value, want := range map[string]string{
		"abc": "not a number",
		"-1":  "negative",
		"3":   "",
	} {
		if got := rule(value); got != want {
			t.Errorf("rule(%q) = %q; want %q", value, got, want)
		}
	}
}
