package forms

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestConverterScenario(t *testing.T) {
	n := &recordingNotifier{}
	c, err := New(CurrencyConverter(Converter{INRPerEUR: DefaultINRPerEUR}), WithNotifier(n))
	if err != nil {
		t.Fatal(err)
	}

	_ = c.OnFieldChange(Amount, "-5")
	if c.FieldError(Amount) != "Amount must be ≥ 0" {
		t.Errorf("error for -5 = %q", c.FieldError(Amount))
	}
	if c.Valid() {
		t.Error("negative amount reported valid")
	}

	_ = c.OnFieldChange(Amount, "abc")
	if c.FieldError(Amount) != "Amount must be a number" {
		t.Errorf("error for abc = %q", c.FieldError(Amount))
	}

	_ = c.OnFieldChange(Amount, "100")
	if c.FieldError(Amount) != "" || !c.Valid() {
		t.Fatalf("100 rejected: %q", c.FieldError(Amount))
	}

	if _, err := c.OnSubmit(context.Background()); err != nil {
		t.Fatal(err)
	}
	want := "₹100 Indian Rupees = €1.11 Euros"
	if len(n.messages) != 1 || n.messages[0] != want {
		t.Errorf("notifications = %q; want [%q]", n.messages, want)
	}
}

func TestConvert(t *testing.T) {
	tests := []struct {
		rate float64
		inr  float64
		want float64
	}{
		{90, 100, 1.11},
		{90, 0, 0},
		{90, 900, 10},
		{90, 1, 0.01},
		{0, 180, 2},
		{80, 100, 1.25},
	}

	for _, tt := range tests {
		if got := (Converter{INRPerEUR: tt.rate}).Convert(tt.inr); got != tt.want {
			t.Errorf("Convert(%v) at %v = %v; want %v", tt.inr, tt.rate, got, tt.want)
		}
	}

	if got := ConvertINRToEUR(100); got != 1.11 {
		t.Errorf("ConvertINRToEUR(100) = %v", got)
	}
}

func TestTicketAcknowledgment(t *testing.T) {
	n := &recordingNotifier{}
	c, err := New(Ticket(), WithNotifier(n), WithIDGenerator(SequenceIDs(12345)))
	if err != nil {
		t.Fatal(err)
	}

	_ = c.OnFieldChange(Name, "Priya")
	_ = c.OnFieldChange(Complaint, "The lift is broken")

	r, err := c.OnSubmit(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	want := "Thanks Priya\nYour Complaint was Submitted. ID is: 12345"
	if r.Message != want || len(n.messages) != 1 || n.messages[0] != want {
		t.Errorf("got receipt %q and notifications %q; want %q", r.Message, n.messages, want)
	}
}

func TestRandomIDsRange(t *testing.T) {
	ids := RandomIDs(10000, 99999)
	for range 1000 {
		if id := ids.NextID(); id < 10000 || id > 99999 {
			t.Fatalf("id %d out of range", id)
		}
	}
}

func TestSequenceIDs(t *testing.T) {
	ids := SequenceIDs(7)
	for _, want := range []int{7, 8, 9} {
		if got := ids.NextID(); got != want {
			t.Errorf("got %d; want %d", got, want)
		}
	}
}

func TestCatalog(t *testing.T) {
	cat := Catalog(Converter{})
	for _, name := range []string{"register", "ticket", "convert"} {
		s, ok := cat[name]
		if !ok {
			t.Errorf("catalog missing %q", name)
			continue
		}
		if _, err := New(s); err != nil {
			t.Errorf("schema %q does not construct: %v", name, err)
		}
	}
}

func TestTicketComplaintBound(t *testing.T) {
	c, err := New(Ticket())
	if err != nil {
		t.Fatal(err)
	}

	_ = c.OnFieldChange(Name, "Priya")

	_ = c.OnFieldChange(Complaint, strings.Repeat("ü", MaxComplaintChars))
	if c.FieldError(Complaint) != "" || !c.Valid() {
		t.Errorf("complaint at the bound rejected: %q", c.FieldError(Complaint))
	}

	_ = c.OnFieldChange(Complaint, strings.Repeat("ü", MaxComplaintChars+1))
	if got := c.FieldError(Complaint); got != "Complaint must be at most 1000 characters" {
		t.Errorf("error for an over-long complaint = %q", got)
	}
	if c.Valid() {
		t.Error("over-long complaint reported valid")
	}

	spec, _ := c.Schema().spec(Complaint)
	if spec.MaxLength != MaxComplaintChars {
		t.Errorf("complaint MaxLength = %d; want %d", spec.MaxLength, MaxComplaintChars)
	}
}

func TestConverterRejectsUnconvertibleAmounts(t *testing.T) {
	tests := []struct {
		rate    float64
		amount  string
		wantErr string
	}{
		{DefaultINRPerEUR, "1.7e308", "Amount is too large to convert"},
		{DefaultINRPerEUR, "1e16", "Amount is too large to convert"},
		{DefaultINRPerEUR, "1e15", ""},
		{1e-300, "1e15", "Amount is too large to convert"},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			n := &recordingNotifier{}
			c, err := New(CurrencyConverter(Converter{INRPerEUR: tt.rate}), WithNotifier(n))
			if err != nil {
				t.Fatal(err)
			}

			_ = c.OnFieldChange(Amount, tt.amount)
			if got := c.FieldError(Amount); got != tt.wantErr {
				t.Fatalf("error for %s = %q; want %q", tt.amount, got, tt.wantErr)
			}
			if c.Valid() != (tt.wantErr == "") {
				t.Errorf("Valid() = %v", c.Valid())
			}

			_, err = c.OnSubmit(context.Background())
			if tt.wantErr != "" {
				if !errors.Is(err, ErrSubmissionBlocked) {
					t.Errorf("submit err = %v; want %v", err, ErrSubmissionBlocked)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if len(n.messages) != 1 || strings.Contains(n.messages[0], "Inf") {
				t.Errorf("notifications = %q", n.messages)
			}
		})
	}
}
