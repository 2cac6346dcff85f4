package forms

import (
	"fmt"
	"math"
	"strconv"

	"github.com/michaelgov-ctrl/form-lab/internal/validator"
)

// DefaultINRPerEUR is the fixed rate used by the converter exercise.
const DefaultINRPerEUR = 90

// MaxINRAmount caps converter input; larger amounts lose cent precision.
const MaxINRAmount = 1e15

// MaxComplaintChars bounds the complaint textarea so a live edit fits one websocket frame.
const MaxComplaintChars = 1000

func Registration() Schema {
	return Schema{
		Name:  "register",
		Title: "Register Here!!!",
		Fields: []FieldSpec{
			{
				Field: Name,
				Label: "Name",
				Input: "text",
				Rule:  validator.Must(validator.MinChars(5), "Name should have at least 5 characters"),
			},
			{
				Field: Email,
				Label: "Email",
				Input: "text",
				Rule:  validator.Must(validator.ContainsAll("@", "."), "Email should contain @ and ."),
			},
			{
				Field:     Password,
				Label:     "Password",
				Input:     "password",
				Sensitive: true,
				Rule:      validator.Must(validator.MinChars(8), "Password should have at least 8 characters"),
			},
		},
		Accepted: func(r Receipt) string {
			return fmt.Sprintf("Registration successful! Welcome %s. Your reference number is %d.", r.Values[Name], r.ReferenceID)
		},
		Rejected: defaultRejected,
	}
}

func Ticket() Schema {
	return Schema{
		Name:  "ticket",
		Title: "Register your complaints here!!!",
		Fields: []FieldSpec{
			{
				Field:       Name,
				Label:       "Name",
				Input:       "text",
				Placeholder: "enter your name",
				Rule:        validator.Must(validator.NotBlank, "Name is required"),
			},
			{
				Field:       Complaint,
				Label:       "Complaint",
				Input:       "textarea",
				Placeholder: "enter your complaint",
				MaxLength:   MaxComplaintChars,
				Rule: validator.Chain(
					validator.Must(validator.NotBlank, "Complaint is required"),
					validator.Must(validator.MaxChars(MaxComplaintChars),
						fmt.Sprintf("Complaint must be at most %d characters", MaxComplaintChars)),
				),
			},
		},
		Accepted: func(r Receipt) string {
			return fmt.Sprintf("Thanks %s\nYour Complaint was Submitted. ID is: %d", r.Values[Name], r.ReferenceID)
		},
		Rejected: "Please enter your name and complaint before submitting.",
	}
}

// Converter turns rupee amounts into euros at a fixed rate.
type Converter struct {
	INRPerEUR float64
}

// Convert divides by the rate and rounds to two decimals.
func (c Converter) Convert(inr float64) float64 {
	rate := c.INRPerEUR
	if rate <= 0 {
		rate = DefaultINRPerEUR
	}
	return math.Round(inr/rate*100) / 100
}

// convertible reports whether value is within MaxINRAmount and converts to a finite amount.
func (c Converter) convertible(value string) bool {
	if !validator.AtMost(MaxINRAmount)(value) {
		return false
	}
	inr, _ := validator.ParseNumber(value)
	return !math.IsInf(c.Convert(inr), 0)
}

func ConvertINRToEUR(inr float64) float64 {
	return Converter{INRPerEUR: DefaultINRPerEUR}.Convert(inr)
}

func CurrencyConverter(conv Converter) Schema {
	return Schema{
		Name:  "convert",
		Title: "Currency Converter - INR to Euro",
		Fields: []FieldSpec{
			{
				Field:       Amount,
				Label:       "Enter amount in Indian Rupees",
				Input:       "number",
				Placeholder: "Enter INR amount",
				Rule: validator.Chain(
					validator.Must(validator.IsNumber, "Amount must be a number"),
					validator.Must(validator.NonNegative, "Amount must be ≥ 0"),
					validator.Must(conv.convertible, "Amount is too large to convert"),
				),
			},
		},
		Accepted: func(r Receipt) string {
			inr, _ := validator.ParseNumber(r.Values[Amount])
			return fmt.Sprintf("₹%s Indian Rupees = €%s Euros",
				strconv.FormatFloat(inr, 'f', -1, 64),
				strconv.FormatFloat(conv.Convert(inr), 'f', 2, 64))
		},
		Rejected: "Please enter a valid amount before converting.",
	}
}

// Catalog indexes the exercise schemas by name.
func Catalog(conv Converter) map[string]Schema {
	out := make(map[string]Schema)
	for _, s := range []Schema{Registration(), Ticket(), CurrencyConverter(conv)} {
		out[s.Name] = s
	}
	return out
}
