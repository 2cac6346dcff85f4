package validator

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

type Validator struct {
	FieldErrors map[string]string
}

func (v *Validator) Valid() bool {
	return len(v.FieldErrors) == 0
}

func (v *Validator) AddFieldError(key, msg string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}

	if _, exists := v.FieldErrors[key]; !exists {
		v.FieldErrors[key] = msg
	}
}

func (v *Validator) CheckField(ok bool, key, msg string) {
	if !ok {
		v.AddFieldError(key, msg)
	}
}

// Apply runs rule against value and records its message under key.
func (v *Validator) Apply(rule Rule, key, value string) {
	msg := rule(value)
	v.CheckField(msg == "", key, msg)
}

// Rule maps a field value to an error message, "" meaning valid.
// Rules must be pure: no side effects and the same input always gives the same message.
type Rule func(value string) string

// Must turns a predicate into a Rule reporting msg when the predicate fails.
func Must(ok func(string) bool, msg string) Rule {
	return func(value string) string {
		if ok(value) {
			return ""
		}
		return msg
	}
}

// Chain returns the message of the first failing rule.
func Chain(rules ...Rule) Rule {
	return func(value string) string {
		for _, rule := range rules {
			if msg := rule(value); msg != "" {
				return msg
			}
		}
		return ""
	}
}

func NotBlank(value string) bool {
	return strings.TrimSpace(value) != ""
}

func MinChars(n int) func(string) bool {
	return func(value string) bool {
		return utf8.RuneCountInString(value) >= n
	}
}

func MaxChars(n int) func(string) bool {
	return func(value string) bool {
		return utf8.RuneCountInString(value) <= n
	}
}

func ContainsAll(subs ...string) func(string) bool {
	return func(value string) bool {
		for _, s := range subs {
			if !strings.Contains(value, s) {
				return false
			}
		}
		return true
	}
}

// IsNumber reports whether value parses as a finite float.
func IsNumber(value string) bool {
	_, ok := ParseNumber(value)
	return ok
}

func NonNegative(value string) bool {
	f, ok := ParseNumber(value)
	return ok && f >= 0
}

func AtMost(limit float64) func(string) bool {
	return func(value string) bool {
		f, ok := ParseNumber(value)
		return ok && f <= limit
	}
}

func ParseNumber(value string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
