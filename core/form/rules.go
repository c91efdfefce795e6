package form

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/edupredict/predictcli/core"
)

// Values holds the full set of current values of one form, keyed by field name.
type Values map[string]interface{}

// Rule validates a single field value against the full set of current form
// values. It returns an error message, or "" when the value is valid.
// Rules are pure: they never panic and never mutate `all`.
type Rule func(value interface{}, all Values) string

var (
	// rule texts
	invalidEmailText  = "invalid email format"
	invalidNumberText = "please enter a valid number"

	// password policy (applies to the signup screen)
	pwdMaxSim      = .7
	pwdAttrSimText = "password cannot be similar to your name or email"

	pwdNoSpaceText   = "password must not contain whitespace"
	pwdNotAllNumText = "password cannot be entirely numeric"
)

// Required fails on a missing or blank value. Numeric zero is a present
// value; use Number for numeric fields.
func Required(msg ...string) Rule {
	return func(value interface{}, _ Values) string {
		if err := core.Validate.Var(text(value), "required"); err != nil {
			return message(msg, core.TranslateErr(err))
		}
		return ""
	}
}

// Email checks email format. Blank values pass; combine with Required.
func Email(msg ...string) Rule {
	return func(value interface{}, _ Values) string {
		s := text(value)
		if s == "" {
			return ""
		}
		if err := core.Validate.Var(s, "email"); err != nil {
			return message(msg, invalidEmailText)
		}
		return ""
	}
}

// MinLen requires at least n characters. Blank values pass.
func MinLen(n int, msg ...string) Rule {
	return func(value interface{}, _ Values) string {
		s := text(value)
		if s == "" {
			return ""
		}
		if len([]rune(s)) < n {
			return message(msg, fmt.Sprintf("must contain at least %d characters", n))
		}
		return ""
	}
}

// Number requires a parseable numeric value. A missing value fails too:
// numeric inputs have no separate Required rule (zero must stay valid).
func Number(requiredMsg string, msg ...string) Rule {
	return func(value interface{}, _ Values) string {
		if value == nil || text(value) == "" {
			return requiredMsg
		}
		if _, err := number(value); err != nil {
			return message(msg, invalidNumberText)
		}
		return ""
	}
}

// NumberBetween bounds a numeric value inclusively. Unparseable values pass;
// combine with Number.
func NumberBetween(min, max float64, msg ...string) Rule {
	return func(value interface{}, _ Values) string {
		n, err := number(value)
		if err != nil {
			return ""
		}
		if n < min || n > max {
			return message(msg, fmt.Sprintf("must be between %v and %v", min, max))
		}
		return ""
	}
}

// OneOf requires the value to be one of the given options. Blank values pass.
func OneOf(opts []string, msg ...string) Rule {
	return func(value interface{}, _ Values) string {
		s := text(value)
		if s == "" {
			return ""
		}
		for _, opt := range opts {
			if s == opt {
				return ""
			}
		}
		return message(msg, "please select one of: "+strings.Join(opts, ", "))
	}
}

// MatchesField requires the value to equal the current value of a sibling
// field. Any field using it must declare `other` in Field.DependsOn so the
// controller re-validates it when the sibling changes.
func MatchesField(other string, msg ...string) Rule {
	return func(value interface{}, all Values) string {
		if text(value) != text(all[other]) {
			return message(msg, "does not match "+other)
		}
		return ""
	}
}

// NoWhitespace rejects values containing any whitespace character.
func NoWhitespace(msg ...string) Rule {
	return func(value interface{}, _ Values) string {
		for _, char := range text(value) {
			if unicode.IsSpace(char) {
				return message(msg, pwdNoSpaceText)
			}
		}
		return ""
	}
}

// NotAllDigits rejects entirely numeric values. Blank values pass.
func NotAllDigits(msg ...string) Rule {
	return func(value interface{}, _ Values) string {
		s := text(value)
		if s == "" {
			return ""
		}
		for _, char := range s {
			if !unicode.IsDigit(char) {
				return ""
			}
		}
		return message(msg, pwdNotAllNumText)
	}
}

// NotSimilarTo rejects values too similar to the current values of the given
// sibling fields (difflib quick ratio >= 0.7).
func NotSimilarTo(fields ...string) Rule {
	return func(value interface{}, all Values) string {
		s := strings.ToLower(text(value))
		if s == "" {
			return ""
		}
		for _, name := range fields {
			attr := strings.ToLower(text(all[name]))
			if attr == "" {
				continue
			}
			m := difflib.NewMatcher(strings.Split(s, ""), strings.Split(attr, ""))
			if m.QuickRatio() >= pwdMaxSim {
				return pwdAttrSimText
			}
		}
		return ""
	}
}

// text coerces a form value to a string for rule evaluation.
func text(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

// number coerces a form value to a float64.
func number(value interface{}) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return strconv.ParseFloat(strings.TrimSpace(text(value)), 64)
	}
}

func message(override []string, fallback string) string {
	if len(override) > 0 && override[0] != "" {
		return override[0]
	}
	return fallback
}
