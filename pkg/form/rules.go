package form

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Rule checks one validation constraint against a raw field value.
// Rules are pure: they never mutate state and never panic. A rule that
// cannot interpret its constraint or the value reports no violation.
type Rule interface {
	// Check returns the error message and true if the value violates
	// the constraint, or ("", false) if the value passes.
	Check(value any) (string, bool)
}

// RuleFunc is a function that implements Rule.
type RuleFunc func(value any) (string, bool)

func (f RuleFunc) Check(value any) (string, bool) {
	return f(value)
}

// inertRule never reports a violation. Rules built from malformed
// constraints degrade to it instead of failing the form.
var inertRule Rule = RuleFunc(func(any) (string, bool) {
	return "", false
})

// firstViolation evaluates rules in order and stops at the first one
// that reports a violation, so at most one error is active per event.
func firstViolation(value any, rules []Rule) (string, bool) {
	for _, r := range rules {
		if msg, violated := r.Check(value); violated {
			return msg, true
		}
	}
	return "", false
}

// requiredRule rejects empty values.
func requiredRule(msg string) Rule {
	if msg == "" {
		msg = "This field is required"
	}
	return RuleFunc(func(value any) (string, bool) {
		if isEmpty(value) {
			return msg, true
		}
		return "", false
	})
}

// minLengthRule rejects values shorter than n characters.
func minLengthRule(n int, msg string) Rule {
	if msg == "" {
		msg = fmt.Sprintf("Must be at least %d characters", n)
	}
	return RuleFunc(func(value any) (string, bool) {
		if len([]rune(toString(value))) < n {
			return msg, true
		}
		return "", false
	})
}

// maxLengthRule rejects values longer than n characters.
func maxLengthRule(n int, msg string) Rule {
	if msg == "" {
		msg = fmt.Sprintf("Must be at most %d characters", n)
	}
	return RuleFunc(func(value any) (string, bool) {
		if len([]rune(toString(value))) > n {
			return msg, true
		}
		return "", false
	})
}

// minRule rejects values whose numeric interpretation is below n.
// Values without a numeric interpretation pass.
func minRule(n any, msg string) Rule {
	if msg == "" {
		msg = fmt.Sprintf("Must be at least %v", n)
	}
	bound, ok := toNumber(n)
	if !ok {
		return inertRule
	}
	return RuleFunc(func(value any) (string, bool) {
		if v, ok := toNumber(value); ok && v < bound {
			return msg, true
		}
		return "", false
	})
}

// maxRule rejects values whose numeric interpretation is above n.
// Values without a numeric interpretation pass.
func maxRule(n any, msg string) Rule {
	if msg == "" {
		msg = fmt.Sprintf("Must be at most %v", n)
	}
	bound, ok := toNumber(n)
	if !ok {
		return inertRule
	}
	return RuleFunc(func(value any) (string, bool) {
		if v, ok := toNumber(value); ok && v > bound {
			return msg, true
		}
		return "", false
	})
}

// patternRule rejects values that fail to match the regular expression.
// An expression that does not compile deactivates the rule.
func patternRule(expr, msg string) Rule {
	if msg == "" {
		msg = "Invalid format"
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return inertRule
	}
	return RuleFunc(func(value any) (string, bool) {
		if !re.MatchString(toString(value)) {
			return msg, true
		}
		return "", false
	})
}

// ----------------------------------------------------------------------------
// Helper Functions
// ----------------------------------------------------------------------------

// isEmpty checks if a value is considered empty.
func isEmpty(value any) bool {
	if value == nil {
		return true
	}
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v) == ""
	case []byte:
		return len(v) == 0
	default:
		return false
	}
}

// toString converts a value to a string.
func toString(value any) string {
	if value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// toNumber converts a value to float64, reporting whether the value has
// a numeric interpretation at all.
func toNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// toBool converts a value to bool, reporting whether a boolean
// interpretation exists.
func toBool(value any) (bool, bool) {
	switch v := value.(type) {
	case bool:
		return v, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return b, err == nil
	default:
		return false, false
	}
}
