package validation

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phonePattern = regexp.MustCompile(`^\+?[\d\s\-().]+$`)
	urlPattern   = regexp.MustCompile(`^(https?|ftp)://[^\s/$.?#].[^\s]*$`)
)

// Rule is an immutable predicate over a non-empty field value.
type Rule struct {
	Code   string
	Reason string

	check func(value interface{}) bool
	// annotate adds the rule's constraint to a JSON Schema property.
	annotate func(prop map[string]interface{})
}

// Because returns a copy of the rule reporting msg instead of its default reason.
func (r Rule) Because(msg string) Rule {
	r.Reason = msg
	return r
}

func textRule(code, reason string, ok func(string) bool, annotate func(map[string]interface{})) Rule {
	return Rule{
		Code:   code,
		Reason: reason,
		check: func(value interface{}) bool {
			s, isStr := value.(string)
			return isStr && ok(s)
		},
		annotate: annotate,
	}
}

// MinLength requires at least n characters, inclusive.
func MinLength(n int) Rule {
	return textRule("MIN_LENGTH", fmt.Sprintf("min %d characters", n),
		func(s string) bool { return utf8.RuneCountInString(s) >= n },
		func(p map[string]interface{}) { p["minLength"] = n })
}

// MaxLength allows at most n characters, inclusive.
func MaxLength(n int) Rule {
	return textRule("MAX_LENGTH", fmt.Sprintf("max %d characters", n),
		func(s string) bool { return utf8.RuneCountInString(s) <= n },
		func(p map[string]interface{}) { p["maxLength"] = n })
}

func Email() Rule {
	return textRule("INVALID_EMAIL", "invalid email address", ValidateEmail,
		func(p map[string]interface{}) { p["pattern"] = emailPattern.String() })
}

func URL() Rule {
	return textRule("INVALID_URL", "invalid URL", ValidateURL,
		func(p map[string]interface{}) { p["pattern"] = urlPattern.String() })
}

// Phone accepts digits with optional leading + and common separators.
func Phone() Rule {
	return textRule("INVALID_PHONE", "invalid phone number", ValidatePhone,
		func(p map[string]interface{}) { p["pattern"] = phonePattern.String() })
}

func Pattern(re *regexp.Regexp, reason string) Rule {
	return textRule("PATTERN_MISMATCH", reason, re.MatchString,
		func(p map[string]interface{}) { p["pattern"] = re.String() })
}

// MustBeTrue is the "terms accepted" rule.
func MustBeTrue() Rule {
	return Rule{
		Code:   "MUST_BE_TRUE",
		Reason: "must be accepted",
		check: func(value interface{}) bool {
			b, ok := value.(bool)
			return ok && b
		},
		annotate: func(p map[string]interface{}) { p["enum"] = []interface{}{true} },
	}
}

func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

func ValidatePhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

func ValidateURL(url string) bool {
	return urlPattern.MatchString(url)
}
