// Package sanitize masks phone numbers and price mentions in chat text so
// participants cannot move a transaction off the platform.
package sanitize

import (
	"regexp"
	"strings"
)

// Default India-locale rules: domestic mobile numbers with optional +91
// prefix and separators, rupee amounts, currency words and price keywords
// followed by digits, and any bare run of 5+ digits as a catch-all.
const (
	DefaultPhonePattern = `(?:\+91[\s-]*)?0?[6-9]\d[\s.-]*\d{8}\b|\b[6-9]\d{9}\b`
	DefaultPricePattern = `(?i)₹\s*\d+(?:,\d+)*(?:\.\d+)?|\b(?:rs\.?|rupees?|inr)\s*\d+(?:,\d+)*(?:\.\d+)?|\b(?:price|cost|budget|amount)\s*[:\s]*\d+(?:,\d+)*(?:\.\d+)?|\b\d{5,}\b`
	DefaultMask         = "*****"
	DefaultWarning      = "Sharing contact details or negotiating price outside the platform is not allowed. Your message has been hidden."
)

// Rules describes one locale's masking configuration. Zero-value fields
// fall back to the defaults above.
type Rules struct {
	PhonePattern string
	PricePattern string
	Mask         string
	Warning      string
}

// Result reports the outcome of one sanitizer pass.
type Result struct {
	Sanitized    string
	WasSanitized bool
}

// Sanitizer is a compiled, reusable rule set. Safe for concurrent use.
type Sanitizer struct {
	phone   *regexp.Regexp
	price   *regexp.Regexp
	mask    string
	warning string
}

// New compiles the given rules, substituting defaults for empty fields.
func New(rules Rules) (*Sanitizer, error) {
	if rules.PhonePattern == "" {
		rules.PhonePattern = DefaultPhonePattern
	}
	if rules.PricePattern == "" {
		rules.PricePattern = DefaultPricePattern
	}
	if rules.Mask == "" {
		rules.Mask = DefaultMask
	}
	if rules.Warning == "" {
		rules.Warning = DefaultWarning
	}

	phone, err := regexp.Compile(rules.PhonePattern)
	if err != nil {
		return nil, err
	}
	price, err := regexp.Compile(rules.PricePattern)
	if err != nil {
		return nil, err
	}
	return &Sanitizer{phone: phone, price: price, mask: rules.Mask, warning: rules.Warning}, nil
}

// MustDefault returns a sanitizer built from the default rules.
func MustDefault() *Sanitizer {
	s, err := New(Rules{})
	if err != nil {
		panic(err)
	}
	return s
}

// Apply masks every phone and price match in content. WasSanitized reports
// whether masking changed the text. If masking reduces the text to only
// whitespace the original content is returned instead, so the receiver
// never sees a blank bubble.
func (s *Sanitizer) Apply(content string) Result {
	if content == "" {
		return Result{Sanitized: "", WasSanitized: false}
	}

	masked := s.phone.ReplaceAllString(content, s.mask)
	masked = s.price.ReplaceAllString(masked, s.mask)
	wasSanitized := masked != content

	sanitized := strings.TrimSpace(masked)
	if sanitized == "" {
		sanitized = content
	}
	return Result{Sanitized: sanitized, WasSanitized: wasSanitized}
}

// Warning is the user-facing notice returned alongside a masked message.
func (s *Sanitizer) Warning() string {
	return s.warning
}
