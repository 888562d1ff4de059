package domain

import (
	"regexp"
	"strings"
)

// vatNumberPattern matches Swiss UID/VAT numbers of the form CHE-123.456.789.
var vatNumberPattern = regexp.MustCompile(`^CHE-\d{3}\.\d{3}\.\d{3}$`)

// ValidVATNumber reports whether s is a well-formed Swiss VAT number.
func ValidVATNumber(s string) bool {
	return vatNumberPattern.MatchString(s)
}

var embeddedVATPattern = regexp.MustCompile(`CHE-\d{3}\.\d{3}\.\d{3}`)

// ExtractVATNumber returns the first Swiss VAT number embedded in free text,
// or the empty string.
func ExtractVATNumber(s string) string {
	return embeddedVATPattern.FindString(s)
}

// CanonicalMerchant is a deduplicated merchant identity. Aliases accumulate
// raw strings seen for this merchant and are never removed.
type CanonicalMerchant struct {
	MerchantID  string   `json:"merchantID"`
	DisplayName string   `json:"displayName"`
	VATNumber   string   `json:"vatNumber,omitempty"` // CHE-xxx.xxx.xxx, empty if unknown
	Aliases     []string `json:"aliases"`
	AuditFields
}

// HasAlias reports whether the merchant already knows the given normalized alias.
func (m CanonicalMerchant) HasAlias(normalized string) bool {
	for _, a := range m.Aliases {
		if NormalizeMerchantText(a) == normalized {
			return true
		}
	}
	return false
}

var (
	merchantPunct  = regexp.MustCompile(`[^\p{L}\p{N}\s&.-]`)
	merchantSpaces = regexp.MustCompile(`\s+`)
	// Legal-form suffixes carry no identity signal in counterparty strings.
	merchantSuffix = regexp.MustCompile(`(?i)\b(gmbh|ag|sa|sarl|ltd|inc|corp|co|llc)\b`)
)

// NormalizeMerchantText lowercases and strips punctuation, legal-form
// suffixes and redundant whitespace so alias comparisons are stable across
// statement spellings.
func NormalizeMerchantText(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = merchantPunct.ReplaceAllString(s, " ")
	s = merchantSuffix.ReplaceAllString(s, " ")
	s = merchantSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
