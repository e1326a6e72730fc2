package validation

import (
	"regexp"
	"strings"

	"grant-fetcher/internal/domain"
)

// Year bounds accepted for a search.
const (
	MinYear = 1900
	MaxYear = 2100
)

// MaxSearchNameLength is the longest saved-search name accepted.
const MaxSearchNameLength = 64

var codePatterns = map[domain.Facet]*regexp.Regexp{
	domain.FacetSubject:    regexp.MustCompile(`^S[A-Z0-9]{1,8}$`),
	domain.FacetPopulation: regexp.MustCompile(`^P[A-Z0-9]{1,8}$`),
	domain.FacetSupport:    regexp.MustCompile(`^U[A-Z0-9]{1,8}$`),
	domain.FacetLocation:   regexp.MustCompile(`^[0-9]{1,10}$`),
}

var codeExamples = map[domain.Facet]string{
	domain.FacetSubject:    "SJ02",
	domain.FacetPopulation: "PA010000",
	domain.FacetSupport:    "UA",
	domain.FacetLocation:   "4671654",
}

// Validator provides common validation utilities
type Validator struct {
	searchNameRegex *regexp.Regexp
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{
		searchNameRegex: regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`),
	}
}

// IsNonEmptyString checks if a string is not empty after trimming whitespace
func (v *Validator) IsNonEmptyString(s string) bool {
	return strings.TrimSpace(s) != ""
}

// IsValidStringLength checks if a string length is within the specified range
func (v *Validator) IsValidStringLength(s string, min, max int) bool {
	length := len(strings.TrimSpace(s))
	return length >= min && length <= max
}

// IsValidSearchName checks that a name is safe to use as a file name
func (v *Validator) IsValidSearchName(name string) bool {
	return v.searchNameRegex.MatchString(name)
}

// IsValidYear checks if a year is within the accepted bounds
func (v *Validator) IsValidYear(year int) bool {
	return year >= MinYear && year <= MaxYear
}

// IsValidYearRange checks that start is not after end when both are set
func (v *Validator) IsValidYearRange(start, end *int) bool {
	if start == nil || end == nil {
		return true
	}
	return *start <= *end
}

// IsValidAmount checks that a dollar amount is not negative
func (v *Validator) IsValidAmount(amount int64) bool {
	return amount >= 0
}

// IsValidAmountRange checks that min is not above max when both are set
func (v *Validator) IsValidAmountRange(min, max *int64) bool {
	if min == nil || max == nil {
		return true
	}
	return *min <= *max
}

// IsValidCode checks that a normalised code has the shape used by a facet
func (v *Validator) IsValidCode(facet domain.Facet, code string) bool {
	pattern, ok := codePatterns[facet]
	return ok && pattern.MatchString(code)
}

// CodeExample returns a sample code for a facet, used in error messages
func (v *Validator) CodeExample(facet domain.Facet) string {
	return codeExamples[facet]
}

// NormalizeCodes splits a comma or space separated list into trimmed,
// upper-cased codes, dropping blanks and repeats while keeping order
func (v *Validator) NormalizeCodes(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == ' ' || r == '\t'
	})
	return v.NormalizeCodeList(fields)
}

// NormalizeCodeList applies the NormalizeCodes rules to an existing list
func (v *Validator) NormalizeCodeList(codes []string) []string {
	var out []string
	seen := make(map[string]bool, len(codes))
	for _, c := range codes {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// TrimAndValidateString trims whitespace and returns the cleaned string
func (v *Validator) TrimAndValidateString(s string) string {
	return strings.TrimSpace(s)
}
