package domain

import "strings"

// SkipKeyword clears a field when typed at a prompt.
const SkipKeyword = "skip"

// FilterInput holds the raw, unvalidated values collected from a prompt or
// from command-line flags. An empty value or SkipKeyword means "not set";
// code lists are comma-separated.
type FilterInput struct {
	StartYear         string
	EndYear           string
	MinAmount         string
	MaxAmount         string
	Subjects          string
	Populations       string
	Locations         string
	SupportStrategies string
}

// IsUnset reports whether a raw value should be treated as not provided.
func IsUnset(raw string) bool {
	v := strings.TrimSpace(raw)
	return v == "" || v == "-" || strings.EqualFold(v, SkipKeyword)
}
