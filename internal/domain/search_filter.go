package domain

import (
	"fmt"
	"slices"
	"strings"
)

// Facet identifies one of the taxonomy dimensions a search can be narrowed by.
type Facet string

const (
	FacetSubject    Facet = "subject"
	FacetPopulation Facet = "population"
	FacetLocation   Facet = "location"
	FacetSupport    Facet = "support"
)

// SearchFilter is the validated set of constraints sent to the grants API.
// Values are only produced by validation.FilterValidator, which copies every
// slice, so a SearchFilter never shares memory with its input.
type SearchFilter struct {
	StartYear         *int     `json:"start_year,omitempty"`
	EndYear           *int     `json:"end_year,omitempty"`
	MinAmount         *int64   `json:"min_amount,omitempty"`
	MaxAmount         *int64   `json:"max_amount,omitempty"`
	Subjects          []string `json:"subjects,omitempty"`
	Populations       []string `json:"populations,omitempty"`
	Locations         []string `json:"locations,omitempty"`
	SupportStrategies []string `json:"support_strategies,omitempty"`
}

// IsEmpty reports whether no constraint is set.
func (f SearchFilter) IsEmpty() bool {
	return f.StartYear == nil && f.EndYear == nil &&
		f.MinAmount == nil && f.MaxAmount == nil &&
		len(f.Subjects) == 0 && len(f.Populations) == 0 &&
		len(f.Locations) == 0 && len(f.SupportStrategies) == 0
}

// HasYearRange reports whether either year bound is set.
func (f SearchFilter) HasYearRange() bool {
	return f.StartYear != nil || f.EndYear != nil
}

// Codes returns the codes selected for a facet.
func (f SearchFilter) Codes(facet Facet) []string {
	switch facet {
	case FacetSubject:
		return f.Subjects
	case FacetPopulation:
		return f.Populations
	case FacetLocation:
		return f.Locations
	case FacetSupport:
		return f.SupportStrategies
	default:
		return nil
	}
}

// Clone returns a deep copy of the filter.
func (f SearchFilter) Clone() SearchFilter {
	return SearchFilter{
		StartYear:         clonePtr(f.StartYear),
		EndYear:           clonePtr(f.EndYear),
		MinAmount:         clonePtr(f.MinAmount),
		MaxAmount:         clonePtr(f.MaxAmount),
		Subjects:          slices.Clone(f.Subjects),
		Populations:       slices.Clone(f.Populations),
		Locations:         slices.Clone(f.Locations),
		SupportStrategies: slices.Clone(f.SupportStrategies),
	}
}

// Equal compares every field of two filters.
func (f SearchFilter) Equal(other SearchFilter) bool {
	return ptrEqual(f.StartYear, other.StartYear) &&
		ptrEqual(f.EndYear, other.EndYear) &&
		ptrEqual(f.MinAmount, other.MinAmount) &&
		ptrEqual(f.MaxAmount, other.MaxAmount) &&
		slices.Equal(f.Subjects, other.Subjects) &&
		slices.Equal(f.Populations, other.Populations) &&
		slices.Equal(f.Locations, other.Locations) &&
		slices.Equal(f.SupportStrategies, other.SupportStrategies)
}

// ToInput renders the filter back into raw prompt values, used as defaults
// when a loaded search is edited.
func (f SearchFilter) ToInput() FilterInput {
	return FilterInput{
		StartYear:         formatPtr(f.StartYear),
		EndYear:           formatPtr(f.EndYear),
		MinAmount:         formatPtr(f.MinAmount),
		MaxAmount:         formatPtr(f.MaxAmount),
		Subjects:          strings.Join(f.Subjects, ","),
		Populations:       strings.Join(f.Populations, ","),
		Locations:         strings.Join(f.Locations, ","),
		SupportStrategies: strings.Join(f.SupportStrategies, ","),
	}
}

// String returns a one-line description for display purposes.
func (f SearchFilter) String() string {
	if f.IsEmpty() {
		return "(no filters)"
	}
	var parts []string
	if f.HasYearRange() {
		parts = append(parts, fmt.Sprintf("years %s-%s", formatPtr(f.StartYear), formatPtr(f.EndYear)))
	}
	if f.MinAmount != nil || f.MaxAmount != nil {
		parts = append(parts, fmt.Sprintf("amount %s-%s", formatPtr(f.MinAmount), formatPtr(f.MaxAmount)))
	}
	for _, facet := range []Facet{FacetSubject, FacetPopulation, FacetLocation, FacetSupport} {
		if codes := f.Codes(facet); len(codes) > 0 {
			parts = append(parts, fmt.Sprintf("%s %s", facet, strings.Join(codes, ",")))
		}
	}
	return strings.Join(parts, "; ")
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func ptrEqual[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func formatPtr[T int | int64](p *T) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("%d", *p)
}
