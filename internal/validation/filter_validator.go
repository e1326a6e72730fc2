package validation

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"grant-fetcher/internal/domain"
	"grant-fetcher/internal/errors"
)

// Field names used in FieldErrors
const (
	FieldStartYear   = "start year"
	FieldEndYear     = "end year"
	FieldYearRange   = "year range"
	FieldMinAmount   = "min amount"
	FieldMaxAmount   = "max amount"
	FieldAmountRange = "dollar range"
	FieldSearchName  = "name"
)

var facetFields = map[domain.Facet]string{
	domain.FacetSubject:    "subjects",
	domain.FacetPopulation: "populations",
	domain.FacetLocation:   "locations",
	domain.FacetSupport:    "support strategies",
}

var facetOrder = []domain.Facet{
	domain.FacetSubject,
	domain.FacetPopulation,
	domain.FacetLocation,
	domain.FacetSupport,
}

// FilterValidator turns raw input into a SearchFilter and checks filters
// that were built elsewhere, such as ones read back from disk.
type FilterValidator struct {
	validator *Validator
	now       func() time.Time
}

// NewFilterValidator creates a FilterValidator using the wall clock
func NewFilterValidator() *FilterValidator {
	return NewFilterValidatorWithClock(time.Now)
}

// NewFilterValidatorWithClock creates a FilterValidator with an injected clock.
// The clock supplies the end year when only a start year is given.
func NewFilterValidatorWithClock(now func() time.Time) *FilterValidator {
	return &FilterValidator{
		validator: NewValidator(),
		now:       now,
	}
}

// Build parses and validates raw input. Every problem is reported at once
// inside a *ValidationError wrapped as a validation AppError.
func (fv *FilterValidator) Build(in domain.FilterInput) (domain.SearchFilter, error) {
	verr := NewValidationError()
	var f domain.SearchFilter

	f.StartYear = fv.parseYear(in.StartYear, FieldStartYear, verr)
	f.EndYear = fv.parseYear(in.EndYear, FieldEndYear, verr)
	fv.completeYearRange(&f)

	f.MinAmount = fv.parseAmount(in.MinAmount, FieldMinAmount, verr)
	f.MaxAmount = fv.parseAmount(in.MaxAmount, FieldMaxAmount, verr)

	raw := map[domain.Facet]string{
		domain.FacetSubject:    in.Subjects,
		domain.FacetPopulation: in.Populations,
		domain.FacetLocation:   in.Locations,
		domain.FacetSupport:    in.SupportStrategies,
	}
	for _, facet := range facetOrder {
		if domain.IsUnset(raw[facet]) {
			continue
		}
		setCodes(&f, facet, fv.validator.NormalizeCodes(raw[facet]))
	}

	fv.checkRanges(f, verr)
	fv.checkCodes(f, verr)

	if verr.HasErrors() {
		return domain.SearchFilter{}, errors.NewValidationError("invalid search filter", verr)
	}
	return f, nil
}

// Validate checks a filter that did not come from Build. It does not fill
// in missing bounds.
func (fv *FilterValidator) Validate(f domain.SearchFilter) error {
	verr := NewValidationError()

	if f.StartYear != nil && !fv.validator.IsValidYear(*f.StartYear) {
		fv.addYearBoundsError(verr, FieldStartYear, *f.StartYear)
	}
	if f.EndYear != nil && !fv.validator.IsValidYear(*f.EndYear) {
		fv.addYearBoundsError(verr, FieldEndYear, *f.EndYear)
	}
	if f.MinAmount != nil && !fv.validator.IsValidAmount(*f.MinAmount) {
		verr.AddInvalidValueError(FieldMinAmount, *f.MinAmount, "must not be negative")
	}
	if f.MaxAmount != nil && !fv.validator.IsValidAmount(*f.MaxAmount) {
		verr.AddInvalidValueError(FieldMaxAmount, *f.MaxAmount, "must not be negative")
	}

	fv.checkRanges(f, verr)
	fv.checkCodes(f, verr)

	if verr.HasErrors() {
		return errors.NewValidationError("invalid search filter", verr)
	}
	return nil
}

// Normalize returns a copy of f with its code lists cleaned up the same way
// Build does.
func (fv *FilterValidator) Normalize(f domain.SearchFilter) domain.SearchFilter {
	out := f.Clone()
	for _, facet := range facetOrder {
		setCodes(&out, facet, fv.validator.NormalizeCodeList(out.Codes(facet)))
	}
	return out
}

// ValidateSearchName checks a saved-search name
func (fv *FilterValidator) ValidateSearchName(name string) error {
	verr := NewValidationError()
	trimmed := fv.validator.TrimAndValidateString(name)

	switch {
	case !fv.validator.IsNonEmptyString(trimmed):
		verr.AddRequiredError(FieldSearchName)
	case !fv.validator.IsValidStringLength(trimmed, 1, MaxSearchNameLength):
		verr.AddInvalidLengthError(FieldSearchName, name, 1, MaxSearchNameLength)
	case trimmed != name || !fv.validator.IsValidSearchName(trimmed):
		verr.AddInvalidCharacterError(FieldSearchName, name)
	}

	if verr.HasErrors() {
		return errors.NewValidationError("invalid search name", verr)
	}
	return nil
}

func (fv *FilterValidator) parseYear(raw, field string, verr *ValidationError) *int {
	if domain.IsUnset(raw) {
		return nil
	}
	year, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		verr.AddInvalidFormatError(field, raw, "a four-digit year")
		return nil
	}
	if !fv.validator.IsValidYear(year) {
		fv.addYearBoundsError(verr, field, year)
		return nil
	}
	return &year
}

func (fv *FilterValidator) addYearBoundsError(verr *ValidationError, field string, year int) {
	verr.AddInvalidValueError(field, year, fmt.Sprintf("must be between %d and %d", MinYear, MaxYear))
}

// completeYearRange fills a missing bound: a lone end year becomes a single
// year, a lone start year runs to the current year.
func (fv *FilterValidator) completeYearRange(f *domain.SearchFilter) {
	switch {
	case f.StartYear != nil && f.EndYear == nil:
		end := fv.now().Year()
		if *f.StartYear > end {
			end = *f.StartYear
		}
		f.EndYear = &end
	case f.StartYear == nil && f.EndYear != nil:
		start := *f.EndYear
		f.StartYear = &start
	}
}

func (fv *FilterValidator) parseAmount(raw, field string, verr *ValidationError) *int64 {
	if domain.IsUnset(raw) {
		return nil
	}
	cleaned := strings.NewReplacer("$", "", ",", "", "_", "").Replace(strings.TrimSpace(raw))
	amount, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		verr.AddInvalidFormatError(field, raw, "a whole dollar amount")
		return nil
	}
	if !fv.validator.IsValidAmount(amount) {
		verr.AddInvalidValueError(field, amount, "must not be negative")
		return nil
	}
	return &amount
}

func (fv *FilterValidator) checkRanges(f domain.SearchFilter, verr *ValidationError) {
	if !fv.validator.IsValidYearRange(f.StartYear, f.EndYear) {
		verr.AddInvalidRangeError(FieldYearRange,
			fmt.Sprintf("%d-%d", *f.StartYear, *f.EndYear),
			fmt.Sprintf("start year %d is after end year %d", *f.StartYear, *f.EndYear))
	}
	if !fv.validator.IsValidAmountRange(f.MinAmount, f.MaxAmount) {
		verr.AddInvalidRangeError(FieldAmountRange,
			fmt.Sprintf("%d-%d", *f.MinAmount, *f.MaxAmount),
			fmt.Sprintf("minimum %d is greater than maximum %d", *f.MinAmount, *f.MaxAmount))
	}
}

func (fv *FilterValidator) checkCodes(f domain.SearchFilter, verr *ValidationError) {
	for _, facet := range facetOrder {
		for _, code := range f.Codes(facet) {
			if !fv.validator.IsValidCode(facet, code) {
				verr.AddUnknownCodeError(facetFields[facet], code, fv.validator.CodeExample(facet))
			}
		}
	}
}

func setCodes(f *domain.SearchFilter, facet domain.Facet, codes []string) {
	switch facet {
	case domain.FacetSubject:
		f.Subjects = codes
	case domain.FacetPopulation:
		f.Populations = codes
	case domain.FacetLocation:
		f.Locations = codes
	case domain.FacetSupport:
		f.SupportStrategies = codes
	}
}
