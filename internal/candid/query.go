package candid

import (
	"net/url"
	"strconv"
	"strings"

	"grant-fetcher/internal/domain"
)

// Query parameter names understood by the transactions endpoint.
const (
	ParamPage         = "page"
	ParamIncludeGov   = "include_gov"
	ParamSortBy       = "sort_by"
	ParamSortOrder    = "sort_order"
	ParamFormat       = "format"
	ParamYear         = "year"
	ParamMinAmount    = "min_amt"
	ParamMaxAmount    = "max_amt"
	ParamSubject      = "subject"
	ParamPopulation   = "population"
	ParamSupport      = "support"
	ParamLocation     = "location"
	ParamGeoIDType    = "geo_id_type"
	ParamLocationType = "location_type"
)

// BuildQueryParams translates every populated field of f into request
// parameters. Unset fields produce no parameter at all.
func BuildQueryParams(f domain.SearchFilter, page int) url.Values {
	params := url.Values{}
	params.Set(ParamPage, strconv.Itoa(page))
	params.Set(ParamIncludeGov, "yes")
	params.Set(ParamSortBy, "year_issued")
	params.Set(ParamSortOrder, "desc")
	params.Set(ParamFormat, "json")

	if years := yearList(f.StartYear, f.EndYear); years != "" {
		params.Set(ParamYear, years)
	}
	if f.MinAmount != nil {
		params.Set(ParamMinAmount, strconv.FormatInt(*f.MinAmount, 10))
	}
	if f.MaxAmount != nil {
		params.Set(ParamMaxAmount, strconv.FormatInt(*f.MaxAmount, 10))
	}
	if len(f.Subjects) > 0 {
		params.Set(ParamSubject, strings.Join(f.Subjects, ","))
	}
	if len(f.Populations) > 0 {
		params.Set(ParamPopulation, strings.Join(f.Populations, ","))
	}
	if len(f.SupportStrategies) > 0 {
		params.Set(ParamSupport, strings.Join(f.SupportStrategies, ","))
	}
	if len(f.Locations) > 0 {
		params.Set(ParamLocation, strings.Join(f.Locations, ","))
		params.Set(ParamGeoIDType, "geonameid")
		params.Set(ParamLocationType, "area_served")
	}
	return params
}

// yearList expands a year range into every year it covers, in order.
func yearList(start, end *int) string {
	switch {
	case start == nil && end == nil:
		return ""
	case start == nil:
		return strconv.Itoa(*end)
	case end == nil:
		return strconv.Itoa(*start)
	}

	years := make([]string, 0, *end-*start+1)
	for y := *start; y <= *end; y++ {
		years = append(years, strconv.Itoa(y))
	}
	return strings.Join(years, ",")
}
