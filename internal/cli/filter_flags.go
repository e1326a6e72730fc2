package cli

import (
	"grant-fetcher/internal/domain"

	"github.com/spf13/pflag"
)

// filterFlags holds the raw filter values given on the command line.
type filterFlags struct {
	StartYear   string
	EndYear     string
	MinAmount   string
	MaxAmount   string
	Subjects    string
	Populations string
	Locations   string
	Support     string
}

func (f *filterFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.StartYear, "start-year", "", "First award year (1900-2100)")
	fs.StringVar(&f.EndYear, "end-year", "", "Last award year (1900-2100)")
	fs.StringVar(&f.MinAmount, "min-amount", "", "Minimum award amount in dollars")
	fs.StringVar(&f.MaxAmount, "max-amount", "", "Maximum award amount in dollars")
	fs.StringVar(&f.Subjects, "subjects", "", "Subject codes, comma separated (e.g. SJ02,SJ05)")
	fs.StringVar(&f.Populations, "populations", "", "Population codes, comma separated (e.g. PA010000)")
	fs.StringVar(&f.Locations, "locations", "", "Location geonameids, comma separated (e.g. 4671654)")
	fs.StringVar(&f.Support, "support", "", "Support strategy codes, comma separated (e.g. UA)")
}

// overlay returns base with every given flag replacing its field. A flag
// set to skip clears the field.
func (f *filterFlags) overlay(base domain.FilterInput) domain.FilterInput {
	out := base
	set := func(dst *string, v string) {
		if v == "" {
			return
		}
		if domain.IsUnset(v) {
			*dst = ""
			return
		}
		*dst = v
	}
	set(&out.StartYear, f.StartYear)
	set(&out.EndYear, f.EndYear)
	set(&out.MinAmount, f.MinAmount)
	set(&out.MaxAmount, f.MaxAmount)
	set(&out.Subjects, f.Subjects)
	set(&out.Populations, f.Populations)
	set(&out.Locations, f.Locations)
	set(&out.SupportStrategies, f.Support)
	return out
}
