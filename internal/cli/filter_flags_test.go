package cli

import (
	"testing"

	"grant-fetcher/internal/domain"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterFlags_Register(t *testing.T) {
	var f filterFlags
	fs := pflag.NewFlagSet("fetch", pflag.ContinueOnError)
	f.register(fs)

	err := fs.Parse([]string{
		"--start-year", "2020", "--end-year", "2021",
		"--min-amount", "1000", "--max-amount", "5000",
		"--subjects", "SJ02,SJ05", "--populations", "PA010000",
		"--locations", "4671654", "--support", "UA",
	})
	require.NoError(t, err)

	assert.Equal(t, filterFlags{
		StartYear:   "2020",
		EndYear:     "2021",
		MinAmount:   "1000",
		MaxAmount:   "5000",
		Subjects:    "SJ02,SJ05",
		Populations: "PA010000",
		Locations:   "4671654",
		Support:     "UA",
	}, f)
}

func TestFilterFlags_Overlay(t *testing.T) {
	base := domain.FilterInput{
		StartYear:         "2019",
		EndYear:           "2020",
		Subjects:          "SJ02",
		SupportStrategies: "UA",
	}

	tests := []struct {
		name  string
		flags filterFlags
		want  domain.FilterInput
	}{
		{
			name:  "no flags keeps base",
			flags: filterFlags{},
			want:  base,
		},
		{
			name:  "flag replaces field",
			flags: filterFlags{EndYear: "2022", Locations: "4671654"},
			want: domain.FilterInput{
				StartYear:         "2019",
				EndYear:           "2022",
				Subjects:          "SJ02",
				Locations:         "4671654",
				SupportStrategies: "UA",
			},
		},
		{
			name:  "skip clears field",
			flags: filterFlags{Subjects: "skip", Support: "-"},
			want: domain.FilterInput{
				StartYear: "2019",
				EndYear:   "2020",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := tt.flags
			assert.Equal(t, tt.want, f.overlay(base))
		})
	}
}
