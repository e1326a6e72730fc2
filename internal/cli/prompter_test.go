package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPrompter(input string) (*Prompter, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return NewPrompter(strings.NewReader(input), out), out
}

func TestPrompter_Ask(t *testing.T) {
	tests := []struct {
		name  string
		input string
		def   string
		want  string
	}{
		{name: "answer", input: "2020\n", want: "2020"},
		{name: "trimmed", input: "  SJ02 \n", want: "SJ02"},
		{name: "blank keeps default", input: "\n", def: "2019", want: "2019"},
		{name: "answer replaces default", input: "2021\n", def: "2019", want: "2021"},
		{name: "last line without newline", input: "2022", want: "2022"},
		{name: "windows line ending", input: "2023\r\n", want: "2023"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, out := newTestPrompter(tt.input)
			got, err := p.Ask("Start year", tt.def)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, out.String(), "Start year")
			if tt.def != "" {
				assert.Contains(t, out.String(), "["+tt.def+"]")
			}
		})
	}
}

func TestPrompter_InputClosed(t *testing.T) {
	p, _ := newTestPrompter("")
	_, err := p.Ask("Start year", "2019")
	assert.ErrorIs(t, err, ErrInputClosed)
}

func TestPrompter_AskField(t *testing.T) {
	tests := []struct {
		name  string
		input string
		def   string
		want  string
	}{
		{name: "keep default", input: "\n", def: "SJ02", want: "SJ02"},
		{name: "skip clears", input: "skip\n", def: "SJ02", want: ""},
		{name: "SKIP clears", input: "SKIP\n", def: "SJ02", want: ""},
		{name: "dash clears", input: "-\n", def: "SJ02", want: ""},
		{name: "new value", input: "SJ05\n", def: "SJ02", want: "SJ05"},
		{name: "blank without default", input: "\n", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, out := newTestPrompter(tt.input)
			got, err := p.AskField("Subject codes", tt.def)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			if tt.def != "" {
				assert.Contains(t, out.String(), "skip to clear")
			}
		})
	}
}

func TestPrompter_Confirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		def   bool
		want  bool
	}{
		{name: "yes", input: "y\n", want: true},
		{name: "YES", input: "YES\n", want: true},
		{name: "no", input: "n\n", def: true, want: false},
		{name: "blank uses default false", input: "\n", want: false},
		{name: "blank uses default true", input: "\n", def: true, want: true},
		{name: "reprompts", input: "maybe\ny\n", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, out := newTestPrompter(tt.input)
			got, err := p.Confirm("Save this search?", tt.def)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			if strings.HasPrefix(tt.input, "maybe") {
				assert.Contains(t, out.String(), "please answer y or n")
			}
		})
	}
}

func TestPrompter_AskInt(t *testing.T) {
	p, out := newTestPrompter("0\nten\n12\n4\n")
	got, err := p.AskInt("How many pages to fetch", 3, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 4, got)
	assert.Equal(t, 3, strings.Count(out.String(), "enter a number between 1 and 10"))

	p, _ = newTestPrompter("\n")
	got, err = p.AskInt("How many pages to fetch", 3, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, got)

	p, _ = newTestPrompter("0\n")
	_, err = p.AskInt("How many pages to fetch", 3, 1, 10)
	assert.ErrorIs(t, err, ErrInputClosed)
}
