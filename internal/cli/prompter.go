package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"grant-fetcher/internal/domain"

	"github.com/jedib0t/go-pretty/v6/text"
)

var (
	labelColor = text.Colors{text.FgHiCyan}
	hintColor  = text.Colors{text.Faint}
	warnColor  = text.Colors{text.FgYellow}
)

// ErrInputClosed is returned when input ends before a prompt is answered.
var ErrInputClosed = errors.New("input ended before the prompt was answered")

// Prompter asks questions on out and reads one line per answer from in.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter creates a Prompter.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Ask prints label with def as the shown default and returns the trimmed
// answer, or def when the answer is blank.
func (p *Prompter) Ask(label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "%s %s: ", labelColor.Sprint(label), hintColor.Sprintf("[%s]", def))
	} else {
		fmt.Fprintf(p.out, "%s: ", labelColor.Sprint(label))
	}

	line, err := p.readLine()
	if err != nil {
		return "", err
	}
	if line == "" {
		return def, nil
	}
	return line, nil
}

// AskField is Ask for a filter field: typing skip or - clears the default.
func (p *Prompter) AskField(label, def string) (string, error) {
	hint := label
	if def != "" {
		hint = label + " (" + domain.SkipKeyword + " to clear)"
	}
	answer, err := p.Ask(hint, def)
	if err != nil {
		return "", err
	}
	if domain.IsUnset(answer) {
		return "", nil
	}
	return answer, nil
}

// Confirm asks a yes/no question.
func (p *Prompter) Confirm(label string, def bool) (bool, error) {
	choices := "y/N"
	if def {
		choices = "Y/n"
	}
	for {
		answer, err := p.Ask(label+" "+hintColor.Sprintf("(%s)", choices), "")
		if err != nil {
			return false, err
		}
		switch strings.ToLower(answer) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		p.Warn("please answer y or n")
	}
}

// AskInt asks for a whole number in [min, max] until one is given.
func (p *Prompter) AskInt(label string, def, min, max int) (int, error) {
	for {
		answer, err := p.Ask(label, strconv.Itoa(def))
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(answer)
		if err == nil && n >= min && n <= max {
			return n, nil
		}
		p.Warn(fmt.Sprintf("enter a number between %d and %d", min, max))
	}
}

// Warn prints a highlighted message.
func (p *Prompter) Warn(msg string) {
	fmt.Fprintln(p.out, warnColor.Sprint(msg))
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(p.out)
			return "", ErrInputClosed
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}
