package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"grant-fetcher/internal/api"
	"grant-fetcher/internal/config"
)

// timeNow is a variable that can be replaced in tests
var timeNow = time.Now

// Command represents a CLI command handler
type Command interface {
	Execute(ctx context.Context, args []string) error
}

// App carries what every command handler needs
type App struct {
	businessAPI api.BusinessAPI
	config      *config.Config
	prompter    *Prompter
	out         io.Writer
}

// NewApp creates a CLI application reading from stdin and writing to stdout
func NewApp(businessAPI api.BusinessAPI, cfg *config.Config) *App {
	return NewAppWithIO(businessAPI, cfg, os.Stdin, os.Stdout)
}

// NewAppWithIO creates a CLI application with explicit input and output
func NewAppWithIO(businessAPI api.BusinessAPI, cfg *config.Config, in io.Reader, out io.Writer) *App {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return &App{
		businessAPI: businessAPI,
		config:      cfg,
		prompter:    NewPrompter(in, out),
		out:         out,
	}
}

func (a *App) printf(format string, args ...interface{}) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(args ...interface{}) {
	fmt.Fprintln(a.out, args...)
}
