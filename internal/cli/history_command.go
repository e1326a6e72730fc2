package cli

import (
	"context"

	"grant-fetcher/internal/api"
	"grant-fetcher/internal/domain"
	"grant-fetcher/internal/errors"
	"grant-fetcher/internal/services"

	"github.com/spf13/pflag"
)

// HistoryOptions are the flags of the history command
type HistoryOptions struct {
	Limit   int
	Search  string
	Status  string
	Since   string
	Summary bool
	Sort    string
}

func (o *HistoryOptions) register(fs *pflag.FlagSet) {
	fs.IntVarP(&o.Limit, "limit", "n", 20, "Maximum number of runs to show (0 for all)")
	fs.StringVar(&o.Search, "search", "", "Only runs of this saved search")
	fs.StringVar(&o.Status, "status", "", "Only runs with this status (running, written, failed)")
	fs.StringVar(&o.Since, "since", "", "Only runs started within this period (e.g. 2h, 3d, 1w)")
	fs.BoolVar(&o.Summary, "summary", false, "Show totals per saved search instead of individual runs")
	fs.StringVar(&o.Sort, "sort", "", "Summary order: recent, oldest, name, rows (default recent)")
}

// HistoryCommand prints recent fetch runs
type HistoryCommand struct {
	app          *App
	businessAPI  api.BusinessAPI
	errorHandler *ErrorHandler
	opts         *HistoryOptions
}

// NewHistoryCommand creates a new history command handler
func NewHistoryCommand(app *App, opts *HistoryOptions) *HistoryCommand {
	if opts == nil {
		opts = &HistoryOptions{Limit: 20}
	}
	return &HistoryCommand{app: app, businessAPI: app.businessAPI, errorHandler: NewErrorHandler(), opts: opts}
}

// Execute runs the history command
func (c *HistoryCommand) Execute(ctx context.Context, args []string) error {
	opts := domain.RunSearchOptions{Limit: c.opts.Limit}
	if c.opts.Search != "" {
		opts.SearchName = &c.opts.Search
	}
	if c.opts.Status != "" {
		status := domain.RunStatus(c.opts.Status)
		opts.Status = &status
	}
	if c.opts.Since != "" {
		d, err := parseTimeShorthand(c.opts.Since)
		if err != nil {
			return c.errorHandler.HandleSimple(errors.NewInvalidInputError("since", c.opts.Since, "use a period like 30m, 2h, 1d, 2w"))
		}
		since := timeNow().Add(-d)
		opts.Since = &since
	}

	if c.opts.Summary {
		return c.summarize(ctx, opts)
	}

	runs, err := c.businessAPI.ListRuns(ctx, opts)
	if err != nil {
		return c.errorHandler.Handle("list runs", err)
	}
	if len(runs) == 0 {
		c.app.println("No runs recorded")
		return nil
	}
	renderRuns(c.app.out, runs)
	return nil
}

// summarize prints per-search totals. The limit does not apply so that the
// totals cover every matching run.
func (c *HistoryCommand) summarize(ctx context.Context, opts domain.RunSearchOptions) error {
	order, err := services.ParseSortOrder(c.opts.Sort)
	if err != nil {
		return c.errorHandler.HandleSimple(err)
	}

	opts.Limit = 0
	summary, err := c.businessAPI.SummarizeHistory(ctx, opts, order)
	if err != nil {
		return c.errorHandler.Handle("summarize runs", err)
	}
	if summary.RunCount == 0 {
		c.app.println("No runs recorded")
		return nil
	}
	renderSummary(c.app.out, summary)
	return nil
}
