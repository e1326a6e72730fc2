package cli

import (
	"context"

	"grant-fetcher/internal/api"
	"grant-fetcher/internal/domain"
	"grant-fetcher/internal/errors"

	"github.com/spf13/pflag"
)

// FetchOptions are the flags of the fetch command
type FetchOptions struct {
	Search    string
	Filter    filterFlags
	FirstPage int
	Pages     int
	Output    string
	Prefix    string
	Overwrite bool
	SaveAs    string
	ForceSave bool
}

func (o *FetchOptions) register(fs *pflag.FlagSet) {
	fs.StringVar(&o.Search, "search", "", "Start from this saved search; filter flags replace its fields")
	o.Filter.register(fs)
	fs.IntVar(&o.FirstPage, "first-page", 1, "First result page to fetch")
	fs.IntVar(&o.Pages, "pages", 1, "Number of result pages to fetch")
	fs.StringVarP(&o.Output, "output", "o", "", "Output file (default <output-dir>/<prefix>_pages_<first>-<last>.json)")
	fs.StringVar(&o.Prefix, "prefix", "", "Output file prefix (default: saved prefix or current timestamp)")
	fs.BoolVar(&o.Overwrite, "overwrite", false, "Replace the output file if it exists")
	fs.StringVar(&o.SaveAs, "save-as", "", "Save the filter under this name before fetching")
	fs.BoolVar(&o.ForceSave, "force-save", false, "Replace an existing saved search given to --save-as")
}

// FetchCommand runs one search without prompting
type FetchCommand struct {
	app          *App
	businessAPI  api.BusinessAPI
	errorHandler *ErrorHandler
	opts         *FetchOptions
}

// NewFetchCommand creates a new fetch command handler
func NewFetchCommand(app *App, opts *FetchOptions) *FetchCommand {
	if opts == nil {
		opts = &FetchOptions{FirstPage: 1, Pages: 1}
	}
	return &FetchCommand{
		app:          app,
		businessAPI:  app.businessAPI,
		errorHandler: NewErrorHandler(),
		opts:         opts,
	}
}

// Execute runs the fetch command
func (c *FetchCommand) Execute(ctx context.Context, args []string) error {
	if len(args) > 0 {
		return c.errorHandler.HandleSimple(
			errors.NewInvalidInputError("arguments", args, "fetch takes flags only, e.g. gf fetch --start-year 2020"))
	}
	if c.opts.Pages < 1 || c.opts.FirstPage < 1 {
		return c.errorHandler.HandleSimple(
			errors.NewInvalidInputError("pages", c.opts.Pages, "--pages and --first-page must be at least 1"))
	}

	base := domain.FilterInput{}
	searchName := ""
	prefix := c.opts.Prefix
	if c.opts.Search != "" {
		saved, err := c.businessAPI.LoadSearch(ctx, c.opts.Search)
		if err != nil {
			return c.errorHandler.Handle("load saved search", err)
		}
		base = saved.Filter.ToInput()
		searchName = saved.Name
		if prefix == "" {
			prefix = saved.OutputPrefix
		}
	}

	filter, err := c.businessAPI.BuildFilter(ctx, c.opts.Filter.overlay(base))
	if err != nil {
		return c.errorHandler.HandleSimple(err)
	}

	res, err := c.businessAPI.RunSearch(ctx, api.RunRequest{
		SearchName:    searchName,
		Filter:        filter,
		SaveAs:        c.opts.SaveAs,
		OverwriteSave: c.opts.ForceSave,
		FirstPage:     c.opts.FirstPage,
		Pages:         c.opts.Pages,
		Output:        c.opts.Output,
		OutputPrefix:  prefix,
		Overwrite:     c.opts.Overwrite,
	})
	if err != nil {
		return c.errorHandler.Handle("fetch grants", err)
	}

	printRunResult(c.app.out, res)
	return nil
}
