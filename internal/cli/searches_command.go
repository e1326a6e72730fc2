package cli

import (
	"context"
	"fmt"

	"grant-fetcher/internal/api"
	"grant-fetcher/internal/domain"
	"grant-fetcher/internal/errors"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/pflag"
)

// SearchesListCommand prints the saved search names
type SearchesListCommand struct {
	app          *App
	businessAPI  api.BusinessAPI
	errorHandler *ErrorHandler
}

// NewSearchesListCommand creates a new searches list handler
func NewSearchesListCommand(app *App) *SearchesListCommand {
	return &SearchesListCommand{app: app, businessAPI: app.businessAPI, errorHandler: NewErrorHandler()}
}

// Execute runs the searches list command
func (c *SearchesListCommand) Execute(ctx context.Context, args []string) error {
	names, err := c.businessAPI.ListSearches(ctx)
	if err != nil {
		return c.errorHandler.Handle("list saved searches", err)
	}
	if len(names) == 0 {
		c.app.println("No saved searches")
		return nil
	}

	t := newTable(c.app.out)
	t.AppendHeader(table.Row{"#", "Name", "Filter"})
	for i, name := range names {
		summary := ""
		if saved, err := c.businessAPI.LoadSearch(ctx, name); err != nil {
			summary = warnColor.Sprint(c.errorHandler.HandleSimple(err).Error())
		} else {
			summary = saved.Filter.String()
		}
		t.AppendRow(table.Row{i + 1, name, summary})
	}
	t.Render()
	return nil
}

// SearchesShowCommand prints one saved search
type SearchesShowCommand struct {
	app          *App
	businessAPI  api.BusinessAPI
	errorHandler *ErrorHandler
}

// NewSearchesShowCommand creates a new searches show handler
func NewSearchesShowCommand(app *App) *SearchesShowCommand {
	return &SearchesShowCommand{app: app, businessAPI: app.businessAPI, errorHandler: NewErrorHandler()}
}

// Execute runs the searches show command
func (c *SearchesShowCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return c.errorHandler.HandleSimple(errors.NewInvalidInputError("arguments", args, "usage: gf searches show <name>"))
	}
	saved, err := c.businessAPI.LoadSearch(ctx, args[0])
	if err != nil {
		return c.errorHandler.Handle("show saved search", err)
	}
	renderSearch(c.app.out, *saved)
	return nil
}

// SearchesSaveOptions are the flags of the searches save command
type SearchesSaveOptions struct {
	Filter    filterFlags
	Prefix    string
	Overwrite bool
}

func (o *SearchesSaveOptions) register(fs *pflag.FlagSet) {
	o.Filter.register(fs)
	fs.StringVar(&o.Prefix, "prefix", "", "Output file prefix stored with the search")
	fs.BoolVar(&o.Overwrite, "overwrite", false, "Replace an existing search with the same name")
}

// SearchesSaveCommand saves a filter given as flags
type SearchesSaveCommand struct {
	app          *App
	businessAPI  api.BusinessAPI
	errorHandler *ErrorHandler
	opts         *SearchesSaveOptions
}

// NewSearchesSaveCommand creates a new searches save handler
func NewSearchesSaveCommand(app *App, opts *SearchesSaveOptions) *SearchesSaveCommand {
	if opts == nil {
		opts = &SearchesSaveOptions{}
	}
	return &SearchesSaveCommand{app: app, businessAPI: app.businessAPI, errorHandler: NewErrorHandler(), opts: opts}
}

// Execute runs the searches save command
func (c *SearchesSaveCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return c.errorHandler.HandleSimple(errors.NewInvalidInputError("arguments", args, "usage: gf searches save <name> [filter flags]"))
	}

	filter, err := c.businessAPI.BuildFilter(ctx, c.opts.Filter.overlay(domain.FilterInput{}))
	if err != nil {
		return c.errorHandler.HandleSimple(err)
	}

	saved, err := c.businessAPI.SaveSearch(ctx, args[0], filter, c.opts.Prefix, c.opts.Overwrite)
	if err != nil {
		if c.errorHandler.IsDuplicateNameError(err) {
			return &commandError{
				message: c.errorHandler.Handle("save search", err).Error() + " (use --overwrite to replace it)",
				cause:   err,
			}
		}
		return c.errorHandler.Handle("save search", err)
	}
	c.app.printf("Saved search %q: %s\n", saved.Name, saved.Filter)
	return nil
}

// SearchesDeleteCommand removes a saved search
type SearchesDeleteCommand struct {
	app          *App
	businessAPI  api.BusinessAPI
	errorHandler *ErrorHandler
	yes          *bool
}

// NewSearchesDeleteCommand creates a new searches delete handler. When yes
// is nil or false the user is asked to confirm.
func NewSearchesDeleteCommand(app *App, yes *bool) *SearchesDeleteCommand {
	return &SearchesDeleteCommand{app: app, businessAPI: app.businessAPI, errorHandler: NewErrorHandler(), yes: yes}
}

// Execute runs the searches delete command
func (c *SearchesDeleteCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return c.errorHandler.HandleSimple(errors.NewInvalidInputError("arguments", args, "usage: gf searches delete <name>"))
	}
	name := args[0]

	if _, err := c.businessAPI.LoadSearch(ctx, name); err != nil && c.errorHandler.IsNotFoundError(err) {
		return c.errorHandler.Handle("delete saved search", err)
	}

	if c.yes == nil || !*c.yes {
		ok, err := c.app.prompter.Confirm(fmt.Sprintf("Delete saved search %q?", name), false)
		if err != nil {
			return c.errorHandler.HandleSimple(err)
		}
		if !ok {
			c.app.println("Delete cancelled.")
			return nil
		}
	}

	if err := c.businessAPI.DeleteSearch(ctx, name); err != nil {
		return c.errorHandler.Handle("delete saved search", err)
	}
	c.app.printf("Deleted saved search %q\n", name)
	return nil
}
