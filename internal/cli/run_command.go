package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"grant-fetcher/internal/api"
	"grant-fetcher/internal/domain"
)

// defaultWizardPages caps the suggested page count.
const defaultWizardPages = 10

// maxWizardPages bounds a single answer to the page prompt.
const maxWizardPages = 1000

// RunCommand is the interactive wizard: load, edit, save, preview, fetch.
type RunCommand struct {
	app          *App
	businessAPI  api.BusinessAPI
	prompter     *Prompter
	errorHandler *ErrorHandler
}

// NewRunCommand creates a new run command handler
func NewRunCommand(app *App) *RunCommand {
	return &RunCommand{
		app:          app,
		businessAPI:  app.businessAPI,
		prompter:     app.prompter,
		errorHandler: NewErrorHandler(),
	}
}

// Execute runs the wizard
func (c *RunCommand) Execute(ctx context.Context, args []string) error {
	loaded, err := c.chooseSavedSearch(ctx)
	if err != nil {
		return c.errorHandler.Handle("load saved search", err)
	}

	base := domain.FilterInput{}
	prefix := ""
	searchName := ""
	if loaded != nil {
		base = loaded.Filter.ToInput()
		prefix = loaded.OutputPrefix
		searchName = loaded.Name
	}

	filter, err := c.collectFilter(ctx, base)
	if err != nil {
		return c.errorHandler.HandleSimple(err)
	}
	c.app.printf("Search: %s\n", filter)

	if name, err := c.offerSave(ctx, filter, searchName, prefix); err != nil {
		return c.errorHandler.Handle("save search", err)
	} else if name != "" {
		searchName = name
	}

	preview, err := c.businessAPI.PreviewSearch(ctx, filter)
	if err != nil {
		return c.errorHandler.Handle("preview search", err)
	}
	if preview.TotalHits == 0 && preview.RowCount == 0 {
		c.app.println("No grants match this search.")
		return nil
	}
	numPages := preview.NumPages
	if numPages > 0 {
		c.app.printf("%d grants across %d pages\n", preview.TotalHits, numPages)
	}

	pages, err := c.prompter.AskInt("How many pages to fetch", suggestedPages(numPages, 1), 1, maxWizardPages)
	if err != nil {
		return c.errorHandler.HandleSimple(err)
	}

	prefix, err = c.prompter.Ask("Output file prefix (blank for a timestamp)", prefix)
	if err != nil {
		return c.errorHandler.HandleSimple(err)
	}

	first := 1
	for {
		res, err := c.businessAPI.RunSearch(ctx, api.RunRequest{
			SearchName:   searchName,
			Filter:       filter,
			FirstPage:    first,
			Pages:        pages,
			OutputPrefix: prefix,
		})
		if err != nil {
			return c.errorHandler.Handle("fetch grants", err)
		}
		printRunResult(c.app.out, res)

		rs := res.ResultSet
		if rs.NumPages == 0 || rs.LastPage >= rs.NumPages || rs.RowCount == 0 {
			return nil
		}
		more, err := c.prompter.Confirm(fmt.Sprintf("Fetch more pages (%d remaining)?", rs.NumPages-rs.LastPage), false)
		if err != nil || !more {
			return c.errorHandler.HandleSimple(err)
		}

		first = rs.LastPage + 1
		pages, err = c.prompter.AskInt("How many more pages", suggestedPages(rs.NumPages, first), 1, maxWizardPages)
		if err != nil {
			return c.errorHandler.HandleSimple(err)
		}
	}
}

// suggestedPages returns the default page count starting at first.
func suggestedPages(numPages, first int) int {
	remaining := numPages - first + 1
	switch {
	case remaining < 1:
		return 1
	case remaining > defaultWizardPages:
		return defaultWizardPages
	default:
		return remaining
	}
}

// chooseSavedSearch offers the saved searches, returning nil when the user
// starts from scratch.
func (c *RunCommand) chooseSavedSearch(ctx context.Context) (*domain.SavedSearch, error) {
	names, err := c.businessAPI.ListSearches(ctx)
	if err != nil || len(names) == 0 {
		return nil, err
	}

	c.app.println("Saved searches:")
	for i, name := range names {
		c.app.printf("  %d. %s\n", i+1, name)
	}

	for {
		answer, err := c.prompter.Ask("Load a saved search (number or name, blank for a new search)", "")
		if err != nil || answer == "" {
			return nil, err
		}

		name := answer
		if n, convErr := strconv.Atoi(answer); convErr == nil {
			if n < 1 || n > len(names) {
				c.prompter.Warn(fmt.Sprintf("choose a number between 1 and %d", len(names)))
				continue
			}
			name = names[n-1]
		}

		saved, err := c.businessAPI.LoadSearch(ctx, name)
		if err != nil {
			if c.errorHandler.IsNotFoundError(err) || c.errorHandler.IsValidationError(err) {
				c.prompter.Warn(c.errorHandler.HandleSimple(err).Error())
				continue
			}
			return nil, err
		}
		c.app.printf("Loaded %q: %s\n", saved.Name, saved.Filter)
		return saved, nil
	}
}

// collectFilter prompts for every field until the answers form a valid
// filter. Earlier answers become the defaults of the next round.
func (c *RunCommand) collectFilter(ctx context.Context, current domain.FilterInput) (domain.SearchFilter, error) {
	fields := []struct {
		label string
		value *string
	}{
		{"Start year", &current.StartYear},
		{"End year", &current.EndYear},
		{"Minimum amount", &current.MinAmount},
		{"Maximum amount", &current.MaxAmount},
		{"Subject codes", &current.Subjects},
		{"Population codes", &current.Populations},
		{"Location geonameids", &current.Locations},
		{"Support strategy codes", &current.SupportStrategies},
	}

	for {
		for _, f := range fields {
			answer, err := c.prompter.AskField(f.label, *f.value)
			if err != nil {
				return domain.SearchFilter{}, err
			}
			*f.value = answer
		}

		filter, err := c.businessAPI.BuildFilter(ctx, current)
		if err == nil {
			return filter, nil
		}
		if !c.errorHandler.IsValidationError(err) {
			return domain.SearchFilter{}, err
		}
		c.prompter.Warn(c.errorHandler.HandleSimple(err).Error())
		c.app.println("Please correct the search:")
	}
}

// offerSave asks whether to save the filter and returns the name used.
func (c *RunCommand) offerSave(ctx context.Context, filter domain.SearchFilter, current, prefix string) (string, error) {
	save, err := c.prompter.Confirm("Save this search?", false)
	if err != nil || !save {
		return "", err
	}

	for {
		name, err := c.prompter.Ask("Name", current)
		if err != nil {
			return "", err
		}
		name = strings.TrimSpace(name)

		saved, err := c.businessAPI.SaveSearch(ctx, name, filter, prefix, false)
		if err == nil {
			c.app.printf("Saved search %q\n", saved.Name)
			return saved.Name, nil
		}

		switch {
		case c.errorHandler.IsDuplicateNameError(err):
			replace, askErr := c.prompter.Confirm(fmt.Sprintf("%q already exists. Replace it?", name), false)
			if askErr != nil {
				return "", askErr
			}
			if !replace {
				continue
			}
			saved, err = c.businessAPI.SaveSearch(ctx, name, filter, prefix, true)
			if err != nil {
				return "", err
			}
			c.app.printf("Saved search %q\n", saved.Name)
			return saved.Name, nil
		case c.errorHandler.IsValidationError(err):
			c.prompter.Warn(c.errorHandler.HandleSimple(err).Error())
		default:
			return "", err
		}
	}
}
