package cli

import (
	"context"
	"io"
	"time"

	"grant-fetcher/internal/config"
	"grant-fetcher/internal/errors"
	"grant-fetcher/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCommand represents the base command when called without any subcommands
type RootCommand struct {
	cmd     *cobra.Command
	backend Backend
	in      io.Reader
	out     io.Writer

	overrides config.ConfigOverrides
	config    *config.Config
	logger    *zap.Logger
}

// NewRootCommand creates the root cobra command with global flags
func NewRootCommand(backend Backend, in io.Reader, out io.Writer) *RootCommand {
	root := &RootCommand{
		backend: backend,
		in:      in,
		out:     out,
		logger:  zap.NewNop(),
	}

	root.cmd = &cobra.Command{
		Use:   "gf",
		Short: "Fetch grant transactions from the Candid API into JSON files",
		Long: `Grant Fetcher (gf) queries the Candid grants transactions API with a search
filter and writes the matching grants to a JSON file.

FEATURES:
  • Interactive wizard that previews result counts before fetching
  • Non-interactive fetch driven by flags or a saved search
  • Named saved searches stored as JSON files
  • History of every fetch run

EXAMPLES:
  gf                                               # Interactive wizard
  gf fetch --start-year 2020 --end-year 2023 \
           --subjects SJ02,SJ05 --pages 3          # Fetch three pages
  gf fetch --search arts --prefix arts_q3          # Re-run a saved search
  gf searches save arts --subjects SJ02 --locations 4671654
  gf searches list                                 # Show saved searches
  gf history --limit 5                             # Show recent runs

CONFIGURATION:
  Configuration follows this priority order:
  command-line flags > environment variables > settings file > defaults

  The settings file is ~/.gf/settings.json5, merged with settings.local.json5.

  API Configuration:
    CANDID_API_KEY                         API subscription key (required for fetching)
    GF_BASE_URL                            API base URL (default: https://api.candid.org)
    GF_TIMEOUT                             Per-request timeout (default: 30s)
    GF_RETRY_COUNT                         Retries on network failure (default: 2)
    GF_RETRY_WAIT                          Wait between retries (default: 500ms)

  Storage Configuration:
    GF_HOME                                Base directory (default: ~/.gf)
    GF_SEARCHES_DIR                        Saved searches (default: ~/.gf/saved_searches)
    GF_OUTPUT_DIR                          Output directory (default: current directory)
    GF_HISTORY_DB                          Run history database (default: ~/.gf/gf.db)

  Application Configuration:
    GF_APP_TIMEOUT                         Command timeout (default: 5m)
    GF_LOG_LEVEL                           Log level (default: warn)
    GF_DEBUG                               Force debug logging when set
    GF_METRICS_FILE                        Prometheus textfile to write after fetches

GETTING HELP:
  gf [command] --help                      # Get help for any specific command
  gf completion bash                       # Generate bash completion script`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return root.loadConfig(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return root.run(cmd, Needs{API: true}, 2, args, func(app *App) Command {
				return NewRunCommand(app)
			})
		},
	}

	root.addGlobalFlags()
	root.addSubcommands()

	return root
}

// Execute runs the root command
func (r *RootCommand) Execute() error {
	return r.ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx as the parent of every
// command context
func (r *RootCommand) ExecuteContext(ctx context.Context) error {
	err := r.cmd.ExecuteContext(ctx)
	if err != nil && errors.ShouldLogError(err) {
		r.logger.Debug("command failed", zap.String("code", errors.GetErrorCode(err)), zap.Error(err))
	}
	_ = r.logger.Sync()
	return err
}

// SetArgs sets the arguments used instead of os.Args
func (r *RootCommand) SetArgs(args []string) {
	r.cmd.SetArgs(args)
}

// Config returns the configuration loaded for the last command
func (r *RootCommand) Config() *config.Config {
	return r.config
}

// addGlobalFlags adds global configuration flags
func (r *RootCommand) addGlobalFlags() {
	flags := r.cmd.PersistentFlags()

	// API configuration
	flags.String("base-url", "", "API base URL (overrides GF_BASE_URL)")
	flags.Duration("api-timeout", 0, "Per-request timeout (overrides GF_TIMEOUT)")
	flags.Int("retries", 0, "Retries on network failure (overrides GF_RETRY_COUNT)")

	// Storage configuration
	flags.String("searches-dir", "", "Saved searches directory (overrides GF_SEARCHES_DIR)")
	flags.String("output-dir", "", "Output directory (overrides GF_OUTPUT_DIR)")
	flags.String("history-db", "", "Run history database (overrides GF_HISTORY_DB)")

	// Application configuration
	flags.Duration("timeout", 0, "Command timeout (overrides GF_APP_TIMEOUT)")
	flags.String("log-level", "", "Log level: debug, info, warn, error (overrides GF_LOG_LEVEL)")
	flags.BoolP("verbose", "v", false, "Log progress at info level (overrides GF_VERBOSE)")

	// Metrics configuration
	flags.String("metrics-file", "", "Prometheus textfile to write after fetches (overrides GF_METRICS_FILE)")
}

// addSubcommands adds all CLI subcommands to the root command
func (r *RootCommand) addSubcommands() {
	// Run command
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Build a search interactively and fetch it",
		Long: `Walk through the search filter one field at a time, optionally starting from
a saved search. The first page is fetched to show how many grants match
before asking how many pages to download.

Press Enter to keep the value shown in brackets, or type "skip" to clear it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, Needs{API: true}, 2, args, func(app *App) Command {
				return NewRunCommand(app)
			})
		},
	}

	// Fetch command
	fetchOpts := &FetchOptions{}
	fetchCmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch grants for a filter given as flags",
		Long: `Fetch grants without prompting. Filter flags can be combined with --search,
in which case they replace the matching fields of the saved search.

Examples:
  gf fetch --start-year 2022 --min-amount 50000 --subjects SJ02
  gf fetch --search arts --pages 5 --output arts.json
  gf fetch --locations 4671654 --save-as texas`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, Needs{API: true}, 1, args, func(app *App) Command {
				return NewFetchCommand(app, fetchOpts)
			})
		},
	}
	fetchOpts.register(fetchCmd.Flags())

	// Searches commands
	searchesCmd := &cobra.Command{
		Use:     "searches",
		Aliases: []string{"search"},
		Short:   "Manage saved searches",
	}

	searchesListCmd := &cobra.Command{
		Use:   "list",
		Short: "List saved searches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, Needs{}, 1, args, func(app *App) Command {
				return NewSearchesListCommand(app)
			})
		},
	}

	searchesShowCmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Show the fields of a saved search",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, Needs{}, 1, args, func(app *App) Command {
				return NewSearchesShowCommand(app)
			})
		},
	}

	saveOpts := &SearchesSaveOptions{}
	searchesSaveCmd := &cobra.Command{
		Use:   "save <name>",
		Short: "Save a search filter given as flags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, Needs{}, 1, args, func(app *App) Command {
				return NewSearchesSaveCommand(app, saveOpts)
			})
		},
	}
	saveOpts.register(searchesSaveCmd.Flags())

	var deleteYes bool
	searchesDeleteCmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a saved search",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, Needs{}, 2, args, func(app *App) Command {
				return NewSearchesDeleteCommand(app, &deleteYes)
			})
		},
	}
	searchesDeleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Do not ask for confirmation")

	searchesCmd.AddCommand(searchesListCmd, searchesShowCmd, searchesSaveCmd, searchesDeleteCmd)

	// History command
	historyOpts := &HistoryOptions{}
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent fetch runs",
		Long: `Show recorded fetch runs, newest first.

Examples:
  gf history                     # Last 20 runs
  gf history --status failed     # Only failed runs
  gf history --search arts -n 5  # Last 5 runs of the "arts" search
  gf history --since 1w          # Runs from the last week
  gf history --summary --sort rows  # Totals per saved search`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, Needs{History: true}, 1, args, func(app *App) Command {
				return NewHistoryCommand(app, historyOpts)
			})
		},
	}
	historyOpts.register(historyCmd.Flags())

	// Add all subcommands to root
	r.cmd.AddCommand(
		runCmd,
		fetchCmd,
		searchesCmd,
		historyCmd,
	)
}

// run opens the backend, builds the handler and executes it under the
// application timeout multiplied by timeoutFactor
func (r *RootCommand) run(cmd *cobra.Command, needs Needs, timeoutFactor int, args []string, build func(app *App) Command) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), r.getAppTimeout()*time.Duration(timeoutFactor))
	defer cancel()
	ctx = logging.ContextWithLogger(ctx, r.logger)

	businessAPI, err := r.backend.Open(ctx, r.config, needs)
	if err != nil {
		return NewErrorHandler().HandleSimple(err)
	}
	defer func() {
		if err := r.backend.Close(ctx); err != nil {
			r.logger.Warn("could not close backend", zap.Error(err))
		}
	}()

	app := NewAppWithIO(businessAPI, r.config, r.in, r.out)
	return build(app).Execute(ctx, args)
}

// getAppTimeout returns the configured application timeout
func (r *RootCommand) getAppTimeout() time.Duration {
	if r.config != nil && r.config.Application.Timeout > 0 {
		return r.config.Application.Timeout
	}
	return 5 * time.Minute
}

// loadConfig loads configuration and applies the flags that were given
func (r *RootCommand) loadConfig(cmd *cobra.Command) error {
	r.overrides = r.getOverridesFromFlags(cmd)

	cfg, err := config.NewLoader().LoadWithOverrides(&r.overrides)
	if err != nil {
		return NewErrorHandler().HandleSimple(err)
	}
	r.config = cfg

	level := cfg.Application.LogLevel
	if cfg.Application.Verbose && (level == "" || level == "warn" || level == "error") {
		level = "info"
	}
	logger, err := logging.New(level)
	if err != nil {
		return NewErrorHandler().HandleSimple(errors.NewConfigError("invalid log level", err))
	}
	r.logger = logger
	return nil
}

// getOverridesFromFlags collects the global flags the user actually set
func (r *RootCommand) getOverridesFromFlags(cmd *cobra.Command) config.ConfigOverrides {
	flags := cmd.Flags()
	var ov config.ConfigOverrides

	// API configuration
	if flags.Changed("base-url") {
		v, _ := flags.GetString("base-url")
		ov.BaseURL = &v
	}
	if flags.Changed("api-timeout") {
		v, _ := flags.GetDuration("api-timeout")
		ov.APITimeout = &v
	}
	if flags.Changed("retries") {
		v, _ := flags.GetInt("retries")
		ov.RetryCount = &v
	}

	// Storage configuration
	if flags.Changed("searches-dir") {
		v, _ := flags.GetString("searches-dir")
		ov.SearchesDir = &v
	}
	if flags.Changed("output-dir") {
		v, _ := flags.GetString("output-dir")
		ov.OutputDir = &v
	}
	if flags.Changed("history-db") {
		v, _ := flags.GetString("history-db")
		ov.HistoryDB = &v
	}

	// Application configuration
	if flags.Changed("timeout") {
		v, _ := flags.GetDuration("timeout")
		ov.Timeout = &v
	}
	if flags.Changed("log-level") {
		v, _ := flags.GetString("log-level")
		ov.LogLevel = &v
	}
	if flags.Changed("verbose") {
		v, _ := flags.GetBool("verbose")
		ov.Verbose = &v
	}

	// Metrics configuration
	if flags.Changed("metrics-file") {
		v, _ := flags.GetString("metrics-file")
		ov.MetricsFile = &v
	}

	return ov
}
